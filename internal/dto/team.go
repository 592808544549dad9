package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/models"
)

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	LeadID      *uuid.UUID `json:"lead_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Links       Links      `json:"_links"`
}

func ToTeamDTO(team models.Team) TeamDTO {
	id := team.ID.String()
	self := "/teams/" + id
	links := standardLinks("/teams", id)
	links["members"] = get(self + "/members")
	links["add_member"] = post(self + "/members")
	links["projects"] = get(self + "/projects")
	links["tasks"] = get(self + "/tasks")
	if team.LeadID != nil {
		links["lead"] = get("/users/" + team.LeadID.String())
	}

	return TeamDTO{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		LeadID:      team.LeadID,
		CreatedAt:   team.CreatedAt,
		UpdatedAt:   team.UpdatedAt,
		Links:       links,
	}
}

func ToTeamDTOs(teams []models.Team) []TeamDTO {
	return mapAll(teams, ToTeamDTO)
}

// MemberDTO represents a team membership in API responses
type MemberDTO struct {
	UserID   uuid.UUID             `json:"user_id"`
	TeamID   uuid.UUID             `json:"team_id"`
	Username string                `json:"username,omitempty"`
	Role     models.MembershipRole `json:"role"`
	JoinedAt time.Time             `json:"joined_at"`
	Links    Links                 `json:"_links"`
}

func ToMemberDTO(member models.TeamMembership) MemberDTO {
	team := "/teams/" + member.TeamID.String()
	self := team + "/members/" + member.UserID.String()

	dto := MemberDTO{
		UserID:   member.UserID,
		TeamID:   member.TeamID,
		Role:     member.Role,
		JoinedAt: member.CreatedAt,
		Links: Links{
			"self":    get("/users/" + member.UserID.String()),
			"update":  put(self),
			"remove":  del(self),
			"team":    get(team),
			"members": get(team + "/members"),
		},
	}

	// Include username if preloaded
	if member.User != nil {
		dto.Username = member.User.Username
	}
	return dto
}

func ToMemberDTOs(members []models.TeamMembership) []MemberDTO {
	return mapAll(members, ToMemberDTO)
}
