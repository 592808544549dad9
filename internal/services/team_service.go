package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/authz"
	"github.com/yukikurage/team-task-api/internal/events"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/utils"
)

// TeamService handles teams and their memberships.
type TeamService struct {
	teamRepo  repository.TeamRepository
	publisher events.Publisher
}

// NewTeamService creates a new TeamService
func NewTeamService(teamRepo repository.TeamRepository, publisher events.Publisher) *TeamService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &TeamService{
		teamRepo:  teamRepo,
		publisher: publisher,
	}
}

// CreateTeamInput represents input for creating a team
type CreateTeamInput struct {
	Name        string
	Description string
	LeadID      *uuid.UUID
}

// UpdateTeamInput represents a partial team update
type UpdateTeamInput struct {
	Name        *string
	Description *string
	LeadID      utils.Optional[uuid.UUID]
}

// AddMemberInput represents input for adding a member to a team
type AddMemberInput struct {
	UserID uuid.UUID
	Role   models.MembershipRole
}

// Create creates a team. Members may only create teams they lead.
func (s *TeamService) Create(ctx context.Context, actor authz.Actor, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	if !authz.CanPerform(actor, authz.ActionCreate, authz.Target{Kind: authz.KindTeam, LeadID: input.LeadID}) {
		return nil, ErrForbidden
	}

	team := &models.Team{
		Name:        name,
		Description: input.Description,
		LeadID:      input.LeadID,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, onCreate(err, nil)
	}

	events.Emit(ctx, s.publisher, events.New("team", events.Created, team.ID, actor.ID))
	return team, nil
}

// Get returns a team
func (s *TeamService) Get(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, id)
	if err != nil {
		return nil, onFind(err, ErrTeamNotFound)
	}
	return team, nil
}

// List returns one page of teams
func (s *TeamService) List(ctx context.Context, page utils.PaginationParams) ([]models.Team, int64, error) {
	return s.teamRepo.List(ctx, page)
}

// Update applies a partial update. Only the current lead or an admin may
// change a team.
func (s *TeamService) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.teamRepo.Update(ctx, id, func(_ repository.Lookup, team *models.Team) ([]string, error) {
		if !authz.CanPerform(actor, authz.ActionUpdate, authz.Target{Kind: authz.KindTeam, LeadID: team.LeadID}) {
			return nil, ErrForbidden
		}

		var changed []string
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return nil, ErrNameRequired
			}
			team.Name = name
			changed = append(changed, "name")
		}
		if input.Description != nil {
			team.Description = *input.Description
			changed = append(changed, "description")
		}
		if input.LeadID.Set {
			input.LeadID.Apply(&team.LeadID)
			changed = append(changed, "lead_id")
		}
		return changed, nil
	})
	if err != nil {
		return nil, onUpdate(err, ErrTeamNotFound, nil)
	}

	events.Emit(ctx, s.publisher, events.New("team", events.Updated, team.ID, actor.ID))
	return team, nil
}

// Delete removes a team with its memberships. Teams that still own projects
// are kept.
func (s *TeamService) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	team, err := s.teamRepo.FindByID(ctx, id)
	if err != nil {
		return onFind(err, ErrTeamNotFound)
	}

	if !authz.CanPerform(actor, authz.ActionDelete, authz.Target{Kind: authz.KindTeam, LeadID: team.LeadID}) {
		return ErrForbidden
	}

	if err := s.teamRepo.Delete(ctx, team.ID); err != nil {
		return onDelete(err, ErrTeamNotFound)
	}

	events.Emit(ctx, s.publisher, events.New("team", events.Deleted, team.ID, actor.ID))
	return nil
}

// AddMember adds a user to a team
func (s *TeamService) AddMember(ctx context.Context, actor authz.Actor, teamID uuid.UUID, input AddMemberInput) (*models.TeamMembership, error) {
	team, err := s.authorizeMembership(ctx, actor, authz.ActionCreate, teamID)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.MembershipRoleMember
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	member := &models.TeamMembership{
		TeamID: team.ID,
		UserID: input.UserID,
		Role:   role,
	}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		return nil, onCreate(err, ErrAlreadyMember)
	}

	events.Emit(ctx, s.publisher, events.New("membership", events.Created, member.ID, actor.ID))

	added, err := s.teamRepo.FindMember(ctx, team.ID, member.UserID)
	if err != nil {
		return nil, onFind(err, ErrMemberNotFound)
	}
	return added, nil
}

// UpdateMember changes the role of a membership
func (s *TeamService) UpdateMember(ctx context.Context, actor authz.Actor, teamID, userID uuid.UUID, role models.MembershipRole) (*models.TeamMembership, error) {
	team, err := s.authorizeMembership(ctx, actor, authz.ActionUpdate, teamID)
	if err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	member, err := s.teamRepo.FindMember(ctx, team.ID, userID)
	if err != nil {
		return nil, onFind(err, ErrMemberNotFound)
	}

	member.Role = role
	if err := s.teamRepo.UpdateMember(ctx, member); err != nil {
		return nil, onUpdate(err, ErrMemberNotFound, nil)
	}

	events.Emit(ctx, s.publisher, events.New("membership", events.Updated, member.ID, actor.ID))
	return member, nil
}

// RemoveMember removes a user from a team
func (s *TeamService) RemoveMember(ctx context.Context, actor authz.Actor, teamID, userID uuid.UUID) error {
	team, err := s.authorizeMembership(ctx, actor, authz.ActionDelete, teamID)
	if err != nil {
		return err
	}

	member, err := s.teamRepo.FindMember(ctx, team.ID, userID)
	if err != nil {
		return onFind(err, ErrMemberNotFound)
	}

	if err := s.teamRepo.RemoveMember(ctx, team.ID, userID); err != nil {
		return onDelete(err, ErrMemberNotFound)
	}

	events.Emit(ctx, s.publisher, events.New("membership", events.Deleted, member.ID, actor.ID))
	return nil
}

// ListMembers returns one page of a team's members
func (s *TeamService) ListMembers(ctx context.Context, teamID uuid.UUID, page utils.PaginationParams) ([]models.TeamMembership, int64, error) {
	if _, err := s.Get(ctx, teamID); err != nil {
		return nil, 0, err
	}
	members, total, err := s.teamRepo.ListMembers(ctx, teamID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	return members, total, nil
}

func (s *TeamService) authorizeMembership(ctx context.Context, actor authz.Actor, action authz.Action, teamID uuid.UUID) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if !authz.CanPerform(actor, action, authz.Target{Kind: authz.KindMembership, LeadID: team.LeadID}) {
		return nil, ErrForbidden
	}
	return team, nil
}
