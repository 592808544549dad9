package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MembershipRole string

const (
	MembershipRoleMember         MembershipRole = "member"
	MembershipRoleLead           MembershipRole = "lead"
	MembershipRoleDeveloper      MembershipRole = "developer"
	MembershipRoleTester         MembershipRole = "tester"
	MembershipRoleDesigner       MembershipRole = "designer"
	MembershipRoleProductManager MembershipRole = "product_manager"
)

func (r MembershipRole) Valid() bool {
	switch r {
	case MembershipRoleMember, MembershipRoleLead, MembershipRoleDeveloper,
		MembershipRoleTester, MembershipRoleDesigner, MembershipRoleProductManager:
		return true
	}
	return false
}

// TeamMembership is the join row between a user and a team. The pair
// (team_id, user_id) is unique.
type TeamMembership struct {
	ID        uuid.UUID      `gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID      `gorm:"type:char(36);not null;uniqueIndex:idx_membership_team_user,priority:2"`
	TeamID    uuid.UUID      `gorm:"type:char(36);not null;uniqueIndex:idx_membership_team_user,priority:1"`
	Role      MembershipRole `gorm:"type:varchar(50);not null;default:'member'"`
	CreatedAt time.Time      `gorm:"index"`

	// Relations
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Team *Team `gorm:"foreignKey:TeamID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (TeamMembership) TableName() string {
	return "team_memberships"
}

func (m *TeamMembership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = NewID()
	}
	if m.Role == "" {
		m.Role = MembershipRoleMember
	}
	return nil
}
