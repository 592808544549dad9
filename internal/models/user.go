package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

// Valid reports whether r is one of the closed set of user roles.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleMember:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID  `gorm:"type:char(36);primaryKey"`
	Username     string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	Role         UserRole   `gorm:"type:varchar(50);not null;default:'member'"`
	CreatedAt    time.Time  `gorm:"index"`
	UpdatedAt    time.Time
	LastLogin    *time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = NewID()
	}
	if u.Role == "" {
		u.Role = UserRoleMember
	}
	return nil
}
