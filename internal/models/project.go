package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusPlanning    ProjectStatus = "planning"
	ProjectStatusActive      ProjectStatus = "active"
	ProjectStatusDevelopment ProjectStatus = "development"
	ProjectStatusOnHold      ProjectStatus = "on_hold"
	ProjectStatusCompleted   ProjectStatus = "completed"
	ProjectStatusCancelled   ProjectStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusDevelopment,
		ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

type Project struct {
	ID          uuid.UUID     `gorm:"type:char(36);primaryKey"`
	Title       string        `gorm:"type:varchar(255);not null"`
	Description string        `gorm:"type:text"`
	Status      ProjectStatus `gorm:"type:varchar(50);not null;default:'planning';index"`
	Deadline    *time.Time
	TeamID      *uuid.UUID `gorm:"type:char(36);index"`
	CategoryID  *uuid.UUID `gorm:"type:char(36);index"`
	CreatedAt   time.Time  `gorm:"index"`
	UpdatedAt   time.Time

	// Relations
	Team     *Team     `gorm:"foreignKey:TeamID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = NewID()
	}
	if p.Status == "" {
		p.Status = ProjectStatusPlanning
	}
	return nil
}
