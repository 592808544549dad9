package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/constants"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusDone, TaskStatusCancelled:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID  `gorm:"type:char(36);primaryKey"`
	Title       string     `gorm:"type:varchar(255);not null"`
	Description string     `gorm:"type:text"`
	Status      TaskStatus `gorm:"type:varchar(50);not null;default:'pending';index"`
	Priority    int        `gorm:"not null;default:3"`
	Deadline    *time.Time `gorm:"index"`
	ProjectID   *uuid.UUID `gorm:"type:char(36);index"`
	AssigneeID  *uuid.UUID `gorm:"type:char(36);index"`
	CreatedBy   *uuid.UUID `gorm:"type:char(36)"`
	UpdatedBy   *uuid.UUID `gorm:"type:char(36)"`
	CreatedAt   time.Time  `gorm:"index"`
	UpdatedAt   time.Time

	// Relations
	Project  *Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Assignee *User    `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Creator  *User    `gorm:"foreignKey:CreatedBy;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Updater  *User    `gorm:"foreignKey:UpdatedBy;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = NewID()
	}
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	if t.Priority == 0 {
		t.Priority = constants.DefaultPriority
	}
	return nil
}
