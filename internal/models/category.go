package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/constants"
	"gorm.io/gorm"
)

type Category struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Color     string    `gorm:"type:varchar(7);not null;default:'#64748b'"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = NewID()
	}
	if c.Color == "" {
		c.Color = constants.DefaultColor
	}
	return nil
}
