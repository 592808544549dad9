package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Team struct {
	ID          uuid.UUID  `gorm:"type:char(36);primaryKey"`
	Name        string     `gorm:"type:varchar(255);not null"`
	Description string     `gorm:"type:text"`
	LeadID      *uuid.UUID `gorm:"type:char(36);index"`
	CreatedAt   time.Time  `gorm:"index"`
	UpdatedAt   time.Time

	// Relations
	Lead *User `gorm:"foreignKey:LeadID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = NewID()
	}
	return nil
}
