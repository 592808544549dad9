package models

import "github.com/google/uuid"

// All lists every persisted model in dependency order, for migrations.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Team{},
		&TeamMembership{},
		&Category{},
		&Project{},
		&Task{},
	}
}

// NewID returns a time-ordered (v7) UUID, so primary keys sort in insertion
// order within a process.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
