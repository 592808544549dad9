package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/database"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Option configures a repository.
type Option func(*store)

// WithRetryPolicy overrides database.DefaultRetryPolicy.
func WithRetryPolicy(policy database.RetryPolicy) Option {
	return func(s *store) {
		s.retry = policy
	}
}

// store carries what every gorm repository needs.
type store struct {
	db    *gorm.DB
	retry database.RetryPolicy
}

func newStore(db *gorm.DB, opts []Option) store {
	s := store{db: db, retry: database.DefaultRetryPolicy}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// run executes fn with ctx bound, retrying transient failures, and
// translates the final error.
func (s store) run(ctx context.Context, fn func(db *gorm.DB) error) error {
	return translate(s.retry.Do(ctx, func() error {
		return fn(s.db.WithContext(ctx))
	}))
}

// transaction runs fn inside one database transaction. A retry replays the
// whole transaction.
func (s store) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.run(ctx, func(db *gorm.DB) error {
		return db.Transaction(fn)
	})
}

// findPage counts and loads one page of T in insertion order. filter, when
// set, narrows both queries; preloads apply to the page only.
func findPage[T any](db *gorm.DB, table string, page utils.PaginationParams, filter func(*gorm.DB) *gorm.DB, preload ...string) ([]T, int64, error) {
	base := func() *gorm.DB {
		q := db.Model(new(T))
		if filter != nil {
			q = q.Scopes(filter)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]T, 0)
	query := base()
	for _, p := range preload {
		query = query.Preload(p)
	}
	err := query.
		Scopes(database.InsertionOrder(table), database.Paginate(page)).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// locked adds a row lock of strength ("UPDATE" or "SHARE") to the query.
// SQLite has no row locks and serializes writers instead.
func locked(tx *gorm.DB, strength string) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: strength})
}

// updateLocked loads the T with id under a row lock, applies mutate and
// writes back only the columns it reports. check, when set, validates the
// references of the mutated row before the write.
func updateLocked[T any](tx *gorm.DB, id uuid.UUID, mutate Mutation[T], check func(tx *gorm.DB, row *T) error) (*T, error) {
	row := new(T)
	if err := locked(tx, "UPDATE").Where("id = ?", id).First(row).Error; err != nil {
		return nil, err
	}

	columns, err := mutate(txLookup{tx: tx}, row)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return row, nil
	}

	if check != nil {
		if err := check(tx, row); err != nil {
			return nil, err
		}
	}
	if err := tx.Model(row).Select(append(columns, "updated_at")).Updates(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// txLookup implements Lookup on an open transaction. Related rows are share
// locked so the lead a permission check saw cannot change before commit.
type txLookup struct {
	tx *gorm.DB
}

func (l txLookup) TeamLead(id *uuid.UUID) (*uuid.UUID, error) {
	if id == nil {
		return nil, nil
	}
	var team models.Team
	err := locked(l.tx, "SHARE").Select("id", "lead_id").Where("id = ?", *id).First(&team).Error
	if err != nil {
		return nil, translate(err)
	}
	return team.LeadID, nil
}

func (l txLookup) ProjectLead(id *uuid.UUID) (*uuid.UUID, error) {
	if id == nil {
		return nil, nil
	}
	var project models.Project
	err := locked(l.tx, "SHARE").Select("id", "team_id").Where("id = ?", *id).First(&project).Error
	if err != nil {
		return nil, translate(err)
	}
	return l.TeamLead(project.TeamID)
}
