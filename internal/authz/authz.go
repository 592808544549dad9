// Package authz decides whether an authenticated actor may perform an action
// on a resource. Decisions are pure: callers load whatever ownership facts the
// rule needs and pass them in a Target.
package authz

import (
	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/models"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Kind string

const (
	KindUser       Kind = "user"
	KindTeam       Kind = "team"
	KindMembership Kind = "membership"
	KindCategory   Kind = "category"
	KindProject    Kind = "project"
	KindTask       Kind = "task"
)

// Actor is the caller identity taken from a verified token.
type Actor struct {
	ID   uuid.UUID
	Role models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.UserRoleAdmin
}

// Target describes the resource being acted on.
//
// UserID is the user record itself (KindUser). LeadID is the lead of the
// team that governs the resource: the team itself, a membership's team, a
// project's team, or a task's project's team. AssigneeID is a task's
// assignee. Elevates marks writes that set or change a user role.
type Target struct {
	Kind       Kind
	UserID     *uuid.UUID
	LeadID     *uuid.UUID
	AssigneeID *uuid.UUID
	Elevates   bool
}

// CanPerform reports whether actor may perform action on target. Anything not
// explicitly allowed is denied.
func CanPerform(actor Actor, action Action, target Target) bool {
	if !actor.Role.Valid() || !validAction(action) || !validKind(target.Kind) {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if action == ActionRead {
		return true
	}

	switch target.Kind {
	case KindUser:
		switch action {
		case ActionCreate:
			return !target.Elevates
		case ActionUpdate:
			return is(target.UserID, actor.ID) && !target.Elevates
		case ActionDelete:
			return is(target.UserID, actor.ID)
		}
	case KindTeam, KindMembership, KindProject:
		return is(target.LeadID, actor.ID)
	case KindTask:
		return is(target.LeadID, actor.ID) || is(target.AssigneeID, actor.ID)
	}
	return false
}

func is(id *uuid.UUID, actor uuid.UUID) bool {
	return id != nil && *id == actor
}

func validAction(a Action) bool {
	switch a {
	case ActionRead, ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

func validKind(k Kind) bool {
	switch k {
	case KindUser, KindTeam, KindMembership, KindCategory, KindProject, KindTask:
		return true
	}
	return false
}
