package authz

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/team-task-api/internal/models"
)

func TestCanPerform(t *testing.T) {
	me := uuid.New()
	other := uuid.New()

	admin := Actor{ID: me, Role: models.UserRoleAdmin}
	member := Actor{ID: me, Role: models.UserRoleMember}

	tests := []struct {
		name   string
		actor  Actor
		action Action
		target Target
		want   bool
	}{
		{"admin deletes any team", admin, ActionDelete, Target{Kind: KindTeam, LeadID: &other}, true},
		{"admin creates category", admin, ActionCreate, Target{Kind: KindCategory}, true},
		{"admin elevates user", admin, ActionUpdate, Target{Kind: KindUser, UserID: &other, Elevates: true}, true},

		{"member reads anything", member, ActionRead, Target{Kind: KindProject}, true},
		{"member updates self", member, ActionUpdate, Target{Kind: KindUser, UserID: &me}, true},
		{"member cannot change own role", member, ActionUpdate, Target{Kind: KindUser, UserID: &me, Elevates: true}, false},
		{"member cannot update others", member, ActionUpdate, Target{Kind: KindUser, UserID: &other}, false},
		{"member deletes self", member, ActionDelete, Target{Kind: KindUser, UserID: &me}, true},
		{"member cannot delete others", member, ActionDelete, Target{Kind: KindUser, UserID: &other}, false},
		{"member registers member", member, ActionCreate, Target{Kind: KindUser}, true},
		{"member cannot register admin", member, ActionCreate, Target{Kind: KindUser, Elevates: true}, false},

		{"lead updates team", member, ActionUpdate, Target{Kind: KindTeam, LeadID: &me}, true},
		{"non-lead cannot update team", member, ActionUpdate, Target{Kind: KindTeam, LeadID: &other}, false},
		{"non-lead cannot delete unled team", member, ActionDelete, Target{Kind: KindTeam}, false},
		{"member creates team they lead", member, ActionCreate, Target{Kind: KindTeam, LeadID: &me}, true},
		{"member cannot create team for others", member, ActionCreate, Target{Kind: KindTeam, LeadID: &other}, false},

		{"lead adds member", member, ActionCreate, Target{Kind: KindMembership, LeadID: &me}, true},
		{"non-lead cannot remove member", member, ActionDelete, Target{Kind: KindMembership, LeadID: &other}, false},

		{"lead creates project", member, ActionCreate, Target{Kind: KindProject, LeadID: &me}, true},
		{"teamless project is admin only", member, ActionCreate, Target{Kind: KindProject}, false},

		{"assignee updates task", member, ActionUpdate, Target{Kind: KindTask, AssigneeID: &me, LeadID: &other}, true},
		{"lead deletes task", member, ActionDelete, Target{Kind: KindTask, LeadID: &me}, true},
		{"stranger cannot update task", member, ActionUpdate, Target{Kind: KindTask, AssigneeID: &other, LeadID: &other}, false},
		{"member creates self-assigned task", member, ActionCreate, Target{Kind: KindTask, AssigneeID: &me}, true},

		{"member cannot create category", member, ActionCreate, Target{Kind: KindCategory}, false},
		{"member cannot delete category", member, ActionDelete, Target{Kind: KindCategory}, false},

		{"unknown role denied", Actor{ID: me, Role: "owner"}, ActionRead, Target{Kind: KindTeam}, false},
		{"unknown action denied", admin, Action("archive"), Target{Kind: KindTeam}, false},
		{"unknown kind denied", admin, ActionRead, Target{Kind: Kind("invoice")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPerform(tt.actor, tt.action, tt.target))
		})
	}
}

// Every combination must produce a decision without panicking, and members
// never mutate categories.
func TestCanPerform_Total(t *testing.T) {
	me := uuid.New()
	actions := []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete, "bogus"}
	kinds := []Kind{KindUser, KindTeam, KindMembership, KindCategory, KindProject, KindTask, "bogus"}
	roles := []models.UserRole{models.UserRoleAdmin, models.UserRoleMember, ""}

	for _, role := range roles {
		for _, action := range actions {
			for _, kind := range kinds {
				target := Target{Kind: kind, UserID: &me, LeadID: &me, AssigneeID: &me}
				name := fmt.Sprintf("%s/%s/%s", role, action, kind)
				assert.NotPanics(t, func() {
					got := CanPerform(Actor{ID: me, Role: role}, action, target)
					if role == models.UserRoleMember && kind == KindCategory && action != ActionRead {
						assert.False(t, got, name)
					}
				}, name)
			}
		}
	}
}
