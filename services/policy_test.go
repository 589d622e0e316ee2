package services

import (
	"errors"
	"testing"

	"github.com/cppla/gamehouse/models"
)

func TestCanMutate(t *testing.T) {
	cases := []struct {
		name   string
		actor  uint
		role   string
		owner  uint
		action Action
		want   bool
	}{
		{"owner edits", 1, models.RoleUser, 1, ActionEdit, true},
		{"owner deletes", 1, models.RoleUser, 1, ActionDelete, true},
		{"stranger edits", 2, models.RoleUser, 1, ActionEdit, false},
		{"stranger deletes", 2, models.RoleUser, 1, ActionDelete, false},
		{"admin edits foreign", 3, models.RoleAdmin, 1, ActionEdit, true},
		{"admin deletes foreign", 3, models.RoleAdmin, 1, ActionDelete, true},
		{"moderator is a plain user", 4, models.RoleModerator, 1, ActionDelete, false},
		{"moderator owns", 4, models.RoleModerator, 4, ActionEdit, true},
		{"owner cannot create poll", 1, models.RoleUser, 1, ActionCreatePoll, false},
		{"poll creator still needs admin to delete", 1, models.RoleUser, 1, ActionDeletePoll, false},
		{"admin creates poll", 3, models.RoleAdmin, 0, ActionCreatePoll, true},
		{"admin deletes poll", 3, models.RoleAdmin, 9, ActionDeletePoll, true},
		{"user lists all comments", 1, models.RoleUser, 0, ActionListAllComments, false},
		{"admin lists all comments", 3, models.RoleAdmin, 0, ActionListAllComments, true},
		{"anonymous never owns", 0, "", 0, ActionEdit, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CanMutate(c.actor, c.role, c.owner, c.action); got != c.want {
				t.Fatalf("CanMutate(%d, %q, %d, %v) = %v, want %v", c.actor, c.role, c.owner, c.action, got, c.want)
			}
		})
	}
}

func TestAuthorizeReturnsForbidden(t *testing.T) {
	err := Authorize(Identity{UserID: 2, Role: models.RoleUser}, 1, ActionEdit)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if KindOf(err) != KindForbidden {
		t.Fatalf("kind = %v", KindOf(err))
	}
	if err := Authorize(Identity{UserID: 1, Role: models.RoleUser}, 1, ActionEdit); err != nil {
		t.Fatalf("owner denied: %v", err)
	}
}
