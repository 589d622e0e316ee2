package services

import "github.com/cppla/gamehouse/models"

// Action names a guarded mutation.
type Action int

const (
	ActionEdit Action = iota
	ActionDelete
	ActionCreatePoll
	ActionDeletePoll
	ActionListAllComments
)

// CanMutate decides whether actor may perform action on a resource owned by ownerID.
// Edit and delete are open to the owner or an admin; poll management and the
// comment moderation listing are admin only. Moderators have no extra rights.
func CanMutate(actorID uint, actorRole string, ownerID uint, action Action) bool {
	isAdmin := actorRole == models.RoleAdmin
	switch action {
	case ActionEdit, ActionDelete:
		return isAdmin || (actorID != 0 && actorID == ownerID)
	case ActionCreatePoll, ActionDeletePoll, ActionListAllComments:
		return isAdmin
	default:
		return false
	}
}

// Authorize returns ErrForbidden when CanMutate denies the action.
func Authorize(actor Identity, ownerID uint, action Action) error {
	if !CanMutate(actor.UserID, actor.Role, ownerID, action) {
		return ErrForbidden
	}
	return nil
}
