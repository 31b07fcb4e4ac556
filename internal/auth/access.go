package auth

import (
	"go-todo-list/internal/model"
)

func HasRole(identity model.Identity, roles ...model.Role) bool {
	for _, role := range roles {
		if identity.Role == role {
			return true
		}
	}

	return false
}

// CanModify is the single ownership predicate for to-do mutations: admins may
// act on any item, everyone else only on their own.
func CanModify(actor model.Identity, ownerID string) bool {
	if actor.IsAdmin() {
		return true
	}

	return actor.ID != "" && actor.ID == ownerID
}

func AuthorizeOwner(actor model.Identity, ownerID string) error {
	if !CanModify(actor, ownerID) {
		return model.ErrForbidden
	}

	return nil
}
