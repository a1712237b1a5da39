// internal/services/actor.go
package services

import "github.com/Mohit-R-04/FarmToMarket/internal/models"

// Actor is the authenticated caller as asserted by the identity provider.
type Actor struct {
	ID   string
	Role models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func (a Actor) require(role models.Role) error {
	if a.Role != role && !a.IsAdmin() {
		return forbidden("requires role %s", role)
	}
	return nil
}
