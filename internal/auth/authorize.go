package auth

import (
	"errors"

	"foodshare/internal/models"
)

var ErrForbidden = errors.New("forbidden access")

// Authorize allows the request only when the caller's email claim equals
// owner. The comparison is exact: no case folding, no trimming. present
// tells whether the request named an owner at all; a token without an email
// claim matches only a request that names none. A non-string email claim
// matches nothing.
func Authorize(identity *models.Identity, owner string, present bool) error {
	if identity == nil {
		return ErrForbidden
	}

	if identity.HasEmail {
		if present && identity.Email == owner {
			return nil
		}
		return ErrForbidden
	}

	if _, ok := identity.Claims["email"]; !ok && !present {
		return nil
	}
	return ErrForbidden
}
