package auth

import (
	"context"

	"foodshare/internal/models"
)

type identityKey struct{}

// SetIdentity stores the authenticated identity in the context.
func SetIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns nil for unauthenticated requests.
func IdentityFromContext(ctx context.Context) *models.Identity {
	if v, ok := ctx.Value(identityKey{}).(*models.Identity); ok {
		return v
	}
	return nil
}
