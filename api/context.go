package api

import (
	"context"

	"github.com/google/uuid"
)

type keyType string

const (
	identityKey keyType = "identity"
)

// Identity is the authenticated caller as the core sees it: an opaque id plus
// the username, with anonymity expressed as the zero value.
type Identity struct {
	UserID   uuid.UUID
	Username string
}

// IsAuthenticated reports whether the identity belongs to a logged-in user.
func (i Identity) IsAuthenticated() bool {
	return i.UserID != uuid.Nil
}

// ctxWithIdentity adds the caller's identity to the context
func ctxWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// identityFromCtx retrieves the caller's identity; absent means anonymous.
func identityFromCtx(ctx context.Context) Identity {
	if value := ctx.Value(identityKey); value != nil {
		if identity, ok := value.(Identity); ok {
			return identity
		}
	}
	return Identity{}
}
