// Package identity abstracts the external identity provider. The service only
// needs an opaque user id and a token-validity oracle; verification internals
// live with the provider.
package identity

import (
	"context"
	"errors"
)

// AuthenticatedUser is the typed current-user value passed explicitly through
// the call chain instead of ambient request state.
type AuthenticatedUser struct {
	ID    string
	Email string
}

type Verifier interface {
	Verify(ctx context.Context, bearerToken string) (AuthenticatedUser, error)
}

var (
	ErrInvalidToken = errors.New("invalid_token")
	ErrUnverifiable = errors.New("identity_provider_unavailable")
)
