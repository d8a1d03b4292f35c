package identity

import (
	"context"
	"strings"
)

// HeaderVerifier trusts a "<user-id>:<email>" token verbatim. Development
// only; the config layer refuses to select it in production.
type HeaderVerifier struct{}

func NewHeaderVerifier() *HeaderVerifier {
	return &HeaderVerifier{}
}

func (v *HeaderVerifier) Verify(_ context.Context, bearerToken string) (AuthenticatedUser, error) {
	token := strings.TrimSpace(bearerToken)
	if token == "" {
		return AuthenticatedUser{}, ErrInvalidToken
	}

	parts := strings.SplitN(token, ":", 2)
	user := AuthenticatedUser{ID: strings.TrimSpace(parts[0])}
	if user.ID == "" {
		return AuthenticatedUser{}, ErrInvalidToken
	}
	if len(parts) == 2 {
		user.Email = strings.TrimSpace(parts[1])
	}
	return user, nil
}
