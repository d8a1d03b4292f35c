package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// RemoteVerifier asks the identity provider's introspection endpoint whether a
// bearer token is valid and who it belongs to.
type RemoteVerifier struct {
	endpoint string
	client   *http.Client
}

func NewRemoteVerifier(endpoint string) *RemoteVerifier {
	return &RemoteVerifier{
		endpoint: strings.TrimSpace(endpoint),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type introspectionResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (v *RemoteVerifier) Verify(ctx context.Context, bearerToken string) (AuthenticatedUser, error) {
	token := strings.TrimSpace(bearerToken)
	if token == "" {
		return AuthenticatedUser{}, ErrInvalidToken
	}
	if v.endpoint == "" {
		return AuthenticatedUser{}, ErrUnverifiable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint, nil)
	if err != nil {
		return AuthenticatedUser{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return AuthenticatedUser{}, ErrUnverifiable
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return AuthenticatedUser{}, ErrInvalidToken
	default:
		return AuthenticatedUser{}, ErrUnverifiable
	}

	var body introspectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return AuthenticatedUser{}, ErrUnverifiable
	}
	if !body.Active || strings.TrimSpace(body.UserID) == "" {
		return AuthenticatedUser{}, ErrInvalidToken
	}

	return AuthenticatedUser{ID: body.UserID, Email: body.Email}, nil
}
