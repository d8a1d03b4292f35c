package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteVerifier(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Write([]byte(`{"active":true,"user_id":"auth0|42","email":"taro@example.jp"}`))
		case "Bearer inactive":
			w.Write([]byte(`{"active":false}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer ts.Close()

	v := NewRemoteVerifier(ts.URL)
	ctx := context.Background()

	who, err := v.Verify(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "auth0|42", who.ID)
	assert.Equal(t, "taro@example.jp", who.Email)

	_, err = v.Verify(ctx, "inactive")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(ctx, "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRemoteVerifierUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := NewRemoteVerifier(ts.URL).Verify(context.Background(), "token")
	assert.ErrorIs(t, err, ErrUnverifiable)

	_, err = NewRemoteVerifier("").Verify(context.Background(), "token")
	assert.ErrorIs(t, err, ErrUnverifiable)
}

func TestHeaderVerifier(t *testing.T) {
	v := NewHeaderVerifier()

	who, err := v.Verify(context.Background(), "u1:taro@example.jp")
	require.NoError(t, err)
	assert.Equal(t, AuthenticatedUser{ID: "u1", Email: "taro@example.jp"}, who)

	who, err = v.Verify(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", who.ID)

	_, err = v.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
