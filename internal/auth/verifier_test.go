package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupServer(t *testing.T, status int, body interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret-key", r.URL.Query().Get("key"))

		var req lookupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.IDToken)

		w.WriteHeader(status)
		if body != nil {
			json.NewEncoder(w).Encode(body)
		}
	}))
}

func TestVerifyResolvesIdentity(t *testing.T) {
	srv := lookupServer(t, http.StatusOK, map[string]interface{}{
		"users": []map[string]string{
			{"localId": "uid-1", "email": "alice@example.com", "displayName": "Alice"},
		},
	})
	defer srv.Close()

	v := NewFirebaseVerifier(srv.URL, "secret-key")
	id, err := v.Verify(context.Background(), "firebase-token")
	require.NoError(t, err)

	assert.Equal(t, "uid-1", id.UID)
	assert.Equal(t, "alice@example.com", id.Email)
	assert.Equal(t, "Alice", id.Name)
}

func TestVerifyUpstreamUnauthorized(t *testing.T) {
	srv := lookupServer(t, http.StatusUnauthorized, nil)
	defer srv.Close()

	v := NewFirebaseVerifier(srv.URL, "secret-key")
	_, err := v.Verify(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestVerifyUpstreamForbiddenMeansReauth(t *testing.T) {
	srv := lookupServer(t, http.StatusForbidden, nil)
	defer srv.Close()

	v := NewFirebaseVerifier(srv.URL, "secret-key")
	_, err := v.Verify(context.Background(), "stale-token")
	assert.ErrorIs(t, err, ErrReauthRequired)
}

func TestVerifyEmptyUserList(t *testing.T) {
	srv := lookupServer(t, http.StatusOK, map[string]interface{}{"users": []map[string]string{}})
	defer srv.Close()

	v := NewFirebaseVerifier(srv.URL, "secret-key")
	_, err := v.Verify(context.Background(), "token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
