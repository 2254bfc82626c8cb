package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParser struct {
	subject string
	err     error
}

func (p fakeParser) ParseAccess(token string) (string, error) {
	return p.subject, p.err
}

func TestAuthPutsUserIDOnContext(t *testing.T) {
	var got string
	handler := Auth(fakeParser{subject: "uid-1"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserID(r.Context())
		require.True(t, ok)
		got = id
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uid-1", got)
}

func TestAuthRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		header string
		parser fakeParser
	}{
		{name: "missing header", header: "", parser: fakeParser{subject: "uid-1"}},
		{name: "not bearer", header: "Basic abc", parser: fakeParser{subject: "uid-1"}},
		{name: "invalid token", header: "Bearer bad", parser: fakeParser{err: errors.New("invalid")}},
		{name: "empty subject", header: "Bearer tok", parser: fakeParser{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := Auth(tt.parser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called)
		})
	}
}

func TestGetUserIDMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUserID(req.Context())
	assert.False(t, ok)
}
