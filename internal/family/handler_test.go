package family

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdoshi/famledger/internal/user"
	"github.com/jdoshi/famledger/pkg/middleware"
)

func newHandlerFixture(t *testing.T) *Handler {
	t.Helper()

	users := user.NewMemoryStore()
	_, err := users.Create(context.Background(), &user.User{
		ID:        "alice",
		Email:     "alice@example.com",
		AliasName: "alice1234",
	})
	require.NoError(t, err)

	store := NewMemoryStore(users)
	return NewHandler(NewService(store, users, &recordingDispatcher{}))
}

func TestLeaveWithoutFamilyIsBadRequest(t *testing.T) {
	h := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/leave", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "alice"))
	rec := httptest.NewRecorder()
	h.Leave(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetailsWithoutFamilyIsNotFound(t *testing.T) {
	h := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/details", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "alice"))
	rec := httptest.NewRecorder()
	h.Details(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
