package files

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noAuth(next http.Handler) http.Handler {
	return next
}

func TestServeSetsContentType(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Save("alice.png", strings.NewReader("png bytes")))
	require.NoError(t, s.Save("bob.jpg", strings.NewReader("jpg bytes")))

	r := chi.NewRouter()
	r.Mount("/", NewHandler(s).Routes(noAuth))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile-pics/alice.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png bytes", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile-pics/bob.jpg", nil))
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
}

func TestServeMissingFile(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/", NewHandler(s).Routes(noAuth))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile-pics/nope.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
