package files

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save("u1.png", strings.NewReader("picture bytes")))

	f, err := s.Open("u1.png")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "picture bytes", string(data))
}

func TestLocalStorageOpenMissing(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Open("nope.png")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorageRejectsUnsafeNames(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../secret", "a/../../b.png", "sub/dir.png", "..\\win.png"} {
		err := s.Save(name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)

		_, err = s.Open(name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}
