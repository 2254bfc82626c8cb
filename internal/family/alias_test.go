package family

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAliasFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		alias := newAlias()
		assert.Regexp(t, `^[A-Z0-9]{6}$`, alias)
		seen[alias] = true
	}
	// 36^6 possibilities make frequent collisions in 1000 draws a bug
	assert.Greater(t, len(seen), 990)
}

func TestValidateAlias(t *testing.T) {
	assert.NoError(t, ValidateAlias("ABC123"))
	assert.Error(t, ValidateAlias("abc123"))
	assert.Error(t, ValidateAlias("ABC12"))
	assert.Error(t, ValidateAlias("ABC1234"))
	assert.Error(t, ValidateAlias("ABC 12"))
	assert.Error(t, ValidateAlias(""))
}
