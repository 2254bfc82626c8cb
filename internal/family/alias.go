package family

import (
	"math/rand"
	"strings"
)

const (
	aliasLength   = 6
	aliasCharset  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	aliasAttempts = 5
)

// newAlias generates a random join code. At 6 characters over a 36-symbol
// alphabet the collision probability per attempt stays negligible for any
// realistic family count; creation retries a bounded number of times on a
// database uniqueness conflict.
func newAlias() string {
	var b strings.Builder
	b.Grow(aliasLength)
	for i := 0; i < aliasLength; i++ {
		b.WriteByte(aliasCharset[rand.Intn(len(aliasCharset))])
	}
	return b.String()
}
