package uniws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id, err := generateSocketID()
		require.NoError(t, err)
		_, dup := seen[id]
		assert.False(t, dup, id)
		seen[id] = struct{}{}
	}
}

func TestTokensAreUnique(t *testing.T) {
	tokens := newTokenSource()
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		token := tokens.next()
		_, dup := seen[token]
		assert.False(t, dup, token)
		seen[token] = struct{}{}
	}
}
