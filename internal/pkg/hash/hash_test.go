package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	digest, err := Hash("482913")
	require.NoError(t, err)

	assert.True(t, Compare("482913", digest))
	assert.False(t, Compare("482914", digest))
	assert.False(t, Compare("", digest))
}

func TestHash_FreshSaltPerDigest(t *testing.T) {
	a, err := Hash("same-input")
	require.NoError(t, err)
	b, err := Hash("same-input")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, Compare("same-input", a))
	assert.True(t, Compare("same-input", b))
}

func TestCompare_GarbageDigest(t *testing.T) {
	assert.False(t, Compare("anything", "not-a-bcrypt-digest"))
}
