package id

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsValidULID(t *testing.T) {
	v := New()
	_, err := ulid.Parse(v)
	require.NoError(t, err)
	assert.Len(t, v, 26)
}

func TestNew_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		v := New()
		assert.False(t, seen[v])
		seen[v] = true
	}
}
