package nameregistry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "acme", Normalize("Acme LLC"))
	assert.Equal(t, "acme", Normalize("  ACME   L.L.C.  "))
	assert.Equal(t, "acme", Normalize("Acme Limited Liability Company"))
	assert.Equal(t, "blue bottle trading", Normalize("Blue  Bottle   Trading"))

	// Suffix only stripped at the end of the name
	assert.Equal(t, "llc consulting", Normalize("LLC Consulting"))
}

func TestStatic_Available(t *testing.T) {
	registry := NewStatic("Acme LLC", "Globex Corporation LLC")
	ctx := context.Background()

	available, err := registry.Available(ctx, "CA", "Fresh Start LLC")
	require.NoError(t, err)
	assert.True(t, available)

	available, err = registry.Available(ctx, "CA", "ACME L.L.C.")
	require.NoError(t, err)
	assert.False(t, available)

	// State is ignored by the static registry
	available, err = registry.Available(ctx, "NY", "acme")
	require.NoError(t, err)
	assert.False(t, available)
}
