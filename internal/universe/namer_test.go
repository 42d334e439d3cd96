package universe

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellogreencow/burch/internal/contracts"
)

func neverTaken(string) bool { return false }

func TestNamer_UniqueAcrossBatch(t *testing.T) {
	namer := NewNamer(NamerConfig{}, rand.New(rand.NewSource(7)), neverTaken)

	reserved := make(map[string]bool)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		name, key, err := namer.Next(reserved)
		require.NoError(t, err)
		require.NotEmpty(t, name)
		assert.False(t, seen[key], "duplicate name %q", name)
		seen[key] = true
		reserved[key] = true
	}
}

func TestNamer_QualifierOnCollision(t *testing.T) {
	cfg := NamerConfig{
		Adjectives: []string{"Alpine"},
		Nouns:      []string{"Goods"},
		Qualifiers: []string{"North", "South"},
	}
	namer := NewNamer(cfg, rand.New(rand.NewSource(1)), neverTaken)

	reserved := make(map[string]bool)

	name, key, err := namer.Next(reserved)
	require.NoError(t, err)
	assert.Equal(t, "Alpine Goods", name)
	reserved[key] = true

	name, key, err = namer.Next(reserved)
	require.NoError(t, err)
	assert.Equal(t, "Alpine Goods North", name)
	reserved[key] = true

	name, key, err = namer.Next(reserved)
	require.NoError(t, err)
	assert.Equal(t, "Alpine Goods South", name)
	reserved[key] = true
}

func TestNamer_ExhaustionFailsWithSeedError(t *testing.T) {
	cfg := NamerConfig{
		Adjectives:  []string{"Alpine"},
		Nouns:       []string{"Goods"},
		Qualifiers:  []string{"North"},
		MaxAttempts: 2,
	}
	namer := NewNamer(cfg, rand.New(rand.NewSource(1)), neverTaken)

	reserved := make(map[string]bool)
	for i := 0; i < 2; i++ {
		_, key, err := namer.Next(reserved)
		require.NoError(t, err)
		reserved[key] = true
	}

	_, _, err := namer.Next(reserved)
	var seedErr *contracts.SeedError
	require.ErrorAs(t, err, &seedErr)
	assert.Contains(t, seedErr.Reason, "exhausted")
}

func TestNamer_RespectsStoreCheck(t *testing.T) {
	cfg := NamerConfig{
		Adjectives: []string{"Alpine"},
		Nouns:      []string{"Goods"},
		Qualifiers: []string{"North"},
	}
	taken := func(key string) bool { return key == EntityKeyFromName("Alpine Goods") }
	namer := NewNamer(cfg, rand.New(rand.NewSource(1)), taken)

	name, _, err := namer.Next(map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, "Alpine Goods North", name, "store collisions must trigger qualifier mutation")
}
