package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinEntriesAreComplete(t *testing.T) {
	require.NotEmpty(t, Builtin)

	seen := make(map[string]bool)
	for _, ex := range Builtin {
		assert.NotEmpty(t, ex.Name)
		assert.NotEmpty(t, ex.Equipment, "equipment missing for %s", ex.Name)
		assert.NotEmpty(t, ex.MuscleGroup, "muscle group missing for %s", ex.Name)
		assert.False(t, seen[ex.Name], "duplicate catalog entry %s", ex.Name)
		seen[ex.Name] = true
	}
}

func TestFindByNameIsCaseInsensitive(t *testing.T) {
	ex := FindByName("bench press")
	require.NotNil(t, ex)
	assert.Equal(t, "Bench Press", ex.Name)

	assert.Nil(t, FindByName("Underwater Basket Weaving"))
}
