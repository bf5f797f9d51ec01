package idgen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DezMoon/habit-tracker/internal/core/domain"
)

var _ domain.IDGenerator = UUIDGenerator{}

func TestUUIDGenerator_Generate(t *testing.T) {
	gen := NewUUIDGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gen.Generate()

		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())

		assert.False(t, seen[id], "Duplicate id generated")
		seen[id] = true
	}
}
