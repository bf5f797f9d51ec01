package cli

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/DezMoon/habit-tracker/internal/core/domain"
)

func TestPrintHabits_Golden(t *testing.T) {
	tests := []struct {
		name   string
		habits []domain.Habit
	}{
		{
			name: "habit_list",
			habits: []domain.Habit{
				{ID: "h-1", Name: "Drink water", Category: domain.CategoryHealth, Status: domain.StatusCompleted},
				{ID: "h-2", Name: "Read", Category: domain.CategoryStudy, Status: domain.StatusPending},
			},
		},
		{
			name:   "habit_list_empty",
			habits: nil,
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, printHabits(&buf, tt.habits))
			g.Assert(t, tt.name, buf.Bytes())
		})
	}
}
