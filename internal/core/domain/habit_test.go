package domain_test

import (
	"testing"

	"github.com/DezMoon/habit-tracker/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHabit(t *testing.T) {
	t.Run("Success: New habits start pending", func(t *testing.T) {
		h := domain.NewHabit("id-1", "Drink Water", domain.CategoryHealth)

		assert.Equal(t, "id-1", h.ID)
		assert.Equal(t, "Drink Water", h.Name)
		assert.Equal(t, domain.CategoryHealth, h.Category)
		assert.Equal(t, domain.StatusPending, h.Status)
		assert.False(t, h.IsCompleted())
	})

	t.Run("Success: Empty name is accepted", func(t *testing.T) {
		h := domain.NewHabit("id-2", "", domain.CategoryOther)
		assert.Equal(t, "", h.Name)
	})
}

func TestHabit_Toggle(t *testing.T) {
	h := domain.NewHabit("id-1", "Read", domain.CategoryStudy)

	h.Toggle()
	assert.Equal(t, domain.StatusCompleted, h.Status)

	h.Toggle()
	assert.Equal(t, domain.StatusPending, h.Status, "Toggling twice must restore the original status")
}

func TestHabit_Reset(t *testing.T) {
	h := domain.NewHabit("id-1", "Run", domain.CategoryWorkout)
	h.Toggle()

	h.Reset()
	assert.Equal(t, domain.StatusPending, h.Status)

	h.Reset()
	assert.Equal(t, domain.StatusPending, h.Status)
}

func TestParseHabitCategory(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    domain.HabitCategory
		wantErr bool
	}{
		{name: "Exact match", raw: "Health", want: domain.CategoryHealth},
		{name: "Lower case", raw: "study", want: domain.CategoryStudy},
		{name: "Surrounding spaces", raw: "  WORKOUT ", want: domain.CategoryWorkout},
		{name: "Other", raw: "Other", want: domain.CategoryOther},
		{name: "Unknown", raw: "Finance", wantErr: true},
		{name: "Empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseHabitCategory(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidCategory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestCategories_ReturnsCopy(t *testing.T) {
	list := domain.Categories()
	require.Len(t, list, 4)

	list[0] = "Mutated"
	assert.Equal(t, domain.CategoryHealth, domain.Categories()[0])
}

func TestHabitStatus_Valid(t *testing.T) {
	assert.True(t, domain.StatusPending.Valid())
	assert.True(t, domain.StatusCompleted.Valid())
	assert.False(t, domain.HabitStatus("done").Valid())
}
