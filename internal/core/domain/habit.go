package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCategory = errors.New("invalid habit category (must be Health, Study, Workout or Other)")
	ErrInvalidStatus   = errors.New("invalid habit status (must be pending or completed)")
)

type HabitCategory string

const (
	CategoryHealth  HabitCategory = "Health"
	CategoryStudy   HabitCategory = "Study"
	CategoryWorkout HabitCategory = "Workout"
	CategoryOther   HabitCategory = "Other"
)

type HabitStatus string

const (
	StatusPending   HabitStatus = "pending"
	StatusCompleted HabitStatus = "completed"
)

var categories = []HabitCategory{CategoryHealth, CategoryStudy, CategoryWorkout, CategoryOther}

func Categories() []HabitCategory {
	out := make([]HabitCategory, len(categories))
	copy(out, categories)
	return out
}

func (c HabitCategory) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseHabitCategory accepts any casing of a known category name.
func ParseHabitCategory(raw string) (HabitCategory, error) {
	trimmed := strings.TrimSpace(raw)
	for _, known := range categories {
		if strings.EqualFold(trimmed, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
}

func (s HabitStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

type Habit struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Category HabitCategory `json:"category"`
	Status   HabitStatus   `json:"status"`
}

func NewHabit(id, name string, category HabitCategory) Habit {
	return Habit{
		ID:       id,
		Name:     name,
		Category: category,
		Status:   StatusPending,
	}
}

func (h *Habit) Rename(name string) {
	h.Name = name
}

func (h *Habit) Toggle() {
	if h.Status == StatusCompleted {
		h.Status = StatusPending
		return
	}
	h.Status = StatusCompleted
}

func (h *Habit) Reset() {
	h.Status = StatusPending
}

func (h Habit) IsCompleted() bool {
	return h.Status == StatusCompleted
}
