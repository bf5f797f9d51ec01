package services

import (
	"sort"

	"github.com/DezMoon/habit-tracker/internal/core/domain"
)

// CurrentStreak counts consecutive recorded days ending at today, or at yesterday when
// today has not been recorded yet.
func CurrentStreak(dates map[domain.Day]struct{}, today domain.Day) int {
	if len(dates) == 0 {
		return 0
	}

	check := today
	if _, ok := dates[check]; !ok {
		check = check.Prev()
	}

	count := 0
	for {
		if _, ok := dates[check]; !ok {
			break
		}
		count++
		check = check.Prev()
	}

	return count
}

// LongestStreak is the longest run of consecutive recorded days anywhere in the set.
func LongestStreak(dates map[domain.Day]struct{}) int {
	if len(dates) == 0 {
		return 0
	}

	sorted := sortedDays(dates)

	longest := 1
	run := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].AddDays(1) == sorted[i] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	return longest
}

func sortedDays(dates map[domain.Day]struct{}) []domain.Day {
	out := make([]domain.Day, 0, len(dates))
	for d := range dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i] < out[j]
	})
	return out
}
