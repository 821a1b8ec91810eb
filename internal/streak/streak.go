// Package streak derives the consecutive-completed-days count from a
// date-indexed progress map. The calculation is pure: for a given map and
// reference date it always returns the same value.
package streak

import (
	"github.com/marcus/t45/internal/dateutil"
	"github.com/marcus/t45/internal/models"
)

// Compute walks backward from today one calendar day at a time, counting
// consecutive days whose record is completed. The walk stops at the first
// day that is missing or incomplete, and is capped at the challenge
// length. Today having no record yet does not break the streak by itself;
// the walk then starts at yesterday.
func Compute(progress map[string]models.DailyProgress, today string) int {
	date := today
	if _, ok := progress[date]; !ok {
		prev, err := dateutil.AddDays(date, -1)
		if err != nil {
			return 0
		}
		date = prev
	}

	count := 0
	for i := 0; i < models.ChallengeLength; i++ {
		day, ok := progress[date]
		if !ok || !day.Completed {
			break
		}
		count++
		prev, err := dateutil.AddDays(date, -1)
		if err != nil {
			break
		}
		date = prev
	}
	return count
}
