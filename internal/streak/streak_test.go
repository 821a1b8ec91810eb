package streak

import (
	"testing"

	"github.com/marcus/t45/internal/dateutil"
	"github.com/marcus/t45/internal/models"
)

func day(date string, completed bool) models.DailyProgress {
	return models.DailyProgress{Date: date, Completed: completed, Day: 1}
}

func TestComputeEmpty(t *testing.T) {
	if got := Compute(nil, "2024-01-10"); got != 0 {
		t.Errorf("empty progress: got %d, want 0", got)
	}
}

func TestComputeConsecutiveWithGapBefore(t *testing.T) {
	progress := map[string]models.DailyProgress{
		"2024-01-10": day("2024-01-10", true),
		"2024-01-09": day("2024-01-09", true),
		"2024-01-08": day("2024-01-08", false),
	}
	if got := Compute(progress, "2024-01-10"); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestComputeTodayMissingDoesNotBreak(t *testing.T) {
	progress := map[string]models.DailyProgress{
		"2024-01-09": day("2024-01-09", true),
		"2024-01-08": day("2024-01-08", true),
	}
	if got := Compute(progress, "2024-01-10"); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestComputeTodayIncompleteBreaks(t *testing.T) {
	progress := map[string]models.DailyProgress{
		"2024-01-10": day("2024-01-10", false),
		"2024-01-09": day("2024-01-09", true),
	}
	if got := Compute(progress, "2024-01-10"); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestComputeYesterdayGapBreaks(t *testing.T) {
	progress := map[string]models.DailyProgress{
		"2024-01-10": day("2024-01-10", true),
		"2024-01-08": day("2024-01-08", true),
	}
	if got := Compute(progress, "2024-01-10"); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}

func TestComputeCapsAtChallengeLength(t *testing.T) {
	progress := make(map[string]models.DailyProgress)
	date := "2024-03-01"
	for i := 0; i < models.ChallengeLength+10; i++ {
		progress[date] = day(date, true)
		prev, err := dateutil.AddDays(date, -1)
		if err != nil {
			t.Fatal(err)
		}
		date = prev
	}
	if got := Compute(progress, "2024-03-01"); got != models.ChallengeLength {
		t.Errorf("got %d, want %d", got, models.ChallengeLength)
	}
}

func TestComputeCapsWhenTodayMissing(t *testing.T) {
	progress := make(map[string]models.DailyProgress)
	date := "2024-02-29"
	for i := 0; i < models.ChallengeLength+10; i++ {
		progress[date] = day(date, true)
		prev, err := dateutil.AddDays(date, -1)
		if err != nil {
			t.Fatal(err)
		}
		date = prev
	}
	if got := Compute(progress, "2024-03-01"); got != models.ChallengeLength {
		t.Errorf("got %d, want %d", got, models.ChallengeLength)
	}
}

func TestComputePure(t *testing.T) {
	progress := map[string]models.DailyProgress{
		"2024-01-10": day("2024-01-10", true),
		"2024-01-09": day("2024-01-09", true),
	}
	a := Compute(progress, "2024-01-10")
	b := Compute(progress, "2024-01-10")
	if a != b {
		t.Errorf("not pure: %d != %d", a, b)
	}
}

func TestComputeCrossesMonthBoundary(t *testing.T) {
	progress := map[string]models.DailyProgress{
		"2024-03-01": day("2024-03-01", true),
		"2024-02-29": day("2024-02-29", true),
		"2024-02-28": day("2024-02-28", true),
	}
	if got := Compute(progress, "2024-03-01"); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
}
