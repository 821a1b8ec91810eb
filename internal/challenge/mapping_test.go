package challenge

import (
	"testing"

	"github.com/marcus/t45/internal/models"
	"github.com/marcus/t45/internal/remote"
)

func TestRowToProgressRoundTrip(t *testing.T) {
	glasses := 6
	minutes := 420
	notes := "podcast on habits"
	row := remote.DailyTask{
		ID: "dt_1", ChallengeID: "ch_1", Date: "2024-01-10", DayNumber: 4,
		MindfulnessCompleted: true, MindfulnessValue: &minutes,
		ReadingCompleted: true, ReadingNotes: &notes,
		WaterConsumed: false, WaterGlasses: &glasses,
		DietFollowed: true, WorkoutCompleted: false, DigitalDetox: true,
	}

	day := rowToProgress(row)
	if day.Date != "2024-01-10" || day.Day != 4 {
		t.Errorf("record fields: %+v", day)
	}
	if day.Completed {
		t.Error("not all tasks completed; day must not be completed")
	}
	if len(day.Tasks) != 6 {
		t.Fatalf("tasks = %d, want 6", len(day.Tasks))
	}

	back := progressToRow(day)
	if back.Date != row.Date || back.DayNumber != row.DayNumber {
		t.Errorf("round trip record fields: %+v", back)
	}
	if back.MindfulnessValue == nil || *back.MindfulnessValue != minutes {
		t.Errorf("mindfulness_value = %v", back.MindfulnessValue)
	}
	if back.ReadingNotes == nil || *back.ReadingNotes != notes {
		t.Errorf("reading_notes = %v", back.ReadingNotes)
	}
	if back.WaterGlasses == nil || *back.WaterGlasses != glasses {
		t.Errorf("water_glasses = %v", back.WaterGlasses)
	}
	if back.MindfulnessCompleted != true || back.WaterConsumed != false ||
		back.DietFollowed != true || back.WorkoutCompleted != false || back.DigitalDetox != true {
		t.Errorf("completion flags: %+v", back)
	}
}

func TestRowToProgressAllCompleted(t *testing.T) {
	row := remote.DailyTask{
		Date: "2024-01-10", DayNumber: 1,
		MindfulnessCompleted: true, ReadingCompleted: true, WaterConsumed: true,
		DietFollowed: true, WorkoutCompleted: true, DigitalDetox: true,
	}
	day := rowToProgress(row)
	if !day.Completed {
		t.Error("all six flags set; day must be completed")
	}
}

func TestProgressToRowIgnoresUnknownOrder(t *testing.T) {
	tasks := models.DefaultTasks()
	// Reverse the order; mapping is by id, not position.
	for i, j := 0, len(tasks)-1; i < j; i, j = i+1, j-1 {
		tasks[i], tasks[j] = tasks[j], tasks[i]
	}
	tasks[len(tasks)-1].Completed = true // mindfulness after reversal
	day := models.DailyProgress{Date: "2024-01-10", Tasks: tasks, Day: 1}

	row := progressToRow(day)
	if !row.MindfulnessCompleted {
		t.Error("mapping must key on task id, not slice order")
	}
}
