package challenge

import (
	"github.com/marcus/t45/internal/models"
	"github.com/marcus/t45/internal/remote"
)

// The six fixed task ids map onto named field pairs in the daily_tasks
// row. The mapping is part of the wire contract; field names are spelled
// out, never derived from task ids.

// rowToProgress maps a remote day row back into the fixed six-task shape.
// Nullable remote fields default to false/0/empty string here, at the
// boundary, so nothing downstream ever sees a null.
func rowToProgress(row remote.DailyTask) models.DailyProgress {
	tasks := models.DefaultTasks()
	for i := range tasks {
		switch tasks[i].ID {
		case models.TaskMindfulness:
			tasks[i].Completed = row.MindfulnessCompleted
			tasks[i].Value = models.NumberValue(intOr(row.MindfulnessValue, 0))
		case models.TaskGrowth:
			tasks[i].Completed = row.ReadingCompleted
			tasks[i].Value = models.TextValue(strOr(row.ReadingNotes, ""))
		case models.TaskHydration:
			tasks[i].Completed = row.WaterConsumed
			tasks[i].Value = models.NumberValue(intOr(row.WaterGlasses, 0))
		case models.TaskNutrition:
			tasks[i].Completed = row.DietFollowed
		case models.TaskMovement:
			tasks[i].Completed = row.WorkoutCompleted
		case models.TaskDigital:
			tasks[i].Completed = row.DigitalDetox
		}
	}
	return models.DailyProgress{
		Date:      row.Date,
		Tasks:     tasks,
		Completed: models.AllCompleted(tasks),
		Day:       row.DayNumber,
	}
}

// progressToRow maps one local day record onto the remote row shape.
func progressToRow(day models.DailyProgress) remote.DailyTaskInput {
	row := remote.DailyTaskInput{
		Date:      day.Date,
		DayNumber: day.Day,
	}
	for _, t := range day.Tasks {
		switch t.ID {
		case models.TaskMindfulness:
			row.MindfulnessCompleted = t.Completed
			row.MindfulnessValue = intPtr(t.NumberOr(0))
		case models.TaskGrowth:
			row.ReadingCompleted = t.Completed
			row.ReadingNotes = strPtr(t.TextOr(""))
		case models.TaskHydration:
			row.WaterConsumed = t.Completed
			row.WaterGlasses = intPtr(t.NumberOr(0))
		case models.TaskNutrition:
			row.DietFollowed = t.Completed
		case models.TaskMovement:
			row.WorkoutCompleted = t.Completed
		case models.TaskDigital:
			row.DigitalDetox = t.Completed
		}
	}
	return row
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func strOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }
