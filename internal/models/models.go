package models

import (
	"errors"
	"fmt"
	"strconv"
)

// ChallengeLength is the fixed length of a challenge in days.
const ChallengeLength = 45

// TaskID identifies one of the six fixed daily tasks.
type TaskID string

const (
	TaskMindfulness TaskID = "mindfulness"
	TaskGrowth      TaskID = "growth"
	TaskHydration   TaskID = "hydration"
	TaskNutrition   TaskID = "nutrition"
	TaskMovement    TaskID = "movement"
	TaskDigital     TaskID = "digital"
)

// AllTaskIDs returns the six task ids in display order.
func AllTaskIDs() []TaskID {
	return []TaskID{TaskMindfulness, TaskGrowth, TaskHydration, TaskNutrition, TaskMovement, TaskDigital}
}

// IsValidTaskID checks if an id is one of the six fixed tasks.
func IsValidTaskID(id TaskID) bool {
	switch id {
	case TaskMindfulness, TaskGrowth, TaskHydration, TaskNutrition, TaskMovement, TaskDigital:
		return true
	}
	return false
}

// TaskKind determines the legal shape of a task's value and how
// completion is derived from it.
type TaskKind string

const (
	KindCheckbox TaskKind = "checkbox"
	KindCounter  TaskKind = "counter"
	KindTimer    TaskKind = "timer"
	KindText     TaskKind = "text"
)

// TaskValue is a task's progress measure: a number for counter/timer
// tasks, a string for text tasks. It serializes as a bare JSON number
// or string.
type TaskValue struct {
	Number int
	Text   string
	IsText bool
}

// NumberValue returns a numeric task value.
func NumberValue(n int) *TaskValue {
	return &TaskValue{Number: n}
}

// TextValue returns a string task value.
func TextValue(s string) *TaskValue {
	return &TaskValue{Text: s, IsText: true}
}

// MarshalJSON emits the value as a bare number or string.
func (v TaskValue) MarshalJSON() ([]byte, error) {
	if v.IsText {
		return []byte(strconv.Quote(v.Text)), nil
	}
	return []byte(strconv.Itoa(v.Number)), nil
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (v *TaskValue) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty task value")
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("parse text value: %w", err)
		}
		*v = TaskValue{Text: s, IsText: true}
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("parse numeric value: %w", err)
	}
	*v = TaskValue{Number: n}
	return nil
}

// Task is one of the six daily tasks with its completion state.
type Task struct {
	ID          TaskID     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Kind        TaskKind   `json:"kind"`
	Completed   bool       `json:"completed"`
	Value       *TaskValue `json:"value,omitempty"`
	MaxValue    int        `json:"maxValue,omitempty"`
}

// NumberOr returns the task's numeric value, or def if absent or textual.
func (t Task) NumberOr(def int) int {
	if t.Value == nil || t.Value.IsText {
		return def
	}
	return t.Value.Number
}

// TextOr returns the task's text value, or def if absent or numeric.
func (t Task) TextOr(def string) string {
	if t.Value == nil || !t.Value.IsText {
		return def
	}
	return t.Value.Text
}

// DeriveCompleted derives completion from the task's value per its kind:
// counter reaches MaxValue, timer recorded any elapsed time, text is
// non-empty. Checkbox tasks keep their explicit flag.
func (t Task) DeriveCompleted() bool {
	switch t.Kind {
	case KindCounter:
		return t.MaxValue > 0 && t.NumberOr(0) >= t.MaxValue
	case KindTimer:
		return t.NumberOr(0) > 0
	case KindText:
		return t.TextOr("") != ""
	default:
		return t.Completed
	}
}

// DailyProgress is the six tasks' state for one calendar date.
// Day is the challenge-relative day number assigned when the record was
// created; it is immutable history, never recomputed.
type DailyProgress struct {
	Date      string `json:"date"`
	Tasks     []Task `json:"tasks"`
	Completed bool   `json:"completed"`
	Day       int    `json:"day"`
}

// ChallengeState is the whole challenge state for one identity.
// StreakDays is a cache, always recomputable from DailyProgress.
// ChallengeID is non-empty iff the state is mirrored remotely.
type ChallengeState struct {
	IsStarted     bool                     `json:"isStarted"`
	CurrentDay    int                      `json:"currentDay"`
	StartDate     string                   `json:"startDate,omitempty"`
	DailyProgress map[string]DailyProgress `json:"dailyProgress"`
	ChallengeID   string                   `json:"challengeId,omitempty"`
	StreakDays    int                      `json:"streakDays"`
}

// InitialState returns the unstarted challenge state.
func InitialState() ChallengeState {
	return ChallengeState{
		CurrentDay:    1,
		DailyProgress: make(map[string]DailyProgress),
	}
}

// ErrInvalidTaskSet indicates a task list that does not cover exactly the
// six fixed task ids. It signals a caller bug and must not be suppressed.
var ErrInvalidTaskSet = errors.New("invalid task set")

// ValidateTasks checks that tasks contains each of the six fixed ids
// exactly once and nothing else.
func ValidateTasks(tasks []Task) error {
	seen := make(map[TaskID]bool, len(tasks))
	for _, t := range tasks {
		if !IsValidTaskID(t.ID) {
			return fmt.Errorf("%w: unknown task %q", ErrInvalidTaskSet, t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate task %q", ErrInvalidTaskSet, t.ID)
		}
		seen[t.ID] = true
	}
	for _, id := range AllTaskIDs() {
		if !seen[id] {
			return fmt.Errorf("%w: missing task %q", ErrInvalidTaskSet, id)
		}
	}
	return nil
}

// AllCompleted reports whether every task in the list is completed.
func AllCompleted(tasks []Task) bool {
	for _, t := range tasks {
		if !t.Completed {
			return false
		}
	}
	return true
}

// DefaultTasks returns the fixed six-task catalog with no progress recorded.
func DefaultTasks() []Task {
	return []Task{
		{
			ID:          TaskMindfulness,
			Title:       "Mindfulness Session",
			Description: "Take a few minutes to meditate and clear your mind.",
			Kind:        KindTimer,
			Value:       NumberValue(0),
		},
		{
			ID:          TaskGrowth,
			Title:       "Growth Content",
			Description: "Read or listen to content that helps you grow.",
			Kind:        KindText,
			Value:       TextValue(""),
		},
		{
			ID:          TaskHydration,
			Title:       "Hydration",
			Description: "Track your water intake throughout the day.",
			Kind:        KindCounter,
			Value:       NumberValue(0),
			MaxValue:    8,
		},
		{
			ID:          TaskNutrition,
			Title:       "Nutrition Check",
			Description: "How are your eating habits today?",
			Kind:        KindCheckbox,
		},
		{
			ID:          TaskMovement,
			Title:       "Movement & Outdoors",
			Description: "30 minutes of movement with at least 15 minutes outdoors.",
			Kind:        KindCheckbox,
		},
		{
			ID:          TaskDigital,
			Title:       "Digital Detox",
			Description: "Take a break from screens and disconnect.",
			Kind:        KindCheckbox,
		},
	}
}
