package challenge

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/marcus/t45/internal/models"
	"github.com/marcus/t45/internal/remote"
)

func TestStartLocalOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.engine.SetIdentity(ctx, nil); err != nil {
		t.Fatal(err)
	}

	if err := env.engine.Start(ctx); err != nil {
		t.Fatal(err)
	}

	state := env.engine.State()
	if !state.IsStarted || state.CurrentDay != 1 || state.StartDate != "2024-01-10" {
		t.Errorf("start state: %+v", state)
	}
	if state.ChallengeID != "" {
		t.Error("local-only start must not have a challenge id")
	}
	if state.StreakDays != 0 || len(state.DailyProgress) != 0 {
		t.Errorf("fresh challenge must be empty: %+v", state)
	}

	onDisk, ok, err := env.snap.Load()
	if err != nil || !ok {
		t.Fatalf("snapshot: ok=%v err=%v", ok, err)
	}
	if !onDisk.IsStarted {
		t.Error("start must persist locally")
	}
}

func TestStartAbandonsExistingActiveRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	repo := newFakeRepo()
	old := repo.seedActive("2024-01-01", 9)
	if err := env.engine.SetIdentity(ctx, repo); err != nil {
		t.Fatal(err)
	}

	if err := env.engine.Start(ctx); err != nil {
		t.Fatal(err)
	}

	if repo.failCalls != 1 {
		t.Errorf("abandoned %d records, want exactly 1", repo.failCalls)
	}
	if repo.createCalls != 1 {
		t.Errorf("created %d records, want exactly 1", repo.createCalls)
	}
	repo.mu.Lock()
	if repo.challenges[old.ID].Status != remote.StatusFailed {
		t.Errorf("old record status = %s, want failed", repo.challenges[old.ID].Status)
	}
	repo.mu.Unlock()

	state := env.engine.State()
	if state.ChallengeID == "" || state.ChallengeID == old.ID {
		t.Errorf("challenge id = %q", state.ChallengeID)
	}
}

func TestStartRemoteFailureIsNonFatal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	repo := newFakeRepo()
	if err := env.engine.SetIdentity(ctx, repo); err != nil {
		t.Fatal(err)
	}
	repo.createErr = errors.New("boom")

	if err := env.engine.Start(ctx); err != nil {
		t.Fatalf("remote failure must not fail start: %v", err)
	}
	state := env.engine.State()
	if !state.IsStarted {
		t.Error("local start must apply")
	}
	if state.ChallengeID != "" {
		t.Error("challenge id must stay empty when remote create fails")
	}
	if len(*env.warns) == 0 {
		t.Error("expected non-fatal warning")
	}
}

func TestSaveRejectsInvalidTaskSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.engine.SetIdentity(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if err := env.engine.Start(ctx); err != nil {
		t.Fatal(err)
	}

	short := completedTasks()[:5]
	_, err := env.engine.SaveDailyProgress(ctx, "2024-01-10", short)
	if !errors.Is(err, models.ErrInvalidTaskSet) {
		t.Fatalf("err = %v, want ErrInvalidTaskSet", err)
	}

	dup := completedTasks()
	dup[1] = dup[0]
	_, err = env.engine.SaveDailyProgress(ctx, "2024-01-10", dup)
	if !errors.Is(err, models.ErrInvalidTaskSet) {
		t.Fatalf("err = %v, want ErrInvalidTaskSet", err)
	}

	if len(env.engine.State().DailyProgress) != 0 {
		t.Error("invalid save must not touch state")
	}
}

func TestSaveFirstDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.engine.SetIdentity(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if err := env.engine.Start(ctx); err != nil {
		t.Fatal(err)
	}

	outcome, err := env.engine.SaveDailyProgress(ctx, "2024-01-10", completedTasks())
	if err != nil {
		t.Fatal(err)
	}
	if outcome != SaveApplied {
		t.Fatalf("outcome = %v", outcome)
	}

	state := env.engine.State()
	day := state.DailyProgress["2024-01-10"]
	if day.Day != 1 || !day.Completed {
		t.Errorf("day record: %+v", day)
	}
	if state.CurrentDay != 1 {
		t.Errorf("currentDay = %d, want 1", state.CurrentDay)
	}
	if state.StreakDays != 1 {
		t.Errorf("streak = %d, want 1", state.StreakDays)
	}
}

func TestSaveAdvancesDayAfterCompletedYesterday(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.engine.SetIdentity(ctx, nil); err != nil {
		t.Fatal(err)
	}

	*env.today = "2024-01-09"
	if err := env.engine.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := env.engine.SaveDailyProgress(ctx, "2024-01-09", completedTasks()); err != nil {
		t.Fatal(err)
	}

	*env.today = "2024-01-10"
	if _, err := env.engine.SaveDailyProgress(ctx, "2024-01-10", completedTasks()); err != nil {
		t.Fatal(err)
	}

	state := env.engine.State()
	if state.CurrentDay != 2 {
		t.Errorf("currentDay = %d, want 2", state.CurrentDay)
	}
	if state.DailyProgress["2024-01-10"].Day != 2 {
		t.Errorf("day number = %d, want 2", state.DailyProgress["2024-01-10"].Day)
	}
	if state.StreakDays != 2 {
		t.Errorf("streak = %d, want 2", state.StreakDays)
	}
	// Day numbers are immutable history.
	if state.DailyProgress["2024-01-09"].Day != 1 {
		t.Error("yesterday's day number must not change")
	}
}

func TestSaveIncompleteYesterdayForfeitsRun(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.engine.SetIdentity(ctx, nil); err != nil {
		t.Fatal(err)
	}

	*env.today = "2024-01-09"
	if err := env.engine.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := env.engine.SaveDailyProgress(ctx, "2024-01-09", incompleteTasks()); err != nil {
		t.Fatal(err)
	}

	*env.today = "2024-01-10"
	outcome, err := env.engine.SaveDailyProgress(ctx, "2024-01-10", completedTasks())
	if err != nil {
		t.Fatal(err)
	}
	if outcome != SaveStreakBroken {
		t.Fatalf("outcome = %v, want SaveStreakBroken", outcome)
	}

	state := env.engine.State()
	if state.IsStarted {
		t.Error("forfeited run must reset to unstarted")
	}
	if _, ok, _ := env.snap.Load(); ok {
		t.Error("forfeited run must clear local storage")
	}
}

func TestSaveMultiDayGapForfeitsRun(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.engine.SetIdentity(ctx, nil); err != nil {
		t.Fatal(err)
	}

	*env.today = "2024-01-05"
	if err := env.engine.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := env.engine.SaveDailyProgress(ctx, "2024-01-05", completedTasks()); err != nil {
		t.Fatal(err)
	}

	// Absent for nearly a week: yesterday is necessarily missing.
	*env.today = "2024-01-11"
	outcome, err := env.engine.SaveDailyProgress(ctx, "2024-01-11", completedTasks())
	if err != nil {
		t.Fatal(err)
	}
	if outcome != SaveStreakBroken {
		t.Fatalf("outcome = %v, want SaveStreakBroken", outcome)
	}
	if env.engine.State().IsStarted {
		t.Error("expected reset after multi-day gap")
	}
}

func TestSaveIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.engine.SetIdentity(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if err := env.engine.Start(ctx); err != nil {
		t.Fatal(err)
	}

	tasks := completedTasks()
	if _, err := env.engine.SaveDailyProgress(ctx, "2024-01-10", tasks); err != nil {
		t.Fatal(err)
	}
	first := env.engine.State()

	if _, err := env.engine.SaveDailyProgress(ctx, "2024-01-10", tasks); err != nil {
		t.Fatal(err)
	}
	second := env.engine.State()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second identical save changed state:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestSaveOverwritesTodayWithoutAdvance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.engine.SetIdentity(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if err := env.engine.Start(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := env.engine.SaveDailyProgress(ctx, "2024-01-10", incompleteTasks()); err != nil {
		t.Fatal(err)
	}
	if _, err := env.engine.SaveDailyProgress(ctx, "2024-01-10", completedTasks()); err != nil {
		t.Fatal(err)
	}

	state := env.engine.State()
	if state.CurrentDay != 1 {
		t.Errorf("overwrite advanced the day: %d", state.CurrentDay)
	}
	if !state.DailyProgress["2024-01-10"].Completed {
		t.Error("overwrite not applied")
	}
}

func TestSaveBackfillPastDateDoesNotAdvance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.engine.SetIdentity(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if err := env.engine.Start(ctx); err != nil {
		t.Fatal(err)
	}

	outcome, err := env.engine.SaveDailyProgress(ctx, "2024-01-08", completedTasks())
	if err != nil {
		t.Fatal(err)
	}
	if outcome != SaveApplied {
		t.Fatalf("outcome = %v", outcome)
	}
	state := env.engine.State()
	if state.CurrentDay != 1 {
		t.Errorf("backfill advanced the day: %d", state.CurrentDay)
	}
	if state.IsStarted != true {
		t.Error("backfill must not reset")
	}
}

func TestSaveUpsertsRemoteRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	repo := newFakeRepo()
	ch := repo.seedActive("2024-01-10", 1)
	if err := env.engine.SetIdentity(ctx, repo); err != nil {
		t.Fatal(err)
	}

	if _, err := env.engine.SaveDailyProgress(ctx, "2024-01-10", completedTasks()); err != nil {
		t.Fatal(err)
	}

	rows, err := repo.ListDailyTasks(ctx, ch.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("remote rows = %d, want 1", len(rows))
	}
	row := rows[0]
	if !row.MindfulnessCompleted || !row.DigitalDetox || !row.DietFollowed {
		t.Errorf("field mapping: %+v", row)
	}
	if row.WaterGlasses == nil || *row.WaterGlasses != 8 {
		t.Errorf("water_glasses = %v, want 8", row.WaterGlasses)
	}
	if row.ReadingNotes == nil || *row.ReadingNotes != "notes" {
		t.Errorf("reading_notes = %v", row.ReadingNotes)
	}

	// Saving the same date again updates, not duplicates.
	if _, err := env.engine.SaveDailyProgress(ctx, "2024-01-10", incompleteTasks()); err != nil {
		t.Fatal(err)
	}
	rows, _ = repo.ListDailyTasks(ctx, ch.ID)
	if len(rows) != 1 {
		t.Errorf("remote rows after overwrite = %d, want 1", len(rows))
	}
}

func TestSaveRemoteFailureKeepsLocalWrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	repo := newFakeRepo()
	repo.seedActive("2024-01-10", 1)
	if err := env.engine.SetIdentity(ctx, repo); err != nil {
		t.Fatal(err)
	}
	repo.upsertErr = errors.New("timeout")
	repo.updateErr = errors.New("timeout")

	if _, err := env.engine.SaveDailyProgress(ctx, "2024-01-10", completedTasks()); err != nil {
		t.Fatalf("remote failure must not fail save: %v", err)
	}
	if len(env.engine.State().DailyProgress) != 1 {
		t.Error("local write must survive remote failure")
	}
	if len(*env.warns) == 0 {
		t.Error("expected warning")
	}
	onDisk, ok, _ := env.snap.Load()
	if !ok || len(onDisk.DailyProgress) != 1 {
		t.Error("snapshot must hold the local write")
	}
}

func TestResetMarksRemoteFailedAndClears(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	repo := newFakeRepo()
	ch := repo.seedActive("2024-01-10", 1)
	if err := env.engine.SetIdentity(ctx, repo); err != nil {
		t.Fatal(err)
	}

	if err := env.engine.Reset(ctx); err != nil {
		t.Fatal(err)
	}

	repo.mu.Lock()
	if repo.challenges[ch.ID].Status != remote.StatusFailed {
		t.Error("remote record must be marked failed")
	}
	repo.mu.Unlock()

	state := env.engine.State()
	if state.IsStarted || state.ChallengeID != "" {
		t.Errorf("reset state: %+v", state)
	}
	if _, ok, _ := env.snap.Load(); ok {
		t.Error("reset must clear the snapshot slot")
	}
}

func TestResetIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.engine.SetIdentity(ctx, nil); err != nil {
		t.Fatal(err)
	}

	// Resetting an already-unstarted state is a no-op that still clears.
	if err := env.engine.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if err := env.engine.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	state := env.engine.State()
	if state.IsStarted || state.CurrentDay != 1 {
		t.Errorf("reset state: %+v", state)
	}
}

func TestNoRemoteCallsWhileAuthenticating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	// Identity never resolved: engine stays in PhaseAuthenticating.
	if err := env.engine.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := env.engine.SaveDailyProgress(ctx, "2024-01-10", completedTasks()); err != nil {
		t.Fatal(err)
	}
	// Operations applied locally; nothing to assert remotely since repo is
	// unset, but the state must be consistent.
	state := env.engine.State()
	if !state.IsStarted || len(state.DailyProgress) != 1 {
		t.Errorf("local operations must work while unresolved: %+v", state)
	}
}
