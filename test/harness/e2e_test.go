package harness

import (
	"context"
	"testing"

	"github.com/marcus/t45/internal/challenge"
	"github.com/marcus/t45/internal/serverdb"
)

func TestMigrationUploadsLocalRun(t *testing.T) {
	env := NewEnv(t)
	ctx := context.Background()

	// Build a signed-out run: three completed days.
	dev := env.NewDevice()
	if err := dev.Engine.SetIdentity(ctx, nil); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if err := dev.Engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, date := range []string{"2024-01-08", "2024-01-09", "2024-01-10"} {
		env.Today = date
		if _, err := dev.Engine.SaveDailyProgress(ctx, date, completedTasks()); err != nil {
			t.Fatalf("save %s: %v", date, err)
		}
	}

	// Sign in: local progress migrates into the account.
	key := env.NewKey("alice@example.com")
	if err := dev.Engine.SetIdentity(ctx, env.Client(key)); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	if phase := dev.Engine.Phase(); phase != challenge.PhaseWithRemote {
		t.Fatalf("phase = %v, want with-remote", phase)
	}

	state := dev.Engine.State()
	if state.ChallengeID == "" {
		t.Fatal("no challenge id after migration")
	}
	if state.StreakDays != 3 {
		t.Errorf("streak = %d, want 3", state.StreakDays)
	}
	if state.CurrentDay != 3 {
		t.Errorf("current day = %d, want 3", state.CurrentDay)
	}

	// Exactly one challenges row and three day rows on the server.
	ch, err := env.Store.GetChallenge(state.ChallengeID)
	if err != nil || ch == nil {
		t.Fatalf("server challenge: %v %v", ch, err)
	}
	if ch.StartDate != "2024-01-08" || ch.Status != serverdb.StatusActive {
		t.Errorf("server challenge = %+v", ch)
	}
	rows, err := env.Store.ListDailyTasks(ch.ID)
	if err != nil {
		t.Fatalf("list rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("server rows = %d, want 3", len(rows))
	}
	if rows[0].Date != "2024-01-08" || rows[0].DayNumber != 1 {
		t.Errorf("first row = %+v", rows[0])
	}
	if !rows[2].MindfulnessCompleted || !rows[2].DigitalDetox {
		t.Errorf("task fields lost in migration: %+v", rows[2])
	}
}

func TestSecondDeviceHydratesFromRemote(t *testing.T) {
	env := NewEnv(t)
	ctx := context.Background()
	key := env.NewKey("alice@example.com")

	devA := env.NewDevice()
	if err := devA.Engine.SetIdentity(ctx, env.Client(key)); err != nil {
		t.Fatalf("sign in A: %v", err)
	}
	if err := devA.Engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := devA.Engine.SaveDailyProgress(ctx, "2024-01-08", completedTasks()); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A fresh device with the same identity sees the same run.
	devB := env.NewDevice()
	if err := devB.Engine.SetIdentity(ctx, env.Client(key)); err != nil {
		t.Fatalf("sign in B: %v", err)
	}

	a, b := devA.Engine.State(), devB.Engine.State()
	if b.ChallengeID != a.ChallengeID {
		t.Errorf("challenge id: A=%q B=%q", a.ChallengeID, b.ChallengeID)
	}
	if b.StartDate != "2024-01-08" || !b.IsStarted {
		t.Errorf("device B state = %+v", b)
	}
	if len(b.DailyProgress) != 1 || !b.DailyProgress["2024-01-08"].Completed {
		t.Errorf("device B progress = %+v", b.DailyProgress)
	}
	if b.StreakDays != 1 {
		t.Errorf("device B streak = %d, want 1", b.StreakDays)
	}

	// The hydrated state also landed in B's local slot.
	local, ok, err := devB.Snap.Load()
	if err != nil || !ok {
		t.Fatalf("device B snapshot: ok=%v err=%v", ok, err)
	}
	if local.ChallengeID != a.ChallengeID {
		t.Errorf("device B snapshot challenge id = %q", local.ChallengeID)
	}
}

func TestStartAbandonsActiveServerRecord(t *testing.T) {
	env := NewEnv(t)
	ctx := context.Background()
	key := env.NewKey("alice@example.com")

	dev := env.NewDevice()
	if err := dev.Engine.SetIdentity(ctx, env.Client(key)); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := dev.Engine.Start(ctx); err != nil {
		t.Fatalf("first start: %v", err)
	}
	firstID := dev.Engine.State().ChallengeID

	env.Today = "2024-01-12"
	if err := dev.Engine.Start(ctx); err != nil {
		t.Fatalf("second start: %v", err)
	}
	secondID := dev.Engine.State().ChallengeID
	if secondID == "" || secondID == firstID {
		t.Fatalf("second challenge id = %q (first %q)", secondID, firstID)
	}

	old, err := env.Store.GetChallenge(firstID)
	if err != nil || old == nil {
		t.Fatalf("first challenge: %v %v", old, err)
	}
	if old.Status != serverdb.StatusFailed {
		t.Errorf("first challenge status = %q, want failed", old.Status)
	}

	active, err := env.Store.ActiveChallengeForUser(old.UserID)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active == nil || active.ID != secondID {
		t.Errorf("active = %+v, want %q", active, secondID)
	}
	if active.StartDate != "2024-01-12" {
		t.Errorf("active start date = %q", active.StartDate)
	}
}

func TestSaveSyncsRowAndDayCounter(t *testing.T) {
	env := NewEnv(t)
	ctx := context.Background()
	key := env.NewKey("alice@example.com")

	dev := env.NewDevice()
	if err := dev.Engine.SetIdentity(ctx, env.Client(key)); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := dev.Engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := dev.Engine.SaveDailyProgress(ctx, "2024-01-08", completedTasks()); err != nil {
		t.Fatalf("save day 1: %v", err)
	}
	env.Today = "2024-01-09"
	if _, err := dev.Engine.SaveDailyProgress(ctx, "2024-01-09", completedTasks()); err != nil {
		t.Fatalf("save day 2: %v", err)
	}

	chID := dev.Engine.State().ChallengeID
	ch, err := env.Store.GetChallenge(chID)
	if err != nil || ch == nil {
		t.Fatalf("challenge: %v %v", ch, err)
	}
	if ch.CurrentDay != 2 {
		t.Errorf("server current_day = %d, want 2", ch.CurrentDay)
	}

	rows, err := env.Store.ListDailyTasks(chID)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1].DayNumber != 2 {
		t.Errorf("second row day_number = %d", rows[1].DayNumber)
	}
	if rows[1].WaterGlasses == nil || *rows[1].WaterGlasses != 8 {
		t.Errorf("water_glasses = %v, want 8", rows[1].WaterGlasses)
	}
}

func TestResetFailsRemoteRecord(t *testing.T) {
	env := NewEnv(t)
	ctx := context.Background()
	key := env.NewKey("alice@example.com")

	dev := env.NewDevice()
	if err := dev.Engine.SetIdentity(ctx, env.Client(key)); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := dev.Engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	chID := dev.Engine.State().ChallengeID

	if err := dev.Engine.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	ch, err := env.Store.GetChallenge(chID)
	if err != nil || ch == nil {
		t.Fatalf("challenge: %v %v", ch, err)
	}
	if ch.Status != serverdb.StatusFailed {
		t.Errorf("status = %q, want failed", ch.Status)
	}

	if st := dev.Engine.State(); st.IsStarted {
		t.Errorf("state still started after reset: %+v", st)
	}
	if _, ok, _ := dev.Snap.Load(); ok {
		t.Error("snapshot slot not cleared by reset")
	}
}

func TestSignOutKeepsLocalCopy(t *testing.T) {
	env := NewEnv(t)
	ctx := context.Background()
	key := env.NewKey("alice@example.com")

	dev := env.NewDevice()
	if err := dev.Engine.SetIdentity(ctx, env.Client(key)); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := dev.Engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := dev.Engine.SaveDailyProgress(ctx, "2024-01-08", completedTasks()); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := dev.Engine.SetIdentity(ctx, nil); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if phase := dev.Engine.Phase(); phase != challenge.PhaseUnauthenticated {
		t.Errorf("phase = %v", phase)
	}
	st := dev.Engine.State()
	if !st.IsStarted || len(st.DailyProgress) != 1 {
		t.Errorf("local state lost on sign out: %+v", st)
	}
}
