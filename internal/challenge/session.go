package challenge

import (
	"context"
	"fmt"

	"github.com/marcus/t45/internal/dateutil"
	"github.com/marcus/t45/internal/models"
	"github.com/marcus/t45/internal/remote"
	"github.com/marcus/t45/internal/streak"
)

// SaveOutcome reports what SaveDailyProgress did with the attempted save.
type SaveOutcome int

const (
	// SaveApplied means the day record was written.
	SaveApplied SaveOutcome = iota
	// SaveStreakBroken means a missed or incomplete prior day forfeited
	// the run: the save was redirected into Reset and nothing was written.
	SaveStreakBroken
)

// Start begins a fresh challenge. Local persistence happens first and
// always; remote creation is attempted for an authenticated identity, and
// its failure leaves the challenge local-only with a warning. If the
// identity already has an active remote record it is transitioned to
// failed before the new one is created.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	today := e.today()
	state := models.InitialState()
	state.IsStarted = true
	state.StartDate = today

	if err := e.snap.Save(state); err != nil {
		return fmt.Errorf("persist challenge: %w", err)
	}

	if e.remoteReady() {
		if ch := e.createRemote(ctx, today); ch != "" {
			state.ChallengeID = ch
			if err := e.snap.Save(state); err != nil {
				e.warnf("persist challenge id: %v", err)
			}
			e.phase = PhaseWithRemote
		}
	}

	e.state = state
	return nil
}

// createRemote abandons any existing active record, then creates a new
// one. Returns the new challenge id, or "" if the remote store could not
// be updated (a non-fatal condition).
func (e *Engine) createRemote(ctx context.Context, startDate string) string {
	active, err := e.repo.ActiveChallenge(ctx)
	if err != nil {
		e.warnf("check for existing challenge, progress stays on this device for now: %v", err)
		return ""
	}
	if active != nil {
		if err := e.repo.FailChallenge(ctx, active.ID); err != nil {
			e.warnf("abandon previous challenge, progress stays on this device for now: %v", err)
			return ""
		}
	}
	ch, err := e.repo.CreateChallenge(ctx, startDate, 1)
	if err != nil {
		e.warnf("create remote challenge, progress stays on this device for now: %v", err)
		return ""
	}
	return ch.ID
}

// SaveDailyProgress records the six tasks' state for a calendar date. The
// task list must cover exactly the six fixed ids; a short or malformed
// list indicates a caller bug and propagates as ErrInvalidTaskSet.
//
// Saving today's first record advances the day counter when yesterday was
// completed. If prior progress exists but yesterday is missing or
// incomplete, the run is forfeited: the save becomes a Reset and
// SaveStreakBroken is returned.
func (e *Engine) SaveDailyProgress(ctx context.Context, date string, tasks []models.Task) (SaveOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := models.ValidateTasks(tasks); err != nil {
		return SaveApplied, err
	}
	if !dateutil.IsValid(date) {
		return SaveApplied, fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
	}

	today := e.today()
	currentDay := e.state.CurrentDay
	if currentDay < 1 {
		currentDay = 1
	}

	if _, exists := e.state.DailyProgress[today]; date == today && !exists {
		yesterday, err := dateutil.AddDays(today, -1)
		if err != nil {
			return SaveApplied, err
		}
		if prev, ok := e.state.DailyProgress[yesterday]; ok && prev.Completed {
			currentDay++
		} else if len(e.state.DailyProgress) > 0 {
			// A fully-missed or incomplete day forfeits the run.
			if err := e.resetLocked(ctx); err != nil {
				return SaveStreakBroken, err
			}
			return SaveStreakBroken, nil
		}
	}

	record := models.DailyProgress{
		Date:      date,
		Tasks:     tasks,
		Completed: models.AllCompleted(tasks),
		Day:       currentDay,
	}

	next := cloneState(e.state)
	next.CurrentDay = currentDay
	next.DailyProgress[date] = record
	next.StreakDays = streak.Compute(next.DailyProgress, today)

	// The mutation fully applies locally before any remote attempt.
	if err := e.snap.Save(next); err != nil {
		return SaveApplied, fmt.Errorf("persist progress: %w", err)
	}
	e.state = next

	if e.remoteReady() && next.ChallengeID != "" {
		day := currentDay
		if err := e.repo.UpdateChallenge(ctx, next.ChallengeID, remote.ChallengeUpdate{CurrentDay: &day}); err != nil {
			e.warnf("update remote day counter, local progress is safe: %v", err)
		}
		if err := e.repo.UpsertDailyTask(ctx, next.ChallengeID, progressToRow(record)); err != nil {
			e.warnf("save progress to your account, local progress is safe: %v", err)
		}
	}

	return SaveApplied, nil
}

// Reset abandons the current run: the remote record (if any) is marked
// failed best-effort, the local slot is cleared, and the state reverts to
// unstarted. Resetting an unstarted state still clears storage.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resetLocked(ctx)
}

func (e *Engine) resetLocked(ctx context.Context) error {
	if e.remoteReady() && e.state.ChallengeID != "" {
		if err := e.repo.FailChallenge(ctx, e.state.ChallengeID); err != nil {
			e.warnf("mark remote challenge failed: %v", err)
		}
	}
	if err := e.snap.Clear(); err != nil {
		return fmt.Errorf("clear local progress: %w", err)
	}
	e.state = models.InitialState()
	return nil
}
