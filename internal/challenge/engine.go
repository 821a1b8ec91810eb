// Package challenge owns the single in-memory ChallengeState and decides,
// on every identity change, whether remote state, migrated local state, or
// purely local state is authoritative. All mutations go through the three
// session operations (Start, SaveDailyProgress, Reset).
package challenge

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/marcus/t45/internal/dateutil"
	"github.com/marcus/t45/internal/models"
	"github.com/marcus/t45/internal/remote"
	"github.com/marcus/t45/internal/snapshot"
	"github.com/marcus/t45/internal/streak"
)

// Phase is the reconciliation state for the current identity.
type Phase int

const (
	// PhaseAuthenticating means an identity check is in flight; hydration
	// is deferred and no remote calls may be issued.
	PhaseAuthenticating Phase = iota
	// PhaseUnauthenticated means all state is local-only.
	PhaseUnauthenticated
	// PhaseNoRemote means the identity is known but has no remote record
	// (or the remote store is unreachable); mutations stay local.
	PhaseNoRemote
	// PhaseWithRemote means state is mirrored in the remote store.
	PhaseWithRemote
	// PhaseMigrating means local-only progress is being uploaded.
	PhaseMigrating
)

func (p Phase) String() string {
	switch p {
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseNoRemote:
		return "authenticated-no-remote"
	case PhaseWithRemote:
		return "authenticated-with-remote"
	case PhaseMigrating:
		return "migrating"
	}
	return "unknown"
}

// Repository is the remote record store the engine reconciles against.
// *remote.Client satisfies it; tests substitute fakes.
type Repository interface {
	ActiveChallenge(ctx context.Context) (*remote.Challenge, error)
	CreateChallenge(ctx context.Context, startDate string, currentDay int) (*remote.Challenge, error)
	UpdateChallenge(ctx context.Context, id string, upd remote.ChallengeUpdate) error
	FailChallenge(ctx context.Context, id string) error
	ListDailyTasks(ctx context.Context, challengeID string) ([]remote.DailyTask, error)
	InsertDailyTasks(ctx context.Context, challengeID string, rows []remote.DailyTaskInput) error
	UpsertDailyTask(ctx context.Context, challengeID string, row remote.DailyTaskInput) error
}

// WarnFunc receives advisory notices (remote failures, recovered local
// corruption). Notices never block or roll back local progress.
type WarnFunc func(format string, args ...any)

// Option configures an Engine.
type Option func(*Engine)

// WithWarnFunc routes advisory notices to fn.
func WithWarnFunc(fn WarnFunc) Option {
	return func(e *Engine) { e.warnf = fn }
}

// WithTodayFunc overrides the source of "today" (tests).
func WithTodayFunc(fn func() string) Option {
	return func(e *Engine) { e.today = fn }
}

// Engine holds the single ChallengeState for the current identity. Each
// exported operation is an atomic transition of that state: mutations are
// serialized and the local snapshot is written before any remote attempt.
type Engine struct {
	mu    sync.Mutex
	snap  *snapshot.Store
	repo  Repository
	phase Phase
	state models.ChallengeState
	gen   int

	warnf WarnFunc
	today func() string
}

// New creates an engine over the given snapshot store. The engine starts
// in PhaseAuthenticating; call SetIdentity once the identity is known.
func New(snap *snapshot.Store, opts ...Option) *Engine {
	e := &Engine{
		snap:  snap,
		phase: PhaseAuthenticating,
		state: models.InitialState(),
		warnf: func(format string, args ...any) {
			slog.Warn(fmt.Sprintf(format, args...))
		},
		today: dateutil.Today,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns a copy of the current challenge state.
func (e *Engine) State() models.ChallengeState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneState(e.state)
}

// Phase returns the current reconciliation phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// SetIdentity delivers an identity-change event: repo is the record store
// for the signed-in user, or nil on sign-out. The engine reconciles and
// replaces the whole state. A newer identity change supersedes an
// in-flight one; the superseded pass commits nothing.
func (e *Engine) SetIdentity(ctx context.Context, repo Repository) error {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.phase = PhaseAuthenticating
	e.mu.Unlock()

	state, phase := e.reconcile(ctx, gen, repo)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		// Superseded by a later identity change; discard this pass.
		return nil
	}
	e.repo = repo
	e.phase = phase
	e.state = state
	return nil
}

// reconcile decides the authoritative state for an identity. It performs
// remote IO without holding the engine lock.
func (e *Engine) reconcile(ctx context.Context, gen int, repo Repository) (models.ChallengeState, Phase) {
	if repo == nil {
		return e.loadLocal(), PhaseUnauthenticated
	}

	active, err := repo.ActiveChallenge(ctx)
	if err != nil {
		e.warnf("remote store unreachable, continuing with local progress: %v", err)
		return e.loadLocal(), PhaseNoRemote
	}

	if active != nil {
		return e.hydrateRemote(ctx, gen, repo, active)
	}

	local, ok, err := e.snap.Load()
	if err != nil {
		e.warnf("read local snapshot: %v", err)
		ok = false
	}
	if ok && local.IsStarted {
		return e.migrate(ctx, gen, repo, local)
	}

	return models.InitialState(), PhaseNoRemote
}

// hydrateRemote rebuilds the whole state from the remote record and its
// day rows, discarding in-memory and local state. The streak is always
// recomputed locally; the remote store never persists it.
func (e *Engine) hydrateRemote(ctx context.Context, gen int, repo Repository, active *remote.Challenge) (models.ChallengeState, Phase) {
	rows, err := repo.ListDailyTasks(ctx, active.ID)
	if err != nil {
		e.warnf("load remote day records, continuing with local progress: %v", err)
		return e.loadLocal(), PhaseNoRemote
	}

	progress := make(map[string]models.DailyProgress, len(rows))
	for _, row := range rows {
		progress[row.Date] = rowToProgress(row)
	}

	currentDay := active.CurrentDay
	if currentDay < 1 {
		currentDay = 1
	}

	state := models.ChallengeState{
		IsStarted:     true,
		CurrentDay:    currentDay,
		StartDate:     active.StartDate,
		DailyProgress: progress,
		ChallengeID:   active.ID,
		StreakDays:    streak.Compute(progress, e.today()),
	}

	// Keep the local slot at least as fresh as the remote copy — unless a
	// later identity change superseded this pass.
	e.mu.Lock()
	current := gen == e.gen
	e.mu.Unlock()
	if current {
		if err := e.snap.Save(state); err != nil {
			e.warnf("persist hydrated state: %v", err)
		}
	}

	return state, PhaseWithRemote
}

// migrate uploads a local-only challenge into the remote store, then
// re-hydrates canonically from what was just written. On any failure the
// local snapshot stays authoritative; nothing is lost.
func (e *Engine) migrate(ctx context.Context, gen int, repo Repository, local models.ChallengeState) (models.ChallengeState, Phase) {
	e.mu.Lock()
	if gen == e.gen {
		e.phase = PhaseMigrating
	}
	e.mu.Unlock()

	currentDay := local.CurrentDay
	if currentDay < 1 {
		currentDay = 1
	}

	ch, err := repo.CreateChallenge(ctx, local.StartDate, currentDay)
	if err != nil {
		e.warnf("migrate local progress to your account failed, progress kept on this device: %v", err)
		return local, PhaseNoRemote
	}

	dates := make([]string, 0, len(local.DailyProgress))
	for date := range local.DailyProgress {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	rows := make([]remote.DailyTaskInput, 0, len(dates))
	for _, date := range dates {
		rows = append(rows, progressToRow(local.DailyProgress[date]))
	}

	if len(rows) > 0 {
		if err := repo.InsertDailyTasks(ctx, ch.ID, rows); err != nil {
			e.warnf("upload local day records failed, progress kept on this device: %v", err)
			return local, PhaseNoRemote
		}
	}

	return e.hydrateRemote(ctx, gen, repo, ch)
}

// loadLocal hydrates from the snapshot slot, or the initial state if the
// slot is absent.
func (e *Engine) loadLocal() models.ChallengeState {
	state, ok, err := e.snap.Load()
	if err != nil {
		e.warnf("read local snapshot: %v", err)
		return models.InitialState()
	}
	if !ok {
		return models.InitialState()
	}
	return state
}

// remoteReady reports whether remote calls may be issued right now.
// Callers must hold e.mu.
func (e *Engine) remoteReady() bool {
	if e.repo == nil {
		return false
	}
	return e.phase == PhaseWithRemote || e.phase == PhaseNoRemote
}

func cloneState(s models.ChallengeState) models.ChallengeState {
	out := s
	out.DailyProgress = make(map[string]models.DailyProgress, len(s.DailyProgress))
	for k, v := range s.DailyProgress {
		tasks := make([]models.Task, len(v.Tasks))
		copy(tasks, v.Tasks)
		v.Tasks = tasks
		out.DailyProgress[k] = v
	}
	return out
}
