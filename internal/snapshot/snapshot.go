// Package snapshot persists the entire challenge state in a single durable
// slot on the local device. The slot has no notion of identity; it survives
// process restarts and sign-outs.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marcus/t45/internal/models"
)

const slotFile = "challenge.json"

// Store reads and writes the challenge state slot under a base directory.
// Single logical writer assumed.
type Store struct {
	dir string
}

// New creates a store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, slotFile)
}

// Save serializes the full state and overwrites the slot. The write is
// atomic: temp file in the same directory, then rename.
func (s *Store) Save(state models.ChallengeState) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "challenge-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}

	return os.Rename(tmpName, s.path())
}

// Load returns the last saved state. The second return value is false if
// the slot was never written or its payload does not deserialize; a
// corrupt slot is cleared as a side effect, never reported as an error.
func (s *Store) Load() (models.ChallengeState, bool, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return models.ChallengeState{}, false, nil
		}
		return models.ChallengeState{}, false, fmt.Errorf("read snapshot: %w", err)
	}

	var state models.ChallengeState
	if err := json.Unmarshal(data, &state); err != nil {
		// Corrupt payload is treated as absence.
		os.Remove(s.path())
		return models.ChallengeState{}, false, nil
	}
	if state.DailyProgress == nil {
		state.DailyProgress = make(map[string]models.DailyProgress)
	}
	return state, true, nil
}

// Clear removes the slot. Clearing an absent slot is a no-op.
func (s *Store) Clear() error {
	err := os.Remove(s.path())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
