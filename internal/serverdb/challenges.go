package serverdb

import (
	"database/sql"
	"fmt"
	"time"
)

// Challenge statuses.
const (
	StatusActive = "active"
	StatusFailed = "failed"
)

// Challenge is a stored 45-day challenge attempt.
type Challenge struct {
	ID         string
	UserID     string
	StartDate  string
	CurrentDay int
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DailyTaskRow is a stored day record. Nullable value columns are
// pointers; the client defaults them at its boundary.
type DailyTaskRow struct {
	ID                   string
	ChallengeID          string
	Date                 string
	DayNumber            int
	MindfulnessCompleted bool
	MindfulnessValue     *int
	ReadingCompleted     bool
	ReadingNotes         *string
	WaterConsumed        bool
	WaterGlasses         *int
	DietFollowed         bool
	WorkoutCompleted     bool
	DigitalDetox         bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DailyTaskInput is the writable part of a day record.
type DailyTaskInput struct {
	Date                 string
	DayNumber            int
	MindfulnessCompleted bool
	MindfulnessValue     *int
	ReadingCompleted     bool
	ReadingNotes         *string
	WaterConsumed        bool
	WaterGlasses         *int
	DietFollowed         bool
	WorkoutCompleted     bool
	DigitalDetox         bool
}

const challengeCols = `id, user_id, start_date, current_day, status, created_at, updated_at`

func scanChallenge(row *sql.Row) (*Challenge, error) {
	c := &Challenge{}
	err := row.Scan(&c.ID, &c.UserID, &c.StartDate, &c.CurrentDay, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateChallenge inserts a new active challenge for the user.
func (db *ServerDB) CreateChallenge(userID, startDate string, currentDay int) (*Challenge, error) {
	if currentDay < 1 {
		currentDay = 1
	}

	id, err := generateID("ch_")
	if err != nil {
		return nil, fmt.Errorf("generate challenge id: %w", err)
	}

	now := time.Now().UTC()
	_, err = db.conn.Exec(
		`INSERT INTO challenges (id, user_id, start_date, current_day, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'active', ?, ?)`,
		id, userID, startDate, currentDay, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert challenge: %w", err)
	}

	return &Challenge{
		ID: id, UserID: userID, StartDate: startDate,
		CurrentDay: currentDay, Status: StatusActive,
		CreatedAt: now, UpdatedAt: now,
	}, nil
}

// GetChallenge returns a challenge by id, or nil if not found.
func (db *ServerDB) GetChallenge(id string) (*Challenge, error) {
	c, err := scanChallenge(db.conn.QueryRow(
		`SELECT `+challengeCols+` FROM challenges WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("get challenge: %w", err)
	}
	return c, nil
}

// ActiveChallengeForUser returns the user's active challenge, or nil if
// none exists. The newest row wins if history ever holds more than one.
func (db *ServerDB) ActiveChallengeForUser(userID string) (*Challenge, error) {
	c, err := scanChallenge(db.conn.QueryRow(
		`SELECT `+challengeCols+` FROM challenges
		 WHERE user_id = ? AND status = 'active'
		 ORDER BY created_at DESC LIMIT 1`, userID,
	))
	if err != nil {
		return nil, fmt.Errorf("active challenge: %w", err)
	}
	return c, nil
}

// UpdateChallenge applies a partial update. Status may only move to
// failed; any other value is rejected.
func (db *ServerDB) UpdateChallenge(id string, status *string, currentDay *int) (*Challenge, error) {
	if status != nil && *status != StatusFailed {
		return nil, fmt.Errorf("invalid status transition: %q", *status)
	}

	now := time.Now().UTC()
	if status != nil && currentDay != nil {
		_, err := db.conn.Exec(`UPDATE challenges SET status = ?, current_day = ?, updated_at = ? WHERE id = ?`,
			*status, *currentDay, now, id)
		if err != nil {
			return nil, fmt.Errorf("update challenge: %w", err)
		}
	} else if status != nil {
		_, err := db.conn.Exec(`UPDATE challenges SET status = ?, updated_at = ? WHERE id = ?`, *status, now, id)
		if err != nil {
			return nil, fmt.Errorf("update challenge: %w", err)
		}
	} else if currentDay != nil {
		_, err := db.conn.Exec(`UPDATE challenges SET current_day = ?, updated_at = ? WHERE id = ?`, *currentDay, now, id)
		if err != nil {
			return nil, fmt.Errorf("update challenge: %w", err)
		}
	}

	return db.GetChallenge(id)
}

const dailyTaskCols = `id, challenge_id, date, day_number,
	mindfulness_completed, mindfulness_value, reading_completed, reading_notes,
	water_consumed, water_glasses, diet_followed, workout_completed, digital_detox,
	created_at, updated_at`

// ListDailyTasks returns all day rows for a challenge, oldest date first.
func (db *ServerDB) ListDailyTasks(challengeID string) ([]*DailyTaskRow, error) {
	rows, err := db.conn.Query(
		`SELECT `+dailyTaskCols+` FROM daily_tasks WHERE challenge_id = ? ORDER BY date`, challengeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list daily tasks: %w", err)
	}
	defer rows.Close()

	var out []*DailyTaskRow
	for rows.Next() {
		r := &DailyTaskRow{}
		if err := rows.Scan(
			&r.ID, &r.ChallengeID, &r.Date, &r.DayNumber,
			&r.MindfulnessCompleted, &r.MindfulnessValue, &r.ReadingCompleted, &r.ReadingNotes,
			&r.WaterConsumed, &r.WaterGlasses, &r.DietFollowed, &r.WorkoutCompleted, &r.DigitalDetox,
			&r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan daily task: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list daily tasks: iterate: %w", err)
	}
	return out, nil
}

// UpsertDailyTask inserts or replaces the row for (challenge, date).
func (db *ServerDB) UpsertDailyTask(challengeID string, in DailyTaskInput) (*DailyTaskRow, error) {
	id, err := generateID("dt_")
	if err != nil {
		return nil, fmt.Errorf("generate daily task id: %w", err)
	}

	now := time.Now().UTC()
	_, err = db.conn.Exec(
		`INSERT INTO daily_tasks (id, challenge_id, date, day_number,
			mindfulness_completed, mindfulness_value, reading_completed, reading_notes,
			water_consumed, water_glasses, diet_followed, workout_completed, digital_detox,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(challenge_id, date) DO UPDATE SET
			day_number = excluded.day_number,
			mindfulness_completed = excluded.mindfulness_completed,
			mindfulness_value = excluded.mindfulness_value,
			reading_completed = excluded.reading_completed,
			reading_notes = excluded.reading_notes,
			water_consumed = excluded.water_consumed,
			water_glasses = excluded.water_glasses,
			diet_followed = excluded.diet_followed,
			workout_completed = excluded.workout_completed,
			digital_detox = excluded.digital_detox,
			updated_at = excluded.updated_at`,
		id, challengeID, in.Date, in.DayNumber,
		in.MindfulnessCompleted, in.MindfulnessValue, in.ReadingCompleted, in.ReadingNotes,
		in.WaterConsumed, in.WaterGlasses, in.DietFollowed, in.WorkoutCompleted, in.DigitalDetox,
		now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert daily task: %w", err)
	}

	return db.getDailyTask(challengeID, in.Date)
}

// InsertDailyTasks bulk-inserts day rows inside one transaction. Used by
// the migration path; a duplicate date fails the whole batch.
func (db *ServerDB) InsertDailyTasks(challengeID string, ins []DailyTaskInput) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin insert daily tasks: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO daily_tasks (id, challenge_id, date, day_number,
			mindfulness_completed, mindfulness_value, reading_completed, reading_notes,
			water_consumed, water_glasses, diet_followed, workout_completed, digital_detox,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert daily tasks: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, in := range ins {
		id, err := generateID("dt_")
		if err != nil {
			return fmt.Errorf("generate daily task id: %w", err)
		}
		if _, err := stmt.Exec(
			id, challengeID, in.Date, in.DayNumber,
			in.MindfulnessCompleted, in.MindfulnessValue, in.ReadingCompleted, in.ReadingNotes,
			in.WaterConsumed, in.WaterGlasses, in.DietFollowed, in.WorkoutCompleted, in.DigitalDetox,
			now, now,
		); err != nil {
			return fmt.Errorf("insert daily task %s: %w", in.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert daily tasks: %w", err)
	}
	return nil
}

func (db *ServerDB) getDailyTask(challengeID, date string) (*DailyTaskRow, error) {
	r := &DailyTaskRow{}
	err := db.conn.QueryRow(
		`SELECT `+dailyTaskCols+` FROM daily_tasks WHERE challenge_id = ? AND date = ?`,
		challengeID, date,
	).Scan(
		&r.ID, &r.ChallengeID, &r.Date, &r.DayNumber,
		&r.MindfulnessCompleted, &r.MindfulnessValue, &r.ReadingCompleted, &r.ReadingNotes,
		&r.WaterConsumed, &r.WaterGlasses, &r.DietFollowed, &r.WorkoutCompleted, &r.DigitalDetox,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily task: %w", err)
	}
	return r, nil
}
