package api

import (
	"encoding/json"
	"net/http"

	"github.com/marcus/t45/internal/dateutil"
	"github.com/marcus/t45/internal/serverdb"
)

// challengeResponse is the wire shape of a challenges row.
type challengeResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	StartDate  string `json:"start_date"`
	CurrentDay int    `json:"current_day"`
	Status     string `json:"status"`
}

func toChallengeResponse(c *serverdb.Challenge) challengeResponse {
	return challengeResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		StartDate:  c.StartDate,
		CurrentDay: c.CurrentDay,
		Status:     c.Status,
	}
}

// dailyTaskResponse is the wire shape of a daily_tasks row. The field
// names are a compatibility contract with the client.
type dailyTaskResponse struct {
	ID                   string  `json:"id"`
	ChallengeID          string  `json:"challenge_id"`
	Date                 string  `json:"date"`
	DayNumber            int     `json:"day_number"`
	MindfulnessCompleted bool    `json:"mindfulness_completed"`
	MindfulnessValue     *int    `json:"mindfulness_value"`
	ReadingCompleted     bool    `json:"reading_completed"`
	ReadingNotes         *string `json:"reading_notes"`
	WaterConsumed        bool    `json:"water_consumed"`
	WaterGlasses         *int    `json:"water_glasses"`
	DietFollowed         bool    `json:"diet_followed"`
	WorkoutCompleted     bool    `json:"workout_completed"`
	DigitalDetox         bool    `json:"digital_detox"`
}

func toDailyTaskResponse(r *serverdb.DailyTaskRow) dailyTaskResponse {
	return dailyTaskResponse{
		ID:                   r.ID,
		ChallengeID:          r.ChallengeID,
		Date:                 r.Date,
		DayNumber:            r.DayNumber,
		MindfulnessCompleted: r.MindfulnessCompleted,
		MindfulnessValue:     r.MindfulnessValue,
		ReadingCompleted:     r.ReadingCompleted,
		ReadingNotes:         r.ReadingNotes,
		WaterConsumed:        r.WaterConsumed,
		WaterGlasses:         r.WaterGlasses,
		DietFollowed:         r.DietFollowed,
		WorkoutCompleted:     r.WorkoutCompleted,
		DigitalDetox:         r.DigitalDetox,
	}
}

// dailyTaskRequest is the writable part of a daily_tasks row.
type dailyTaskRequest struct {
	Date                 string  `json:"date"`
	DayNumber            int     `json:"day_number"`
	MindfulnessCompleted bool    `json:"mindfulness_completed"`
	MindfulnessValue     *int    `json:"mindfulness_value"`
	ReadingCompleted     bool    `json:"reading_completed"`
	ReadingNotes         *string `json:"reading_notes"`
	WaterConsumed        bool    `json:"water_consumed"`
	WaterGlasses         *int    `json:"water_glasses"`
	DietFollowed         bool    `json:"diet_followed"`
	WorkoutCompleted     bool    `json:"workout_completed"`
	DigitalDetox         bool    `json:"digital_detox"`
}

func (req dailyTaskRequest) toInput() serverdb.DailyTaskInput {
	return serverdb.DailyTaskInput{
		Date:                 req.Date,
		DayNumber:            req.DayNumber,
		MindfulnessCompleted: req.MindfulnessCompleted,
		MindfulnessValue:     req.MindfulnessValue,
		ReadingCompleted:     req.ReadingCompleted,
		ReadingNotes:         req.ReadingNotes,
		WaterConsumed:        req.WaterConsumed,
		WaterGlasses:         req.WaterGlasses,
		DietFollowed:         req.DietFollowed,
		WorkoutCompleted:     req.WorkoutCompleted,
		DigitalDetox:         req.DigitalDetox,
	}
}

// handleActiveChallenge handles GET /v1/challenges/active.
func (s *Server) handleActiveChallenge(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r.Context())

	ch, err := s.store.ActiveChallengeForUser(user.UserID)
	if err != nil {
		logFor(r.Context()).Error("active challenge", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to load challenge")
		return
	}
	if ch == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "no active challenge")
		return
	}

	writeJSON(w, http.StatusOK, toChallengeResponse(ch))
}

// createChallengeRequest is the JSON body for POST /v1/challenges.
type createChallengeRequest struct {
	StartDate  string `json:"start_date"`
	CurrentDay int    `json:"current_day"`
}

// handleCreateChallenge handles POST /v1/challenges.
func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req createChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid json body")
		return
	}
	if !dateutil.IsValid(req.StartDate) {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "start_date must be YYYY-MM-DD")
		return
	}

	user := getUserFromContext(r.Context())
	ch, err := s.store.CreateChallenge(user.UserID, req.StartDate, req.CurrentDay)
	if err != nil {
		logFor(r.Context()).Error("create challenge", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to create challenge")
		return
	}

	logFor(r.Context()).Info("challenge created", "cid", ch.ID, "start_date", ch.StartDate)
	writeJSON(w, http.StatusCreated, toChallengeResponse(ch))
}

// updateChallengeRequest is the JSON body for PATCH /v1/challenges/{id}.
type updateChallengeRequest struct {
	Status     *string `json:"status"`
	CurrentDay *int    `json:"current_day"`
}

// handleUpdateChallenge handles PATCH /v1/challenges/{id}.
func (s *Server) handleUpdateChallenge(w http.ResponseWriter, r *http.Request) {
	var req updateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid json body")
		return
	}
	if req.Status == nil && req.CurrentDay == nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "nothing to update")
		return
	}
	if req.Status != nil && *req.Status != serverdb.StatusFailed {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "status may only transition to failed")
		return
	}
	if req.CurrentDay != nil && *req.CurrentDay < 1 {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "current_day must be at least 1")
		return
	}

	ch, err := s.store.UpdateChallenge(r.PathValue("id"), req.Status, req.CurrentDay)
	if err != nil {
		logFor(r.Context()).Error("update challenge", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to update challenge")
		return
	}

	writeJSON(w, http.StatusOK, toChallengeResponse(ch))
}

// handleListDailyTasks handles GET /v1/challenges/{id}/daily_tasks.
func (s *Server) handleListDailyTasks(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListDailyTasks(r.PathValue("id"))
	if err != nil {
		logFor(r.Context()).Error("list daily tasks", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to list daily tasks")
		return
	}

	out := make([]dailyTaskResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDailyTaskResponse(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleInsertDailyTasks handles POST /v1/challenges/{id}/daily_tasks:
// bulk insert used when a local challenge is migrated into an account.
func (s *Server) handleInsertDailyTasks(w http.ResponseWriter, r *http.Request) {
	var reqs []dailyTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid json body")
		return
	}

	ins := make([]serverdb.DailyTaskInput, 0, len(reqs))
	for _, req := range reqs {
		if !dateutil.IsValid(req.Date) {
			writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
			return
		}
		ins = append(ins, req.toInput())
	}

	if err := s.store.InsertDailyTasks(r.PathValue("id"), ins); err != nil {
		logFor(r.Context()).Error("insert daily tasks", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to insert daily tasks")
		return
	}

	logFor(r.Context()).Info("daily tasks migrated", "count", len(ins))
	w.WriteHeader(http.StatusNoContent)
}

// handleUpsertDailyTask handles PUT /v1/challenges/{id}/daily_tasks/{date}.
func (s *Server) handleUpsertDailyTask(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !dateutil.IsValid(date) {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
		return
	}

	var req dailyTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid json body")
		return
	}
	// The path segment is authoritative for the row's date.
	req.Date = date

	row, err := s.store.UpsertDailyTask(r.PathValue("id"), req.toInput())
	if err != nil {
		logFor(r.Context()).Error("upsert daily task", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to save daily task")
		return
	}

	writeJSON(w, http.StatusOK, toDailyTaskResponse(row))
}
