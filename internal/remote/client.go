// Package remote is the HTTP client for the t45-sync record store. It
// exposes async CRUD over the two remote collections (challenges and
// daily_tasks), scoped by the authenticated user behind the API key.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sentinel errors for common HTTP error classes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// Challenge statuses. A user has at most one active challenge; the engine
// enforces this, not the server.
const (
	StatusActive = "active"
	StatusFailed = "failed"
)

// Challenge is a row in the challenges collection.
type Challenge struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	StartDate  string `json:"start_date"`
	CurrentDay int    `json:"current_day"`
	Status     string `json:"status"`
}

// ChallengeUpdate is a partial update to a challenge row.
type ChallengeUpdate struct {
	Status     *string `json:"status,omitempty"`
	CurrentDay *int    `json:"current_day,omitempty"`
}

// DailyTask is a row in the daily_tasks collection: one row per
// (challenge_id, date). The six fixed task ids map onto these named field
// pairs; the field names are part of the wire contract.
type DailyTask struct {
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

// DailyTaskInput is the writable part of a daily_tasks row.
type DailyTaskInput struct {
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

// HealthResponse is the response from GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// Client is an HTTP client for the t45-sync server.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New creates a new sync client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// HealthCheck hits the /healthz endpoint to verify server reachability.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, "GET", "/healthz", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ActiveChallenge returns the caller's active challenge, or nil if the
// identity has no active record.
func (c *Client) ActiveChallenge(ctx context.Context) (*Challenge, error) {
	var resp Challenge
	err := c.do(ctx, "GET", "/v1/challenges/active", nil, &resp)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateChallenge creates a new active challenge for the caller.
func (c *Client) CreateChallenge(ctx context.Context, startDate string, currentDay int) (*Challenge, error) {
	body := map[string]any{"start_date": startDate, "current_day": currentDay}
	var resp Challenge
	if err := c.do(ctx, "POST", "/v1/challenges", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateChallenge applies a partial update to a challenge row.
func (c *Client) UpdateChallenge(ctx context.Context, id string, upd ChallengeUpdate) error {
	return c.do(ctx, "PATCH", "/v1/challenges/"+id, upd, nil)
}

// FailChallenge transitions a challenge to the terminal failed status.
func (c *Client) FailChallenge(ctx context.Context, id string) error {
	status := StatusFailed
	return c.UpdateChallenge(ctx, id, ChallengeUpdate{Status: &status})
}

// ListDailyTasks returns all day rows belonging to a challenge.
func (c *Client) ListDailyTasks(ctx context.Context, challengeID string) ([]DailyTask, error) {
	var resp []DailyTask
	if err := c.do(ctx, "GET", "/v1/challenges/"+challengeID+"/daily_tasks", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// InsertDailyTasks bulk-inserts day rows, used when migrating a local-only
// challenge into the remote store.
func (c *Client) InsertDailyTasks(ctx context.Context, challengeID string, rows []DailyTaskInput) error {
	return c.do(ctx, "POST", "/v1/challenges/"+challengeID+"/daily_tasks", rows, nil)
}

// UpsertDailyTask inserts or updates the row for (challenge, date).
func (c *Client) UpsertDailyTask(ctx context.Context, challengeID string, row DailyTaskInput) error {
	return c.do(ctx, "PUT", "/v1/challenges/"+challengeID+"/daily_tasks/"+row.Date, row, nil)
}

// --- HTTP helpers ---

// apiError is the standard error body from the server.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

// errorBody wraps an apiError for deserialization.
type errorBody struct {
	Error apiError `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil && eb.Error.Code != "" {
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				return fmt.Errorf("%w: %s", ErrUnauthorized, eb.Error.Message)
			case http.StatusForbidden:
				return fmt.Errorf("%w: %s", ErrForbidden, eb.Error.Message)
			case http.StatusNotFound:
				return fmt.Errorf("%w: %s", ErrNotFound, eb.Error.Message)
			default:
				return &eb.Error
			}
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
