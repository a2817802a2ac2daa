// ABOUTME: Oura cloud client that pulls the latest daily activity summary
// ABOUTME: Converts the newest record into a partial metrics update for the profile store
package oura

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/harper/olympus/internal/logging"
	"github.com/harper/olympus/internal/models"
)

const defaultBaseURL = "https://api.ouraring.com"

// ErrNoToken is returned when no personal access token is available
var ErrNoToken = errors.New("please provide an Oura personal access token")

// ConnectionError wraps every failure of a cloud sync
type ConnectionError struct {
	StatusCode int
	Err        error
}

func (e *ConnectionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("oura request failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("oura request failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Status renders the failure as a user-facing status line
func (e *ConnectionError) Status() string {
	switch {
	case errors.Is(e.Err, ErrNoToken):
		return "Please provide an Oura Personal Access Token."
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return "Error: Connection failed. Check your token."
	case e.StatusCode != 0:
		return fmt.Sprintf("Error: Connection failed (HTTP %d).", e.StatusCode)
	default:
		return fmt.Sprintf("Error: %v", e.Err)
	}
}

// Client talks to the Oura v2 API
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Now        func() time.Time
}

type dailyActivityResponse struct {
	Data []dailyActivity `json:"data"`
}

type dailyActivity struct {
	Day            string `json:"day"`
	Steps          *int64 `json:"steps"`
	ActiveCalories *int64 `json:"active_calories"`
}

// FetchLatestActivity returns the newest daily activity record as a metrics update.
// Steps and active calories are only set when the record carries them.
func (c *Client) FetchLatestActivity(ctx context.Context, token string) (models.HealthMetrics, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.HealthMetrics{}, &ConnectionError{Err: ErrNoToken}
	}

	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	url := base + "/v2/usercollection/daily_activity"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.HealthMetrics{}, &ConnectionError{Err: fmt.Errorf("create oura request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return models.HealthMetrics{}, &ConnectionError{Err: fmt.Errorf("execute oura request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.HealthMetrics{}, &ConnectionError{Err: fmt.Errorf("read oura response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.HealthMetrics{}, &ConnectionError{
			StatusCode: resp.StatusCode,
			Err:        errors.New("connection failed, check your token"),
		}
	}

	var parsed dailyActivityResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.HealthMetrics{}, &ConnectionError{Err: fmt.Errorf("decode oura response: %w", err)}
	}
	if len(parsed.Data) == 0 {
		return models.HealthMetrics{}, &ConnectionError{Err: errors.New("no daily activity records returned")}
	}

	latest := parsed.Data[len(parsed.Data)-1]
	update := models.HealthMetrics{
		IsConnected: true,
		LastSynced:  c.now().Format("15:04:05"),
	}
	if latest.Steps != nil {
		update.DailySteps = strconv.FormatInt(*latest.Steps, 10)
	}
	if latest.ActiveCalories != nil {
		update.ActiveCalories = strconv.FormatInt(*latest.ActiveCalories, 10)
	}
	return update, nil
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// MetricsStore receives merged metric updates
type MetricsStore interface {
	MergeMetrics(update models.HealthMetrics) error
}

// Sync fetches the latest activity and merges it into store. The returned string is the
// status line to show the user; failures never propagate as errors.
func (c *Client) Sync(ctx context.Context, store MetricsStore, token string) string {
	update, err := c.FetchLatestActivity(ctx, token)
	if err != nil {
		logging.Warn("oura sync failed", "err", err)
		var connErr *ConnectionError
		if errors.As(err, &connErr) {
			return connErr.Status()
		}
		return fmt.Sprintf("Error: %v", err)
	}

	if err := store.MergeMetrics(update); err != nil {
		logging.Warn("oura metrics saved in memory only", "err", err)
	}
	logging.Info("oura sync complete", "steps", update.DailySteps, "active_calories", update.ActiveCalories)
	return "Oura Synchrony Achieved."
}
