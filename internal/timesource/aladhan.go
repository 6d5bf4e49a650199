// Package timesource talks to the Aladhan calendar API, the upstream
// source of monthly prayer time tables.
package timesource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.aladhan.com"

// StatusError reports a non-200 answer from the API.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("aladhan api error: code=%d status=%q", e.Code, e.Status)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// MonthTimes fetches the full calendar for one month at the given
// coordinates and calculation method.
func (c *Client) MonthTimes(ctx context.Context, year, month int, lat, lng float64, method int) (*CalendarResponse, error) {
	endpoint := fmt.Sprintf("%s/v1/calendar/%d/%d", c.BaseURL, year, month)
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	query.Set("method", strconv.Itoa(method))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build calendar request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var payload CalendarResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode calendar response: %w", err)
	}
	if payload.Code != http.StatusOK {
		return nil, &StatusError{Code: payload.Code, Status: payload.Status}
	}
	return &payload, nil
}
