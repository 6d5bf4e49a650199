package timesource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMonthTimes(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"code": 200,
			"status": "OK",
			"data": [{
				"timings": {"Fajr": "05:12 (WIB)", "Dhuhr": "12:01 (WIB)", "Asr": "15:20 (WIB)", "Maghrib": "18:07 (WIB)", "Isha": "19:18 (WIB)"},
				"date": {"gregorian": {"date": "01-03-2025"}}
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.MonthTimes(context.Background(), 2025, 3, -6.2088, 106.8456, 20)
	if err != nil {
		t.Fatalf("MonthTimes: %v", err)
	}

	if gotPath != "/v1/calendar/2025/3" {
		t.Errorf("path = %q, want /v1/calendar/2025/3", gotPath)
	}
	if gotQuery != "latitude=-6.2088&longitude=106.8456&method=20" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("len(data) = %d, want 1", len(resp.Data))
	}
	if resp.Data[0].Timings.Fajr != "05:12 (WIB)" {
		t.Errorf("fajr = %q", resp.Data[0].Timings.Fajr)
	}
	if resp.Data[0].Date.Gregorian.Date != "01-03-2025" {
		t.Errorf("date = %q", resp.Data[0].Date.Gregorian.Date)
	}
}

func TestMonthTimesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.MonthTimes(context.Background(), 2025, 3, 0, 0, 20)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusBadGateway {
		t.Errorf("code = %d, want 502", statusErr.Code)
	}
}

func TestMonthTimesBodyCodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code": 400, "status": "Bad Request", "data": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.MonthTimes(context.Background(), 2025, 3, 0, 0, 20)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.Code != 400 {
		t.Errorf("code = %d, want 400", statusErr.Code)
	}
}

func TestNewClientDefaultBaseURL(t *testing.T) {
	client := NewClient("")
	if client.BaseURL != defaultBaseURL {
		t.Errorf("base url = %q, want %q", client.BaseURL, defaultBaseURL)
	}
}
