// Package prayer manages prayer time tables with a durable cache and
// monthly fetching.
//
// Flow:
//  1. Check the cache for the requested day
//  2. If missing, fetch the full month from the calendar API
//  3. Store every day of the month in the cache
//  4. Return the requested day's times
package prayer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dhanfinix/sukund/internal/model"
	"github.com/dhanfinix/sukund/internal/timesource"
)

// Cached day rows expire on their own instead of being swept; anything
// older than yesterday is garbage either way.
const cacheTTL = 72 * time.Hour

const keyPrefix = "prayerday:"

// TimeSource is the upstream monthly table fetch.
type TimeSource interface {
	MonthTimes(ctx context.Context, year, month int, lat, lng float64, method int) (*timesource.CalendarResponse, error)
}

// Cache is the durable day-row cache keyed by date + rounded coordinates +
// method.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	DeletePattern(ctx context.Context, pattern string)
}

type Repository struct {
	source TimeSource
	cache  Cache

	// fetchMu guards locks; each per-key lock serialises the fetch for one
	// (month, coordinates, method) tuple so concurrent requests do at most
	// one upstream call. Entries are refcounted and dropped with the last
	// holder, so the map stays empty between fetches.
	fetchMu sync.Mutex
	locks   map[string]*fetchLock
}

type fetchLock struct {
	sync.Mutex
	refs int
}

func NewRepository(source TimeSource, cache Cache) *Repository {
	return &Repository{
		source: source,
		cache:  cache,
		locks:  map[string]*fetchLock{},
	}
}

// DayTimes returns the event→"HH:MM" mapping for one date. A full month is
// fetched and cached when the day is missing.
func (r *Repository) DayTimes(ctx context.Context, date time.Time, lat, lng float64, method int) (map[model.PrayerName]string, error) {
	key := dayKey(date, lat, lng, method)

	if blob, ok := r.cache.Get(ctx, key); ok {
		return decodeTimings(blob)
	}

	fetchKey := monthKey(date, lat, lng, method)
	lock := r.acquireLock(fetchKey)
	defer r.releaseLock(fetchKey, lock)

	// Re-check after acquiring the lock; a concurrent caller may have
	// completed the fetch already.
	if blob, ok := r.cache.Get(ctx, key); ok {
		return decodeTimings(blob)
	}

	if err := r.fetchMonth(ctx, date, lat, lng, method); err != nil {
		return nil, err
	}

	blob, ok := r.cache.Get(ctx, key)
	if !ok {
		return nil, fmt.Errorf("date %s not found in calendar response", date.Format("2006-01-02"))
	}
	return decodeTimings(blob)
}

// Refresh drops every cached day row so the next DayTimes call refetches.
func (r *Repository) Refresh(ctx context.Context) {
	r.cache.DeletePattern(ctx, keyPrefix+"*")
}

func (r *Repository) fetchMonth(ctx context.Context, date time.Time, lat, lng float64, method int) error {
	resp, err := r.source.MonthTimes(ctx, date.Year(), int(date.Month()), lat, lng, method)
	if err != nil {
		log.Error().Err(err).
			Int("year", date.Year()).
			Int("month", int(date.Month())).
			Msg("calendar fetch failed")
		return err
	}

	for _, day := range resp.Data {
		isoDate, err := gregorianToISO(day.Date.Gregorian.Date)
		if err != nil {
			log.Warn().Err(err).Str("date", day.Date.Gregorian.Date).Msg("skipping malformed calendar day")
			continue
		}
		timings := map[model.PrayerName]string{
			model.Fajr:    cleanTime(day.Timings.Fajr),
			model.Dhuhr:   cleanTime(day.Timings.Dhuhr),
			model.Asr:     cleanTime(day.Timings.Asr),
			model.Maghrib: cleanTime(day.Timings.Maghrib),
			model.Isha:    cleanTime(day.Timings.Isha),
		}
		blob, err := json.Marshal(timings)
		if err != nil {
			return fmt.Errorf("encode timings for %s: %w", isoDate, err)
		}
		r.cache.Set(ctx, rawDayKey(isoDate, lat, lng, method), string(blob), cacheTTL)
	}
	return nil
}

func (r *Repository) acquireLock(key string) *fetchLock {
	r.fetchMu.Lock()
	lock, ok := r.locks[key]
	if !ok {
		lock = &fetchLock{}
		r.locks[key] = lock
	}
	lock.refs++
	r.fetchMu.Unlock()

	lock.Lock()
	return lock
}

func (r *Repository) releaseLock(key string, lock *fetchLock) {
	lock.Unlock()
	r.fetchMu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(r.locks, key)
	}
	r.fetchMu.Unlock()
}

func decodeTimings(blob string) (map[model.PrayerName]string, error) {
	var timings map[model.PrayerName]string
	if err := json.Unmarshal([]byte(blob), &timings); err != nil {
		return nil, fmt.Errorf("decode cached timings: %w", err)
	}
	return timings, nil
}

func dayKey(date time.Time, lat, lng float64, method int) string {
	return rawDayKey(date.Format("2006-01-02"), lat, lng, method)
}

// rawDayKey rounds coordinates to 4 decimals so nearby GPS fixes share one
// cache row.
func rawDayKey(isoDate string, lat, lng float64, method int) string {
	return fmt.Sprintf("%s%s:%.4f:%.4f:%d", keyPrefix, isoDate, lat, lng, method)
}

func monthKey(date time.Time, lat, lng float64, method int) string {
	return fmt.Sprintf("%s:%.4f:%.4f:%d", date.Format("2006-01"), lat, lng, method)
}

// gregorianToISO converts the API's DD-MM-YYYY dates to YYYY-MM-DD.
func gregorianToISO(raw string) (string, error) {
	parts := strings.Split(raw, "-")
	if len(parts) != 3 {
		return "", fmt.Errorf("unexpected gregorian date %q", raw)
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0], nil
}

// cleanTime strips trailing timezone annotations such as "05:30 (WIB)".
func cleanTime(raw string) string {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return model.UnknownTime
	}
	return fields[0]
}
