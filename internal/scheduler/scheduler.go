// Package scheduler computes the next occurrence of each enabled prayer
// and arms start/stop wake-ups for it, plus the daily rollover.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dhanfinix/sukund/internal/db"
	"github.com/dhanfinix/sukund/internal/model"
	"github.com/dhanfinix/sukund/internal/silence"
	"github.com/dhanfinix/sukund/internal/trigger"
)

// Trigger id namespaces. Manual and resume ids are disjoint from the
// per-prayer ids so stopping a manual window can never cancel a prayer
// trigger.
const (
	rolloverID   = "rollover"
	manualStopID = "manual:stop"
	resumeStopID = "resume:stop"
)

func startID(name model.PrayerName) string { return "prayer:" + string(name) + ":start" }
func stopID(name model.PrayerName) string  { return "prayer:" + string(name) + ":stop" }

// The rollover fires a few seconds past midnight to stay clear of
// date-boundary edge effects.
const rolloverOffset = 5 * time.Second

// TimesProvider yields the event→"HH:MM" mapping for one date.
type TimesProvider interface {
	DayTimes(ctx context.Context, date time.Time, lat, lng float64, method int) (map[model.PrayerName]string, error)
}

type Scheduler struct {
	store    db.Store
	times    TimesProvider
	triggers trigger.Registry
	exec     *silence.Executor
	now      func() time.Time
}

func New(store db.Store, times TimesProvider, triggers trigger.Registry, exec *silence.Executor) *Scheduler {
	return &Scheduler{
		store:    store,
		times:    times,
		triggers: triggers,
		exec:     exec,
		now:      time.Now,
	}
}

// HandleTrigger dispatches a fired wake-up. Handlers re-read durable state
// and carry nothing between firings.
func (s *Scheduler) HandleTrigger(id string) {
	switch {
	case id == rolloverID:
		if err := s.RefreshAndSchedule(context.Background()); err != nil {
			log.Error().Err(err).Msg("rollover refresh failed, re-arming for tomorrow")
			// ScheduleAll never ran, so the rollover chain must be kept
			// alive by hand.
			s.armRollover()
		}
	case id == manualStopID, id == resumeStopID:
		s.exec.Restore()
	default:
		s.handlePrayerTrigger(id)
	}
}

func (s *Scheduler) handlePrayerTrigger(id string) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] != "prayer" {
		log.Error().Str("trigger", id).Msg("unknown trigger id")
		return
	}
	name, ok := model.ParsePrayerName(parts[1])
	if !ok {
		log.Error().Str("trigger", id).Msg("trigger carries unknown prayer name")
		return
	}
	switch parts[2] {
	case "start":
		duration, err := s.store.SilenceDuration()
		if err != nil {
			log.Error().Err(err).Msg("failed to read silence duration, using default")
		}
		s.exec.Mute(string(name), duration)
	case "stop":
		s.exec.Restore()
	default:
		log.Error().Str("trigger", id).Msg("unknown trigger kind")
	}
}

// ScheduleAll arms the next occurrence of each enabled prayer across a
// rolling 24-hour window. All prior per-prayer triggers are cancelled
// first: the trigger set is replaced wholesale, never diffed, so stale or
// duplicate firings cannot survive a re-schedule.
func (s *Scheduler) ScheduleAll(today, tomorrow []model.PrayerInfo, durationMin int) {
	s.cancelPrayerTriggers()

	now := s.now()
	duration := time.Duration(durationMin) * time.Minute

	for _, p := range today {
		if !p.Enabled {
			continue
		}

		startAt, err := instantOn(now, p.Time)
		if err != nil {
			log.Warn().Str("prayer", string(p.Name)).Str("time", p.Time).Msg("skipping prayer with unusable time")
			continue
		}

		if !startAt.After(now) {
			// Today's adhan has passed; fall over to tomorrow's instance.
			next, ok := findPrayer(tomorrow, p.Name)
			if !ok || !next.Enabled {
				continue
			}
			startAt, err = instantOn(now.AddDate(0, 0, 1), next.Time)
			if err != nil {
				log.Warn().Str("prayer", string(p.Name)).Str("time", next.Time).Msg("skipping prayer with unusable time")
				continue
			}
		}

		s.triggers.Register(startID(p.Name), startAt)
		s.triggers.Register(stopID(p.Name), startAt.Add(duration))
		log.Info().
			Str("prayer", string(p.Name)).
			Time("start", startAt).
			Time("stop", startAt.Add(duration)).
			Msg("prayer silence scheduled")
	}

	s.armRollover()
}

// ScheduleManual starts a silence immediately and arms only its stop
// trigger. The manual window overwrites whatever window is active, so a
// stop trigger left over from a boot resume must go with it.
func (s *Scheduler) ScheduleManual(durationMin int) {
	s.triggers.Cancel(manualStopID)
	s.triggers.Cancel(resumeStopID)
	s.exec.Mute(model.ManualLabel, durationMin)
	s.triggers.Register(manualStopID, s.now().Add(time.Duration(durationMin)*time.Minute))
}

// StopSilence cancels the manual stop trigger (prayer triggers are never
// touched) and restores audio right away.
func (s *Scheduler) StopSilence() {
	s.triggers.Cancel(manualStopID)
	s.triggers.Cancel(resumeStopID)
	s.exec.Restore()
}

// RefreshAndSchedule pulls today's and tomorrow's tables and re-arms the
// whole trigger set. Tomorrow failing alone is tolerated: today's events
// still schedule, tomorrow's fall to the next rollover.
func (s *Scheduler) RefreshAndSchedule(ctx context.Context) error {
	lat, lng, _, err := s.store.Location()
	if err != nil {
		return fmt.Errorf("read location: %w", err)
	}
	method, err := s.store.CalculationMethod()
	if err != nil {
		return fmt.Errorf("read calculation method: %w", err)
	}
	duration, err := s.store.SilenceDuration()
	if err != nil {
		return fmt.Errorf("read silence duration: %w", err)
	}
	enabled, err := s.store.PrayerEnabled()
	if err != nil {
		return fmt.Errorf("read prayer toggles: %w", err)
	}

	now := s.now()
	timesToday, err := s.times.DayTimes(ctx, now, lat, lng, method)
	if err != nil {
		return fmt.Errorf("fetch today's times: %w", err)
	}
	timesTomorrow, err := s.times.DayTimes(ctx, now.AddDate(0, 0, 1), lat, lng, method)
	if err != nil {
		log.Warn().Err(err).Msg("tomorrow's times unavailable, scheduling today only")
		timesTomorrow = map[model.PrayerName]string{}
	}

	s.ScheduleAll(buildInfos(timesToday, enabled), buildInfos(timesTomorrow, enabled), duration)
	return nil
}

// ResumeActiveWindow re-arms the stop trigger for a window that was active
// when the process died, or restores immediately when its end has passed.
// Returns true when there was a window to resume.
func (s *Scheduler) ResumeActiveWindow() bool {
	win, err := s.store.ActiveWindow()
	if err != nil {
		log.Error().Err(err).Msg("failed to read active window at boot")
		return false
	}
	if win.End.IsZero() {
		return false
	}
	if !win.End.After(s.now()) {
		log.Info().Str("label", win.Label).Msg("silence window expired while down, restoring audio")
		s.exec.Restore()
		return true
	}
	log.Info().Str("label", win.Label).Time("until", win.End).Msg("resuming active silence window")
	s.triggers.Register(resumeStopID, win.End)
	return true
}

func (s *Scheduler) cancelPrayerTriggers() {
	for _, name := range model.PrayerNames() {
		s.triggers.Cancel(startID(name))
		s.triggers.Cancel(stopID(name))
	}
}

func (s *Scheduler) armRollover() {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, 1).
		Add(rolloverOffset)
	s.triggers.Register(rolloverID, next)
}

func buildInfos(times map[model.PrayerName]string, enabled map[model.PrayerName]bool) []model.PrayerInfo {
	infos := make([]model.PrayerInfo, 0, 5)
	for _, name := range model.PrayerNames() {
		t, ok := times[name]
		if !ok {
			t = model.UnknownTime
		}
		on, ok := enabled[name]
		if !ok {
			on = true
		}
		infos = append(infos, model.PrayerInfo{Name: name, Time: t, Enabled: on})
	}
	return infos
}

func findPrayer(infos []model.PrayerInfo, name model.PrayerName) (model.PrayerInfo, bool) {
	for _, p := range infos {
		if p.Name == name {
			return p, true
		}
	}
	return model.PrayerInfo{}, false
}

// instantOn combines a date with an "HH:MM" string in local time.
func instantOn(date time.Time, hhmm string) (time.Time, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("unexpected time-of-day %q", hhmm)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, fmt.Errorf("unexpected time-of-day %q", hhmm)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, fmt.Errorf("unexpected time-of-day %q", hhmm)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("time-of-day %q out of range", hhmm)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}
