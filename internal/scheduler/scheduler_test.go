package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dhanfinix/sukund/internal/audio"
	"github.com/dhanfinix/sukund/internal/db"
	"github.com/dhanfinix/sukund/internal/model"
	"github.com/dhanfinix/sukund/internal/silence"
)

type fakeRegistry struct {
	mu        sync.Mutex
	armed     map[string]time.Time
	cancelled []string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{armed: map[string]time.Time{}}
}

func (f *fakeRegistry) Register(id string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed[id] = at
}

func (f *fakeRegistry) Cancel(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.armed, id)
	f.cancelled = append(f.cancelled, id)
}

func (f *fakeRegistry) armedAt(id string) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.armed[id]
	return at, ok
}

func (f *fakeRegistry) armedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.armed)
}

type fakeTimes struct {
	times map[string]map[model.PrayerName]string
	err   error
}

func (f *fakeTimes) DayTimes(_ context.Context, date time.Time, _, _ float64, _ int) (map[model.PrayerName]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	day, ok := f.times[date.Format("2006-01-02")]
	if !ok {
		return nil, errors.New("no data for date")
	}
	return day, nil
}

func newTestScheduler(t *testing.T, now time.Time) (*Scheduler, *fakeRegistry, *db.MemStore, *audio.NullController) {
	t.Helper()
	store := db.NewMemStore()
	controller := audio.NewNullController()
	exec := silence.NewExecutor(store, controller, silence.NopNotifier{})
	registry := newFakeRegistry()
	s := New(store, &fakeTimes{}, registry, exec)
	s.now = func() time.Time { return now }
	return s, registry, store, controller
}

func infos(entries map[model.PrayerName]string, enabled map[model.PrayerName]bool) []model.PrayerInfo {
	return buildInfos(entries, enabled)
}

func TestScheduleAllPastAndFuture(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.Local)
	s, registry, _, _ := newTestScheduler(t, now)

	enabled := map[model.PrayerName]bool{
		model.Fajr: true, model.Dhuhr: true,
		model.Asr: false, model.Maghrib: false, model.Isha: false,
	}
	today := infos(map[model.PrayerName]string{model.Fajr: "05:00", model.Dhuhr: "12:00"}, enabled)
	tomorrow := infos(map[model.PrayerName]string{model.Fajr: "05:00", model.Dhuhr: "12:00"}, enabled)

	s.ScheduleAll(today, tomorrow, 15)

	// Fajr 05:00 has passed at 06:00, so its start moves to tomorrow.
	fajrStart, ok := registry.armedAt(startID(model.Fajr))
	if !ok {
		t.Fatal("fajr start not armed")
	}
	wantFajr := time.Date(2025, 3, 11, 5, 0, 0, 0, time.Local)
	if !fajrStart.Equal(wantFajr) {
		t.Errorf("fajr start = %v, want %v", fajrStart, wantFajr)
	}

	dhuhrStart, ok := registry.armedAt(startID(model.Dhuhr))
	if !ok {
		t.Fatal("dhuhr start not armed")
	}
	wantDhuhr := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	if !dhuhrStart.Equal(wantDhuhr) {
		t.Errorf("dhuhr start = %v, want %v", dhuhrStart, wantDhuhr)
	}

	dhuhrStop, ok := registry.armedAt(stopID(model.Dhuhr))
	if !ok {
		t.Fatal("dhuhr stop not armed")
	}
	if got, want := dhuhrStop.Sub(dhuhrStart), 15*time.Minute; got != want {
		t.Errorf("stop offset = %v, want %v", got, want)
	}

	// Disabled prayers must not be armed.
	if _, ok := registry.armedAt(startID(model.Asr)); ok {
		t.Error("asr armed despite being disabled")
	}

	// Rollover lands shortly after next local midnight.
	rollover, ok := registry.armedAt(rolloverID)
	if !ok {
		t.Fatal("rollover not armed")
	}
	wantRollover := time.Date(2025, 3, 11, 0, 0, 5, 0, time.Local)
	if !rollover.Equal(wantRollover) {
		t.Errorf("rollover = %v, want %v", rollover, wantRollover)
	}
}

func TestScheduleAllIdempotent(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.Local)
	s, registry, _, _ := newTestScheduler(t, now)

	enabled := map[model.PrayerName]bool{
		model.Fajr: true, model.Dhuhr: true, model.Asr: true,
		model.Maghrib: true, model.Isha: true,
	}
	times := map[model.PrayerName]string{
		model.Fajr: "05:00", model.Dhuhr: "12:00", model.Asr: "15:15",
		model.Maghrib: "18:05", model.Isha: "19:20",
	}
	today := infos(times, enabled)
	tomorrow := infos(times, enabled)

	s.ScheduleAll(today, tomorrow, 15)
	first := registry.armedCount()
	s.ScheduleAll(today, tomorrow, 15)

	if got := registry.armedCount(); got != first {
		t.Errorf("re-schedule changed armed count: %d -> %d", first, got)
	}
	// 5 starts + 5 stops + rollover
	if first != 11 {
		t.Errorf("armed count = %d, want 11", first)
	}
}

func TestScheduleAllSkipsUnusableTimes(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.Local)
	s, registry, _, _ := newTestScheduler(t, now)

	enabled := map[model.PrayerName]bool{model.Fajr: true, model.Dhuhr: true}
	today := infos(map[model.PrayerName]string{
		model.Fajr:  model.UnknownTime,
		model.Dhuhr: "12:00",
	}, enabled)
	tomorrow := infos(map[model.PrayerName]string{}, enabled)

	s.ScheduleAll(today, tomorrow, 15)

	if _, ok := registry.armedAt(startID(model.Fajr)); ok {
		t.Error("fajr armed despite unknown time")
	}
	if _, ok := registry.armedAt(startID(model.Dhuhr)); !ok {
		t.Error("dhuhr not armed; unrelated prayer skipped")
	}
}

func TestManualWindowDisjointFromPrayers(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.Local)
	s, registry, store, _ := newTestScheduler(t, now)

	enabled := map[model.PrayerName]bool{model.Dhuhr: true}
	today := infos(map[model.PrayerName]string{model.Dhuhr: "12:00"}, enabled)
	s.ScheduleAll(today, today, 15)

	s.ScheduleManual(10)

	if _, ok := registry.armedAt(manualStopID); !ok {
		t.Fatal("manual stop not armed")
	}
	win, _ := store.ActiveWindow()
	if win.Label != model.ManualLabel {
		t.Errorf("window label = %q, want %q", win.Label, model.ManualLabel)
	}

	s.StopSilence()

	if _, ok := registry.armedAt(manualStopID); ok {
		t.Error("manual stop still armed after StopSilence")
	}
	if _, ok := registry.armedAt(startID(model.Dhuhr)); !ok {
		t.Error("StopSilence cancelled a prayer start trigger")
	}
	if _, ok := registry.armedAt(stopID(model.Dhuhr)); !ok {
		t.Error("StopSilence cancelled a prayer stop trigger")
	}
}

func TestManualOverwriteCancelsResumedStop(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.Local)
	s, registry, store, _ := newTestScheduler(t, now)

	// Boot resume of a window ending in 5 minutes arms resume:stop.
	store.SetActiveWindow(model.SilenceWindow{Label: "Fajr", End: now.Add(5 * time.Minute)})
	if !s.ResumeActiveWindow() {
		t.Fatal("expected window to resume")
	}
	if _, ok := registry.armedAt(resumeStopID); !ok {
		t.Fatal("resume stop not armed")
	}

	// Force-starting a longer manual window overwrites the resumed one; the
	// old stop must not survive to fire restore mid-window.
	s.ScheduleManual(60)

	if _, ok := registry.armedAt(resumeStopID); ok {
		t.Error("resume stop still armed after manual overwrite")
	}
	at, ok := registry.armedAt(manualStopID)
	if !ok {
		t.Fatal("manual stop not armed")
	}
	if want := now.Add(60 * time.Minute); !at.Equal(want) {
		t.Errorf("manual stop at %v, want %v", at, want)
	}
	win, _ := store.ActiveWindow()
	if win.Label != model.ManualLabel {
		t.Errorf("window label = %q, want %q", win.Label, model.ManualLabel)
	}
}

func TestHandleTriggerStartMutes(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	s, _, store, controller := newTestScheduler(t, now)

	s.HandleTrigger("prayer:Dhuhr:start")

	win, _ := store.ActiveWindow()
	if win.Label != "Dhuhr" {
		t.Errorf("window label = %q, want Dhuhr", win.Label)
	}
	if level, _ := controller.StreamVolume(audio.StreamMedia); level != 0 {
		t.Errorf("media volume = %d, want 0", level)
	}

	s.HandleTrigger("prayer:Dhuhr:stop")

	win, _ = store.ActiveWindow()
	if !win.End.IsZero() {
		t.Error("window not cleared after stop trigger")
	}
	if level, _ := controller.StreamVolume(audio.StreamMedia); level != 60 {
		t.Errorf("media volume = %d, want 60 after restore", level)
	}
}

func TestRefreshAndScheduleFetchFailure(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.Local)
	s, registry, _, _ := newTestScheduler(t, now)
	s.times = &fakeTimes{err: errors.New("network down")}

	if err := s.RefreshAndSchedule(context.Background()); err == nil {
		t.Fatal("expected error when today's fetch fails")
	}
	if registry.armedCount() != 0 {
		t.Error("triggers armed despite failed refresh")
	}
}

func TestRefreshAndScheduleTomorrowMissing(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.Local)
	s, registry, _, _ := newTestScheduler(t, now)
	s.times = &fakeTimes{times: map[string]map[model.PrayerName]string{
		"2025-03-10": {
			model.Fajr: "05:00", model.Dhuhr: "12:00", model.Asr: "15:15",
			model.Maghrib: "18:05", model.Isha: "19:20",
		},
	}}

	if err := s.RefreshAndSchedule(context.Background()); err != nil {
		t.Fatalf("RefreshAndSchedule: %v", err)
	}
	// Fajr has passed and tomorrow is unknown, so it is skipped; the four
	// remaining prayers are still today.
	if _, ok := registry.armedAt(startID(model.Fajr)); ok {
		t.Error("fajr armed with no tomorrow data")
	}
	for _, name := range []model.PrayerName{model.Dhuhr, model.Asr, model.Maghrib, model.Isha} {
		if _, ok := registry.armedAt(startID(name)); !ok {
			t.Errorf("%s not armed", name)
		}
	}
}

func TestResumeActiveWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.Local)

	t.Run("future end re-arms stop", func(t *testing.T) {
		s, registry, store, _ := newTestScheduler(t, now)
		end := now.Add(10 * time.Minute)
		store.SetActiveWindow(model.SilenceWindow{Label: "Fajr", End: end})

		if !s.ResumeActiveWindow() {
			t.Fatal("expected window to resume")
		}
		at, ok := registry.armedAt(resumeStopID)
		if !ok {
			t.Fatal("resume stop not armed")
		}
		if !at.Equal(end) {
			t.Errorf("resume stop at %v, want %v", at, end)
		}
	})

	t.Run("expired end restores immediately", func(t *testing.T) {
		s, _, store, _ := newTestScheduler(t, now)
		store.SetActiveWindow(model.SilenceWindow{Label: "Fajr", End: now.Add(-time.Minute)})

		if !s.ResumeActiveWindow() {
			t.Fatal("expected expired window to be handled")
		}
		win, _ := store.ActiveWindow()
		if !win.End.IsZero() {
			t.Error("expired window not cleared")
		}
	})

	t.Run("no window", func(t *testing.T) {
		s, _, _, _ := newTestScheduler(t, now)
		if s.ResumeActiveWindow() {
			t.Error("resumed a window that does not exist")
		}
	})
}
