package db

import (
	"sync"

	"github.com/dhanfinix/sukund/internal/model"
)

// MemStore is an in-memory Store used by tests and by audio-less dev runs
// where no Postgres is available. It honours the same defaults as pgStore.
type MemStore struct {
	mu       sync.RWMutex
	enabled  map[model.PrayerName]bool
	duration int
	mode     model.SilenceMode
	lat, lng float64
	locName  string
	method   int
	snap     model.AudioSnapshot
	window   model.SilenceWindow
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	enabled := make(map[model.PrayerName]bool, 5)
	for _, name := range model.PrayerNames() {
		enabled[name] = true
	}
	return &MemStore{
		enabled:  enabled,
		duration: defaultDuration,
		mode:     model.ModeDND,
		lat:      defaultLatitude,
		lng:      defaultLongitude,
		method:   defaultMethod,
		snap:     model.EmptySnapshot(),
	}
}

func (m *MemStore) PrayerEnabled() (map[model.PrayerName]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.PrayerName]bool, len(m.enabled))
	for k, v := range m.enabled {
		out[k] = v
	}
	return out, nil
}

func (m *MemStore) SetPrayerEnabled(name model.PrayerName, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled[name] = enabled
	return nil
}

func (m *MemStore) SilenceDuration() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.duration, nil
}

func (m *MemStore) SetSilenceDuration(minutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = minutes
	return nil
}

func (m *MemStore) SilenceMode() (model.SilenceMode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode, nil
}

func (m *MemStore) SetSilenceMode(mode model.SilenceMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
	return nil
}

func (m *MemStore) Location() (float64, float64, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lat, m.lng, m.locName, nil
}

func (m *MemStore) SetLocation(lat, lng float64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lat, m.lng, m.locName = lat, lng, name
	return nil
}

func (m *MemStore) CalculationMethod() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.method, nil
}

func (m *MemStore) SetCalculationMethod(method int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.method = method
	return nil
}

func (m *MemStore) SaveAudioSnapshot(snap model.AudioSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	return nil
}

func (m *MemStore) AudioSnapshot() (model.AudioSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap, nil
}

func (m *MemStore) SetActiveWindow(win model.SilenceWindow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.window = win
	return nil
}

func (m *MemStore) ActiveWindow() (model.SilenceWindow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.window, nil
}

func (m *MemStore) ClearSilenceState() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.window = model.SilenceWindow{}
	m.snap = model.EmptySnapshot()
	return nil
}
