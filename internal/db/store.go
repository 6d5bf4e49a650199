package db

import (
	"github.com/jmoiron/sqlx"

	"github.com/dhanfinix/sukund/internal/model"
)

// Store is the daemon's durable state surface. Trigger handlers re-read it
// on every firing; no in-memory state is assumed valid between firings.
type Store interface {
	// prayer toggles
	PrayerEnabled() (map[model.PrayerName]bool, error)
	SetPrayerEnabled(name model.PrayerName, enabled bool) error

	// process-wide settings
	SilenceDuration() (int, error)
	SetSilenceDuration(minutes int) error
	SilenceMode() (model.SilenceMode, error)
	SetSilenceMode(mode model.SilenceMode) error
	Location() (lat, lng float64, name string, err error)
	SetLocation(lat, lng float64, name string) error
	CalculationMethod() (int, error)
	SetCalculationMethod(method int) error

	// audio snapshot slot (single, last-writer-wins)
	SaveAudioSnapshot(snap model.AudioSnapshot) error
	AudioSnapshot() (model.AudioSnapshot, error)

	// active silence window
	SetActiveWindow(win model.SilenceWindow) error
	ActiveWindow() (model.SilenceWindow, error)

	// ClearSilenceState drops both the window record and the snapshot.
	ClearSilenceState() error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore() Store {
	return &pgStore{db: DB}
}
