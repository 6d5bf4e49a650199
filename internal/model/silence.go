package model

import "time"

// SilenceMode defines how the device is silenced during a window.
type SilenceMode string

const (
	// ModeDND requests the system do-not-disturb interruption filter.
	ModeDND SilenceMode = "DND"
	// ModeSilent sets the ringer to silent; nothing vibrates or sounds.
	ModeSilent SilenceMode = "SILENT"
	// ModeVibrate sets the ringer to vibrate and keeps the ring and
	// notification streams at level so tactile alerting still works.
	ModeVibrate SilenceMode = "VIBRATE"
)

// ParseSilenceMode falls back to DND for unrecognised values, matching the
// stored default.
func ParseSilenceMode(s string) SilenceMode {
	switch SilenceMode(s) {
	case ModeSilent:
		return ModeSilent
	case ModeVibrate:
		return ModeVibrate
	default:
		return ModeDND
	}
}

// ManualLabel is the window label reserved for user-initiated silences.
const ManualLabel = "Manual"

// SilenceWindow is one active or pending mute period. End at the zero
// value means no window is recorded.
type SilenceWindow struct {
	Label string    `json:"label"`
	End   time.Time `json:"end"`
}

// Active reports whether the window covers the given instant.
func (w SilenceWindow) Active(now time.Time) bool {
	return !w.End.IsZero() && w.End.After(now)
}

// VolumeUnset is the sentinel for "no saved level"; restore skips streams
// carrying it.
const VolumeUnset = -1

// RingerMode mirrors the platform ringer constants persisted by the app.
type RingerMode int

const (
	RingerUnset   RingerMode = -1
	RingerSilent  RingerMode = 0
	RingerVibrate RingerMode = 1
	RingerNormal  RingerMode = 2
)

// InterruptionFilter mirrors the platform do-not-disturb filter constants.
type InterruptionFilter int

const (
	FilterUnset    InterruptionFilter = -1
	FilterAll      InterruptionFilter = 1
	FilterPriority InterruptionFilter = 2
	FilterNone     InterruptionFilter = 3
)

// AudioSnapshot is the pre-mute audio state. Exactly one snapshot exists at
// a time, owned by the active SilenceWindow.
type AudioSnapshot struct {
	Media        int                `json:"media"`
	Ring         int                `json:"ring"`
	Notification int                `json:"notification"`
	Alarm        int                `json:"alarm"`
	Ringer       RingerMode         `json:"ringer"`
	Filter       InterruptionFilter `json:"filter"`
}

// EmptySnapshot returns a snapshot with every field at its sentinel.
func EmptySnapshot() AudioSnapshot {
	return AudioSnapshot{
		Media:        VolumeUnset,
		Ring:         VolumeUnset,
		Notification: VolumeUnset,
		Alarm:        VolumeUnset,
		Ringer:       RingerUnset,
		Filter:       FilterUnset,
	}
}
