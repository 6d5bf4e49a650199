// Package audio abstracts the device audio subsystem behind a controller
// interface so the executors can run against PulseAudio or nothing at all.
package audio

import "github.com/dhanfinix/sukund/internal/model"

// Stream identifies one of the four volume streams the daemon manages.
type Stream string

const (
	StreamMedia        Stream = "media"
	StreamRing         Stream = "ring"
	StreamNotification Stream = "notification"
	StreamAlarm        Stream = "alarm"
)

// Streams returns every managed stream.
func Streams() []Stream {
	return []Stream{StreamMedia, StreamRing, StreamNotification, StreamAlarm}
}

// Controller is the audio subsystem port. Implementations may refuse
// individual operations (permission races with system settings); callers
// treat such failures as per-operation and continue.
type Controller interface {
	StreamVolume(stream Stream) (int, error)
	SetStreamVolume(stream Stream, level int) error
	RingerMode() (model.RingerMode, error)
	SetRingerMode(mode model.RingerMode) error
	InterruptionFilter() (model.InterruptionFilter, error)
	SetInterruptionFilter(filter model.InterruptionFilter) error
}
