// Package silence holds the executors that run at Start and Stop wake-ups.
package silence

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dhanfinix/sukund/internal/audio"
	"github.com/dhanfinix/sukund/internal/db"
	"github.com/dhanfinix/sukund/internal/model"
)

// Notifier is the ongoing-notification surface. Publish failures are the
// notifier's problem; executors never fail on them.
type Notifier interface {
	PublishActive(label string, end time.Time)
	Clear()
}

// Executor performs the save/mute/restore sequence around a silence
// window. Every method re-reads the store; both directions are idempotent
// so duplicate firings degenerate into safe no-ops.
type Executor struct {
	store    db.Store
	audio    audio.Controller
	notifier Notifier
	now      func() time.Time
}

func NewExecutor(store db.Store, controller audio.Controller, notifier Notifier) *Executor {
	return &Executor{
		store:    store,
		audio:    controller,
		notifier: notifier,
		now:      time.Now,
	}
}

// Mute runs the Start sequence: snapshot current audio state, record the
// window, apply the configured silence mode, zero the streams, notify.
func (e *Executor) Mute(label string, durationMin int) {
	now := e.now()

	prev, err := e.store.ActiveWindow()
	if err != nil {
		log.Error().Err(err).Msg("mute: failed to read active window")
	}

	// When a window is already running, the existing snapshot is the true
	// pre-silence baseline; re-snapshotting here would capture muted
	// levels and lose it. Only the window metadata moves forward.
	if !prev.Active(now) {
		if err := e.store.SaveAudioSnapshot(e.captureSnapshot()); err != nil {
			log.Error().Err(err).Msg("mute: failed to persist audio snapshot")
		}
	}

	end := now.Add(time.Duration(durationMin) * time.Minute)
	if err := e.store.SetActiveWindow(model.SilenceWindow{Label: label, End: end}); err != nil {
		log.Error().Err(err).Str("label", label).Msg("mute: failed to persist silence window")
	}

	mode, err := e.store.SilenceMode()
	if err != nil {
		log.Error().Err(err).Msg("mute: failed to read silence mode, using DND")
		mode = model.ModeDND
	}

	switch mode {
	case model.ModeSilent:
		e.try("set ringer silent", e.audio.SetRingerMode(model.RingerSilent))
	case model.ModeVibrate:
		e.try("set ringer vibrate", e.audio.SetRingerMode(model.RingerVibrate))
	default:
		e.try("enable do-not-disturb", e.audio.SetInterruptionFilter(model.FilterPriority))
	}

	e.try("zero media volume", e.audio.SetStreamVolume(audio.StreamMedia, 0))
	e.try("zero alarm volume", e.audio.SetStreamVolume(audio.StreamAlarm, 0))
	if mode != model.ModeVibrate {
		e.try("zero ring volume", e.audio.SetStreamVolume(audio.StreamRing, 0))
		e.try("zero notification volume", e.audio.SetStreamVolume(audio.StreamNotification, 0))
	}

	e.notifier.PublishActive(label, end)
	log.Info().Str("label", label).Time("until", end).Msg("silence started")
}

// Restore runs the Stop sequence. Ringer mode and interruption filter come
// back first; restoring volumes while the device is still in a silent mode
// makes some systems clamp them to zero.
func (e *Executor) Restore() {
	snap, err := e.store.AudioSnapshot()
	if err != nil {
		log.Error().Err(err).Msg("restore: failed to read snapshot, restoring defaults")
		snap = model.EmptySnapshot()
	}

	// A duplicate Stop delivery finds neither a window nor a snapshot; it
	// must leave audio untouched rather than force the default modes.
	if win, werr := e.store.ActiveWindow(); werr == nil &&
		win.End.IsZero() && snap == model.EmptySnapshot() {
		log.Debug().Msg("restore: no silence state recorded, nothing to do")
		return
	}

	if snap.Filter != model.FilterUnset {
		e.try("restore interruption filter", e.audio.SetInterruptionFilter(snap.Filter))
	} else {
		e.try("reset interruption filter", e.audio.SetInterruptionFilter(model.FilterAll))
	}
	if snap.Ringer != model.RingerUnset {
		e.try("restore ringer mode", e.audio.SetRingerMode(snap.Ringer))
	} else {
		e.try("reset ringer mode", e.audio.SetRingerMode(model.RingerNormal))
	}

	restore := map[audio.Stream]int{
		audio.StreamMedia:        snap.Media,
		audio.StreamRing:         snap.Ring,
		audio.StreamNotification: snap.Notification,
		audio.StreamAlarm:        snap.Alarm,
	}
	for stream, level := range restore {
		if level == model.VolumeUnset {
			continue
		}
		e.try("restore "+string(stream)+" volume", e.audio.SetStreamVolume(stream, level))
	}

	if err := e.store.ClearSilenceState(); err != nil {
		log.Error().Err(err).Msg("restore: failed to clear silence state")
	}
	e.notifier.Clear()
	log.Info().Msg("silence ended, audio restored")
}

func (e *Executor) captureSnapshot() model.AudioSnapshot {
	snap := model.EmptySnapshot()
	read := func(stream audio.Stream) int {
		level, err := e.audio.StreamVolume(stream)
		if err != nil {
			log.Warn().Err(err).Str("stream", string(stream)).Msg("mute: failed to read stream volume")
			return model.VolumeUnset
		}
		return level
	}
	snap.Media = read(audio.StreamMedia)
	snap.Ring = read(audio.StreamRing)
	snap.Notification = read(audio.StreamNotification)
	snap.Alarm = read(audio.StreamAlarm)

	if ringer, err := e.audio.RingerMode(); err == nil {
		snap.Ringer = ringer
	} else {
		log.Warn().Err(err).Msg("mute: failed to read ringer mode")
	}
	if filter, err := e.audio.InterruptionFilter(); err == nil {
		snap.Filter = filter
	} else {
		log.Warn().Err(err).Msg("mute: failed to read interruption filter")
	}
	return snap
}

// try logs and swallows per-operation audio failures; a denied stream must
// not abort the remaining steps.
func (e *Executor) try(op string, err error) {
	if err != nil {
		log.Warn().Err(err).Str("op", op).Msg("audio operation failed, continuing")
	}
}
