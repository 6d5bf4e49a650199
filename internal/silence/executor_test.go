package silence

import (
	"sync"
	"testing"
	"time"

	"github.com/dhanfinix/sukund/internal/audio"
	"github.com/dhanfinix/sukund/internal/db"
	"github.com/dhanfinix/sukund/internal/model"
)

type recordingNotifier struct {
	mu        sync.Mutex
	published []string
	cleared   int
}

func (r *recordingNotifier) PublishActive(label string, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, label)
}

func (r *recordingNotifier) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared++
}

func newTestExecutor() (*Executor, *db.MemStore, *audio.NullController, *recordingNotifier) {
	store := db.NewMemStore()
	controller := audio.NewNullController()
	notifier := &recordingNotifier{}
	return NewExecutor(store, controller, notifier), store, controller, notifier
}

func streamLevels(t *testing.T, c *audio.NullController) map[audio.Stream]int {
	t.Helper()
	out := map[audio.Stream]int{}
	for _, stream := range audio.Streams() {
		level, err := c.StreamVolume(stream)
		if err != nil {
			t.Fatalf("StreamVolume(%s): %v", stream, err)
		}
		out[stream] = level
	}
	return out
}

func TestMuteRestoreRoundTrip(t *testing.T) {
	exec, store, controller, notifier := newTestExecutor()
	before := streamLevels(t, controller)

	exec.Mute("Fajr", 15)

	after := streamLevels(t, controller)
	for _, stream := range audio.Streams() {
		if after[stream] != 0 {
			t.Errorf("%s volume = %d after mute, want 0", stream, after[stream])
		}
	}
	// Default mode is DND: the interruption filter changes, not the ringer.
	if filter, _ := controller.InterruptionFilter(); filter != model.FilterPriority {
		t.Errorf("filter = %d, want priority", filter)
	}
	win, _ := store.ActiveWindow()
	if win.Label != "Fajr" || !win.Active(time.Now()) {
		t.Errorf("active window = %+v, want active Fajr window", win)
	}
	if len(notifier.published) != 1 || notifier.published[0] != "Fajr" {
		t.Errorf("published = %v, want [Fajr]", notifier.published)
	}

	exec.Restore()

	restored := streamLevels(t, controller)
	for _, stream := range audio.Streams() {
		if restored[stream] != before[stream] {
			t.Errorf("%s volume = %d after restore, want %d", stream, restored[stream], before[stream])
		}
	}
	if ringer, _ := controller.RingerMode(); ringer != model.RingerNormal {
		t.Errorf("ringer = %d, want normal", ringer)
	}
	if filter, _ := controller.InterruptionFilter(); filter != model.FilterAll {
		t.Errorf("filter = %d, want all", filter)
	}
	win, _ = store.ActiveWindow()
	if !win.End.IsZero() {
		t.Error("window not cleared after restore")
	}
	snap, _ := store.AudioSnapshot()
	if snap != model.EmptySnapshot() {
		t.Errorf("snapshot not cleared: %+v", snap)
	}
	if notifier.cleared != 1 {
		t.Errorf("notifier cleared %d times, want 1", notifier.cleared)
	}
}

func TestRestoreTwiceIsNoOp(t *testing.T) {
	exec, _, controller, _ := newTestExecutor()
	// A non-default baseline exposes any "reset to normal" fallback a
	// duplicate Stop delivery might take.
	controller.SetRingerMode(model.RingerVibrate)
	before := streamLevels(t, controller)

	exec.Mute("Isha", 15)
	exec.Restore()
	first := streamLevels(t, controller)
	exec.Restore()
	second := streamLevels(t, controller)

	for _, stream := range audio.Streams() {
		if first[stream] != before[stream] {
			t.Errorf("%s = %d after first restore, want %d", stream, first[stream], before[stream])
		}
		if second[stream] != first[stream] {
			t.Errorf("%s changed on duplicate restore: %d -> %d", stream, first[stream], second[stream])
		}
	}
	if ringer, _ := controller.RingerMode(); ringer != model.RingerVibrate {
		t.Errorf("ringer = %d after duplicate restore, want vibrate", ringer)
	}
	if filter, _ := controller.InterruptionFilter(); filter != model.FilterAll {
		t.Errorf("filter = %d after duplicate restore, want all", filter)
	}
}

func TestVibrateModeKeepsTactileStreams(t *testing.T) {
	exec, store, controller, _ := newTestExecutor()
	store.SetSilenceMode(model.ModeVibrate)
	before := streamLevels(t, controller)

	exec.Mute("Maghrib", 15)

	after := streamLevels(t, controller)
	if after[audio.StreamMedia] != 0 || after[audio.StreamAlarm] != 0 {
		t.Error("media/alarm not muted in vibrate mode")
	}
	if after[audio.StreamRing] != before[audio.StreamRing] {
		t.Errorf("ring volume changed in vibrate mode: %d -> %d", before[audio.StreamRing], after[audio.StreamRing])
	}
	if after[audio.StreamNotification] != before[audio.StreamNotification] {
		t.Error("notification volume changed in vibrate mode")
	}
	if ringer, _ := controller.RingerMode(); ringer != model.RingerVibrate {
		t.Errorf("ringer = %d, want vibrate", ringer)
	}
}

func TestSilentModeSetsRinger(t *testing.T) {
	exec, store, controller, _ := newTestExecutor()
	store.SetSilenceMode(model.ModeSilent)

	exec.Mute("Asr", 15)

	if ringer, _ := controller.RingerMode(); ringer != model.RingerSilent {
		t.Errorf("ringer = %d, want silent", ringer)
	}
}

func TestOverlappingMuteKeepsOriginalBaseline(t *testing.T) {
	exec, _, controller, _ := newTestExecutor()
	before := streamLevels(t, controller)

	exec.Mute("Dhuhr", 15)
	// Second start while the first window is still active must not
	// overwrite the snapshot with muted levels.
	exec.Mute("Asr", 15)
	exec.Restore()

	after := streamLevels(t, controller)
	for _, stream := range audio.Streams() {
		if after[stream] != before[stream] {
			t.Errorf("%s = %d after overlap restore, want %d", stream, after[stream], before[stream])
		}
	}
}

func TestMuteSnapshotMatchesPreMuteState(t *testing.T) {
	exec, store, controller, _ := newTestExecutor()
	controller.SetStreamVolume(audio.StreamMedia, 33)
	controller.SetRingerMode(model.RingerVibrate)

	exec.Mute("Fajr", 15)

	snap, _ := store.AudioSnapshot()
	if snap.Media != 33 {
		t.Errorf("snapshot media = %d, want 33", snap.Media)
	}
	if snap.Ringer != model.RingerVibrate {
		t.Errorf("snapshot ringer = %d, want vibrate", snap.Ringer)
	}

	exec.Restore()

	if level, _ := controller.StreamVolume(audio.StreamMedia); level != 33 {
		t.Errorf("media = %d after restore, want 33", level)
	}
	if ringer, _ := controller.RingerMode(); ringer != model.RingerVibrate {
		t.Errorf("ringer = %d after restore, want vibrate", ringer)
	}
}
