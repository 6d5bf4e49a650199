package audio

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/dhanfinix/sukund/internal/model"
)

// PulseController drives stream volumes through pactl. Each managed stream
// maps to a PulseAudio sink; hosts that route everything through one sink
// can point all four at the default sink.
//
// PulseAudio has no ringer-mode or interruption-filter concept, so those
// are emulated: silent/vibrate mute the ring and notification sinks, and a
// non-ALL filter mutes every sink. The chosen mode is remembered in-process
// for reads.
type PulseController struct {
	sinks map[Stream]string

	mu     sync.Mutex
	ringer model.RingerMode
	filter model.InterruptionFilter
}

var _ Controller = (*PulseController)(nil)

// NewPulseController maps every stream to the default sink unless an entry
// in sinks overrides it.
func NewPulseController(sinks map[Stream]string) *PulseController {
	resolved := make(map[Stream]string, 4)
	for _, stream := range Streams() {
		resolved[stream] = "@DEFAULT_SINK@"
		if name, ok := sinks[stream]; ok && name != "" {
			resolved[stream] = name
		}
	}
	return &PulseController{
		sinks:  resolved,
		ringer: model.RingerNormal,
		filter: model.FilterAll,
	}
}

func (p *PulseController) StreamVolume(stream Stream) (int, error) {
	sink, ok := p.sinks[stream]
	if !ok {
		return 0, fmt.Errorf("unknown stream %q", stream)
	}
	out, err := exec.Command("pactl", "get-sink-volume", sink).CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("pactl get-sink-volume %s: %w, output: %s", sink, err, string(out))
	}
	return parseVolumePercent(string(out))
}

func (p *PulseController) SetStreamVolume(stream Stream, level int) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", level)
	}
	sink, ok := p.sinks[stream]
	if !ok {
		return fmt.Errorf("unknown stream %q", stream)
	}
	out, err := exec.Command("pactl", "set-sink-volume", sink, fmt.Sprintf("%d%%", level)).CombinedOutput()
	if err != nil {
		return fmt.Errorf("pactl set-sink-volume %s: %w, output: %s", sink, err, string(out))
	}
	return nil
}

func (p *PulseController) RingerMode() (model.RingerMode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ringer, nil
}

func (p *PulseController) SetRingerMode(mode model.RingerMode) error {
	mute := mode != model.RingerNormal
	for _, stream := range []Stream{StreamRing, StreamNotification} {
		if err := p.setMute(stream, mute); err != nil {
			return err
		}
	}
	p.mu.Lock()
	p.ringer = mode
	p.mu.Unlock()
	return nil
}

func (p *PulseController) InterruptionFilter() (model.InterruptionFilter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter, nil
}

func (p *PulseController) SetInterruptionFilter(filter model.InterruptionFilter) error {
	mute := filter != model.FilterAll
	for _, stream := range Streams() {
		if err := p.setMute(stream, mute); err != nil {
			return err
		}
	}
	p.mu.Lock()
	p.filter = filter
	p.mu.Unlock()
	return nil
}

func (p *PulseController) setMute(stream Stream, mute bool) error {
	sink := p.sinks[stream]
	arg := "0"
	if mute {
		arg = "1"
	}
	out, err := exec.Command("pactl", "set-sink-mute", sink, arg).CombinedOutput()
	if err != nil {
		return fmt.Errorf("pactl set-sink-mute %s: %w, output: %s", sink, err, string(out))
	}
	return nil
}

// parseVolumePercent extracts the first "NN%" from pactl output such as
// "Volume: front-left: 39321 /  60% / -13.31 dB ...".
func parseVolumePercent(out string) (int, error) {
	for _, field := range strings.Fields(out) {
		if !strings.HasSuffix(field, "%") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(field, "%"))
		if err != nil {
			continue
		}
		return n, nil
	}
	return 0, fmt.Errorf("no volume percentage in pactl output %q", out)
}
