package audio

import (
	"fmt"
	"sync"

	"github.com/dhanfinix/sukund/internal/model"
)

// NullController keeps all audio state in memory. Used on hosts without an
// audio backend and throughout the tests.
type NullController struct {
	mu      sync.Mutex
	volumes map[Stream]int
	ringer  model.RingerMode
	filter  model.InterruptionFilter
}

var _ Controller = (*NullController)(nil)

func NewNullController() *NullController {
	return &NullController{
		volumes: map[Stream]int{
			StreamMedia:        60,
			StreamRing:         80,
			StreamNotification: 70,
			StreamAlarm:        90,
		},
		ringer: model.RingerNormal,
		filter: model.FilterAll,
	}
}

func (n *NullController) StreamVolume(stream Stream) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	level, ok := n.volumes[stream]
	if !ok {
		return 0, fmt.Errorf("unknown stream %q", stream)
	}
	return level, nil
}

func (n *NullController) SetStreamVolume(stream Stream, level int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.volumes[stream]; !ok {
		return fmt.Errorf("unknown stream %q", stream)
	}
	n.volumes[stream] = level
	return nil
}

func (n *NullController) RingerMode() (model.RingerMode, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ringer, nil
}

func (n *NullController) SetRingerMode(mode model.RingerMode) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ringer = mode
	return nil
}

func (n *NullController) InterruptionFilter() (model.InterruptionFilter, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.filter, nil
}

func (n *NullController) SetInterruptionFilter(filter model.InterruptionFilter) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.filter = filter
	return nil
}
