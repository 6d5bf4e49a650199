package silence

import "time"

// NopNotifier satisfies Notifier when no push surface is configured.
type NopNotifier struct{}

func (NopNotifier) PublishActive(string, time.Time) {}
func (NopNotifier) Clear()                          {}
