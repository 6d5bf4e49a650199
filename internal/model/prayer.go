package model

import "strings"

// PrayerName is one of the five fixed daily prayers used as scheduling keys.
type PrayerName string

const (
	Fajr    PrayerName = "Fajr"
	Dhuhr   PrayerName = "Dhuhr"
	Asr     PrayerName = "Asr"
	Maghrib PrayerName = "Maghrib"
	Isha    PrayerName = "Isha"
)

// UnknownTime is the placeholder shown when a fetch failed; it is never
// scheduled.
const UnknownTime = "--:--"

// PrayerNames returns the five prayers in daily order.
func PrayerNames() []PrayerName {
	return []PrayerName{Fajr, Dhuhr, Asr, Maghrib, Isha}
}

// ParsePrayerName matches a name case-insensitively against the fixed set.
func ParsePrayerName(s string) (PrayerName, bool) {
	for _, n := range PrayerNames() {
		if strings.EqualFold(string(n), s) {
			return n, true
		}
	}
	return "", false
}

// PrayerInfo holds one prayer's time-of-day for a specific date plus the
// user's enabled flag.
type PrayerInfo struct {
	Name    PrayerName `json:"name"`
	Time    string     `json:"time"` // "HH:MM" or UnknownTime
	Enabled bool       `json:"enabled"`
}
