package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dhanfinix/sukund/internal/model"
)

// Flat key-value rows in the settings table. Key names are kept compatible
// with the mobile client's preference export.
const (
	keySilenceDuration = "silence_duration_min"
	keySilenceMode     = "silence_mode"
	keyLatitude        = "latitude"
	keyLongitude       = "longitude"
	keyLocationName    = "location_name"
	keyMethod          = "calculation_method"

	keySavedMedia  = "saved_media_vol"
	keySavedRing   = "saved_ring_vol"
	keySavedNotif  = "saved_notification_vol"
	keySavedAlarm  = "saved_alarm_vol"
	keySavedRinger = "saved_ringer_mode"
	keySavedFilter = "saved_interruption_filter"

	keySilenceEndTime = "silence_end_time"
	keySilenceLabel   = "silence_label"
)

const (
	defaultDuration  = 15
	defaultMethod    = 20 // Kemenag
	defaultLatitude  = -6.2088
	defaultLongitude = 106.8456 // Jakarta
)

func (s *pgStore) get(key, fallback string) (string, error) {
	var value string
	err := s.db.Get(&value, `SELECT value FROM settings WHERE key = $1;`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to read setting")
		return fallback, err
	}
	return value, nil
}

func (s *pgStore) set(key, value string) error {
	_, err := s.db.Exec(`
	INSERT INTO settings (key, value)
	VALUES ($1, $2)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value;`, key, value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to write setting")
	}
	return err
}

func (s *pgStore) getInt(key string, fallback int) (int, error) {
	raw, err := s.get(key, strconv.Itoa(fallback))
	if err != nil {
		return fallback, err
	}
	n, convErr := strconv.Atoi(raw)
	if convErr != nil {
		return fallback, nil
	}
	return n, nil
}

func (s *pgStore) getFloat(key string, fallback float64) (float64, error) {
	raw, err := s.get(key, "")
	if err != nil {
		return fallback, err
	}
	if raw == "" {
		return fallback, nil
	}
	f, convErr := strconv.ParseFloat(raw, 64)
	if convErr != nil {
		return fallback, nil
	}
	return f, nil
}

func enabledKey(name model.PrayerName) string {
	switch name {
	case model.Fajr:
		return "fajr_enabled"
	case model.Dhuhr:
		return "dhuhr_enabled"
	case model.Asr:
		return "asr_enabled"
	case model.Maghrib:
		return "maghrib_enabled"
	case model.Isha:
		return "isha_enabled"
	}
	return ""
}

func (s *pgStore) PrayerEnabled() (map[model.PrayerName]bool, error) {
	out := make(map[model.PrayerName]bool, 5)
	for _, name := range model.PrayerNames() {
		raw, err := s.get(enabledKey(name), "true")
		if err != nil {
			return nil, err
		}
		out[name] = raw != "false"
	}
	return out, nil
}

func (s *pgStore) SetPrayerEnabled(name model.PrayerName, enabled bool) error {
	key := enabledKey(name)
	if key == "" {
		return fmt.Errorf("unknown prayer %q", name)
	}
	return s.set(key, strconv.FormatBool(enabled))
}

func (s *pgStore) SilenceDuration() (int, error) {
	return s.getInt(keySilenceDuration, defaultDuration)
}

func (s *pgStore) SetSilenceDuration(minutes int) error {
	return s.set(keySilenceDuration, strconv.Itoa(minutes))
}

func (s *pgStore) SilenceMode() (model.SilenceMode, error) {
	raw, err := s.get(keySilenceMode, string(model.ModeDND))
	if err != nil {
		return model.ModeDND, err
	}
	return model.ParseSilenceMode(raw), nil
}

func (s *pgStore) SetSilenceMode(mode model.SilenceMode) error {
	return s.set(keySilenceMode, string(mode))
}

func (s *pgStore) Location() (float64, float64, string, error) {
	lat, err := s.getFloat(keyLatitude, defaultLatitude)
	if err != nil {
		return 0, 0, "", err
	}
	lng, err := s.getFloat(keyLongitude, defaultLongitude)
	if err != nil {
		return 0, 0, "", err
	}
	name, err := s.get(keyLocationName, "")
	if err != nil {
		return 0, 0, "", err
	}
	return lat, lng, name, nil
}

func (s *pgStore) SetLocation(lat, lng float64, name string) error {
	if err := s.set(keyLatitude, strconv.FormatFloat(lat, 'f', -1, 64)); err != nil {
		return err
	}
	if err := s.set(keyLongitude, strconv.FormatFloat(lng, 'f', -1, 64)); err != nil {
		return err
	}
	return s.set(keyLocationName, name)
}

func (s *pgStore) CalculationMethod() (int, error) {
	return s.getInt(keyMethod, defaultMethod)
}

func (s *pgStore) SetCalculationMethod(method int) error {
	return s.set(keyMethod, strconv.Itoa(method))
}

func (s *pgStore) SaveAudioSnapshot(snap model.AudioSnapshot) error {
	pairs := map[string]int{
		keySavedMedia:  snap.Media,
		keySavedRing:   snap.Ring,
		keySavedNotif:  snap.Notification,
		keySavedAlarm:  snap.Alarm,
		keySavedRinger: int(snap.Ringer),
		keySavedFilter: int(snap.Filter),
	}
	for key, value := range pairs {
		if err := s.set(key, strconv.Itoa(value)); err != nil {
			return err
		}
	}
	return nil
}

func (s *pgStore) AudioSnapshot() (model.AudioSnapshot, error) {
	snap := model.EmptySnapshot()
	var err error
	if snap.Media, err = s.getInt(keySavedMedia, model.VolumeUnset); err != nil {
		return snap, err
	}
	if snap.Ring, err = s.getInt(keySavedRing, model.VolumeUnset); err != nil {
		return snap, err
	}
	if snap.Notification, err = s.getInt(keySavedNotif, model.VolumeUnset); err != nil {
		return snap, err
	}
	if snap.Alarm, err = s.getInt(keySavedAlarm, model.VolumeUnset); err != nil {
		return snap, err
	}
	ringer, err := s.getInt(keySavedRinger, int(model.RingerUnset))
	if err != nil {
		return snap, err
	}
	snap.Ringer = model.RingerMode(ringer)
	filter, err := s.getInt(keySavedFilter, int(model.FilterUnset))
	if err != nil {
		return snap, err
	}
	snap.Filter = model.InterruptionFilter(filter)
	return snap, nil
}

func (s *pgStore) SetActiveWindow(win model.SilenceWindow) error {
	if err := s.set(keySilenceEndTime, strconv.FormatInt(win.End.UnixMilli(), 10)); err != nil {
		return err
	}
	return s.set(keySilenceLabel, win.Label)
}

func (s *pgStore) ActiveWindow() (model.SilenceWindow, error) {
	var win model.SilenceWindow
	raw, err := s.get(keySilenceEndTime, "0")
	if err != nil {
		return win, err
	}
	endMs, convErr := strconv.ParseInt(raw, 10, 64)
	if convErr != nil || endMs == 0 {
		return win, nil
	}
	win.End = time.UnixMilli(endMs)
	win.Label, err = s.get(keySilenceLabel, "")
	return win, err
}

func (s *pgStore) ClearSilenceState() error {
	keys := []string{
		keySilenceEndTime, keySilenceLabel,
		keySavedMedia, keySavedRing, keySavedNotif, keySavedAlarm,
		keySavedRinger, keySavedFilter,
	}
	for _, key := range keys {
		if _, err := s.db.Exec(`DELETE FROM settings WHERE key = $1;`, key); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to clear setting")
			return err
		}
	}
	return nil
}
