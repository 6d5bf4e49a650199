package packets

type SessionResponse struct {
	Token string `json:"token"`
}

type PrayerResponse struct {
	Name         string `json:"name"`
	TimeToday    string `json:"time_today"`
	TimeTomorrow string `json:"time_tomorrow"`
	Enabled      bool   `json:"enabled"`
}

type PrayerListResponse struct {
	Date    string           `json:"date"`
	Prayers []PrayerResponse `json:"prayers"`
	// Stale is set when the upstream fetch failed and placeholder times
	// are being shown.
	Stale bool `json:"stale"`
}

type StatusResponse struct {
	SilenceActive    bool   `json:"silence_active"`
	Label            string `json:"label,omitempty"`
	EndUnixMs        int64  `json:"end_unix_ms,omitempty"`
	RemainingSeconds int64  `json:"remaining_seconds,omitempty"`
}

type SettingsResponse struct {
	DurationMinutes int     `json:"duration_minutes"`
	SilenceMode     string  `json:"silence_mode"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	LocationName    string  `json:"location_name"`
	MethodID        int     `json:"method_id"`
}
