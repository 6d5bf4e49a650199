package packets

type SessionRequest struct {
	Password string `json:"password" binding:"required"`
}

type TogglePrayerRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type ManualSilenceRequest struct {
	DurationMinutes int `json:"duration_minutes"`
	// Force acknowledges overwriting a window that is already active.
	Force bool `json:"force"`
}

type UpdateSettingsRequest struct {
	DurationMinutes *int     `json:"duration_minutes"`
	SilenceMode     *string  `json:"silence_mode"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	LocationName    *string  `json:"location_name"`
	MethodID        *int     `json:"method_id"`
}
