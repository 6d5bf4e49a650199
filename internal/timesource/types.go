package timesource

// Wire types for the Aladhan calendar endpoint. Only fields the daemon
// consumes are mapped.

type CalendarResponse struct {
	Code   int       `json:"code"`
	Status string    `json:"status"`
	Data   []DayData `json:"data"`
}

type DayData struct {
	Timings Timings `json:"timings"`
	Date    Date    `json:"date"`
}

type Timings struct {
	Fajr    string `json:"Fajr"`
	Sunrise string `json:"Sunrise"`
	Dhuhr   string `json:"Dhuhr"`
	Asr     string `json:"Asr"`
	Sunset  string `json:"Sunset"`
	Maghrib string `json:"Maghrib"`
	Isha    string `json:"Isha"`
}

type Date struct {
	Readable  string    `json:"readable"`
	Timestamp string    `json:"timestamp"`
	Gregorian Gregorian `json:"gregorian"`
}

type Gregorian struct {
	// Date is formatted DD-MM-YYYY by the API.
	Date string `json:"date"`
}
