package models

import "time"

// DateLayout is the calendar-date format used for log keys throughout the service.
const DateLayout = "2006-01-02"

// ActivityRecord is one calendar day of one user's digital activity.
// At most one record exists per (user, date); re-submission overwrites.
type ActivityRecord struct {
	ID               uint64    `json:"id" db:"id"`
	UserID           uint64    `json:"user_id" db:"user_id"`
	LogDate          time.Time `json:"date" db:"log_date"`
	Emails           int       `json:"emails" db:"emails"`
	VideoCallHours   float64   `json:"video_call_hours" db:"video_calls"`
	StreamingHours   float64   `json:"streaming_hours" db:"streaming"`
	CloudStorageGB   float64   `json:"cloud_storage_gb" db:"cloud_storage"`
	DeviceUsageHours float64   `json:"device_usage_hours" db:"device_usage"`
	CO2Grams         float64   `json:"co2_grams" db:"co2_grams"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Date returns the log date formatted as YYYY-MM-DD.
func (r ActivityRecord) Date() string {
	return r.LogDate.Format(DateLayout)
}
