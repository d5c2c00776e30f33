package models

import "time"

// User represents a tracked account and its cumulative gamification state.
type User struct {
	ID           uint64    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        *string   `json:"email" db:"email"`
	JoinedDate   time.Time `json:"joined_date" db:"joined_date"`
	CurrentLevel string    `json:"current_level" db:"current_level"`
	TotalScore   int       `json:"total_score" db:"total_score"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserStats aggregates a user's emission history for reports and the profile view.
type UserStats struct {
	TotalDays   int     `json:"total_days"`
	TotalCO2    float64 `json:"total_co2"`
	AvgDailyCO2 float64 `json:"avg_daily_co2"`
	BestDayCO2  float64 `json:"best_day_co2"`
	WorstDayCO2 float64 `json:"worst_day_co2"`
}

// LeaderboardEntry is one row of the top-users-by-score ranking.
type LeaderboardEntry struct {
	Username     string  `json:"username"`
	CurrentLevel string  `json:"current_level"`
	TotalScore   int     `json:"total_score"`
	DaysTracked  int     `json:"days_tracked"`
	AvgCO2       float64 `json:"avg_co2"`
}
