package models

import "time"

// UserBadge is a badge-award row. The (user_id, badge) pair is unique, which
// makes awards idempotent at the storage layer.
type UserBadge struct {
	ID         uint64    `json:"id" db:"id"`
	UserID     uint64    `json:"user_id" db:"user_id"`
	Badge      string    `json:"badge" db:"badge"`
	EarnedDate time.Time `json:"earned_date" db:"earned_date"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
