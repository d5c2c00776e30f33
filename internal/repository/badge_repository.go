package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ecomind/tracker-service/internal/models"
)

// BadgeRepository handles user_badges table operations
type BadgeRepository struct {
	db *sql.DB
}

func NewBadgeRepository(db *sql.DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// Award records a badge for a user. The unique key on (user_id, badge) makes
// the insert idempotent; the return value reports whether a row was newly
// created.
func (r *BadgeRepository) Award(ctx context.Context, userID uint64, badge string, earned time.Time) (bool, error) {
	query := `
		INSERT IGNORE INTO user_badges (user_id, badge, earned_date)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, userID, badge, earned.Format(models.DateLayout))
	if err != nil {
		return false, fmt.Errorf("failed to award badge %s to user %d: %w", badge, userID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// FindByUser returns the names of badges the user holds, newest first.
func (r *BadgeRepository) FindByUser(ctx context.Context, userID uint64) ([]string, error) {
	query := `
		SELECT badge
		FROM user_badges
		WHERE user_id = ?
		ORDER BY earned_date DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query badges for user %d: %w", userID, err)
	}
	defer rows.Close()

	var badges []string
	for rows.Next() {
		var badge string
		if err := rows.Scan(&badge); err != nil {
			return nil, err
		}
		badges = append(badges, badge)
	}
	return badges, rows.Err()
}

// FindRecent returns badges earned in the last N days.
func (r *BadgeRepository) FindRecent(ctx context.Context, userID uint64, days int) ([]models.UserBadge, error) {
	query := `
		SELECT id, user_id, badge, earned_date, created_at
		FROM user_badges
		WHERE user_id = ? AND earned_date >= DATE_SUB(CURDATE(), INTERVAL ? DAY)
		ORDER BY earned_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent badges for user %d: %w", userID, err)
	}
	defer rows.Close()

	var badges []models.UserBadge
	for rows.Next() {
		var ub models.UserBadge
		if err := rows.Scan(&ub.ID, &ub.UserID, &ub.Badge, &ub.EarnedDate, &ub.CreatedAt); err != nil {
			return nil, err
		}
		badges = append(badges, ub)
	}
	return badges, rows.Err()
}

// DeleteByUser removes all badge rows for a user.
func (r *BadgeRepository) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM user_badges WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete badges for user %d: %w", userID, err)
	}
	return nil
}
