package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ecomind/tracker-service/internal/models"
)

// UserRepository handles users table operations
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user, or refreshes the email when the username already
// exists, and returns the row id either way.
func (r *UserRepository) Create(ctx context.Context, username string, email *string) (uint64, error) {
	query := `
		INSERT INTO users (username, email, joined_date, current_level, total_score)
		VALUES (?, ?, ?, 'Bronze', 0)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), email = VALUES(email)
	`

	result, err := r.db.ExecContext(ctx, query, username, email, time.Now().Format(models.DateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to create user %s: %w", username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByID retrieves a user by id.
func (r *UserRepository) FindByID(ctx context.Context, userID uint64) (*models.User, error) {
	query := `
		SELECT id, username, email, joined_date, current_level, total_score, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, userID))
}

// FindByUsername retrieves a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, email, joined_date, current_level, total_score, created_at, updated_at
		FROM users
		WHERE username = ?
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var email sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&email,
		&user.JoinedDate,
		&user.CurrentLevel,
		&user.TotalScore,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if email.Valid {
		user.Email = &email.String
	}
	return &user, nil
}

// UpdateProgress persists a recomputed score and level.
func (r *UserRepository) UpdateProgress(ctx context.Context, userID uint64, totalScore int, level string) error {
	query := "UPDATE users SET total_score = ?, current_level = ?, updated_at = NOW() WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, totalScore, level, userID)
	if err != nil {
		return fmt.Errorf("failed to update progress for user %d: %w", userID, err)
	}
	return nil
}

// Leaderboard returns the top users ordered by total score.
func (r *UserRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT u.username, u.current_level, u.total_score,
		       COUNT(l.id) AS days_tracked,
		       COALESCE(AVG(l.co2_grams), 0) AS avg_co2
		FROM users u
		LEFT JOIN activity_logs l ON l.user_id = u.id
		GROUP BY u.id, u.username, u.current_level, u.total_score
		ORDER BY u.total_score DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		if err := rows.Scan(&entry.Username, &entry.CurrentLevel, &entry.TotalScore, &entry.DaysTracked, &entry.AvgCO2); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
