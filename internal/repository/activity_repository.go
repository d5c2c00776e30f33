package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ecomind/tracker-service/internal/models"
)

// ActivityRepository handles activity_logs table operations
type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = "id, user_id, log_date, emails, video_calls, streaming, cloud_storage, device_usage, co2_grams, created_at"

// Upsert inserts or overwrites the log row for (user, date). The unique key
// on (user_id, log_date) guarantees at most one row per user per day.
func (r *ActivityRepository) Upsert(ctx context.Context, rec *models.ActivityRecord) (uint64, error) {
	query := `
		INSERT INTO activity_logs
			(user_id, log_date, emails, video_calls, streaming, cloud_storage, device_usage, co2_grams)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			id = LAST_INSERT_ID(id),
			emails = VALUES(emails),
			video_calls = VALUES(video_calls),
			streaming = VALUES(streaming),
			cloud_storage = VALUES(cloud_storage),
			device_usage = VALUES(device_usage),
			co2_grams = VALUES(co2_grams)
	`

	result, err := r.db.ExecContext(ctx, query,
		rec.UserID,
		rec.LogDate.Format(models.DateLayout),
		rec.Emails,
		rec.VideoCallHours,
		rec.StreamingHours,
		rec.CloudStorageGB,
		rec.DeviceUsageHours,
		rec.CO2Grams,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert activity log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByUser retrieves a user's logs ordered by date descending. A limit of 0
// returns the full history. Callers that need chronological order sort the
// result themselves.
func (r *ActivityRepository) FindByUser(ctx context.Context, userID uint64, limit int) ([]models.ActivityRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM activity_logs
		WHERE user_id = ?
		ORDER BY log_date DESC
	`, activityColumns)

	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT ?", userID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs for user %d: %w", userID, err)
	}
	defer rows.Close()

	return scanActivityRows(rows)
}

// FindByUserRange retrieves logs within [start, end], ordered by date descending.
func (r *ActivityRepository) FindByUserRange(ctx context.Context, userID uint64, start, end time.Time) ([]models.ActivityRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM activity_logs
		WHERE user_id = ? AND log_date BETWEEN ? AND ?
		ORDER BY log_date DESC
	`, activityColumns)

	rows, err := r.db.QueryContext(ctx, query, userID, start.Format(models.DateLayout), end.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs for user %d: %w", userID, err)
	}
	defer rows.Close()

	return scanActivityRows(rows)
}

func scanActivityRows(rows *sql.Rows) ([]models.ActivityRecord, error) {
	var logs []models.ActivityRecord
	for rows.Next() {
		var rec models.ActivityRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.LogDate,
			&rec.Emails,
			&rec.VideoCallHours,
			&rec.StreamingHours,
			&rec.CloudStorageGB,
			&rec.DeviceUsageHours,
			&rec.CO2Grams,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, rec)
	}
	return logs, rows.Err()
}

// Stats aggregates a user's emission history.
func (r *ActivityRepository) Stats(ctx context.Context, userID uint64) (models.UserStats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(co2_grams), 0),
		       COALESCE(AVG(co2_grams), 0),
		       COALESCE(MIN(co2_grams), 0),
		       COALESCE(MAX(co2_grams), 0)
		FROM activity_logs
		WHERE user_id = ?
	`

	var stats models.UserStats
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.TotalDays,
		&stats.TotalCO2,
		&stats.AvgDailyCO2,
		&stats.BestDayCO2,
		&stats.WorstDayCO2,
	)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("failed to query stats for user %d: %w", userID, err)
	}
	return stats, nil
}

// DeleteByUser removes the user's whole log history.
func (r *ActivityRepository) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM activity_logs WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete activity logs for user %d: %w", userID, err)
	}
	return nil
}
