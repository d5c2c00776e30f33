package service

import (
	"context"
	"sort"
	"time"

	"ecomind/tracker-service/internal/emission"
	"ecomind/tracker-service/internal/gamify"
	"ecomind/tracker-service/internal/models"
)

// ActivityInput is one day of self-reported activity counts.
type ActivityInput struct {
	Emails           int     `json:"emails" validate:"min=0"`
	VideoCallHours   float64 `json:"video_call_hours" validate:"day_hours"`
	StreamingHours   float64 `json:"streaming_hours" validate:"day_hours"`
	CloudStorageGB   float64 `json:"cloud_storage_gb" validate:"min=0"`
	DeviceUsageHours float64 `json:"device_usage_hours" validate:"day_hours"`
}

func (in ActivityInput) activity() emission.Activity {
	return emission.Activity{
		Emails:           in.Emails,
		VideoCallHours:   in.VideoCallHours,
		StreamingHours:   in.StreamingHours,
		CloudStorageGB:   in.CloudStorageGB,
		DeviceUsageHours: in.DeviceUsageHours,
	}
}

// BadgeView is the presentation shape of an awarded badge.
type BadgeView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func badgeViews(badges []gamify.Badge) []BadgeView {
	views := make([]BadgeView, 0, len(badges))
	for _, b := range badges {
		views = append(views, BadgeView{Name: b.String(), Description: b.Description(), Icon: b.Icon()})
	}
	return views
}

// SubmissionResult is what the presentation layer renders after a daily
// submission: the stored record plus the progress deltas.
type SubmissionResult struct {
	Record        models.ActivityRecord `json:"record"`
	Breakdown     map[string]float64    `json:"breakdown"`
	DailyPoints   int                   `json:"daily_points"`
	TotalScore    int                   `json:"total_score"`
	Level         string                `json:"level"`
	LevelProgress float64               `json:"level_progress"`
	LeveledUp     bool                  `json:"leveled_up"`
	NewBadges     []BadgeView           `json:"new_badges"`
}

// RecordDailyActivity runs the whole submission pipeline as one serialized
// mutation per user: validate, compute footprint, upsert the log row, then
// recompute score, level and badges from the full history. Re-submitting the
// same date overwrites the day and the recompute keeps the score correct.
func (s *TrackerService) RecordDailyActivity(ctx context.Context, userID uint64, date time.Time, in ActivityInput) (*SubmissionResult, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, invalidInput(err)
	}

	unlock := s.lockUser(userID)
	defer unlock()

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	activity := in.activity()
	co2 := emission.ComputeFootprint(activity)

	rec := &models.ActivityRecord{
		UserID:           userID,
		LogDate:          date,
		Emails:           in.Emails,
		VideoCallHours:   in.VideoCallHours,
		StreamingHours:   in.StreamingHours,
		CloudStorageGB:   in.CloudStorageGB,
		DeviceUsageHours: in.DeviceUsageHours,
		CO2Grams:         co2,
	}
	recID, err := s.logs.Upsert(ctx, rec)
	if err != nil {
		return nil, storageFailure("upsert activity log", err)
	}
	rec.ID = recID

	history, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}

	held, err := s.badges.FindByUser(ctx, userID)
	if err != nil {
		return nil, storageFailure("load badges", err)
	}

	totalScore, level, newBadges := EvaluateProgress(history, held)

	awarded := make([]gamify.Badge, 0, len(newBadges))
	for _, badge := range newBadges {
		inserted, err := s.badges.Award(ctx, userID, badge.String(), date)
		if err != nil {
			return nil, storageFailure("award badge", err)
		}
		if inserted {
			awarded = append(awarded, badge)
			if s.metrics != nil {
				s.metrics.BadgesAwarded.WithLabelValues(badge.String()).Inc()
			}
		}
	}

	if err := s.users.UpdateProgress(ctx, userID, totalScore, level.String()); err != nil {
		return nil, storageFailure("update progress", err)
	}
	s.cache.Invalidate(ctx)

	leveledUp := user.CurrentLevel != level.String() && totalScore > user.TotalScore
	if leveledUp && s.metrics != nil {
		s.metrics.LevelUps.Inc()
	}

	s.log.WithUserID(userID).WithField("date", rec.Date()).
		WithField("co2_grams", co2).
		WithField("total_score", totalScore).
		WithField("new_badges", len(awarded)).
		Info("daily activity recorded")

	return &SubmissionResult{
		Record:        *rec,
		Breakdown:     emission.Breakdown(activity),
		DailyPoints:   gamify.DailyScore(co2),
		TotalScore:    totalScore,
		Level:         level.String(),
		LevelProgress: gamify.Progress(totalScore),
		LeveledUp:     leveledUp,
		NewBadges:     badgeViews(awarded),
	}, nil
}

// EvaluateProgress recomputes the total score, level and newly satisfied
// badges from the full history and the currently held badge names. It is
// pure: evaluating twice on unchanged input awards nothing the second time.
func EvaluateProgress(history []models.ActivityRecord, heldBadges []string) (int, gamify.Level, []gamify.Badge) {
	totalScore := gamify.ScoreHistory(history)
	level := gamify.LevelForScore(totalScore)
	newBadges := gamify.EvaluateBadges(history, gamify.NewBadgeSet(heldBadges))
	return totalScore, level, newBadges
}

// GetHistory returns the user's log history in chronological order. A limit
// of 0 returns everything; otherwise the most recent limit entries.
func (s *TrackerService) GetHistory(ctx context.Context, userID uint64, limit int) ([]models.ActivityRecord, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	logs, err := s.logs.FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, storageFailure("load activity logs", err)
	}
	sortByDate(logs)
	return logs, nil
}

// GetHistoryInRange returns logs between start and end inclusive, in
// chronological order.
func (s *TrackerService) GetHistoryInRange(ctx context.Context, userID uint64, start, end time.Time) ([]models.ActivityRecord, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	logs, err := s.logs.FindByUserRange(ctx, userID, start, end)
	if err != nil {
		return nil, storageFailure("load activity logs", err)
	}
	sortByDate(logs)
	return logs, nil
}

// history loads the full log in chronological order without the user
// existence check (callers inside the pipeline have already verified it).
func (s *TrackerService) history(ctx context.Context, userID uint64) ([]models.ActivityRecord, error) {
	logs, err := s.logs.FindByUser(ctx, userID, 0)
	if err != nil {
		return nil, storageFailure("load activity logs", err)
	}
	sortByDate(logs)
	return logs, nil
}

func sortByDate(logs []models.ActivityRecord) {
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].LogDate.Before(logs[j].LogDate)
	})
}
