package service

import (
	"context"
	"time"

	"ecomind/tracker-service/internal/emission"
	"ecomind/tracker-service/internal/gamify"
	"ecomind/tracker-service/internal/models"
)

// NextLevelView describes the level above the user's current band.
type NextLevelView struct {
	Name         string `json:"name"`
	PointsNeeded int    `json:"points_needed"`
	Color        string `json:"color"`
}

// ProgressView is the full gamification state for the profile surface.
type ProgressView struct {
	TotalScore     int            `json:"total_score"`
	Level          string         `json:"level"`
	LevelColor     string         `json:"level_color"`
	LevelProgress  float64        `json:"level_progress"`
	NextLevel      *NextLevelView `json:"next_level,omitempty"`
	Badges         []BadgeView    `json:"badges"`
	RecentBadges   []BadgeView    `json:"recent_badges"`
	BadgesEarned   int            `json:"badges_earned"`
	TotalBadges    int            `json:"total_badges"`
	DaysTracked    int            `json:"days_tracked"`
	AvgDailyCO2    float64        `json:"average_daily_co2"`
	ImprovementPct float64        `json:"improvement_percent"`
}

// GetProgress assembles the user's score, level banding, badge collection
// and improvement trend.
func (s *TrackerService) GetProgress(ctx context.Context, userID uint64) (*ProgressView, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}

	heldNames, err := s.badges.FindByUser(ctx, userID)
	if err != nil {
		return nil, storageFailure("load badges", err)
	}

	recent, err := s.badges.FindRecent(ctx, userID, 7)
	if err != nil {
		return nil, storageFailure("load recent badges", err)
	}
	recentNames := make([]string, len(recent))
	for i, ub := range recent {
		recentNames[i] = ub.Badge
	}

	level := gamify.LevelForScore(user.TotalScore)

	view := &ProgressView{
		TotalScore:    user.TotalScore,
		Level:         level.String(),
		LevelColor:    level.Color(),
		LevelProgress: gamify.Progress(user.TotalScore),
		Badges:        heldBadgeViews(heldNames),
		RecentBadges:  heldBadgeViews(recentNames),
		BadgesEarned:  len(heldNames),
		TotalBadges:   len(gamify.AllBadges()),
		DaysTracked:   len(history),
	}

	if next, needed, ok := gamify.NextLevel(user.TotalScore); ok {
		view.NextLevel = &NextLevelView{
			Name:         next.String(),
			PointsNeeded: needed,
			Color:        next.Color(),
		}
	}

	if len(history) > 0 {
		total := 0.0
		for _, rec := range history {
			total += rec.CO2Grams
		}
		view.AvgDailyCO2 = total / float64(len(history))
	}
	view.ImprovementPct = improvementPercent(history)

	return view, nil
}

// improvementPercent compares the first and last tracked weeks: positive
// values mean emissions went down.
func improvementPercent(history []models.ActivityRecord) float64 {
	if len(history) < 7 {
		return 0
	}

	firstWeek := history
	if len(firstWeek) > 7 {
		firstWeek = firstWeek[:7]
	}
	lastWeek := history
	if len(lastWeek) > 7 {
		lastWeek = lastWeek[len(lastWeek)-7:]
	}

	firstAvg := meanCO2(firstWeek)
	if firstAvg <= 0 {
		return 0
	}
	return (firstAvg - meanCO2(lastWeek)) / firstAvg * 100
}

func meanCO2(logs []models.ActivityRecord) float64 {
	if len(logs) == 0 {
		return 0
	}
	total := 0.0
	for _, rec := range logs {
		total += rec.CO2Grams
	}
	return total / float64(len(logs))
}

func heldBadgeViews(names []string) []BadgeView {
	views := make([]BadgeView, 0, len(names))
	for _, name := range names {
		if b, ok := gamify.ParseBadge(name); ok {
			views = append(views, BadgeView{Name: b.String(), Description: b.Description(), Icon: b.Icon()})
		}
	}
	return views
}

// AwardBadge records a badge for a user. It is idempotent: the return value
// reports whether the badge was newly inserted.
func (s *TrackerService) AwardBadge(ctx context.Context, userID uint64, badgeName string) (bool, error) {
	badge, ok := gamify.ParseBadge(badgeName)
	if !ok {
		return false, invalidInput(errUnknownBadge(badgeName))
	}

	if _, err := s.GetUser(ctx, userID); err != nil {
		return false, err
	}

	inserted, err := s.badges.Award(ctx, userID, badge.String(), time.Now())
	if err != nil {
		return false, storageFailure("award badge", err)
	}
	if inserted && s.metrics != nil {
		s.metrics.BadgesAwarded.WithLabelValues(badge.String()).Inc()
	}
	return inserted, nil
}

// StatsView extends the storage aggregates with derived emission windows.
type StatsView struct {
	models.UserStats
	WeeklyCO2       float64 `json:"weekly_co2"`
	MonthlyCO2      float64 `json:"monthly_co2"`
	EfficiencyScore int     `json:"efficiency_score"`
}

// GetStats aggregates total/average/best/worst CO2 over the user's history
// and derives the trailing week/month footprints plus the latest day's
// efficiency rating.
func (s *TrackerService) GetStats(ctx context.Context, userID uint64) (*StatsView, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	stats, err := s.logs.Stats(ctx, userID)
	if err != nil {
		return nil, storageFailure("load stats", err)
	}

	history, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &StatsView{
		UserStats:  stats,
		WeeklyCO2:  emission.WeeklyFootprint(history),
		MonthlyCO2: emission.MonthlyFootprint(history),
	}
	if len(history) > 0 {
		view.EfficiencyScore = emission.EfficiencyScore(history[len(history)-1].CO2Grams)
	}
	return view, nil
}

// GetLeaderboard returns the top users by score, served from the Redis cache
// when it is warm and falling back to MySQL when it is not.
func (s *TrackerService) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	if entries, ok := s.cache.Get(ctx, limit); ok {
		return entries, nil
	}

	entries, err := s.users.Leaderboard(ctx, limit)
	if err != nil {
		return nil, storageFailure("load leaderboard", err)
	}

	s.cache.Set(ctx, limit, entries)
	return entries, nil
}
