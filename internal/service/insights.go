package service

import (
	"context"
	"io"
	"time"

	"ecomind/tracker-service/internal/gamify"
	"ecomind/tracker-service/internal/predict"
	"ecomind/tracker-service/internal/recommend"
	"ecomind/tracker-service/internal/report"
)

// PredictionView is a forecast over a requested horizon.
type PredictionView struct {
	Days         int     `json:"days"`
	PredictedCO2 float64 `json:"predicted_co2"`
	LowerBound   float64 `json:"lower_bound"`
	UpperBound   float64 `json:"upper_bound"`
	Model        string  `json:"model"`
}

// PredictEmissions forecasts total emissions for the given activity profile
// over the next days. A trend model fitted on the user's history is
// preferred; when one cannot be fit, or the oracle fails, the documented
// fallback is the deterministic emission model scaled by days.
func (s *TrackerService) PredictEmissions(ctx context.Context, userID uint64, in ActivityInput, days int) (*PredictionView, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, invalidInput(err)
	}
	if days < 1 {
		days = 1
	}

	history, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}

	predictor := predict.ForHistory(history)
	model := "trend"
	if _, baseline := predictor.(predict.Baseline); baseline {
		model = "baseline"
	}

	value, lower, upper, err := predictor.PredictWithConfidence(ctx, in.activity(), days)
	if err != nil {
		// Degrade gracefully: the predictor is a soft dependency.
		s.log.WithUserID(userID).WithField("error", err.Error()).Warn("predictor failed, using baseline")
		value, lower, upper, err = predict.Baseline{}.PredictWithConfidence(ctx, in.activity(), days)
		if err != nil {
			return nil, ErrPredictionUnavailable
		}
		model = "baseline"
	}

	return &PredictionView{
		Days:         days,
		PredictedCO2: value,
		LowerBound:   lower,
		UpperBound:   upper,
		Model:        model,
	}, nil
}

// PredictImpact forecasts the effect of an optimized activity profile
// relative to the current one.
func (s *TrackerService) PredictImpact(ctx context.Context, userID uint64, current, optimized ActivityInput, days int) (*predict.Impact, error) {
	if err := s.validator.Validate(current); err != nil {
		return nil, invalidInput(err)
	}
	if err := s.validator.Validate(optimized); err != nil {
		return nil, invalidInput(err)
	}
	if days < 1 {
		days = 1
	}

	history, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}

	impact, err := predict.OptimizationImpact(ctx, predict.ForHistory(history), current.activity(), optimized.activity(), days)
	if err != nil {
		return nil, ErrPredictionUnavailable
	}
	return &impact, nil
}

// Recommendations returns tips targeting the user's latest logged day, or
// general starter tips when the user has no history yet.
func (s *TrackerService) Recommendations(ctx context.Context, userID uint64) ([]recommend.Tip, error) {
	history, err := s.GetHistory(ctx, userID, 1)
	if err != nil {
		return nil, err
	}

	if len(history) == 0 {
		return s.recommender.General(), nil
	}

	latest := history[len(history)-1]
	return s.recommender.ForActivity(ActivityInput{
		Emails:           latest.Emails,
		VideoCallHours:   latest.VideoCallHours,
		StreamingHours:   latest.StreamingHours,
		CloudStorageGB:   latest.CloudStorageGB,
		DeviceUsageHours: latest.DeviceUsageHours,
	}.activity()), nil
}

// AdvancedRecommendations tunes tip difficulty to usage patterns over the
// whole history.
func (s *TrackerService) AdvancedRecommendations(ctx context.Context, userID uint64) ([]recommend.Tip, error) {
	history, err := s.GetHistory(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return s.recommender.ForHistory(history), nil
}

// BuildReport assembles the export summary for a user.
func (s *TrackerService) BuildReport(ctx context.Context, userID uint64) (*report.Summary, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.logs.Stats(ctx, userID)
	if err != nil {
		return nil, storageFailure("load stats", err)
	}

	badges, err := s.badges.FindByUser(ctx, userID)
	if err != nil {
		return nil, storageFailure("load badges", err)
	}

	return &report.Summary{
		Username:      user.Username,
		Level:         user.CurrentLevel,
		TotalScore:    user.TotalScore,
		LevelProgress: gamify.Progress(user.TotalScore),
		Stats:         stats,
		Badges:        badges,
		History:       history,
		GeneratedAt:   time.Now(),
	}, nil
}

// ExportCSV writes the user's raw activity sequence as CSV.
func (s *TrackerService) ExportCSV(ctx context.Context, userID uint64, w io.Writer) error {
	summary, err := s.BuildReport(ctx, userID)
	if err != nil {
		return err
	}
	return report.WriteCSV(w, summary.History)
}

// ExportText writes the human-readable summary report.
func (s *TrackerService) ExportText(ctx context.Context, userID uint64, w io.Writer) error {
	summary, err := s.BuildReport(ctx, userID)
	if err != nil {
		return err
	}
	return report.WriteText(w, *summary)
}
