package predict

import (
	"context"
	"math"
	"sort"

	"ecomind/tracker-service/internal/emission"
	"ecomind/tracker-service/internal/models"
)

// TrendModel forecasts emissions by blending the deterministic activity
// estimate with an ordinary-least-squares trend fitted over the user's
// logged history.
type TrendModel struct {
	intercept float64
	slope     float64
	residual  float64 // standard deviation of fit residuals
	n         int
}

// NewTrendModel fits a least-squares line over (day index, co2_grams).
// At least two observations are required.
func NewTrendModel(history []models.ActivityRecord) (*TrendModel, error) {
	if len(history) < 2 {
		return nil, ErrInsufficientHistory
	}

	logs := make([]models.ActivityRecord, len(history))
	copy(logs, history)
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].LogDate.Before(logs[j].LogDate)
	})

	n := float64(len(logs))
	var sumX, sumY, sumXX, sumXY float64
	for i, rec := range logs {
		x := float64(i)
		sumX += x
		sumY += rec.CO2Grams
		sumXX += x * x
		sumXY += x * rec.CO2Grams
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return nil, ErrInsufficientHistory
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	var sqErr float64
	for i, rec := range logs {
		fit := intercept + slope*float64(i)
		sqErr += (rec.CO2Grams - fit) * (rec.CO2Grams - fit)
	}
	residual := math.Sqrt(sqErr / n)

	return &TrendModel{
		intercept: intercept,
		slope:     slope,
		residual:  residual,
		n:         len(logs),
	}, nil
}

// Predict forecasts total CO2 grams over the next days. Each projected day
// averages the activity-based estimate with the fitted trend value for that
// day, floored at zero.
func (m *TrendModel) Predict(_ context.Context, f emission.Activity, days int) (float64, error) {
	if days < 1 {
		days = 1
	}

	featureDaily := emission.ComputeFootprint(f)
	total := 0.0
	for i := 1; i <= days; i++ {
		trendDaily := m.intercept + m.slope*float64(m.n-1+i)
		daily := (featureDaily + trendDaily) / 2
		if daily < 0 {
			daily = 0
		}
		total += daily
	}
	return total, nil
}

// PredictWithConfidence widens the forecast by ~1.96 residual standard
// deviations per projected day.
func (m *TrendModel) PredictWithConfidence(ctx context.Context, f emission.Activity, days int) (float64, float64, float64, error) {
	if days < 1 {
		days = 1
	}

	value, err := m.Predict(ctx, f, days)
	if err != nil {
		return 0, 0, 0, err
	}

	margin := 1.96 * m.residual * float64(days)
	lower := value - margin
	if lower < 0 {
		lower = 0
	}
	return value, lower, value + margin, nil
}
