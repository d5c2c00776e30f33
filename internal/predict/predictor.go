// Package predict supplies the forecasting oracle behind the predictions
// surface. The service depends only on the Predictor contract; the model
// behind it is replaceable.
package predict

import (
	"context"
	"errors"

	"ecomind/tracker-service/internal/emission"
	"ecomind/tracker-service/internal/models"
)

// ErrInsufficientHistory is returned when a trend model cannot be fit.
var ErrInsufficientHistory = errors.New("not enough history to fit a trend model")

// Predictor forecasts total CO2 grams over the next days for a given daily
// activity profile.
type Predictor interface {
	Predict(ctx context.Context, f emission.Activity, days int) (float64, error)

	// PredictWithConfidence returns the forecast with a lower and upper bound.
	PredictWithConfidence(ctx context.Context, f emission.Activity, days int) (value, lower, upper float64, err error)
}

// Baseline is the deterministic fallback predictor: the emission model scaled
// by the requested number of days. It is the explicit degradation policy when
// no trained model is available.
type Baseline struct{}

func (Baseline) Predict(_ context.Context, f emission.Activity, days int) (float64, error) {
	if days < 1 {
		days = 1
	}
	return emission.ComputeFootprint(f) * float64(days), nil
}

func (b Baseline) PredictWithConfidence(ctx context.Context, f emission.Activity, days int) (float64, float64, float64, error) {
	value, err := b.Predict(ctx, f, days)
	if err != nil {
		return 0, 0, 0, err
	}
	return value, value * 0.8, value * 1.2, nil
}

// Impact compares a current and an optimized activity profile through the
// same predictor.
type Impact struct {
	CurrentCO2     float64 `json:"current_co2"`
	OptimizedCO2   float64 `json:"optimized_co2"`
	SavingsCO2     float64 `json:"savings_co2"`
	SavingsPercent float64 `json:"savings_percent"`
}

// OptimizationImpact forecasts the effect of switching from current to
// optimized activity levels over the given horizon.
func OptimizationImpact(ctx context.Context, p Predictor, current, optimized emission.Activity, days int) (Impact, error) {
	currentCO2, err := p.Predict(ctx, current, days)
	if err != nil {
		return Impact{}, err
	}
	optimizedCO2, err := p.Predict(ctx, optimized, days)
	if err != nil {
		return Impact{}, err
	}

	savings := currentCO2 - optimizedCO2
	percent := 0.0
	if currentCO2 > 0 {
		percent = savings / currentCO2 * 100
	}
	return Impact{
		CurrentCO2:     currentCO2,
		OptimizedCO2:   optimizedCO2,
		SavingsCO2:     savings,
		SavingsPercent: percent,
	}, nil
}

// ForHistory builds the best available predictor for a user's history: a
// fitted trend model when there is enough data, the deterministic Baseline
// otherwise.
func ForHistory(history []models.ActivityRecord) Predictor {
	model, err := NewTrendModel(history)
	if err != nil {
		return Baseline{}
	}
	return model
}
