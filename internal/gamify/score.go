package gamify

import "ecomind/tracker-service/internal/models"

// DailyScore converts one day's CO2 emissions into points. Lower emissions
// earn more points; any tracked day earns at least 1 point.
func DailyScore(co2Grams float64) int {
	switch {
	case co2Grams <= 500:
		return 20
	case co2Grams <= 1000:
		return 15
	case co2Grams <= 1500:
		return 10
	case co2Grams <= 2000:
		return 5
	case co2Grams <= 2500:
		return 2
	default:
		return 1
	}
}

// ScoreHistory computes the total score as a fold over the full log history.
// Recomputing from scratch keeps the total correct when a day is
// re-submitted: the overwritten row contributes exactly once.
func ScoreHistory(history []models.ActivityRecord) int {
	total := 0
	for _, rec := range history {
		total += DailyScore(rec.CO2Grams)
	}
	return total
}
