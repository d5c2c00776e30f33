package emission

import (
	"github.com/shopspring/decimal"

	"ecomind/tracker-service/internal/models"
)

// Per-unit CO2 emission factors in grams.
var (
	factorEmail        = decimal.NewFromFloat(4.0)   // per email
	factorVideoCall    = decimal.NewFromFloat(150.0) // per hour
	factorStreaming    = decimal.NewFromFloat(36.0)  // per hour
	factorCloudStorage = decimal.NewFromFloat(10.0)  // per GB per day
	factorDeviceUsage  = decimal.NewFromFloat(20.0)  // per hour
)

// GlobalDailyAverage is the average global daily digital carbon footprint in grams.
const GlobalDailyAverage = 2500.0

// Activity holds one day of self-reported digital activity counts.
// Inputs are assumed validated (non-negative) by the caller.
type Activity struct {
	Emails           int     `json:"emails"`
	VideoCallHours   float64 `json:"video_call_hours"`
	StreamingHours   float64 `json:"streaming_hours"`
	CloudStorageGB   float64 `json:"cloud_storage_gb"`
	DeviceUsageHours float64 `json:"device_usage_hours"`
}

func components(a Activity) (email, video, streaming, storage, device decimal.Decimal) {
	email = decimal.NewFromInt(int64(a.Emails)).Mul(factorEmail)
	video = decimal.NewFromFloat(a.VideoCallHours).Mul(factorVideoCall)
	streaming = decimal.NewFromFloat(a.StreamingHours).Mul(factorStreaming)
	storage = decimal.NewFromFloat(a.CloudStorageGB).Mul(factorCloudStorage)
	device = decimal.NewFromFloat(a.DeviceUsageHours).Mul(factorDeviceUsage)
	return
}

// ComputeFootprint returns the total daily CO2 footprint in grams,
// rounded to two decimal places.
func ComputeFootprint(a Activity) float64 {
	email, video, streaming, storage, device := components(a)
	total := email.Add(video).Add(streaming).Add(storage).Add(device)
	return total.Round(2).InexactFloat64()
}

// Breakdown returns the per-activity CO2 contributions in grams. The
// components sum to ComputeFootprint's result up to rounding.
func Breakdown(a Activity) map[string]float64 {
	email, video, streaming, storage, device := components(a)
	return map[string]float64{
		"emails":        email.Round(2).InexactFloat64(),
		"video_calls":   video.Round(2).InexactFloat64(),
		"streaming":     streaming.Round(2).InexactFloat64(),
		"cloud_storage": storage.Round(2).InexactFloat64(),
		"device_usage":  device.Round(2).InexactFloat64(),
	}
}

// WeeklyFootprint sums co2_grams over the last 7 entries of a
// date-ascending history, rounded to two decimal places.
func WeeklyFootprint(history []models.ActivityRecord) float64 {
	return tailSum(history, 7)
}

// MonthlyFootprint sums co2_grams over the last 30 entries of a
// date-ascending history, rounded to two decimal places.
func MonthlyFootprint(history []models.ActivityRecord) float64 {
	return tailSum(history, 30)
}

func tailSum(history []models.ActivityRecord, n int) float64 {
	if len(history) == 0 {
		return 0
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	total := decimal.Zero
	for _, rec := range history {
		total = total.Add(decimal.NewFromFloat(rec.CO2Grams))
	}
	return total.Round(2).InexactFloat64()
}

// EfficiencyScore rates a daily footprint on a 0-100 scale against the
// global daily average.
func EfficiencyScore(dailyCO2 float64) int {
	half := GlobalDailyAverage * 0.5
	switch {
	case dailyCO2 <= half:
		return 100
	case dailyCO2 <= GlobalDailyAverage:
		score := 100 - int((dailyCO2-half)/half*20)
		if score < 80 {
			return 80
		}
		return score
	default:
		score := 80 - int((dailyCO2-GlobalDailyAverage)/GlobalDailyAverage*80)
		if score < 0 {
			return 0
		}
		return score
	}
}
