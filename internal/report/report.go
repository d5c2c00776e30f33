// Package report renders already-computed tracking data into exportable
// artifacts. It holds formatting only; no scoring or accounting logic.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"ecomind/tracker-service/internal/models"
)

// Summary bundles everything a user report needs.
type Summary struct {
	Username      string                  `json:"username"`
	Level         string                  `json:"level"`
	TotalScore    int                     `json:"total_score"`
	LevelProgress float64                 `json:"level_progress"`
	Stats         models.UserStats        `json:"stats"`
	Badges        []string                `json:"badges"`
	History       []models.ActivityRecord `json:"history"`
	GeneratedAt   time.Time               `json:"generated_at"`
}

// WriteCSV writes the raw activity sequence as CSV, one row per tracked day.
func WriteCSV(w io.Writer, history []models.ActivityRecord) error {
	cw := csv.NewWriter(w)

	header := []string{"date", "emails", "video_call_hours", "streaming_hours", "cloud_storage_gb", "device_usage_hours", "co2_grams"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, rec := range history {
		row := []string{
			rec.Date(),
			strconv.Itoa(rec.Emails),
			formatFloat(rec.VideoCallHours),
			formatFloat(rec.StreamingHours),
			formatFloat(rec.CloudStorageGB),
			formatFloat(rec.DeviceUsageHours),
			formatFloat(rec.CO2Grams),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteText writes a human-readable summary report.
func WriteText(w io.Writer, s Summary) error {
	var err error
	p := func(format string, args ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}

	p("EcoMind Carbon Tracking Report\n")
	p("Generated: %s\n\n", s.GeneratedAt.Format("2006-01-02 15:04"))

	p("User:  %s\n", s.Username)
	p("Level: %s (%.1f%% through band)\n", s.Level, s.LevelProgress)
	p("Score: %d\n\n", s.TotalScore)

	p("Days tracked:    %d\n", s.Stats.TotalDays)
	p("Total CO2:       %.2f g\n", s.Stats.TotalCO2)
	p("Average per day: %.2f g\n", s.Stats.AvgDailyCO2)
	p("Best day:        %.2f g\n", s.Stats.BestDayCO2)
	p("Worst day:       %.2f g\n\n", s.Stats.WorstDayCO2)

	if len(s.Badges) > 0 {
		p("Badges earned (%d):\n", len(s.Badges))
		for _, badge := range s.Badges {
			p("  - %s\n", badge)
		}
		p("\n")
	}

	if len(s.History) > 0 {
		p("Recent activity:\n")
		history := s.History
		if len(history) > 14 {
			history = history[len(history)-14:]
		}
		for _, rec := range history {
			p("  %s  %8.2f g  (%d emails, %.1fh calls, %.1fh streaming, %.1f GB, %.1fh device)\n",
				rec.Date(), rec.CO2Grams, rec.Emails, rec.VideoCallHours,
				rec.StreamingHours, rec.CloudStorageGB, rec.DeviceUsageHours)
		}
	}

	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
