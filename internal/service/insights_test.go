package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomind/tracker-service/internal/models"
)

func TestPredictEmissions(t *testing.T) {
	// 10*4 + 2*150 = 340 per day
	input := ActivityInput{Emails: 10, VideoCallHours: 2}

	t.Run("baseline without history", func(t *testing.T) {
		svc, mock, done := newTestService(t)
		defer done()

		mock.ExpectQuery(`SELECT id, user_id, log_date`).
			WithArgs(uint64(7)).
			WillReturnRows(historyRows())

		view, err := svc.PredictEmissions(context.Background(), 7, input, 7)
		require.NoError(t, err)
		assert.Equal(t, "baseline", view.Model)
		assert.Equal(t, 7, view.Days)
		assert.Equal(t, 2380.0, view.PredictedCO2)
		assert.Less(t, view.LowerBound, view.PredictedCO2)
		assert.Greater(t, view.UpperBound, view.PredictedCO2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("trend with history", func(t *testing.T) {
		svc, mock, done := newTestService(t)
		defer done()

		base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT id, user_id, log_date`).
			WithArgs(uint64(7)).
			WillReturnRows(historyRows(
				models.ActivityRecord{ID: 1, UserID: 7, LogDate: base, CO2Grams: 1000},
				models.ActivityRecord{ID: 2, UserID: 7, LogDate: base.AddDate(0, 0, 1), CO2Grams: 1000},
				models.ActivityRecord{ID: 3, UserID: 7, LogDate: base.AddDate(0, 0, 2), CO2Grams: 1000},
			))

		view, err := svc.PredictEmissions(context.Background(), 7, input, 2)
		require.NoError(t, err)
		assert.Equal(t, "trend", view.Model)
		// Flat trend at 1000 averaged with the 340 activity estimate.
		assert.InDelta(t, 1340.0, view.PredictedCO2, 0.001)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid input", func(t *testing.T) {
		svc, mock, done := newTestService(t)
		defer done()

		_, err := svc.PredictEmissions(context.Background(), 7, ActivityInput{VideoCallHours: 30}, 7)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPredictImpact(t *testing.T) {
	svc, mock, done := newTestService(t)
	defer done()

	mock.ExpectQuery(`SELECT id, user_id, log_date`).
		WithArgs(uint64(7)).
		WillReturnRows(historyRows())

	current := ActivityInput{VideoCallHours: 4}   // 600/day
	optimized := ActivityInput{VideoCallHours: 2} // 300/day

	impact, err := svc.PredictImpact(context.Background(), 7, current, optimized, 7)
	require.NoError(t, err)
	assert.Equal(t, 4200.0, impact.CurrentCO2)
	assert.Equal(t, 2100.0, impact.SavingsCO2)
	assert.InDelta(t, 50.0, impact.SavingsPercent, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendations(t *testing.T) {
	t.Run("no history gives general tips", func(t *testing.T) {
		svc, mock, done := newTestService(t)
		defer done()

		mock.ExpectQuery(`SELECT id, username, email`).
			WithArgs(uint64(7)).
			WillReturnRows(userRows(7, "ecofan", "Bronze", 0))
		mock.ExpectQuery(`SELECT id, user_id, log_date`).
			WithArgs(uint64(7), 1).
			WillReturnRows(historyRows())

		tips, err := svc.Recommendations(context.Background(), 7)
		require.NoError(t, err)
		assert.Len(t, tips, 3)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("targets latest day", func(t *testing.T) {
		svc, mock, done := newTestService(t)
		defer done()

		mock.ExpectQuery(`SELECT id, username, email`).
			WithArgs(uint64(7)).
			WillReturnRows(userRows(7, "ecofan", "Bronze", 15))
		mock.ExpectQuery(`SELECT id, user_id, log_date`).
			WithArgs(uint64(7), 1).
			WillReturnRows(historyRows(
				models.ActivityRecord{
					ID: 1, UserID: 7,
					LogDate:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
					VideoCallHours: 6,
					CO2Grams:       900,
				},
			))

		tips, err := svc.Recommendations(context.Background(), 7)
		require.NoError(t, err)
		assert.Len(t, tips, 3)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBuildReportAndExport(t *testing.T) {
	svc, mock, done := newTestService(t)
	defer done()

	logDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, username, email`).
		WithArgs(uint64(7)).
		WillReturnRows(userRows(7, "ecofan", "Bronze", 15))
	mock.ExpectQuery(`SELECT id, user_id, log_date`).
		WithArgs(uint64(7)).
		WillReturnRows(historyRows(
			models.ActivityRecord{ID: 1, UserID: 7, LogDate: logDate, Emails: 10, CO2Grams: 698},
		))
	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "total", "avg", "min", "max"}).
			AddRow(1, 698.0, 698.0, 698.0, 698.0))
	mock.ExpectQuery(`SELECT badge`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"badge"}).AddRow("First Steps"))

	summary, err := svc.BuildReport(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "ecofan", summary.Username)
	assert.Equal(t, "Bronze", summary.Level)
	assert.Equal(t, 15, summary.TotalScore)
	assert.Equal(t, 1, summary.Stats.TotalDays)
	assert.Equal(t, []string{"First Steps"}, summary.Badges)
	require.Len(t, summary.History, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportCSV(t *testing.T) {
	svc, mock, done := newTestService(t)
	defer done()

	logDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, username, email`).
		WithArgs(uint64(7)).
		WillReturnRows(userRows(7, "ecofan", "Bronze", 15))
	mock.ExpectQuery(`SELECT id, user_id, log_date`).
		WithArgs(uint64(7)).
		WillReturnRows(historyRows(
			models.ActivityRecord{ID: 1, UserID: 7, LogDate: logDate, Emails: 10, CO2Grams: 698},
		))
	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "total", "avg", "min", "max"}).
			AddRow(1, 698.0, 698.0, 698.0, 698.0))
	mock.ExpectQuery(`SELECT badge`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"badge"}))

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), 7, &buf))
	out := buf.String()
	assert.Contains(t, out, "date,emails,video_call_hours")
	assert.Contains(t, out, "2026-03-10,10,")
	assert.NoError(t, mock.ExpectationsWereMet())
}
