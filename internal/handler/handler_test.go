package handler

import (
	"database/sql"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomind/tracker-service/internal/recommend"
	"ecomind/tracker-service/internal/repository"
	"ecomind/tracker-service/internal/service"
	"ecomind/tracker-service/pkg/logger"
	"ecomind/tracker-service/pkg/validation"
)

func newTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	recommender, err := recommend.NewRecommender(rand.NewSource(1))
	require.NoError(t, err)

	tracker := service.NewTrackerService(
		repository.NewUserRepository(db),
		repository.NewActivityRepository(db),
		repository.NewBadgeRepository(db),
		repository.NewLeaderboardCache(nil, time.Minute),
		validation.NewActivityValidator(),
		recommender,
		logger.NewLogger("handler-test"),
		nil,
	)

	router := gin.New()
	NewHandler(tracker).Register(router.Group("/api/v1"))
	return router, mock, func() { db.Close() }
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func userResultRows(id uint64, username, level string, totalScore int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "username", "email", "joined_date", "current_level", "total_score", "created_at", "updated_at"}).
		AddRow(id, username, nil, now, level, totalScore, now, now)
}

func TestUserIDValidation(t *testing.T) {
	router, mock, done := newTestRouter(t)
	defer done()

	for _, path := range []string{
		"/api/v1/users/abc",
		"/api/v1/users/0",
		"/api/v1/users/-5",
	} {
		w := doRequest(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "path %s", path)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterUser(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		router, mock, done := newTestRouter(t)
		defer done()

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnResult(sqlmock.NewResult(7, 1))
		mock.ExpectQuery(`SELECT id, username, email`).
			WithArgs(uint64(7)).
			WillReturnRows(userResultRows(7, "ecofan", "Bronze", 0))

		w := doRequest(router, http.MethodPost, "/api/v1/users", `{"username":"ecofan"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"username":"ecofan"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing username", func(t *testing.T) {
		router, mock, done := newTestRouter(t)
		defer done()

		w := doRequest(router, http.MethodPost, "/api/v1/users", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUser(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		router, mock, done := newTestRouter(t)
		defer done()

		mock.ExpectQuery(`SELECT id, username, email`).
			WithArgs(uint64(99)).
			WillReturnError(sql.ErrNoRows)

		w := doRequest(router, http.MethodGet, "/api/v1/users/99", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("storage down", func(t *testing.T) {
		router, mock, done := newTestRouter(t)
		defer done()

		mock.ExpectQuery(`SELECT id, username, email`).
			WithArgs(uint64(7)).
			WillReturnError(sql.ErrConnDone)

		w := doRequest(router, http.MethodGet, "/api/v1/users/7", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUserByUsername(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		router, mock, done := newTestRouter(t)
		defer done()

		mock.ExpectQuery(`SELECT id, username, email`).
			WithArgs("ecofan").
			WillReturnRows(userResultRows(7, "ecofan", "Bronze", 0))

		w := doRequest(router, http.MethodGet, "/api/v1/users?username=ecofan", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"username":"ecofan"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing query", func(t *testing.T) {
		router, mock, done := newTestRouter(t)
		defer done()

		w := doRequest(router, http.MethodGet, "/api/v1/users", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRecordActivity(t *testing.T) {
	body := `{"date":"2026-03-10","emails":10,"video_call_hours":2,"streaming_hours":3,"cloud_storage_gb":5,"device_usage_hours":10}`

	t.Run("happy path", func(t *testing.T) {
		router, mock, done := newTestRouter(t)
		defer done()

		logDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT id, username, email`).
			WithArgs(uint64(7)).
			WillReturnRows(userResultRows(7, "ecofan", "Bronze", 0))
		mock.ExpectExec(`INSERT INTO activity_logs`).
			WithArgs(uint64(7), "2026-03-10", 10, 2.0, 3.0, 5.0, 10.0, 698.0).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery(`SELECT id, user_id, log_date`).
			WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "log_date", "emails", "video_calls",
				"streaming", "cloud_storage", "device_usage", "co2_grams", "created_at",
			}).AddRow(uint64(1), uint64(7), logDate, 10, 2.0, 3.0, 5.0, 10.0, 698.0, time.Now()))
		mock.ExpectQuery(`SELECT badge`).
			WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"badge"}))
		mock.ExpectExec(`INSERT IGNORE INTO user_badges`).
			WithArgs(uint64(7), "First Steps", "2026-03-10").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`UPDATE users SET total_score`).
			WithArgs(15, "Bronze", uint64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := doRequest(router, http.MethodPost, "/api/v1/users/7/activity", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result service.SubmissionResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 698.0, result.Record.CO2Grams)
		assert.Equal(t, 15, result.TotalScore)
		assert.Equal(t, "Bronze", result.Level)
		require.Len(t, result.NewBadges, 1)
		assert.Equal(t, "First Steps", result.NewBadges[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bad date", func(t *testing.T) {
		router, mock, done := newTestRouter(t)
		defer done()

		w := doRequest(router, http.MethodPost, "/api/v1/users/7/activity", `{"date":"10-03-2026"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("out of range hours", func(t *testing.T) {
		router, mock, done := newTestRouter(t)
		defer done()

		w := doRequest(router, http.MethodPost, "/api/v1/users/7/activity", `{"video_call_hours":25}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetHistory_RangeValidation(t *testing.T) {
	router, mock, done := newTestRouter(t)
	defer done()

	w := doRequest(router, http.MethodGet, "/api/v1/users/7/history?start=2026-03-01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "start and end must be used together")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwardBadge(t *testing.T) {
	t.Run("missing badge name", func(t *testing.T) {
		router, mock, done := newTestRouter(t)
		defer done()

		w := doRequest(router, http.MethodPost, "/api/v1/users/7/badges", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown badge", func(t *testing.T) {
		router, mock, done := newTestRouter(t)
		defer done()

		w := doRequest(router, http.MethodPost, "/api/v1/users/7/badges", `{"badge":"Carbon Wizard"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLeaderboard(t *testing.T) {
	t.Run("invalid limit", func(t *testing.T) {
		router, mock, done := newTestRouter(t)
		defer done()

		w := doRequest(router, http.MethodGet, "/api/v1/leaderboard?limit=500", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("default limit", func(t *testing.T) {
		router, mock, done := newTestRouter(t)
		defer done()

		rows := sqlmock.NewRows([]string{"username", "current_level", "total_score", "days_tracked", "avg_co2"}).
			AddRow("leader", "Gold", 320, 21, 1100.5)
		mock.ExpectQuery(`SELECT u.username, u.current_level, u.total_score`).
			WithArgs(10).
			WillReturnRows(rows)

		w := doRequest(router, http.MethodGet, "/api/v1/leaderboard", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"username":"leader"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestResetUser(t *testing.T) {
	router, mock, done := newTestRouter(t)
	defer done()

	mock.ExpectQuery(`SELECT id, username, email`).
		WithArgs(uint64(7)).
		WillReturnRows(userResultRows(7, "ecofan", "Gold", 320))
	mock.ExpectExec(`DELETE FROM user_badges`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM activity_logs`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 21))
	mock.ExpectExec(`UPDATE users SET total_score`).
		WithArgs(0, "Bronze", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doRequest(router, http.MethodPost, "/api/v1/users/7/reset", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reset":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
