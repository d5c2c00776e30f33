package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ecomind/tracker-service/internal/models"
	"ecomind/tracker-service/internal/service"
)

type recordActivityRequest struct {
	Date string `json:"date"` // YYYY-MM-DD, defaults to today
	service.ActivityInput
}

// RecordActivity submits one day of activity and returns the progress deltas.
func (h *Handler) RecordActivity(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var req recordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(models.DateLayout, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	result, err := h.tracker.RecordDailyActivity(c.Request.Context(), id, date, req.ActivityInput)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetHistory returns the activity log, optionally limited or bounded by a
// date range (start and end must be given together).
func (h *Handler) GetHistory(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	start := strings.TrimSpace(c.Query("start"))
	end := strings.TrimSpace(c.Query("end"))
	if (start == "") != (end == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must be used together"})
		return
	}

	var logs []models.ActivityRecord
	var err error
	if start != "" {
		var startDate, endDate time.Time
		startDate, err = time.Parse(models.DateLayout, start)
		if err == nil {
			endDate, err = time.Parse(models.DateLayout, end)
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		logs, err = h.tracker.GetHistoryInRange(c.Request.Context(), id, startDate, endDate)
	} else {
		logs, err = h.tracker.GetHistory(c.Request.Context(), id, intQuery(c, "limit", 0))
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": logs, "count": len(logs)})
}

// GetProgress returns score, level banding and the badge collection.
func (h *Handler) GetProgress(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	progress, err := h.tracker.GetProgress(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetStats returns emission aggregates over the full history.
func (h *Handler) GetStats(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	stats, err := h.tracker.GetStats(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

type awardBadgeRequest struct {
	Badge string `json:"badge" binding:"required"`
}

// AwardBadge records a badge; the response reports whether it was newly
// inserted.
func (h *Handler) AwardBadge(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var req awardBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "badge is required"})
		return
	}

	inserted, err := h.tracker.AwardBadge(c.Request.Context(), id, req.Badge)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"badge": req.Badge, "newly_awarded": inserted})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
