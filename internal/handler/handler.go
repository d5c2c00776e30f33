// Package handler exposes the tracker service over HTTP/JSON.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ecomind/tracker-service/internal/service"
)

// Handler wires the tracker service to gin routes.
type Handler struct {
	tracker *service.TrackerService
}

func NewHandler(tracker *service.TrackerService) *Handler {
	return &Handler{tracker: tracker}
}

// Register mounts all API routes on the router group.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.POST("/users", h.RegisterUser)
	api.GET("/users", h.GetUserByUsername)
	api.GET("/users/:id", h.GetUser)
	api.POST("/users/:id/activity", h.RecordActivity)
	api.GET("/users/:id/history", h.GetHistory)
	api.GET("/users/:id/progress", h.GetProgress)
	api.GET("/users/:id/stats", h.GetStats)
	api.POST("/users/:id/badges", h.AwardBadge)
	api.POST("/users/:id/predict", h.Predict)
	api.POST("/users/:id/predict/impact", h.PredictImpact)
	api.GET("/users/:id/recommendations", h.Recommendations)
	api.GET("/users/:id/report", h.ExportReport)
	api.POST("/users/:id/reset", h.ResetUser)
	api.GET("/leaderboard", h.Leaderboard)
}

func userID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return id, true
}

// respondError maps service failure kinds to HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, service.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
	case errors.Is(err, service.ErrPredictionUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "prediction unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
	_ = c.Error(err)
}
