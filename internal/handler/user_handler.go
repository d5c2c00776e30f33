package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type registerUserRequest struct {
	Username string  `json:"username" binding:"required"`
	Email    *string `json:"email"`
}

// RegisterUser creates a user (idempotent on username).
func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	user, err := h.tracker.RegisterUser(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// GetUser returns a user row by id.
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	user, err := h.tracker.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetUserByUsername looks a user up by the username query parameter.
func (h *Handler) GetUserByUsername(c *gin.Context) {
	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username query is required"})
		return
	}

	user, err := h.tracker.GetUserByUsername(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ResetUser wipes history, badges and progress for a user.
func (h *Handler) ResetUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	if err := h.tracker.ResetUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reset": true})
}

// Leaderboard returns the top users by total score.
func (h *Handler) Leaderboard(c *gin.Context) {
	limit := intQuery(c, "limit", 10)
	if limit <= 0 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	entries, err := h.tracker.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
