package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"ecomind/tracker-service/internal/service"
)

type predictRequest struct {
	Days int `json:"days"`
	service.ActivityInput
}

// Predict forecasts emissions for an activity profile over N days.
func (h *Handler) Predict(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	prediction, err := h.tracker.PredictEmissions(c.Request.Context(), id, req.ActivityInput, req.Days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, prediction)
}

type predictImpactRequest struct {
	Days      int                   `json:"days"`
	Current   service.ActivityInput `json:"current"`
	Optimized service.ActivityInput `json:"optimized"`
}

// PredictImpact compares a current and an optimized activity profile.
func (h *Handler) PredictImpact(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var req predictImpactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	impact, err := h.tracker.PredictImpact(c.Request.Context(), id, req.Current, req.Optimized, req.Days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, impact)
}

// Recommendations returns eco tips; ?advanced=true tunes difficulty to the
// whole history instead of the latest day.
func (h *Handler) Recommendations(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var tips interface{}
	var err error
	if c.Query("advanced") == "true" {
		tips, err = h.tracker.AdvancedRecommendations(c.Request.Context(), id)
	} else {
		tips, err = h.tracker.Recommendations(c.Request.Context(), id)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": tips})
}

// ExportReport streams the user report; ?format=csv for the raw log export,
// anything else for the text summary.
func (h *Handler) ExportReport(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	var contentType, filename string
	var err error

	if c.Query("format") == "csv" {
		contentType = "text/csv"
		filename = "activity_log.csv"
		err = h.tracker.ExportCSV(c.Request.Context(), id, &buf)
	} else {
		contentType = "text/plain; charset=utf-8"
		filename = "ecomind_report.txt"
		err = h.tracker.ExportText(c.Request.Context(), id, &buf)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
