package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Arwin-j/rouTU/internal/http/middleware"
	"github.com/Arwin-j/rouTU/internal/schedule"
)

// ScheduleExtractor is the slice of the schedule service handlers depend on.
type ScheduleExtractor interface {
	Extract(ctx context.Context, req schedule.ExtractionRequest) ([]schedule.ClassEntry, error)
}

// APIHandler holds the HTTP endpoints.
type APIHandler struct {
	Schedule ScheduleExtractor
	Logger   *zap.Logger
}

// NewAPIHandler creates the handler set.
func NewAPIHandler(scheduleSvc ScheduleExtractor, logger *zap.Logger) *APIHandler {
	return &APIHandler{Schedule: scheduleSvc, Logger: logger}
}

// Welcome answers the root route.
func (h *APIHandler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Campus Navigation API 🚀"})
}

// Healthz reports liveness.
func (h *APIHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Route echoes a placeholder campus route for an authenticated caller.
// There is no pathfinding behind this; the coordinates are fixed samples.
func (h *APIHandler) Route(c *gin.Context) {
	var req struct {
		Start       string `json:"start" binding:"required"`
		Destination string `json:"destination" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "start and destination are required."})
		return
	}

	claims, _ := middleware.GetRawClaims(c)

	c.JSON(http.StatusOK, gin.H{
		"start":          req.Start,
		"destination":    req.Destination,
		"estimated_time": "7 minutes",
		"path": []gin.H{
			{"lat": 39.9812, "lng": -75.1550},
			{"lat": 39.9815, "lng": -75.1520},
		},
		"user": claims,
	})
}

// ProcessSchedule extracts class records from a schedule description.
// Only the text modality is carried by this transport; image and audio
// inputs have no upload path here and are rejected up front.
func (h *APIHandler) ProcessSchedule(c *gin.Context) {
	var req struct {
		Type      string `json:"type" binding:"required"`
		TextInput string `json:"text_input"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Request body must include a 'type' field."})
		return
	}

	switch schedule.Modality(req.Type) {
	case schedule.ModalityText:
		// handled below
	case schedule.ModalityImage, schedule.ModalityAudio:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   req.Type + " input is not supported by this transport. Use text input.",
		})
		return
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Unknown input type '" + req.Type + "'."})
		return
	}

	entries, err := h.Schedule.Extract(c.Request.Context(), schedule.ExtractionRequest{
		Modality: schedule.ModalityText,
		Text:     req.TextInput,
	})
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		h.Logger.Error("schedule extraction failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}

	if entries == nil {
		entries = []schedule.ClassEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "classes": entries})
}
