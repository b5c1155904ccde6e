package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/soundbridge-backend/internal/apierr"
	"github.com/yungbote/soundbridge-backend/internal/logger"
	"github.com/yungbote/soundbridge-backend/internal/services"
	"github.com/yungbote/soundbridge-backend/internal/types"
)

type AttemptHandler struct {
	log        *logger.Logger
	attemptSvc services.AttemptService
}

func NewAttemptHandler(log *logger.Logger, attemptSvc services.AttemptService) *AttemptHandler {
	return &AttemptHandler{
		log:        log.With("handler", "AttemptHandler"),
		attemptSvc: attemptSvc,
	}
}

type recordAttemptRequest struct {
	UserID          string  `json:"user_id" binding:"required"`
	ScenarioType    string  `json:"scenario_type" binding:"required"`
	Success         bool    `json:"success"`
	ReactionTime    float64 `json:"reaction_time"`
	DifficultyLevel int     `json:"difficulty_level"`
	NoiseLevel      float64 `json:"noise_level"`
	Timestamp       string  `json:"timestamp"`
}

// POST /api/attempts
func (h *AttemptHandler) RecordAttempt(c *gin.Context) {
	var req recordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var ts time.Time
	if req.Timestamp != "" {
		ts, err = time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "timestamp must be RFC3339"})
			return
		}
	}

	attempt := types.AttemptRecord{
		UserID:          userID,
		ScenarioType:    types.ScenarioType(req.ScenarioType),
		Success:         req.Success,
		ReactionTime:    req.ReactionTime,
		DifficultyLevel: req.DifficultyLevel,
		NoiseLevel:      req.NoiseLevel,
		Timestamp:       ts,
	}
	if err := h.attemptSvc.RecordAttempt(c.Request.Context(), attempt); err != nil {
		status, code := apierr.StatusOf(err)
		c.JSON(status, gin.H{"error": err.Error(), "code": code})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "recorded"})
}
