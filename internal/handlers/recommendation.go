package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/soundbridge-backend/internal/apierr"
	"github.com/yungbote/soundbridge-backend/internal/logger"
	"github.com/yungbote/soundbridge-backend/internal/services"
)

type RecommendationHandler struct {
	log    *logger.Logger
	recSvc services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, recSvc services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		log:    log.With("handler", "RecommendationHandler"),
		recSvc: recSvc,
	}
}

// GET /api/users/:id/recommendation
func (h *RecommendationHandler) GetRecommendation(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	rec, err := h.recSvc.NextScenario(c.Request.Context(), userID)
	if err != nil {
		status, code := apierr.StatusOf(err)
		c.JSON(status, gin.H{"error": err.Error(), "code": code})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GET /api/users/:id/cognitive-status
func (h *RecommendationHandler) GetCognitiveStatus(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	status, err := h.recSvc.CognitiveStatus(c.Request.Context(), userID)
	if err != nil {
		httpStatus, code := apierr.StatusOf(err)
		c.JSON(httpStatus, gin.H{"error": err.Error(), "code": code})
		return
	}
	c.JSON(http.StatusOK, status)
}
