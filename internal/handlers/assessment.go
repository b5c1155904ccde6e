package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/soundbridge-backend/internal/apierr"
	"github.com/yungbote/soundbridge-backend/internal/logger"
	"github.com/yungbote/soundbridge-backend/internal/services"
)

type AssessmentHandler struct {
	log       *logger.Logger
	assessSvc services.AssessmentService
}

func NewAssessmentHandler(log *logger.Logger, assessSvc services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{
		log:       log.With("handler", "AssessmentHandler"),
		assessSvc: assessSvc,
	}
}

// GET /api/users/:id/clinical-assessment
func (h *AssessmentHandler) GetClinicalAssessment(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	result, err := h.assessSvc.Assess(c.Request.Context(), userID)
	if err != nil {
		status, code := apierr.StatusOf(err)
		c.JSON(status, gin.H{"error": err.Error(), "code": code})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/users/:id/clinical-recommendations
func (h *AssessmentHandler) GetClinicalRecommendations(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	recs, err := h.assessSvc.Recommendations(c.Request.Context(), userID)
	if err != nil {
		status, code := apierr.StatusOf(err)
		c.JSON(status, gin.H{"error": err.Error(), "code": code})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}
