package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"analytics-service/internal/models"
	"analytics-service/internal/services"
	"github.com/gin-gonic/gin"
)

// RecommendationsHandler exposes the recommendation and behavior analysis endpoints
type RecommendationsHandler struct {
	recommendations *services.RecommendationService
	behavior        *services.BehaviorService
}

func NewRecommendationsHandler(recommendations *services.RecommendationService, behavior *services.BehaviorService) *RecommendationsHandler {
	return &RecommendationsHandler{
		recommendations: recommendations,
		behavior:        behavior,
	}
}

// respondServiceError maps service sentinel errors onto the error envelope
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "NOT_FOUND",
				Message: err.Error(),
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INTERNAL_ERROR",
				Message: "An unexpected error occurred",
			},
		})
	}
}

// GetRecommendations generates product recommendations
// @Summary Get product recommendations
// @Description Generate scored product recommendations using the requested strategy
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body models.RecommendationRequest true "Recommendation request"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recommendations [post]
func (h *RecommendationsHandler) GetRecommendations(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	var req models.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	analysis, err := h.recommendations.GetRecommendations(c.Request.Context(), tenantID.(string), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    analysis,
	})
}

// GetClientBehavior analyzes one client's purchasing behavior
// @Summary Analyze client behavior
// @Description Build a behavioral profile from the client's purchase history
// @Tags Recommendations
// @Produce json
// @Param clientId path string true "Client ID"
// @Param daysPeriod query int false "Lookback window in days" default(90)
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recommendations/behavior/{clientId} [get]
func (h *RecommendationsHandler) GetClientBehavior(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	clientID := c.Param("clientId")

	daysPeriod, err := strconv.Atoi(c.DefaultQuery("daysPeriod", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "daysPeriod must be an integer",
				Field:   "daysPeriod",
			},
		})
		return
	}

	profile, err := h.behavior.AnalyzeClientBehavior(c.Request.Context(), tenantID.(string), clientID, daysPeriod)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    profile,
	})
}

// AnalyzeClients runs the behavior analysis over a batch of clients
// @Summary Analyze clients in bulk
// @Description Build behavioral profiles for a batch of clients with an aggregate summary
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body models.BulkBehaviorRequest true "Bulk behavior request"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /recommendations/behavior/bulk [post]
func (h *RecommendationsHandler) AnalyzeClients(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	var req models.BulkBehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	response, err := h.behavior.AnalyzeClients(c.Request.Context(), tenantID.(string), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    response,
	})
}

// GetInsights returns tenant-level catalog and sales statistics
// @Summary Get tenant insights
// @Description Tenant-wide catalog and sales statistics for the recommendation surface
// @Tags Recommendations
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /recommendations/insights [get]
func (h *RecommendationsHandler) GetInsights(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	insights, err := h.recommendations.GetTenantInsights(c.Request.Context(), tenantID.(string))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    insights,
	})
}
