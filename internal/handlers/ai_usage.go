package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/feedbacklens/internal/services"
	"github.com/huangang/feedbacklens/pkg/logger"
	"github.com/huangang/feedbacklens/pkg/response"
)

// AIUsageHandler provides endpoints for enrichment call statistics.
// All endpoints accept optional start_date and end_date (YYYY-MM-DD).
type AIUsageHandler struct {
	usageService *services.AIUsageService
}

func NewAIUsageHandler(usageService *services.AIUsageService) *AIUsageHandler {
	return &AIUsageHandler{usageService: usageService}
}

// GetStats returns aggregated AI usage statistics.
func (h *AIUsageHandler) GetStats(c *gin.Context) {
	stats, err := h.usageService.GetStats(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		logger.Errorf("[AIUsage] stats query failed: %v", err)
		response.ServerError(c, "Failed to get AI usage stats")
		return
	}

	response.Success(c, stats)
}

// GetDailyTrend returns daily AI usage data for charting.
func (h *AIUsageHandler) GetDailyTrend(c *gin.Context) {
	trend, err := h.usageService.GetDailyTrend(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		logger.Errorf("[AIUsage] trend query failed: %v", err)
		response.ServerError(c, "Failed to get AI usage trend")
		return
	}

	response.Success(c, trend)
}

// GetProviderBreakdown returns AI usage grouped by provider, model and kind.
func (h *AIUsageHandler) GetProviderBreakdown(c *gin.Context) {
	providers, err := h.usageService.GetProviderBreakdown(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		logger.Errorf("[AIUsage] provider query failed: %v", err)
		response.ServerError(c, "Failed to get provider breakdown")
		return
	}

	response.Success(c, providers)
}
