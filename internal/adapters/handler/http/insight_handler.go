package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habitflow-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/services"
)

const (
	sourceHeuristic = "heuristic"
	sourceAI        = "ai"
)

type InsightHandler struct {
	stats *services.StatsService
	ai    *services.AIInsightService
	clock services.Clock
}

func NewInsightHandler(stats *services.StatsService, ai *services.AIInsightService, clock services.Clock) *InsightHandler {
	if clock == nil {
		clock = services.SystemClock(time.UTC)
	}
	return &InsightHandler{stats: stats, ai: ai, clock: clock}
}

func (h *InsightHandler) RegisterRoutes(r *gin.RouterGroup) {
	insights := r.Group("/insights")
	{
		insights.GET("", h.GetInsights)
		insights.POST("/ai", h.GenerateAI)
	}
}

func trackInsights(source string, insights []domain.Insight) {
	for _, in := range insights {
		middleware.TrackInsight(source, in.Type)
	}
}

// GetInsights godoc
// @Summary      Rule based insights over the last 28 days
// @Tags         insights
// @Produce      json
// @Param        date  query     string  false  "Reference day (YYYY-MM-DD)"
// @Success      200   {array}   domain.Insight
// @Security     BearerAuth
// @Router       /insights [get]
func (h *InsightHandler) GetInsights(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	today, ok := queryDate(c, h.clock)
	if !ok {
		return
	}

	insights, err := h.stats.GetInsights(c.Request.Context(), userID, today)
	if err != nil {
		respondError(c, err)
		return
	}

	trackInsights(sourceHeuristic, insights)
	c.JSON(http.StatusOK, insights)
}

// GenerateAI godoc
// @Summary      Insights from an external language model
// @Tags         insights
// @Produce      json
// @Param        provider  query     string  false  "openai, anthropic or gemini; defaults to the configured one"
// @Success      200       {array}   domain.Insight
// @Failure      400       {object}  errorResponse
// @Failure      502       {object}  errorResponse
// @Security     BearerAuth
// @Router       /insights/ai [post]
func (h *InsightHandler) GenerateAI(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	insights, err := h.ai.Generate(c.Request.Context(), userID, c.Query("provider"))
	if err != nil {
		respondError(c, err)
		return
	}

	trackInsights(sourceAI, insights)
	c.JSON(http.StatusOK, insights)
}
