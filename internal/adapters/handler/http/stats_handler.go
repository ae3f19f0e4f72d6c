package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habitflow-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/services"
)

type StatsHandler struct {
	svc   *services.StatsService
	clock services.Clock
}

func NewStatsHandler(svc *services.StatsService, clock services.Clock) *StatsHandler {
	if clock == nil {
		clock = services.SystemClock(time.UTC)
	}
	return &StatsHandler{svc: svc, clock: clock}
}

type heatmapQuery struct {
	From string `form:"from" binding:"omitempty,datekey"`
	To   string `form:"to" binding:"omitempty,datekey"`
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	stats := r.Group("/stats")
	{
		stats.GET("/overview", h.GetOverview)
		stats.GET("/habits/:id", h.GetHabitStats)
		stats.GET("/heatmap", h.GetHeatmap)
	}
}

// GetOverview godoc
// @Summary      Dashboard stats for every active habit plus a 30 day heatmap
// @Tags         stats
// @Produce      json
// @Param        date  query     string  false  "Reference day (YYYY-MM-DD)"
// @Success      200   {object}  domain.Overview
// @Security     BearerAuth
// @Router       /stats/overview [get]
func (h *StatsHandler) GetOverview(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	now, ok := queryDate(c, h.clock)
	if !ok {
		return
	}

	overview, err := h.svc.GetOverview(c.Request.Context(), userID, now)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// GetHabitStats godoc
// @Summary      Streaks, completion rate and target achievement of one habit
// @Tags         stats
// @Produce      json
// @Param        id    path      string  true   "Habit ID"
// @Param        date  query     string  false  "Reference day (YYYY-MM-DD)"
// @Success      200   {object}  domain.HabitStats
// @Failure      404   {object}  errorResponse
// @Security     BearerAuth
// @Router       /stats/habits/{id} [get]
func (h *StatsHandler) GetHabitStats(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	now, ok := queryDate(c, h.clock)
	if !ok {
		return
	}

	stats, err := h.svc.GetHabitStats(c.Request.Context(), userID, c.Param("id"), now)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetHeatmap godoc
// @Summary      Completions per day across all habits
// @Tags         stats
// @Produce      json
// @Param        from  query     string  false  "First day (YYYY-MM-DD), defaults to 29 days before to"
// @Param        to    query     string  false  "Last day (YYYY-MM-DD), defaults to today"
// @Success      200   {array}   domain.HeatmapCell
// @Failure      400   {object}  errorResponse
// @Security     BearerAuth
// @Router       /stats/heatmap [get]
func (h *StatsHandler) GetHeatmap(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var q heatmapQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	to := resolveDate(q.To, h.clock)
	from := to.AddDate(0, 0, -(services.OverviewHeatmapDays - 1))
	if q.From != "" {
		from = resolveDate(q.From, h.clock)
	}

	if from.After(to) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "from cannot be after to"})
		return
	}

	cells, err := h.svc.GetHeatmap(c.Request.Context(), userID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cells)
}
