package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habitflow-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/services"
)

type ReviewHandler struct {
	reviews *services.ReviewService
	stats   *services.StatsService
	clock   services.Clock
}

func NewReviewHandler(reviews *services.ReviewService, stats *services.StatsService, clock services.Clock) *ReviewHandler {
	if clock == nil {
		clock = services.SystemClock(time.UTC)
	}
	return &ReviewHandler{reviews: reviews, stats: stats, clock: clock}
}

type periodURI struct {
	Period string `uri:"period" binding:"required,period"`
}

type decisionRequest struct {
	HabitID  string `json:"habit_id" binding:"required"`
	Decision string `json:"decision" binding:"required,oneof=keep modify drop"`
	Notes    string `json:"notes"`
}

type saveReviewRequest struct {
	Decisions []decisionRequest `json:"decisions" binding:"dive"`
}

func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup) {
	reviews := r.Group("/reviews")
	{
		reviews.GET("", h.List)
		reviews.GET("/summary", h.Summary)
		reviews.GET("/status", h.Status)
		reviews.GET("/:period", h.Get)
		reviews.PUT("/:period", h.Save)
	}
}

// Summary godoc
// @Summary      Summary of the month preceding date
// @Tags         reviews
// @Produce      json
// @Param        date  query     string  false  "Reference day (YYYY-MM-DD)"
// @Success      200   {object}  domain.ReviewSummary
// @Security     BearerAuth
// @Router       /reviews/summary [get]
func (h *ReviewHandler) Summary(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	now, ok := queryDate(c, h.clock)
	if !ok {
		return
	}

	summary, err := h.stats.GetReviewSummary(c.Request.Context(), userID, now)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Status godoc
// @Summary      Whether last month's review is still due
// @Tags         reviews
// @Produce      json
// @Param        date  query     string  false  "Reference day (YYYY-MM-DD)"
// @Success      200   {object}  domain.ReviewStatus
// @Security     BearerAuth
// @Router       /reviews/status [get]
func (h *ReviewHandler) Status(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	now, ok := queryDate(c, h.clock)
	if !ok {
		return
	}

	status, err := h.reviews.Status(c.Request.Context(), userID, now)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// List godoc
// @Summary      Saved reviews, newest first
// @Tags         reviews
// @Produce      json
// @Success      200  {array}  domain.MonthlyReview
// @Security     BearerAuth
// @Router       /reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	reviews, err := h.reviews.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if reviews == nil {
		reviews = []*domain.MonthlyReview{}
	}
	c.JSON(http.StatusOK, reviews)
}

// Get godoc
// @Summary      A saved review
// @Tags         reviews
// @Produce      json
// @Param        period  path      string  true  "Month (YYYY-MM)"
// @Success      200     {object}  domain.MonthlyReview
// @Failure      404     {object}  errorResponse
// @Security     BearerAuth
// @Router       /reviews/{period} [get]
func (h *ReviewHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var uri periodURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.reviews.Get(c.Request.Context(), userID, uri.Period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// Save godoc
// @Summary      Save the keep/modify/drop decisions of a month; dropped habits get archived
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        period  path      string             true  "Month (YYYY-MM)"
// @Param        review  body      saveReviewRequest  true  "Decisions"
// @Success      200     {object}  domain.MonthlyReview
// @Failure      400     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Security     BearerAuth
// @Router       /reviews/{period} [put]
func (h *ReviewHandler) Save(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var uri periodURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}

	var req saveReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	decisions := make([]domain.ReviewDecision, 0, len(req.Decisions))
	for _, d := range req.Decisions {
		decisions = append(decisions, domain.ReviewDecision{
			HabitID:  d.HabitID,
			Decision: d.Decision,
			Notes:    d.Notes,
		})
	}

	review, err := h.reviews.Save(c.Request.Context(), services.SaveReviewInput{
		UserID:    userID,
		Period:    uri.Period,
		Decisions: decisions,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}
