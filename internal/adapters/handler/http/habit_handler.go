package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habitflow-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/services"
)

type HabitHandler struct {
	svc   *services.HabitService
	clock services.Clock
}

func NewHabitHandler(svc *services.HabitService, clock services.Clock) *HabitHandler {
	if clock == nil {
		clock = services.SystemClock(time.UTC)
	}
	return &HabitHandler{
		svc:   svc,
		clock: clock,
	}
}

type frequencyRequest struct {
	Type string `json:"type" binding:"omitempty,oneof=daily weekly monthly"`
	Goal int    `json:"goal" binding:"omitempty,min=1"`
}

type createHabitRequest struct {
	ID        string            `json:"id" binding:"omitempty,uuid"`
	Name      string            `json:"name" binding:"required"`
	Category  string            `json:"category"`
	Color     string            `json:"color"`
	Icon      string            `json:"icon"`
	Frequency *frequencyRequest `json:"frequency"`
}

type updateHabitRequest struct {
	Name      *string           `json:"name"`
	Category  *string           `json:"category"`
	Color     *string           `json:"color"`
	Icon      *string           `json:"icon"`
	Frequency *frequencyRequest `json:"frequency"`
	SortOrder *int              `json:"sort_order"`
	Version   int               `json:"version"`
}

type toggleLogRequest struct {
	Date string `json:"date" binding:"omitempty,datekey"`
}

type toggleLogResponse struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

type syncResponse struct {
	Changes   []*domain.Habit `json:"changes"`
	Timestamp time.Time       `json:"timestamp"`
}

func (f *frequencyRequest) toDomain() domain.Frequency {
	if f == nil {
		return domain.Frequency{}
	}
	return domain.Frequency{Type: f.Type, Goal: f.Goal}
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/sync", h.Sync)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
		habits.POST("/:id/archive", h.Archive)
		habits.POST("/:id/restore", h.Restore)
		habits.POST("/:id/log", h.ToggleLog)
	}
}

// Create godoc
// @Summary      Create a habit
// @Tags         habits
// @Accept       json
// @Produce      json
// @Param        habit  body      createHabitRequest  true  "Habit definition"
// @Success      201    {object}  domain.Habit
// @Failure      400    {object}  errorResponse
// @Security     BearerAuth
// @Router       /habits [post]
func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	habit, err := h.svc.Create(c.Request.Context(), services.CreateHabitInput{
		ID:        req.ID,
		UserID:    userID,
		Name:      req.Name,
		Category:  req.Category,
		Color:     req.Color,
		Icon:      req.Icon,
		Frequency: req.Frequency.toDomain(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

// List godoc
// @Summary      List habits
// @Tags         habits
// @Produce      json
// @Param        include_archived  query  bool  false  "Include archived habits"
// @Success      200  {array}   domain.Habit
// @Security     BearerAuth
// @Router       /habits [get]
func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	includeArchived := c.Query("include_archived") == "true"

	list, err := h.svc.ListByUserID(c.Request.Context(), userID, includeArchived)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	habit, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// Sync godoc
// @Summary      Changes since the last sync, tombstones included
// @Tags         habits
// @Produce      json
// @Param        last_sync  query  string  false  "RFC3339 timestamp"
// @Success      200  {object}  syncResponse
// @Security     BearerAuth
// @Router       /habits/sync [get]
func (h *HabitHandler) Sync(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var lastSync time.Time
	if raw := c.Query("last_sync"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid last_sync format, use RFC3339"})
			return
		}
		lastSync = parsed
	}

	// Taken before the read so nothing written during it is skipped next time.
	timestamp := time.Now().UTC()

	deltas, err := h.svc.GetDelta(c.Request.Context(), userID, lastSync)
	if err != nil {
		respondError(c, err)
		return
	}
	if deltas == nil {
		deltas = []*domain.Habit{}
	}

	c.JSON(http.StatusOK, syncResponse{Changes: deltas, Timestamp: timestamp})
}

// Update godoc
// @Summary      Update a habit (partial, optimistic locking on version)
// @Tags         habits
// @Accept       json
// @Produce      json
// @Param        id     path      string              true  "Habit ID"
// @Param        habit  body      updateHabitRequest  true  "Fields to change"
// @Success      200    {object}  domain.Habit
// @Failure      409    {object}  errorResponse
// @Failure      422    {object}  errorResponse
// @Security     BearerAuth
// @Router       /habits/{id} [put]
func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	input := services.UpdateHabitInput{
		ID:        c.Param("id"),
		UserID:    userID,
		Name:      req.Name,
		Category:  req.Category,
		Color:     req.Color,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
		Version:   req.Version,
	}
	if req.Frequency != nil {
		freq := req.Frequency.toDomain()
		input.Frequency = &freq
	}

	habit, err := h.svc.Update(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// Delete godoc
// @Summary      Delete a habit
// @Tags         habits
// @Param        id  path  string  true  "Habit ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /habits/{id} [delete]
func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Archive godoc
// @Summary      Archive a habit
// @Tags         habits
// @Produce      json
// @Param        id  path  string  true  "Habit ID"
// @Success      200  {object}  domain.Habit
// @Security     BearerAuth
// @Router       /habits/{id}/archive [post]
func (h *HabitHandler) Archive(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	habit, err := h.svc.Archive(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

// Restore godoc
// @Summary      Restore an archived habit
// @Tags         habits
// @Produce      json
// @Param        id  path  string  true  "Habit ID"
// @Success      200  {object}  domain.Habit
// @Security     BearerAuth
// @Router       /habits/{id}/restore [post]
func (h *HabitHandler) Restore(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	habit, err := h.svc.Restore(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

// ToggleLog godoc
// @Summary      Toggle the completion of a day
// @Tags         habits
// @Accept       json
// @Produce      json
// @Param        id    path      string            true   "Habit ID"
// @Param        body  body      toggleLogRequest  false  "Day to toggle, defaults to today"
// @Success      200   {object}  toggleLogResponse
// @Failure      422   {object}  errorResponse
// @Security     BearerAuth
// @Router       /habits/{id}/log [post]
func (h *HabitHandler) ToggleLog(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req toggleLogRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	date := resolveDate(req.Date, h.clock)

	completed, err := h.svc.ToggleLog(c.Request.Context(), services.ToggleLogInput{
		HabitID: c.Param("id"),
		UserID:  userID,
		Date:    date,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackToggle(completed)
	c.JSON(http.StatusOK, toggleLogResponse{
		Date:      domain.DateKey(date),
		Completed: completed,
	})
}
