package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/services"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

var badRequestErrors = []error{
	domain.ErrHabitNameEmpty,
	domain.ErrHabitNameTooLong,
	domain.ErrCategoryTooLong,
	domain.ErrInvalidColor,
	domain.ErrInvalidFrequency,
	domain.ErrInvalidGoal,
	domain.ErrHabitInvalidUserID,
	domain.ErrInvalidDate,
	domain.ErrInvalidPeriod,
	domain.ErrInvalidDecision,
	domain.ErrReviewMissingHabit,
	domain.ErrAIProviderNotFound,
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	services.ErrRangeTooLarge,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError maps service errors to status codes. Unknown errors are logged and
// hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case isAny(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "habit not found"})
	case errors.Is(err, domain.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "review not found"})
	case errors.Is(err, domain.ErrHabitConflict):
		c.JSON(http.StatusConflict, errorResponse{
			Error:   "version conflict",
			Message: "Data has been modified elsewhere. Please sync.",
		})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, errorResponse{Error: "email already exists"})
	case errors.Is(err, domain.ErrFutureDate), errors.Is(err, domain.ErrHabitArchived):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAIUnavailable):
		c.JSON(http.StatusBadGateway, errorResponse{Error: "ai insight provider unavailable"})
	default:
		_ = c.Error(err)
		log.Printf("[HTTP] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
