package http

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/services"
)

var registerOnce sync.Once

// RegisterValidators adds the "datekey" (YYYY-MM-DD) and "period" (YYYY-MM) tags to
// gin's validator. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("datekey", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseDateKey(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
			_, err := domain.ParsePeriod(fl.Field().String())
			return err == nil
		})
	})
}

type dateQuery struct {
	Date string `form:"date" binding:"omitempty,datekey"`
}

// resolveDate returns the parsed key, or the clock's current time when it is empty.
func resolveDate(key string, clock services.Clock) time.Time {
	if key == "" {
		return clock()
	}
	t, _ := domain.ParseDateKey(key)
	return t
}

// queryDate binds ?date= and falls back to the clock. It writes 400 on a bad date.
func queryDate(c *gin.Context, clock services.Clock) (time.Time, bool) {
	var q dateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return time.Time{}, false
	}
	return resolveDate(q.Date, clock), true
}
