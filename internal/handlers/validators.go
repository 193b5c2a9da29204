package handlers

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/utils"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags:
//
//	timeslot  "HH:MM-HH:MM" with the end after the start
//	halfstep  a number in 0.5 increments (star ratings)
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
			_, err := utils.ParseTimeSlot(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("halfstep", func(fl validator.FieldLevel) bool {
			return models.ValidRating(fl.Field().Float())
		})
	})
}
