package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators wires the domain enum validators into gin's
// binding validator. Called once from main.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("repeatkind", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "single", "daily", "weekly", "biweekly", "monthly":
			return true
		}
		return false
	})
	_ = v.RegisterValidation("pricetype", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "fixed", "per_student", "individual":
			return true
		}
		return false
	})
}
