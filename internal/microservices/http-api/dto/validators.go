package dto

import (
	"reviewhub/internal/microservices/http-api/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the domain tags (username, slug, role) to gin's
// validator engine. Safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return models.ValidateUsername(fl.Field().String()) == nil
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return models.ValidSlug(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})
}
