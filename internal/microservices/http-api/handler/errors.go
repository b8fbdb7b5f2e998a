package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// badRequest lists the domain errors reported back to the client as 400.
var badRequest = []error{
	service.ErrInvalidInput,
	service.ErrInvalidScore,
	service.ErrDuplicateReview,
	service.ErrFutureYear,
	service.ErrSlugTaken,
	service.ErrUsernameTaken,
	service.ErrEmailTaken,
	service.ErrInvalidConfirmationCode,
	service.ErrInvalidRole,
}

// respondError maps a service error onto a status code. Unknown errors are
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		if middleware.ActorFrom(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	for _, target := range badRequest {
		if errors.Is(err, target) {
			c.JSON(http.StatusBadRequest, badRequestBody(err))
			return
		}
	}

	_ = c.Error(err)
	slog.Error("request_failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// badRequestBody adds per-field messages for the identity clashes so both
// can be reported at once.
func badRequestBody(err error) gin.H {
	body := gin.H{"error": err.Error()}
	fields := gin.H{}
	if errors.Is(err, service.ErrUsernameTaken) {
		fields["username"] = service.ErrUsernameTaken.Error()
	}
	if errors.Is(err, service.ErrEmailTaken) {
		fields["email"] = service.ErrEmailTaken.Error()
	}
	if errors.Is(err, service.ErrInvalidConfirmationCode) {
		fields["confirmation_code"] = service.ErrInvalidConfirmationCode.Error()
	}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	return body
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
