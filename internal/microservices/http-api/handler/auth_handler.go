package handler

import (
	"net/http"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers signup and token routes. Extra middleware (rate
// limiting) applies to both.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, mw ...gin.HandlerFunc) {
	auth := router.Group("/auth", mw...)
	{
		auth.POST("/signup/", h.Signup)
		auth.POST("/token/", h.Token)
	}
}

// Signup registers a user or re-sends the code to an existing one
// POST /api/v1/auth/signup/
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SignupResponse{Username: user.Username, Email: user.Email})
}

// Token exchanges a confirmation code for an access token
// POST /api/v1/auth/token/
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	token, err := h.authService.ExchangeToken(c.Request.Context(), req.Username, req.ConfirmationCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}
