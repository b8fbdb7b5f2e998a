package handler

import (
	"net/http"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers /users. Every route needs an authenticated caller;
// /me is registered before /:username so it is never shadowed.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users", middleware.RequireAuth())
	{
		users.GET("/me/", h.Me)
		users.PATCH("/me/", h.UpdateMe)

		users.GET("/", h.List)
		users.POST("/", h.Create)
		users.GET("/:username/", h.Get)
		users.PATCH("/:username/", h.Update)
		users.DELETE("/:username/", h.Delete)
	}
}

// GET /api/v1/users/?search=
func (h *UserHandler) List(c *gin.Context) {
	q, ok := pageQuery(c)
	if !ok {
		return
	}
	users, total, err := h.userService.List(c.Request.Context(), middleware.ActorFrom(c), q.Search, q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.MapSlice(users, dto.FromUser), total, q.Page, q.PageSize))
}

// POST /api/v1/users/
func (h *UserHandler) Create(c *gin.Context) {
	if !allowed(c, policy.Create, policy.Resource{Kind: policy.User}) {
		return
	}
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), middleware.ActorFrom(c), service.UserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromUser(user))
}

// GET /api/v1/users/:username/
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromUser(user))
}

// PATCH /api/v1/users/:username/
func (h *UserHandler) Update(c *gin.Context) {
	if !allowed(c, policy.Update, policy.Resource{Kind: policy.User}) {
		return
	}
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.userService.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("username"), toUserPatch(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromUser(user))
}

// DELETE /api/v1/users/:username/
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/v1/users/me/
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.Me(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromUser(user))
}

// PATCH /api/v1/users/me/
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.userService.UpdateMe(c.Request.Context(), middleware.ActorFrom(c), toUserPatch(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromUser(user))
}

func toUserPatch(req dto.UpdateUserRequest) service.UserPatch {
	return service.UserPatch{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	}
}
