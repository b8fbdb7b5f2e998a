package handler

import (
	"net/http"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	titleService service.TitleService
}

func NewTitleHandler(titleService service.TitleService) *TitleHandler {
	return &TitleHandler{titleService: titleService}
}

// RegisterRoutes returns the title group so reviews can nest under it.
func (h *TitleHandler) RegisterRoutes(router *gin.RouterGroup) *gin.RouterGroup {
	titles := router.Group("/titles")
	{
		titles.GET("/", h.List)
		titles.POST("/", h.Create)
		titles.GET("/:title_id/", h.Get)
		titles.PATCH("/:title_id/", h.Update)
		titles.DELETE("/:title_id/", h.Delete)
	}
	return titles
}

// List titles filtered by genre slug, category slug, name substring and year
// GET /api/v1/titles/
func (h *TitleHandler) List(c *gin.Context) {
	var q dto.TitleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	q.Normalize()

	filter := repository.TitleFilter{
		Genre:    q.Genre,
		Category: q.Category,
		Name:     q.Name,
		Year:     q.Year,
	}
	titles, total, err := h.titleService.List(c.Request.Context(), filter, q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.MapSlice(titles, dto.FromTitle), total, q.Page, q.PageSize))
}

// GET /api/v1/titles/:title_id/
func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	title, err := h.titleService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTitle(title))
}

// POST /api/v1/titles/
func (h *TitleHandler) Create(c *gin.Context) {
	if !allowed(c, policy.Create, policy.Resource{Kind: policy.Title}) {
		return
	}
	var req dto.CreateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	title, err := h.titleService.Create(c.Request.Context(), middleware.ActorFrom(c), service.TitleInput{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Category:    req.Category,
		Genres:      req.Genre,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromTitle(title))
}

// PATCH /api/v1/titles/:title_id/
func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	if !allowed(c, policy.Update, policy.Resource{Kind: policy.Title}) {
		return
	}
	var req dto.UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	title, err := h.titleService.Update(c.Request.Context(), middleware.ActorFrom(c), id, service.TitlePatch{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Category:    req.Category,
		Genres:      req.Genre,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTitle(title))
}

// DELETE /api/v1/titles/:title_id/
func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	if err := h.titleService.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
