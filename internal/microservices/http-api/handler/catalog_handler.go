package handler

import (
	"net/http"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves /categories and /genres.
type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categories")
	{
		categories.GET("/", h.ListCategories)
		categories.POST("/", h.CreateCategory)
		categories.DELETE("/:slug/", h.DeleteCategory)
	}

	genres := router.Group("/genres")
	{
		genres.GET("/", h.ListGenres)
		genres.POST("/", h.CreateGenre)
		genres.DELETE("/:slug/", h.DeleteGenre)
	}
}

// GET /api/v1/categories/
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	q, ok := pageQuery(c)
	if !ok {
		return
	}
	categories, total, err := h.catalogService.ListCategories(c.Request.Context(), q.Search, q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.MapSlice(categories, dto.FromCategory), total, q.Page, q.PageSize))
}

// POST /api/v1/categories/
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	if !allowed(c, policy.Create, policy.Resource{Kind: policy.Category}) {
		return
	}
	var req dto.CreateTaxonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	category, err := h.catalogService.CreateCategory(c.Request.Context(), middleware.ActorFrom(c), req.Name, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromCategory(category))
}

// DELETE /api/v1/categories/:slug/
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalogService.DeleteCategory(c.Request.Context(), middleware.ActorFrom(c), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/v1/genres/
func (h *CatalogHandler) ListGenres(c *gin.Context) {
	q, ok := pageQuery(c)
	if !ok {
		return
	}
	genres, total, err := h.catalogService.ListGenres(c.Request.Context(), q.Search, q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.MapSlice(genres, dto.FromGenre), total, q.Page, q.PageSize))
}

// POST /api/v1/genres/
func (h *CatalogHandler) CreateGenre(c *gin.Context) {
	if !allowed(c, policy.Create, policy.Resource{Kind: policy.Genre}) {
		return
	}
	var req dto.CreateTaxonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	genre, err := h.catalogService.CreateGenre(c.Request.Context(), middleware.ActorFrom(c), req.Name, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromGenre(genre))
}

// DELETE /api/v1/genres/:slug/
func (h *CatalogHandler) DeleteGenre(c *gin.Context) {
	if err := h.catalogService.DeleteGenre(c.Request.Context(), middleware.ActorFrom(c), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
