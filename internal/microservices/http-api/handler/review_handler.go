package handler

import (
	"net/http"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// RegisterRoutes mounts reviews under a title group and returns the review
// group so comments can nest under it.
func (h *ReviewHandler) RegisterRoutes(titles *gin.RouterGroup) *gin.RouterGroup {
	reviews := titles.Group("/:title_id/reviews")
	{
		reviews.GET("/", h.List)
		reviews.POST("/", h.Submit)
		reviews.GET("/:review_id/", h.Get)
		reviews.PATCH("/:review_id/", h.Amend)
		reviews.DELETE("/:review_id/", h.Withdraw)
	}
	return reviews
}

// GET /api/v1/titles/:title_id/reviews/
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	q, ok := pageQuery(c)
	if !ok {
		return
	}
	reviews, total, err := h.reviewService.List(c.Request.Context(), titleID, q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.MapSlice(reviews, dto.FromReview), total, q.Page, q.PageSize))
}

// GET /api/v1/titles/:title_id/reviews/:review_id/
func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := idParam(c, "review_id")
	if !ok {
		return
	}
	review, err := h.reviewService.Get(c.Request.Context(), titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromReview(review))
}

// Submit the caller's review of a title. Author comes from the token.
// POST /api/v1/titles/:title_id/reviews/
func (h *ReviewHandler) Submit(c *gin.Context) {
	titleID, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	if !allowed(c, policy.Create, policy.Resource{Kind: policy.Review}) {
		return
	}
	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	review, err := h.reviewService.Submit(c.Request.Context(), middleware.ActorFrom(c), titleID, req.Text, *req.Score)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromReview(review))
}

// PATCH /api/v1/titles/:title_id/reviews/:review_id/
func (h *ReviewHandler) Amend(c *gin.Context) {
	titleID, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := idParam(c, "review_id")
	if !ok {
		return
	}
	if !authenticated(c) {
		return
	}
	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	review, err := h.reviewService.Amend(c.Request.Context(), middleware.ActorFrom(c), titleID, reviewID, service.ReviewPatch{
		Text:  req.Text,
		Score: req.Score,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromReview(review))
}

// DELETE /api/v1/titles/:title_id/reviews/:review_id/
func (h *ReviewHandler) Withdraw(c *gin.Context) {
	titleID, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := idParam(c, "review_id")
	if !ok {
		return
	}
	if err := h.reviewService.Withdraw(c.Request.Context(), middleware.ActorFrom(c), titleID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
