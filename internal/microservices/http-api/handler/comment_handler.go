package handler

import (
	"net/http"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) RegisterRoutes(reviews *gin.RouterGroup) {
	comments := reviews.Group("/:review_id/comments")
	{
		comments.GET("/", h.List)
		comments.POST("/", h.Post)
		comments.GET("/:comment_id/", h.Get)
		comments.PATCH("/:comment_id/", h.Edit)
		comments.DELETE("/:comment_id/", h.Delete)
	}
}

// threadParams parses title_id and review_id.
func threadParams(c *gin.Context) (titleID, reviewID int64, ok bool) {
	if titleID, ok = idParam(c, "title_id"); !ok {
		return
	}
	reviewID, ok = idParam(c, "review_id")
	return
}

// GET .../reviews/:review_id/comments/
func (h *CommentHandler) List(c *gin.Context) {
	titleID, reviewID, ok := threadParams(c)
	if !ok {
		return
	}
	q, ok := pageQuery(c)
	if !ok {
		return
	}
	comments, total, err := h.commentService.List(c.Request.Context(), titleID, reviewID, q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.MapSlice(comments, dto.FromComment), total, q.Page, q.PageSize))
}

// GET .../comments/:comment_id/
func (h *CommentHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := threadParams(c)
	if !ok {
		return
	}
	commentID, ok := idParam(c, "comment_id")
	if !ok {
		return
	}
	comment, err := h.commentService.Get(c.Request.Context(), titleID, reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromComment(comment))
}

// POST .../reviews/:review_id/comments/
func (h *CommentHandler) Post(c *gin.Context) {
	titleID, reviewID, ok := threadParams(c)
	if !ok {
		return
	}
	if !allowed(c, policy.Create, policy.Resource{Kind: policy.Comment}) {
		return
	}
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	comment, err := h.commentService.Post(c.Request.Context(), middleware.ActorFrom(c), titleID, reviewID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromComment(comment))
}

// PATCH .../comments/:comment_id/
func (h *CommentHandler) Edit(c *gin.Context) {
	titleID, reviewID, ok := threadParams(c)
	if !ok {
		return
	}
	commentID, ok := idParam(c, "comment_id")
	if !ok {
		return
	}
	if !authenticated(c) {
		return
	}
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	comment, err := h.commentService.Edit(c.Request.Context(), middleware.ActorFrom(c), titleID, reviewID, commentID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromComment(comment))
}

// DELETE .../comments/:comment_id/
func (h *CommentHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := threadParams(c)
	if !ok {
		return
	}
	commentID, ok := idParam(c, "comment_id")
	if !ok {
		return
	}
	if err := h.commentService.Delete(c.Request.Context(), middleware.ActorFrom(c), titleID, reviewID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
