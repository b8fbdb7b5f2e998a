package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// idParam parses a positive int64 path parameter. A malformed id is reported
// as not found, the same as a well-formed id with no row behind it.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("%s not found", name)})
		return 0, false
	}
	return id, true
}

// pageQuery binds and normalizes ?page=&page_size=&search=.
func pageQuery(c *gin.Context) (dto.PageQuery, bool) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return q, false
	}
	q.Normalize()
	return q, true
}

// allowed writes the 401/403 response and returns false when the actor may
// not perform action. Used where the body is checked only after permission.
func allowed(c *gin.Context, action policy.Action, res policy.Resource) bool {
	if !policy.Can(middleware.ActorFrom(c), action, res) {
		respondError(c, service.ErrForbidden)
		return false
	}
	return true
}

// authenticated answers 401 for anonymous callers. Ownership is checked by
// the service once the target is loaded.
func authenticated(c *gin.Context) bool {
	if middleware.ActorFrom(c) == nil {
		respondError(c, service.ErrForbidden)
		return false
	}
	return true
}
