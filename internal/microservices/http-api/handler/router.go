package handler

import (
	"log/slog"
	"net/http"
	"time"

	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// Services bundles what the router needs.
type Services struct {
	Auth    service.AuthService
	Catalog service.CatalogService
	Titles  service.TitleService
	Reviews service.ReviewService
	Comment service.CommentService
	Users   service.UserService
}

// RouterOptions carries the cross-cutting middleware settings.
type RouterOptions struct {
	Users          middleware.UserLoader
	AuthLimiter    *middleware.IPRateLimiter
	CORSOrigins    []string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter wires every route under /api/v1.
func NewRouter(svc Services, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(opts.CORSOrigins))
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Authenticate(svc.Auth, opts.Users))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	var authMW []gin.HandlerFunc
	if opts.AuthLimiter != nil {
		authMW = append(authMW, middleware.RateLimit(opts.AuthLimiter))
	}
	NewAuthHandler(svc.Auth).RegisterRoutes(api, authMW...)

	NewCatalogHandler(svc.Catalog).RegisterRoutes(api)
	titles := NewTitleHandler(svc.Titles).RegisterRoutes(api)
	reviews := NewReviewHandler(svc.Reviews).RegisterRoutes(titles)
	NewCommentHandler(svc.Comment).RegisterRoutes(reviews)
	NewUserHandler(svc.Users).RegisterRoutes(api)

	return r
}
