// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"golang.org/x/time/rate"

	"devroots/config"
	"devroots/internal/delivery/http/middleware"
	"devroots/internal/delivery/http/router/handler"
	"devroots/internal/domain/entity"
)

type RouterParams struct {
	fx.In

	Config          *config.Config
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	CategoryHandler *handler.CategoryHandler
	BlogHandler     *handler.BlogHandler
	CommentHandler  *handler.CommentHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	cfg             *config.Config
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	categoryHandler *handler.CategoryHandler
	blogHandler     *handler.BlogHandler
	commentHandler  *handler.CommentHandler
	authMiddleware  *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		cfg:             params.Config,
		authHandler:     params.AuthHandler,
		userHandler:     params.UserHandler,
		categoryHandler: params.CategoryHandler,
		blogHandler:     params.BlogHandler,
		commentHandler:  params.CommentHandler,
		authMiddleware:  params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api")
	authenticate := r.authMiddleware.Authenticate

	// Credential endpoints, throttled per client IP when configured
	authGroup := api.Group("/auth")
	if limiter := r.rateLimiter(); limiter != nil {
		authGroup.Use(limiter)
	}
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
	}

	userGroup := api.Group("/users")
	{
		userGroup.GET("", r.userHandler.ListUsers)
		userGroup.GET("/:username", r.userHandler.GetUser)
		userGroup.PUT("/:username", r.userHandler.UpdateProfile, authenticate)
		userGroup.PUT("/password/:username", r.userHandler.UpdatePassword, authenticate)
	}

	categoryGroup := api.Group("/categories")
	requireAdmin := r.authMiddleware.RequireRole(entity.RoleAdmin)
	{
		categoryGroup.GET("", r.categoryHandler.List)
		categoryGroup.GET("/:id", r.categoryHandler.Get)
		categoryGroup.POST("", r.categoryHandler.Create, authenticate, requireAdmin)
		categoryGroup.PUT("/:id", r.categoryHandler.Update, authenticate, requireAdmin)
		categoryGroup.DELETE("/:id", r.categoryHandler.Delete, authenticate, requireAdmin)
	}

	blogGroup := api.Group("/blogs")
	{
		blogGroup.GET("", r.blogHandler.List)
		blogGroup.GET("/:id", r.blogHandler.Get)
		blogGroup.GET("/:id/comments", r.blogHandler.Comments)
		blogGroup.GET("/:id/comments/tree", r.blogHandler.CommentTree)
		blogGroup.POST("", r.blogHandler.Create, authenticate)
		blogGroup.PUT("/:id", r.blogHandler.Update, authenticate)
		blogGroup.DELETE("/:id", r.blogHandler.Delete, authenticate)
	}

	commentGroup := api.Group("/comments")
	{
		commentGroup.GET("", r.commentHandler.List)
		commentGroup.GET("/:id", r.commentHandler.Get)
		commentGroup.POST("", r.commentHandler.Create, authenticate)
		commentGroup.PUT("/:id", r.commentHandler.Update, authenticate)
		commentGroup.DELETE("/:id", r.commentHandler.Delete, authenticate)
	}
}

func (r *router) rateLimiter() echo.MiddlewareFunc {
	limit := r.cfg.HTTP.RateLimit
	if limit == nil || !limit.Enabled || limit.Rate <= 0 {
		return nil
	}

	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(limit.Rate),
		Burst:     limit.Burst,
		ExpiresIn: limit.Expires,
	})

	return echomiddleware.RateLimiter(store)
}
