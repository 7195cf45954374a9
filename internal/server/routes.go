package server

import (
	"github.com/labstack/echo/v4"

	"github.com/Roopaish/post-it/internal/metrics"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	if s.registry != nil {
		s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler(s.registry)))
	}

	// Auth routes
	s.echo.POST("/api/register", s.handleRegister)
	s.echo.POST("/api/login", s.handleLogin)
	s.echo.POST("/api/logout", s.handleLogout)
	s.echo.GET("/api/me", s.handleMe, s.requireAuth)

	// Feed and post reads (caller identity optional)
	s.echo.GET("/api/posts", s.handleFeed, s.optionalAuth)
	s.echo.GET("/api/posts/:id", s.handleGetPost, s.optionalAuth)

	// Post mutations (authenticated)
	s.echo.POST("/api/posts", s.handleCreatePost, s.requireAuth)
	s.echo.PUT("/api/posts/:id", s.handleUpdatePost, s.requireAuth)
	s.echo.DELETE("/api/posts/:id", s.handleDeletePost, s.requireAuth)

	// Voting (authenticated)
	s.echo.POST("/api/posts/:id/vote", s.handleVote, s.requireAuth)
}
