package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Roopaish/post-it/internal/config"
	"github.com/Roopaish/post-it/internal/domain"
	apperrors "github.com/Roopaish/post-it/internal/errors"
	"github.com/Roopaish/post-it/internal/metrics"
)

// postgresHealthChecker is a minimal interface for PostgreSQL health checks.
type postgresHealthChecker interface {
	Ping(ctx context.Context) error
}

// redisHealthChecker is a minimal interface for Redis health checks.
// Nil when Redis is not configured.
type redisHealthChecker interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo         *echo.Echo
	config       *config.Config
	app          domain.BoardService
	db           postgresHealthChecker
	redis        redisHealthChecker
	sessionStore *sessions.CookieStore
	registry     *prometheus.Registry
	startTime    time.Time
}

func NewServer(cfg *config.Config, app domain.BoardService, db postgresHealthChecker, redis redisHealthChecker, registry *prometheus.Registry) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(correlationMiddleware)
	e.Use(apperrors.Middleware())
	if registry != nil {
		e.Use(metrics.NewHTTPMetrics(registry).Middleware())
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		db:           db,
		redis:        redis,
		sessionStore: sessionStore,
		registry:     registry,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
