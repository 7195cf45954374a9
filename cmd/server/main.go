package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/Roopaish/post-it/internal/app"
	"github.com/Roopaish/post-it/internal/config"
	"github.com/Roopaish/post-it/internal/database"
	"github.com/Roopaish/post-it/internal/domain"
	"github.com/Roopaish/post-it/internal/logging"
	"github.com/Roopaish/post-it/internal/metrics"
	"github.com/Roopaish/post-it/internal/redis"
	"github.com/Roopaish/post-it/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, vote rate limiting disabled")
		return nil
	}

	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to create Redis client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		slog.Error("Failed to ping Redis", "error", err)
		os.Exit(1)
	}

	return client
}

func runGracefulShutdown(srv *server.Server, pool *pgxpool.Pool, redisClient *redis.Client) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		pool.Close()
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				slog.Error("Failed to close Redis client", "error", err)
			}
		}

		close(done)
	}()

	return done
}

func main() {
	cfg := setupConfig()
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	pool := setupDB(cfg)
	redisClient := setupRedis(cfg)

	registry := metrics.NewRegistry()
	voteMetrics := metrics.NewVoteMetrics(registry)

	var limiter domain.VoteRateLimiter
	var redisHealth *redis.Client
	if redisClient != nil {
		limiter = redis.NewVoteRateLimiter(redisClient.Underlying(), clockwork.NewRealClock(), cfg.VoteRateBurst, cfg.VoteRatePerMinute)
		redisHealth = redisClient
	}

	users := database.NewUserRepo(pool)
	posts := database.NewPostRepo(pool)
	votes := database.NewVoteRepo(pool)

	boardService := app.NewService(users, posts, votes, limiter, clockwork.NewRealClock(), voteMetrics)

	var srv *server.Server
	if redisHealth != nil {
		srv = server.NewServer(cfg, boardService, pool, redisHealth, registry)
	} else {
		srv = server.NewServer(cfg, boardService, pool, nil, registry)
	}

	done := runGracefulShutdown(srv, pool, redisClient)

	slog.Info("Starting server", "port", cfg.Port, "env", cfg.AppEnv)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Shutdown complete")
}
