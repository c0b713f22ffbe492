package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/authz"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/cache"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/health"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	service "github.com/aaravmahajanofficial/ecommerce-backend/internal/services"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/tracing"
)

//	@title						E-commerce Backend API
//	@version					1.0
//	@description				Users, catalog and carts with JWT authentication and role based authorization.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT.
func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing must be installed before the database is opened so otelsql
	// picks up the global provider.
	shutdownTracing, err := tracing.Setup(context.Background(), cfg.Otel)
	if err != nil {
		slog.Error("❌ Error setting up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
		}
	}()

	rateLimiter := repository.NewRateLimitRepo(redisClient, cfg.RateConfig)
	catalogCache := cache.NewRedisCache(redisClient, cfg.Cache)

	healthHandler, err := health.NewHealthHandler(repos.DB, redisClient)
	if err != nil {
		slog.Error("❌ Error creating health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	guard := authz.NewGuard(cfg.Carts.AllowUnguardedReset)
	if cfg.Carts.AllowUnguardedReset {
		slog.Warn("⚠️ DELETE /carts/clear_all is open to every caller", slog.String("env", cfg.Env))
	}

	router := api.NewRouter(api.Dependencies{
		Users:       service.NewUserService(repos.User, rateLimiter, cfg.Security),
		Categories:  service.NewCategoryService(repos.Category, catalogCache),
		Products:    service.NewProductService(repos.Product, repos.Category, catalogCache),
		Carts:       service.NewCartService(repos.Cart, repos.Product),
		Guard:       guard,
		JWTKey:      []byte(cfg.Security.JWTKey),
		Health:      healthHandler.Handler(),
		ServiceName: cfg.Otel.ServiceName,
	})

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup http server
	server := http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("❌ Failed to start server", slog.String("error", err.Error()))
			done <- syscall.SIGTERM
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Tracer provider shutdown failed", slog.String("error", err.Error()))
	}
}
