package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lawsuit_tracker_go/config"
	"lawsuit_tracker_go/container"
	"lawsuit_tracker_go/db"
	"lawsuit_tracker_go/handlers"
	"lawsuit_tracker_go/logger"
	"lawsuit_tracker_go/middleware"
	"lawsuit_tracker_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "error", err.Error())
		os.Exit(1)
	}

	// Initialize database
	conn, err := db.Open(db.Options{
		Path:        cfg.DBPath,
		RemoteURL:   cfg.TursoDatabaseURL,
		AuthToken:   cfg.TursoAuthToken,
		Environment: cfg.Environment,
		Debug:       cfg.DBDebug,
	})
	if err != nil {
		log.Error("Failed to initialize database", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close(conn)

	// Run migrations
	if err := db.AutoMigrate(conn); err != nil {
		log.Error("Failed to run migrations", "error", err.Error())
		os.Exit(1)
	}

	// Wire services and fail fast on a broken graph
	app := container.NewApp(conn, log, services.PolicyFromConfig(cfg))
	if err := app.Validate(); err != nil {
		log.Error("Failed to build services", "error", err.Error())
		os.Exit(1)
	}
	h, err := handlers.New(app, conn, log)
	if err != nil {
		log.Error("Failed to build handlers", "error", err.Error())
		os.Exit(1)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.ErrorHandler(log, !cfg.IsProduction())

	// Middleware
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(echomiddleware.BodyLimit("10M"))

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
	})
	defer limiter.Stop()

	h.Register(e, limiter.Middleware())

	// Start server
	go func() {
		log.Info("Server starting", "port", cfg.ServerPort, "environment", cfg.Environment)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Failed to start server", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err.Error())
	}
}
