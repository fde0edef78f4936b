package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kvnlft/team-service/internal/api"
	"github.com/kvnlft/team-service/internal/config"
	"github.com/kvnlft/team-service/internal/database"
	"github.com/kvnlft/team-service/internal/roster"
	"github.com/kvnlft/team-service/internal/team"
	"github.com/kvnlft/team-service/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	txManager, err := database.NewTransactionManager(db.Pool())
	if err != nil {
		slog.Error("failed to create transaction manager", "error", err)
		os.Exit(1)
	}

	teamRepo := team.NewRepository(db.Pool())
	rosterRepo := roster.NewRepository(db.Pool())
	userRepo := user.NewRepository(db.Pool())
	teamService := team.NewService(teamRepo, rosterRepo, userRepo, txManager, slog.Default())

	router := api.NewRouter(api.RouterDeps{
		TeamService: teamService,
		Rosters:     rosterRepo,
		Users:       userRepo,
		DBPinger:    db,
		TokenSecret: cfg.AccessTokenSecret,
		Version:     cfg.Version,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting team-service", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
