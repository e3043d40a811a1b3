package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"wordclash/internal/config"
	"wordclash/internal/database"
	"wordclash/internal/game"
	"wordclash/internal/handlers"
	"wordclash/internal/metrics"
	"wordclash/internal/repository"
	"wordclash/internal/scheduler"
	"wordclash/internal/security"
	"wordclash/internal/service"
	"wordclash/migrations"
)

func main() {
	cfg := config.Load()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
	}

	startup := handlers.NewStartupStatus(
		handlers.StepDatabase,
		handlers.StepMigrations,
		handlers.StepSeeding,
		handlers.StepServices,
		handlers.StepScheduler,
	)

	// Initialize database with config (supports sqlite, postgres, mysql)
	startup.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.CompleteStep(handlers.StepDatabase)
	log.WithField("type", cfg.DatabaseType).Info("Database connection established")

	startup.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(migrations.FS); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	startup.CompleteStep(handlers.StepMigrations)
	log.Info("Migrations completed successfully")

	// Initialize repositories
	themeRepo := repository.NewThemeRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	themeService := service.NewThemeService(themeRepo)

	startup.SetCurrentStep(handlers.StepSeeding)
	if cfg.SeedBuiltInThemes {
		if err := themeService.SeedBuiltInThemes(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to seed built-in themes")
		}
	}
	startup.CompleteStep(handlers.StepSeeding)

	// Initialize services
	startup.SetCurrentStep(handlers.StepServices)
	m := metrics.New()
	opts := game.DefaultOptions()
	opts.TickInterval = cfg.TimerTick
	opts.FeedbackDelay = cfg.FeedbackDelay
	opts.AdvanceDelay = cfg.AdvanceDelay
	opts.Timer = game.TimerSettings{Step: cfg.AccelerationStep, Min: cfg.MinTimeLimit}

	gameService := service.NewGameService(themeService, historyRepo, settingsRepo, m, opts, cfg.GameIdleTimeout)
	historyService := service.NewHistoryService(historyRepo, cfg.HistoryLimit)
	limiter := security.NewRateLimiter(30, time.Minute)

	corsOptions := cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Accept", "Origin", "X-Requested-With"},
		MaxAge:         86400,
	}
	corsHandler := cors.New(corsOptions)

	router := handlers.NewRouter(handlers.Handlers{
		Games:    handlers.NewGameHandler(gameService, corsHandler.OriginAllowed),
		Themes:   handlers.NewThemeHandler(themeService, cfg.UploadMaxSize),
		History:  handlers.NewHistoryHandler(historyService),
		Settings: handlers.NewSettingsHandler(settingsRepo),
		Metrics:  m,
		Limiter:  limiter,
		Startup:  startup,
	})
	startup.CompleteStep(handlers.StepServices)

	startup.SetCurrentStep(handlers.StepScheduler)
	jobs := scheduler.New(gameService, historyService, scheduler.DefaultIntervals(), limiter)
	if err := jobs.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	startup.CompleteStep(handlers.StepScheduler)
	startup.MarkReady()

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:        addr,
		Handler:     corsHandler.Handler(router),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: snapshot streams stay open for a whole game
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Infof("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server shutting down...")
	jobs.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("HTTP shutdown did not complete")
	}

	// Running games are exited so their partial results are saved
	gameService.Shutdown()
	log.Info("Server stopped")
}
