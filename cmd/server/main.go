package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/norsk-prova/quiz-session-service/internal/config"
	"github.com/norsk-prova/quiz-session-service/internal/events"
	"github.com/norsk-prova/quiz-session-service/internal/handlers"
	"github.com/norsk-prova/quiz-session-service/internal/repositories"
	redisrepo "github.com/norsk-prova/quiz-session-service/internal/repositories/redis"
	sqliterepo "github.com/norsk-prova/quiz-session-service/internal/repositories/sqlite"
	"github.com/norsk-prova/quiz-session-service/internal/services"
	"github.com/norsk-prova/quiz-session-service/internal/source"
	"github.com/norsk-prova/quiz-session-service/internal/utils"
	"github.com/norsk-prova/quiz-session-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	logger.Info("Starting quiz session service",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage", cfg.StorageBackend)

	repo, cleanup, err := buildRepository(cfg)
	if err != nil {
		logger.LogError(err, "Failed to initialize durable session storage")
		os.Exit(1)
	}
	defer cleanup()

	var src source.QuestionSource
	if cfg.SetsDir != "" {
		src = source.NewFileSource(cfg.SetsDir)
	} else {
		src = source.NewHTTPSource(cfg.SetsBaseURL, nil)
	}

	validator := utils.NewValidator()
	bus := events.NewBus(slogger)
	defer bus.Close()

	session := services.NewSessionService(repo, src, slogger, validator)
	nav := services.NewNavigationController(session, bus, slogger)
	countdown := services.NewCountdown(session, nav, bus, slogger, cfg.QuizDuration)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Resume a persisted attempt so a restart mid-quiz does not lose it.
	if state, err := session.Resume(ctx); err != nil {
		logger.LogError(err, "Failed to resume persisted session")
	} else if state != nil && state.Loaded() && !state.Finished() {
		if err := countdown.Start(ctx); err != nil {
			logger.LogError(err, "Failed to start countdown")
		}
	}

	if err := nav.Run(ctx, bus); err != nil {
		logger.LogError(err, "Failed to wire media-ended signal")
		os.Exit(1)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(session, nav, countdown, bus, validator, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "HTTP server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	countdown.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.LogError(err, "Forced shutdown")
	}
}

func buildRepository(cfg *config.Config) (repositories.SessionRepository, func(), error) {
	switch cfg.StorageBackend {
	case "redis":
		client, err := pkg.NewRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		repo := redisrepo.NewSessionRepository(client, cfg.SessionName)
		return repo, func() { client.Close() }, nil
	case "sqlite":
		db, err := pkg.NewSQLiteDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		repo, err := sqliterepo.NewSessionRepository(db, cfg.SessionName)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
