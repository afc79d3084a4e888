package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/club-engine/config"
	"github.com/Dosada05/club-engine/db"
	"github.com/Dosada05/club-engine/handlers"
	"github.com/Dosada05/club-engine/live"
	"github.com/Dosada05/club-engine/middleware"
	"github.com/Dosada05/club-engine/repositories"
	api "github.com/Dosada05/club-engine/routes"
	"github.com/Dosada05/club-engine/services"
	"github.com/Dosada05/club-engine/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Архив итоговых таблиц (Cloudflare R2) — опционален.
	var archiver services.StandingsArchiver
	if cfg.R2Configured() {
		uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = services.NewUploaderArchiver(uploader)
		logger.Info("standings archiver initialized")
	} else {
		logger.Warn("R2 storage not configured, final standings will not be archived")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	seatRepo := repositories.NewPostgresSeatRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	transactor := services.NewSQLTransactor(dbConn)
	locks := services.NewTournamentLocks()
	sink := live.NewHubSink(wsHub)

	lifecycleService := services.NewLifecycleService(
		transactor,
		locks,
		tournamentRepo,
		registrationRepo,
		seatRepo,
		playerRepo,
		sink,
		archiver,
		logger,
	)
	registrationService := services.NewRegistrationService(
		transactor,
		locks,
		tournamentRepo,
		registrationRepo,
		seatRepo,
		playerRepo,
		sink,
		logger,
	)
	statsService := services.NewStatsService(
		transactor,
		tournamentRepo,
		registrationRepo,
		seatRepo,
		playerRepo,
		logger,
	)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	tournamentHandler := handlers.NewTournamentHandler(lifecycleService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService, lifecycleService)
	statsHandler := handlers.NewStatsHandler(statsService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, lifecycleService)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Config{
		Auth:            middleware.NewAuthenticator(cfg.JWTSecretKey),
		TerminalPINHash: cfg.TerminalPINHash,
		Tournaments:     tournamentHandler,
		Registrations:   registrationHandler,
		Stats:           statsHandler,
		WebSocket:       webSocketHandler,
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
