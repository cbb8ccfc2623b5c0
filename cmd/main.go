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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/kudzilenett/nhandare-server-sub002/brackets"
	"github.com/kudzilenett/nhandare-server-sub002/config"
	"github.com/kudzilenett/nhandare-server-sub002/db"
	"github.com/kudzilenett/nhandare-server-sub002/handlers"
	"github.com/kudzilenett/nhandare-server-sub002/models"
	"github.com/kudzilenett/nhandare-server-sub002/repositories"
	api "github.com/kudzilenett/nhandare-server-sub002/routes"
	"github.com/kudzilenett/nhandare-server-sub002/services"
)

// loggingPaymentGateway is the default PaymentCollaborator: it records the
// payout instruction in the log and nothing else. A real gateway client
// replaces it in deployments that move money.
type loggingPaymentGateway struct {
	logger *slog.Logger
}

func (g *loggingPaymentGateway) SendPayout(ctx context.Context, payout *models.PrizePayout) error {
	g.logger.Info("payout instruction issued",
		slog.String("payout_id", payout.ID),
		slog.Int("tournament_id", payout.TournamentID),
		slog.Int("user_id", payout.UserID),
		slog.Int("placement", payout.Placement),
		slog.Float64("amount", payout.Amount))
	return nil
}

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

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

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	bracketRepo := repositories.NewPostgresBracketRepository(dbConn)
	payoutRepo := repositories.NewPostgresPayoutRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	locker := services.NewTournamentLocker()
	ratingService := services.NewRatingService(userRepo, logger)
	prizeService := services.NewPrizeService(
		playerRepo,
		payoutRepo,
		&loggingPaymentGateway{logger: logger},
		services.PrizeSplit{
			First:  cfg.PrizeFirstPct,
			Second: cfg.PrizeSecondPct,
			Third:  cfg.PrizeThirdPct,
		},
		logger,
	)
	bracketService := services.NewBracketService(
		dbConn,
		tournamentRepo,
		playerRepo,
		matchRepo,
		bracketRepo,
		locker,
		wsHub,
		logger,
	)
	progressionService := services.NewProgressionService(
		dbConn,
		tournamentRepo,
		playerRepo,
		matchRepo,
		bracketRepo,
		ratingService,
		prizeService,
		locker,
		wsHub,
		logger,
	)
	matchService := services.NewMatchService(tournamentRepo, matchRepo, logger)
	tournamentService := services.NewTournamentService(
		tournamentRepo,
		playerRepo,
		userRepo,
		bracketService,
		wsHub,
		logger,
	)
	logger.Info("Services initialized")

	// Запуск планировщика автоматической активации турниров
	go func() {
		ticker := time.NewTicker(cfg.SchedulerInterval)
		defer ticker.Stop()
		logger.Info("tournament auto-start scheduler started", slog.Duration("interval", cfg.SchedulerInterval))

		if err := tournamentService.AutoStartDueTournaments(context.Background()); err != nil {
			logger.Error("scheduler: initial run failed", slog.Any("error", err))
		}

		for range ticker.C {
			if err := tournamentService.AutoStartDueTournaments(context.Background()); err != nil {
				logger.Error("scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, bracketService)
	matchHandler := handlers.NewMatchHandler(matchService, progressionService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, tournamentHandler, matchHandler, webSocketHandler)
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
		}
		logger.Info("server stopped gracefully")
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
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
