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

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sumire/overflow/internal/ai"
	"github.com/sumire/overflow/internal/cache"
	"github.com/sumire/overflow/internal/config"
	"github.com/sumire/overflow/internal/handler"
	"github.com/sumire/overflow/internal/metrics"
	"github.com/sumire/overflow/internal/repository"
	"github.com/sumire/overflow/internal/service"
	"github.com/sumire/overflow/internal/worker"
)

const systemUsername = "gemini"

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	aiJobRepo := repository.NewAIJobRepository(db)

	authSvc := service.NewAuthService(userRepo, service.AuthConfig{
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		GitHubClientID:     cfg.GitHubClientID,
		GitHubClientSecret: cfg.GitHubClientSecret,
		JWTSecret:          cfg.JWTSecret,
		FrontendURL:        cfg.FrontendURL,
	})

	notificationSvc := service.NewNotificationService(notificationRepo)
	voteSvc := service.NewVoteService(voteRepo, cfg.AllowSelfVote)
	questionSvc := service.NewQuestionService(questionRepo, answerRepo, voteRepo, cache.NewRedis(redisClient), cfg.TrendingCacheTTL)
	answerSvc := service.NewAnswerService(answerRepo, questionRepo, userRepo, notificationSvc, cfg.AllowAcceptingAIAnswers)
	userSvc := service.NewUserService(userRepo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var aiAnswerSvc *service.AIAnswerService
	if cfg.AIEnabled() {
		generator, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("init gemini client: %w", err)
		}

		systemUser, err := userRepo.EnsureSystemUser(ctx, systemUsername)
		if err != nil {
			return fmt.Errorf("ensure system user: %w", err)
		}

		aiAnswerSvc = service.NewAIAnswerService(
			aiJobRepo, questionRepo, answerRepo, notificationSvc, generator,
			systemUser, cfg.AIMaxAttempts, cfg.GeminiTimeout, cfg.GeminiModel,
		)

		pool := worker.NewAIPool(aiAnswerSvc, cfg.AIWorkerCount, 2*time.Second)
		go pool.Run(ctx)
		slog.Info("AI answer workers started", "workers", cfg.AIWorkerCount, "model", cfg.GeminiModel)
	} else {
		slog.Info("AI answers disabled: GEMINI_API_KEY not set")
	}

	authHandler := handler.NewAuthHandler(authSvc)
	questionHandler := handler.NewQuestionHandler(questionSvc, voteSvc, aiAnswerSvc)
	answerHandler := handler.NewAnswerHandler(answerSvc, voteSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	userHandler := handler.NewUserHandler(userSvc)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewAppValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(handler.RequestLogger())
	e.Use(handler.Metrics())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.GET("/google", authHandler.GoogleRedirect)
	auth.GET("/google/callback", authHandler.GoogleCallback)
	auth.GET("/github", authHandler.GitHubRedirect)
	auth.GET("/github/callback", authHandler.GitHubCallback)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/me", authHandler.Me, handler.JWTAuth(authSvc))

	api.GET("/questions", questionHandler.List)
	api.GET("/questions/trending", questionHandler.Trending)
	api.GET("/questions/:id", questionHandler.Get, handler.OptionalJWTAuth(authSvc))
	api.GET("/users/:id", userHandler.Profile)

	protected := api.Group("", handler.JWTAuth(authSvc))
	protected.POST("/questions", questionHandler.Create)
	protected.POST("/questions/:id/votes", questionHandler.Vote)
	protected.POST("/questions/:id/answers", answerHandler.Create)
	protected.POST("/questions/:id/accept", answerHandler.Accept)
	protected.DELETE("/questions/:id/accept", answerHandler.Unaccept)
	protected.POST("/questions/:id/ai-answer", questionHandler.RequestAIAnswer)
	protected.POST("/answers/:id/votes", answerHandler.Vote)
	protected.GET("/notifications", notificationHandler.List)
	protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	protected.POST("/notifications/:id/read", notificationHandler.MarkRead)
	protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
