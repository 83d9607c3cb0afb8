package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"jiffyapply/docs"
	"jiffyapply/internal/auth"
	"jiffyapply/internal/cache"
	"jiffyapply/internal/config"
	"jiffyapply/internal/db"
	"jiffyapply/internal/handler"
	"jiffyapply/internal/jobsearch"
	"jiffyapply/internal/lib/sl"
	"jiffyapply/internal/repository"
	"jiffyapply/internal/resume"
	"jiffyapply/internal/router"
	"jiffyapply/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Jiffy Apply API
// @version 1.0
// @description Job application tracking with a free-application quota, subscriptions, resume parsing and job board search.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", sl.Err(err))
		os.Exit(1)
	}

	log := setupLogger(cfg)
	log.Info("starting jiffyapply", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("database init", sl.Err(err))
		os.Exit(1)
	}

	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			log.Error("reset database", sl.Err(err))
			os.Exit(1)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Error("migrate database", sl.Err(err))
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Warn("redis unavailable, running without cache", sl.Err(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	applicationRepo := repository.NewApplicationRepository(gormDB)
	transactor := repository.NewTransactor(gormDB)

	// Initialize auth components
	tokenStore := auth.NewTokenStore(cacheClient)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL, tokenStore)

	llm, err := resume.NewModel(ctx, cfg.LLM.Provider, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		log.Error("llm init", sl.Err(err))
		os.Exit(1)
	}
	if llm == nil {
		log.Warn("LLM_API_KEY is not set, resume parsing is disabled")
	}

	searcher := jobsearch.NewSearcher(cacheClient, log,
		jobsearch.NewAdzuna(cfg.Jobs.AdzunaAppID, cfg.Jobs.AdzunaAppKey, cfg.Jobs.AdzunaCountry),
		jobsearch.NewUSAJobs(cfg.Jobs.USAJobsAPIKey, cfg.Jobs.USAJobsUserAgent),
	)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, cfg.FreeApplications)
	userService := service.NewUserService(userRepo, cacheClient)
	subscriptionService := service.NewSubscriptionService(userRepo, cacheClient, cfg.SubscriptionPeriod)
	applicationService := service.NewApplicationService(applicationRepo, transactor, cacheClient)
	resumeService := service.NewResumeService(userRepo, resume.NewLLMParser(llm), cacheClient, log)

	e := echo.New()
	e.HideBanner = true

	// Register routes
	router.Register(e, cfg, log, jwtService, router.Handlers{
		Health:       handler.NewHealthHandler(cfg.AllowedOrigins),
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService, resumeService),
		Subscription: handler.NewSubscriptionHandler(subscriptionService),
		Application:  handler.NewApplicationHandler(applicationService),
		Job:          handler.NewJobHandler(searcher),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}
	log.Info("swagger documentation available", slog.String("url", swaggerURL(cfg)))

	go func() {
		addr := ":" + cfg.ServerPort
		log.Info("listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server start", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", sl.Err(err))
	}
	log.Info("jiffyapply stopped gracefully")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsLocal() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	switch {
	case host == "":
		return "http://localhost:" + cfg.ServerPort + "/swagger/index.html"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/swagger/index.html"
	default:
		return "http://" + host + "/swagger/index.html"
	}
}
