package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fibrelink/backend/internal/ai"
	"github.com/fibrelink/backend/internal/auth"
	"github.com/fibrelink/backend/internal/config"
	"github.com/fibrelink/backend/internal/db"
	httpapi "github.com/fibrelink/backend/internal/http"
	"github.com/fibrelink/backend/internal/ratelimit"
	"github.com/fibrelink/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "portal-backend").Logger()

	if cfg.JWTSecret == "" {
		logger.Fatal().Msg("JWT_SECRET is required")
	}

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to provision schema")
	}
	if cfg.SeedCoreData {
		if err := store.Seed(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed core data")
		}
		logger.Info().Msg("core data seeded")
	}

	var replier ai.Replier
	if cfg.AIEngineBaseURL == "" {
		replier = ai.MockReplier{}
		logger.Info().Msg("using mock AI replier")
	} else {
		replier = ai.HTTPReplier{
			BaseURL: cfg.AIEngineBaseURL,
			Client:  &http.Client{Timeout: cfg.RequestTimeout},
		}
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimitRedisAddr != "" {
		rl, err := ratelimit.NewRedisWindow(cfg.RateLimitRedisAddr, cfg.RateLimitRedisPassword, "", cfg.ChatRateLimitPerMinute, time.Minute)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect rate-limit redis")
		}
		limiter = rl
	} else {
		limiter = ratelimit.NewSlidingWindow(cfg.ChatRateLimitPerMinute, time.Minute)
		logger.Info().Msg("using in-process rate limiter, bound degrades with replica count")
	}

	orders := &service.OrderService{
		Plans:                  store,
		Engineers:              store,
		Orders:                 store,
		Logger:                 logger,
		ReleaseWorkloadOnClose: cfg.ReleaseWorkloadOnClose,
	}
	tickets := &service.TicketService{Tickets: store}
	chat := &service.ChatService{Store: store, Replier: replier, Limiter: limiter, Logger: logger}

	verifier := auth.NewVerifier(cfg.JWTSecret)
	router := httpapi.Router(cfg, store, orders, tickets, chat, verifier, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
