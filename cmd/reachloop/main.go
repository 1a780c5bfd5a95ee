package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/reachloop/reachloop/internal/app"
	"github.com/reachloop/reachloop/internal/auth"
	"github.com/reachloop/reachloop/internal/campaigns"
	"github.com/reachloop/reachloop/internal/influencers"
	"github.com/reachloop/reachloop/internal/observability"
	"github.com/reachloop/reachloop/internal/platform/cache"
	"github.com/reachloop/reachloop/internal/platform/db"
	"github.com/reachloop/reachloop/internal/rbac"
	"github.com/reachloop/reachloop/internal/sessions"
	"github.com/reachloop/reachloop/internal/users"
	"github.com/reachloop/reachloop/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	throttle := sessions.NewActivityThrottle(redisClient, cfg.SessionTouchWindow)
	sessionService := sessions.NewService(sessions.NewRepository(pool), cfg.SessionLifetime, throttle)

	tokenIssuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTLifetime)
	authService := auth.NewService(auth.NewRepository(pool), sessionService, tokenIssuer, &jobs.LoginNotifier{Client: jobsClient})
	authenticator := auth.Authenticator{Logger: logger, Sessions: sessionService}

	rbacMiddleware := rbac.Middleware{Logger: logger}

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Authenticator:      authenticator,
		AuthHandler:        auth.NewHandler(logger, authService, cfg.IsProduction()),
		SessionsHandler:    sessions.NewHandler(logger, sessionService, metrics),
		RBACHandler:        rbac.NewHandler(rbacMiddleware),
		UsersHandler:       users.NewHandler(logger, users.NewService(users.NewRepository(pool)), rbacMiddleware),
		InfluencersHandler: influencers.NewHandler(logger, influencers.NewService(influencers.NewRepository(pool)), rbacMiddleware),
		CampaignsHandler:   campaigns.NewHandler(logger, campaigns.NewService(campaigns.NewRepository(pool)), rbacMiddleware),
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
