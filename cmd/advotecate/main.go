package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/advotecate/advotecate/internal/app"
	"github.com/advotecate/advotecate/internal/audit"
	"github.com/advotecate/advotecate/internal/auth"
	"github.com/advotecate/advotecate/internal/observability"
	"github.com/advotecate/advotecate/internal/platform/cache"
	"github.com/advotecate/advotecate/internal/platform/db"
	"github.com/advotecate/advotecate/internal/rbac"
	"github.com/advotecate/advotecate/internal/session"
	"github.com/advotecate/advotecate/internal/token"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	sessionManager := session.NewManager(session.NewRedisStore(redisClient), session.Config{
		Namespace:     cfg.SessionNamespace,
		TTL:           cfg.SessionTTL,
		InactivityMax: cfg.SessionIdleCutoff,
		MaxPerUser:    cfg.SessionMaxPerUser,
	}, logger)

	tokenIssuer, err := token.NewIssuer(token.Config{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	if err != nil {
		logger.Error("init token issuer", slog.Any("error", err))
		os.Exit(1)
	}

	registry := rbac.NewRegistry()
	rbacService := rbac.NewService(registry)
	metrics := observability.NewMetrics()
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger, Recorder: metrics}
	permissionsHandler := &rbac.PermissionsHandler{Service: rbacService}
	rolesHandler := &rbac.RolesHandler{Registry: registry, Service: rbacService}

	auditLogger := audit.NewLogger(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, tokenIssuer, auditLogger)
	authenticator := auth.Authenticator{Tokens: tokenIssuer, Sessions: sessionManager, Logger: logger}

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthHandler:        authHandler,
		Authenticator:      authenticator,
		RBACMiddleware:     rbacMiddleware,
		PermissionsHandler: permissionsHandler,
		RolesHandler:       rolesHandler,
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
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
