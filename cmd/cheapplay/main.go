// Package main запускает HTTP-сервер витрины cheapplay.
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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/cheapplay/internal/config"
	"github.com/mmeshcher/cheapplay/internal/handler"
	"github.com/mmeshcher/cheapplay/internal/metrics"
	"github.com/mmeshcher/cheapplay/internal/middleware"
	"github.com/mmeshcher/cheapplay/internal/notify"
	"github.com/mmeshcher/cheapplay/internal/ratelimit"
	"github.com/mmeshcher/cheapplay/internal/repository"
	"github.com/mmeshcher/cheapplay/internal/service"
	"github.com/mmeshcher/cheapplay/internal/session"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	svc := service.NewService(repo)
	defer svc.Close()

	mailer, err := newMailer(cfg.SMTP, cfg.PublicBaseURL)
	if err != nil {
		sugar.Fatalw("smtp initialization error", "error", err.Error())
	}
	if mailer == nil {
		sugar.Warn("SMTP_HOST is not set, email delivery is disabled")
	}

	var verifier session.Verifier
	switch {
	case cfg.Auth.JWTSecret != "":
		verifier = session.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience)
	case cfg.Auth.URL != "":
		verifier = session.NewClient(cfg.Auth.URL, cfg.Auth.APIKey)
	default:
		sugar.Warn("neither AUTH_JWT_SECRET nor AUTH_URL is set, admin API will reject all requests")
	}

	var limiter middleware.Limiter
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		counter, err := ratelimit.NewRedisCounter(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		cancel()
		if err != nil {
			sugar.Fatalw("redis initialization error", "error", err.Error())
		}
		defer counter.Close()
		limiter = ratelimit.NewLimiter(counter, cfg.Redis.RateLimit, cfg.Redis.RateWindow)
	}

	metrics.MustRegister()

	authMiddleware := middleware.NewAuthMiddleware(verifier, cfg.Auth.AdminEmails, logger)
	h := handler.NewHandler(svc, mailer, logger, authMiddleware, limiter)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting cheapplay server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

// newMailer создаёт отправителя писем. Без SMTP_HOST возвращает nil без ошибки.
func newMailer(cfg config.SMTPConfig, baseURL string) (handler.Mailer, error) {
	m, err := notify.NewSMTPMailer(notify.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		BaseURL:  baseURL,
	})
	if errors.Is(err, notify.ErrNotConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
