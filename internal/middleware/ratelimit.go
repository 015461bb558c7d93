package middleware

import (
	"context"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/cheapplay/internal/metrics"
	"github.com/mmeshcher/cheapplay/internal/ratelimit"
)

// Limiter описывает ограничитель частоты запросов.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit ограничивает частоту запросов к маршруту по адресу клиента.
// Без ограничителя запросы пропускаются как есть; при сбое хранилища счётчиков тоже.
func RateLimit(l Limiter, route string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Allow(r.Context(), ratelimit.Key(route, clientIP(r)))
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.String("route", route), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if !ok {
				metrics.IncRateLimited()
				writeJSONError(w, http.StatusTooManyRequests, "too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
