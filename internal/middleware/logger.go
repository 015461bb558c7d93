package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/cheapplay/internal/metrics"
)

// RequestIDHeader задаёт заголовок с идентификатором запроса.
const RequestIDHeader = "X-Request-ID"

// Logger пишет в журнал каждый запрос и учитывает его длительность в метриках.
func Logger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)

			metrics.ObserveHTTPRequest(r.Method, status, duration)

			logger.Info("request",
				zap.String("request_id", reqID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("size", ww.BytesWritten()),
				zap.Duration("duration", duration),
			)
		})
	}
}
