package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(httpRequestDuration, emailsTotal, rateLimitedTotal)
}

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cheapplay_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status code.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	emailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cheapplay_emails_total",
			Help: "Emails relayed through SMTP by result.",
		},
		[]string{"result"}, // 'sent', 'failed'
	)

	rateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cheapplay_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		},
	)
)

// ObserveHTTPRequest учитывает длительность обработанного HTTP-запроса.
func ObserveHTTPRequest(method string, status int, d time.Duration) {
	httpRequestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}

// IncEmail учитывает попытку отправки письма с указанным результатом.
func IncEmail(result string) {
	emailsTotal.WithLabelValues(norm(result)).Inc()
}

// IncRateLimited учитывает запрос, отклонённый ограничителем частоты.
func IncRateLimited() {
	rateLimitedTotal.Inc()
}
