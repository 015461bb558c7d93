package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		redemptionsTotal,
		accessCodeChecksTotal,
		orderTransitionsTotal,
	)
}

var (
	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cheapplay_redemptions_total",
			Help: "Redemption attempts by result.",
		},
		[]string{"result"}, // 'viewed', 'redeemed', 'invalid_code', 'already_redeemed', 'error'
	)

	accessCodeChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cheapplay_access_code_checks_total",
			Help: "Order tracking form submissions by resulting state.",
		},
		[]string{"state"},
	)

	orderTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cheapplay_order_transitions_total",
			Help: "Persisted order status transitions by target status.",
		},
		[]string{"to"},
	)
)

// IncRedemption учитывает попытку погашения кода с указанным результатом.
func IncRedemption(result string) {
	redemptionsTotal.WithLabelValues(norm(result)).Inc()
}

// IncAccessCodeCheck учитывает отправку формы отслеживания по итоговому состоянию.
func IncAccessCodeCheck(state string) {
	accessCodeChecksTotal.WithLabelValues(norm(state)).Inc()
}

// IncTransition учитывает сохранённую смену статуса заказа.
func IncTransition(to string) {
	orderTransitionsTotal.WithLabelValues(norm(to)).Inc()
}
