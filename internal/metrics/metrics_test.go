package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(redemptionsTotal.WithLabelValues("redeemed"))
	IncRedemption(" Redeemed ")
	assert.Equal(t, before+1, testutil.ToFloat64(redemptionsTotal.WithLabelValues("redeemed")))

	before = testutil.ToFloat64(emailsTotal.WithLabelValues("failed"))
	IncEmail("FAILED")
	assert.Equal(t, before+1, testutil.ToFloat64(emailsTotal.WithLabelValues("failed")))
}

func TestObserveHTTPRequest(t *testing.T) {
	ObserveHTTPRequest(http.MethodGet, http.StatusOK, 15*time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(httpRequestDuration, "cheapplay_http_request_duration_seconds"))
}

func TestMustRegisterIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		MustRegister()
		MustRegister()
	})
}
