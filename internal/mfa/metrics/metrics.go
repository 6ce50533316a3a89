package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for step-up verification operations.
type Metrics struct {
	SessionsStarted  *prometheus.CounterVec
	Resends          *prometheus.CounterVec
	VerifySuccesses  *prometheus.CounterVec
	VerifyFailures   *prometheus.CounterVec
	TokensConsumed   *prometheus.CounterVec
	TokensExpired    prometheus.Counter
	SessionsCanceled prometheus.Counter
	VerifyDurationMs prometheus.Histogram
}

// New registers and returns MFA metrics collectors.
func New() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_mfa_sessions_started_total",
			Help: "Total number of MFA sessions started",
		}, []string{"action", "channel"}),
		Resends: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_mfa_resends_total",
			Help: "Total number of OTP resend requests that reached the delivery service",
		}, []string{"action"}),
		VerifySuccesses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_mfa_verify_successes_total",
			Help: "Total number of successful OTP verifications",
		}, []string{"action"}),
		VerifyFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_mfa_verify_failures_total",
			Help: "Total number of failed OTP verifications",
		}, []string{"action"}),
		TokensConsumed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_mfa_tokens_consumed_total",
			Help: "Total number of MFA tokens consumed by a mutation",
		}, []string{"action"}),
		TokensExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "folio_mfa_tokens_expired_total",
			Help: "Total number of MFA tokens that expired before use",
		}),
		SessionsCanceled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "folio_mfa_sessions_canceled_total",
			Help: "Total number of MFA sessions discarded before verification",
		}),
		VerifyDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "folio_mfa_verify_duration_ms",
			Help:    "Duration of OTP verification calls in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
	}
}
