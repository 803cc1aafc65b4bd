package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for DingTalk logins.
type Metrics struct {
	Logins                 *prometheus.CounterVec
	LoginFailures          *prometheus.CounterVec
	LoginDurationMs        *prometheus.HistogramVec
	ProviderCallDurationMs *prometheus.HistogramVec
	TokenRejections        prometheus.Counter
}

// New registers collectors with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers collectors with reg, letting tests use an
// isolated registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dingauth_logins_total",
			Help: "Completed DingTalk logins by flow and outcome",
		}, []string{"flow", "outcome"}),
		LoginFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dingauth_login_failures_total",
			Help: "Failed DingTalk logins by error kind and reason",
		}, []string{"kind", "reason"}),
		LoginDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dingauth_login_duration_ms",
			Help:    "Duration of the exchange and mapping in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"flow"}),
		ProviderCallDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dingauth_provider_call_duration_ms",
			Help:    "Duration of DingTalk API calls in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"operation", "outcome"}),
		TokenRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "dingauth_provider_token_rejections_total",
			Help: "Provider calls that failed because the access token was rejected",
		}),
	}
}

func (m *Metrics) ObserveLogin(flow, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(flow, outcome).Inc()
	m.LoginDurationMs.WithLabelValues(flow).Observe(float64(d.Milliseconds()))
}

func (m *Metrics) IncrementLoginFailure(kind, reason string) {
	if m == nil {
		return
	}
	m.LoginFailures.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) ObserveProviderCall(operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.ProviderCallDurationMs.WithLabelValues(operation, outcome).Observe(float64(d.Milliseconds()))
}

func (m *Metrics) IncrementTokenRejection() {
	if m == nil {
		return
	}
	m.TokenRejections.Inc()
}
