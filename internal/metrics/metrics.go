package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	Validations       *prometheus.CounterVec
	ValidationScore   prometheus.Histogram
	RuleViolations    *prometheus.CounterVec
	LoginAttempts     *prometheus.CounterVec
	AccountLockouts   prometheus.Counter
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	NotificationsSent *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regnify_invoice_validations_total",
			Help: "Invoice validation runs by jurisdiction and outcome",
		}, []string{"jurisdiction", "outcome"}),
		ValidationScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "regnify_invoice_validation_score",
			Help:    "Distribution of invoice validation scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		RuleViolations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regnify_invoice_rule_violations_total",
			Help: "Rule violations by rule key",
		}, []string{"rule"}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regnify_login_attempts_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		AccountLockouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "regnify_account_lockouts_total",
			Help: "Accounts locked after repeated login failures",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regnify_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regnify_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regnify_notifications_total",
			Help: "Background notifications by kind and result",
		}, []string{"kind", "result"}),
	}
}

// ObserveValidation records one validation run. A nil receiver is a no-op.
func (m *Metrics) ObserveValidation(jurisdiction string, passed bool, score int, ruleKeys []string) {
	if m == nil {
		return
	}
	if jurisdiction == "" {
		jurisdiction = "none"
	}
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	m.Validations.WithLabelValues(jurisdiction, outcome).Inc()
	m.ValidationScore.Observe(float64(score))
	for _, k := range ruleKeys {
		m.RuleViolations.WithLabelValues(k).Inc()
	}
}

func (m *Metrics) IncrementLogin(result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementLockouts() {
	if m == nil {
		return
	}
	m.AccountLockouts.Inc()
}

func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) IncrementNotification(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.NotificationsSent.WithLabelValues(kind, result).Inc()
}

// RegisterNotifyDrops exposes the dispatcher's dropped task count.
func RegisterNotifyDrops(reg prometheus.Registerer, dropped func() int64) {
	promauto.With(reg).NewCounterFunc(prometheus.CounterOpts{
		Name: "regnify_notifications_dropped_total",
		Help: "Background notifications dropped because the backlog was full",
	}, func() float64 { return float64(dropped()) })
}
