package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suteetoe/saasbase/pkg/config"
)

var (
	// LoginCounter counts login attempts
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "saas_login_total",
			Help: "Total number of login attempts",
		},
	)

	// AuthErrorCounter counts admission failures by kind
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saas_auth_errors_total",
			Help: "Total number of admission failures by kind",
		},
		[]string{"type"},
	)

	// TenantOperationCounter counts tenant operations
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saas_tenant_operations_total",
			Help: "Total number of tenant operations",
		},
		[]string{"operation"}, // "resolve", "config_read", "config_update", etc.
	)

	// RateLimitedCounter counts requests rejected by the rate limiter
	RateLimitedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saas_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"tenant"},
	)

	// HTTPRequestCounter counts HTTP requests by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saas_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// RequestDuration records request duration in seconds
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saas_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// DBOperationDuration records database operation duration in seconds
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saas_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// ActiveTokensGauge approximates tokens issued and not yet expired
	ActiveTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "saas_active_tokens",
			Help: "Approximate number of active session tokens",
		},
	)
)

// InitMetrics registers all metrics with the default registry
func InitMetrics(cfg *config.Config) {
	prometheus.MustRegister(
		LoginCounter,
		AuthErrorCounter,
		TenantOperationCounter,
		RateLimitedCounter,
		HTTPRequestCounter,
		RequestDuration,
		DBOperationDuration,
		ActiveTokensGauge,
	)
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// TrackDBOperation returns a function to be deferred that records the duration
// of a database operation
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{"operation": operation}).Observe(duration)
	}
}

// RecordAuthError records an admission failure by kind
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordTenantOperation records a tenant operation
func RecordTenantOperation(operation string) {
	TenantOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordRateLimited records a request rejected by the rate limiter
func RecordRateLimited(tenant string) {
	RateLimitedCounter.With(prometheus.Labels{"tenant": tenant}).Inc()
}

// IncreaseActiveTokens increments the active tokens gauge
func IncreaseActiveTokens() {
	ActiveTokensGauge.Inc()
}

// GetPrometheusHandler returns an HTTP handler for exposing Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}
