package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	namespace = "conduit"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Comment metrics
	CommentsPostedTotal    prometheus.Counter
	CommentDeletionsTotal  *prometheus.CounterVec
	CommentViewsTotal      prometheus.Counter
	CommentOperationErrors *prometheus.CounterVec

	// Logger for error reporting
	logger *zap.Logger
}

// New creates and registers all metrics with the default registry
func New(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, logger)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(registerer)

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		CommentsPostedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comments_posted_total",
				Help:      "Total number of comments posted",
			},
		),
		CommentDeletionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comment_deletions_total",
				Help:      "Comment deletion attempts by outcome",
			},
			[]string{"result"},
		),
		CommentViewsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comment_views_total",
				Help:      "Total number of comment views projected",
			},
		),
		CommentOperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comment_operation_errors_total",
				Help:      "Failed comment operations by operation and reason",
			},
			[]string{"operation", "reason"},
		),
		logger: logger,
	}
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.safeExecute("RecordHTTPRequest", func() {
		m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	})
}

// IncrementCommentPosted increments the comment creation counter
func (m *Metrics) IncrementCommentPosted() {
	m.safeExecute("IncrementCommentPosted", func() {
		m.CommentsPostedTotal.Inc()
	})
}

// RecordCommentDeletion counts a deletion attempt by its result label
func (m *Metrics) RecordCommentDeletion(result string) {
	m.safeExecute("RecordCommentDeletion", func() {
		m.CommentDeletionsTotal.WithLabelValues(result).Inc()
	})
}

// AddCommentViews adds n projected views
func (m *Metrics) AddCommentViews(n int) {
	m.safeExecute("AddCommentViews", func() {
		m.CommentViewsTotal.Add(float64(n))
	})
}

// RecordOperationError counts a failed comment operation
func (m *Metrics) RecordOperationError(operation, reason string) {
	m.safeExecute("RecordOperationError", func() {
		m.CommentOperationErrors.WithLabelValues(operation, reason).Inc()
	})
}

// safeExecute wraps metric operations with panic recovery
func (m *Metrics) safeExecute(operation string, fn func()) {
	if m == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Panic in metrics operation",
				zap.String("operation", operation),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
