package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricReportGenerated    = "analytics.report.generated"
	MetricReportFailed       = "analytics.report.failed"
	MetricReportDuration     = "analytics.report"
	MetricTrendsGenerated    = "analytics.trends.generated"
	MetricTrendsFailed       = "analytics.trends.failed"
	MetricTransactionCreated = "transaction.created"
	MetricTransactionUpdated = "transaction.updated"
	MetricImportBatchSize    = "transaction.import.batch_size"
	MetricListingDuration    = "transaction.listing"
	MetricAuthentication     = "authentication_event"
)

type PrometheusMetrics struct {
	reportsTotal              *prometheus.CounterVec
	trendsTotal               *prometheus.CounterVec
	reportDuration            prometheus.Histogram
	transactionsCreated       *prometheus.CounterVec
	transactionsUpdated       prometheus.Counter
	importBatchSize           prometheus.Histogram
	listingDuration           prometheus.Histogram
	authenticationEventsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics registers the collectors on the default registry
func NewPrometheusMetrics() MetricsRecorderInterface {
	return NewPrometheusMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsWithRegistry registers the collectors on reg
func NewPrometheusMetricsWithRegistry(reg prometheus.Registerer) MetricsRecorderInterface {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		reportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_reports_total",
				Help: "Total number of monthly reports computed",
			},
			[]string{"status"},
		),
		trendsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_trends_total",
				Help: "Total number of multi-month spending trends computed",
			},
			[]string{"status"},
		),
		reportDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "analytics_report_duration_milliseconds",
				Help:    "Monthly report computation duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		transactionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_created_total",
				Help: "Total number of transactions recorded",
			},
			[]string{"source"},
		),
		transactionsUpdated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "transactions_updated_total",
				Help: "Total number of transactions updated",
			},
		),
		importBatchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "transaction_import_batch_size",
				Help:    "Number of transactions per import request",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		listingDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "transaction_listing_duration_seconds",
				Help:    "Transaction listing duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		authenticationEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case MetricReportGenerated:
		m.reportsTotal.WithLabelValues("success").Inc()
	case MetricReportFailed:
		status := "failed"
		if reason := tags["reason"]; reason != "" {
			status = "failed_" + reason
		}
		m.reportsTotal.WithLabelValues(status).Inc()
	case MetricTrendsGenerated:
		m.trendsTotal.WithLabelValues("success").Inc()
	case MetricTrendsFailed:
		status := "failed"
		if reason := tags["reason"]; reason != "" {
			status = "failed_" + reason
		}
		m.trendsTotal.WithLabelValues(status).Inc()
	case MetricTransactionCreated:
		if source := tags["source"]; source != "" {
			m.transactionsCreated.WithLabelValues(source).Inc()
		}
	case MetricTransactionUpdated:
		m.transactionsUpdated.Inc()
	case MetricAuthentication:
		if eventType := tags["event_type"]; eventType != "" {
			m.authenticationEventsTotal.WithLabelValues(eventType).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case MetricReportDuration:
		m.reportDuration.Observe(float64(duration.Milliseconds()))
	case MetricListingDuration:
		m.listingDuration.Observe(duration.Seconds())
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case MetricImportBatchSize:
		m.importBatchSize.Observe(value)
	}
}
