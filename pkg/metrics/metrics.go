package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// API metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	// Training metrics
	TrainingRunsTotal  *prometheus.CounterVec
	TrainingDuration   prometheus.Histogram
	TrainingSetSize    prometheus.Histogram
	ModelValidationR2  *prometheus.GaugeVec
	ModelValidationMAE *prometheus.GaugeVec

	// Prediction metrics
	PredictionsTotal   *prometheus.CounterVec
	PredictionDuration prometheus.Histogram

	// Report metrics
	ReportsGeneratedTotal *prometheus.CounterVec
	ReportDuration        prometheus.Histogram

	// Instrument export metrics
	ExportUploadsTotal prometheus.Counter
	ExportUploadBytes  prometheus.Counter

	// Database metrics
	DBQueryDuration  *prometheus.HistogramVec
	DBConnectionPool *prometheus.GaugeVec
	DBErrorsTotal    *prometheus.CounterVec
}

// NewCollector creates a new metrics collector
func NewCollector(namespace string) *Collector {
	return &Collector{
		APIRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),

		APIErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors by type",
			},
			[]string{"error_type", "endpoint"},
		),

		TrainingRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "training_runs_total",
				Help:      "Total number of model training runs by target, algorithm, and outcome",
			},
			[]string{"target", "algorithm", "status"},
		),

		TrainingDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "training_duration_seconds",
				Help:      "Duration of model training runs in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),

		TrainingSetSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "training_set_size",
				Help:      "Number of labeled records per training run",
				Buckets:   []float64{5, 10, 20, 50, 100, 200, 500},
			},
		),

		ModelValidationR2: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "model_validation_r2",
				Help:      "Coefficient of determination of the most recent model per target and algorithm",
			},
			[]string{"target", "algorithm"},
		),

		ModelValidationMAE: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "model_validation_mae",
				Help:      "Mean absolute error of the most recent model per target and algorithm",
			},
			[]string{"target", "algorithm"},
		),

		PredictionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "predictions_total",
				Help:      "Total number of predictions served by target, algorithm, and outcome",
			},
			[]string{"target", "algorithm", "status"},
		),

		PredictionDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "prediction_duration_seconds",
				Help:      "Duration of prediction requests in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),

		ReportsGeneratedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_generated_total",
				Help:      "Total number of flavor reports generated by outcome",
			},
			[]string{"status"},
		),

		ReportDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_duration_seconds",
				Help:      "Duration of flavor report generation in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
		),

		ExportUploadsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "export_uploads_total",
				Help:      "Total number of instrument export files uploaded",
			},
		),

		ExportUploadBytes: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "export_upload_bytes_total",
				Help:      "Total bytes of instrument export files uploaded",
			},
		),

		DBQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database query duration in seconds by query type",
				Buckets:   []float64{0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5},
			},
			[]string{"query_type"},
		),

		DBConnectionPool: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connection_pool",
				Help:      "Database connection pool statistics",
			},
			[]string{"state"}, // "in_use", "idle", "total"
		),

		DBErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_errors_total",
				Help:      "Total number of database errors by type",
			},
			[]string{"error_type"},
		),
	}
}

// RecordAPIRequest records an API request
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordAPIError records an API error
func (c *Collector) RecordAPIError(errorType, endpoint string) {
	c.APIErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordTrainingRun records the outcome of a training run
func (c *Collector) RecordTrainingRun(target, algorithm, status string) {
	c.TrainingRunsTotal.WithLabelValues(target, algorithm, status).Inc()
}

// RecordModelMetrics publishes the validation metrics of a freshly trained model
func (c *Collector) RecordModelMetrics(target, algorithm string, r2, mae float64) {
	c.ModelValidationR2.WithLabelValues(target, algorithm).Set(r2)
	c.ModelValidationMAE.WithLabelValues(target, algorithm).Set(mae)
}

// RecordPrediction records the outcome of a prediction request
func (c *Collector) RecordPrediction(target, algorithm, status string) {
	c.PredictionsTotal.WithLabelValues(target, algorithm, status).Inc()
}

// RecordDBError records a database error
func (c *Collector) RecordDBError(errorType string) {
	c.DBErrorsTotal.WithLabelValues(errorType).Inc()
}

// UpdateDBConnectionPool updates connection pool gauges
func (c *Collector) UpdateDBConnectionPool(inUse, idle, total int) {
	c.DBConnectionPool.WithLabelValues("in_use").Set(float64(inUse))
	c.DBConnectionPool.WithLabelValues("idle").Set(float64(idle))
	c.DBConnectionPool.WithLabelValues("total").Set(float64(total))
}
