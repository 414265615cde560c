package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal общее количество запросов
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration продолжительность запросов
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// RecordsInserted сохраненные показания по источнику
	RecordsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensor_records_inserted_total",
			Help: "Total number of sensor records inserted",
		},
		[]string{"source"},
	)

	// StoredRecords текущее число записей в хранилище
	StoredRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sensor_records_stored",
			Help: "Number of sensor records currently stored",
		},
	)

	// TrainingRuns запуски обучения по результату
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_training_runs_total",
			Help: "Total number of model training runs",
		},
		[]string{"result"},
	)

	// TrainingDuration длительность обучения
	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_training_duration_seconds",
			Help:    "Model training duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// TrainingSamples размер выборки последнего успешного обучения
	TrainingSamples = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_training_samples",
			Help: "Number of samples used by the last successful training run",
		},
	)

	// Predictions предсказания по метке
	Predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of predictions",
		},
		[]string{"prediction"},
	)

	// ModelCacheOperations операции с кэшем модели
	ModelCacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_cache_operations_total",
			Help: "Total number of model cache operations",
		},
		[]string{"operation", "status"},
	)
)
