// Package service реализует операции add_data, simulate_data, train_model и predict.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"iot-maintenance/internal/analytics"
	"iot-maintenance/internal/metrics"
	"iot-maintenance/internal/models"
	"iot-maintenance/internal/simulator"
)

// Сообщения ответов
const (
	MsgDataAdded  = "Data added successfully"
	MsgTrained    = "Model trained successfully"
	MsgNoData     = "No data available to train"
	MsgNotTrained = "Model not trained yet"
)

// DefaultMaxCount верхняя граница count для simulate_data по умолчанию
const DefaultMaxCount = 10000

// ErrInvalidCount count для симуляции вне допустимого диапазона
var ErrInvalidCount = errors.New("invalid simulation count")

// RecordStore хранилище показаний
type RecordStore interface {
	simulator.BatchInserter
	analytics.RecordReader
	Insert(ctx context.Context, record models.SensorRecord) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// Service связывает хранилище, симулятор, тренер и предиктор
type Service struct {
	records      RecordStore
	modelStore   analytics.ModelStore
	simulator    *simulator.Simulator
	trainer      *analytics.Trainer
	predictor    *analytics.Predictor
	defaultCount int
	maxCount     int
}

// Option настраивает Service
type Option func(*Service)

// WithSimulator подменяет симулятор (например, с фиксированным seed)
func WithSimulator(sim *simulator.Simulator) Option {
	return func(s *Service) { s.simulator = sim }
}

// WithDefaultCount задает count для simulate_data по умолчанию
func WithDefaultCount(n int) Option {
	return func(s *Service) { s.defaultCount = n }
}

// WithMaxCount ограничивает count одного вызова simulate_data; n <= 0 оставляет DefaultMaxCount
func WithMaxCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxCount = n
		}
	}
}

// New создает сервис
func New(records RecordStore, modelStore analytics.ModelStore, opts ...Option) *Service {
	s := &Service{
		records:      records,
		modelStore:   modelStore,
		simulator:    simulator.NewSimulator(records, nil),
		trainer:      analytics.NewTrainer(records, modelStore),
		predictor:    analytics.NewPredictor(modelStore),
		defaultCount: 10,
		maxCount:     DefaultMaxCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultCount count для simulate_data, если он не передан
func (s *Service) DefaultCount() int {
	return s.defaultCount
}

// AddData сохраняет одно показание с явным статусом
func (s *Service) AddData(ctx context.Context, req models.AddDataRequest) (models.MessageResponse, error) {
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		return models.MessageResponse{}, err
	}

	id, err := s.records.Insert(ctx, models.SensorRecord{
		MachineID:   req.MachineID,
		Temperature: req.Temperature,
		Vibration:   req.Vibration,
		Pressure:    req.Pressure,
		Status:      status,
	})
	if err != nil {
		return models.MessageResponse{}, err
	}

	metrics.RecordsInserted.WithLabelValues("manual").Inc()
	metrics.StoredRecords.Inc()
	slog.Info("record added", "id", id, "machine_id", req.MachineID, "status", status)

	return models.MessageResponse{Message: MsgDataAdded, ID: id}, nil
}

// SimulateData генерирует count синтетических показаний для machineID
func (s *Service) SimulateData(ctx context.Context, machineID string, count int) (models.MessageResponse, error) {
	if count < 0 {
		return models.MessageResponse{}, fmt.Errorf("%w: %d is negative", ErrInvalidCount, count)
	}
	if count > s.maxCount {
		return models.MessageResponse{}, fmt.Errorf("%w: %d exceeds limit %d", ErrInvalidCount, count, s.maxCount)
	}

	n, err := s.simulator.Simulate(ctx, machineID, count)
	if err != nil {
		return models.MessageResponse{}, err
	}

	metrics.RecordsInserted.WithLabelValues("simulated").Add(float64(n))
	metrics.StoredRecords.Add(float64(n))
	slog.Info("records simulated", "machine_id", machineID, "count", n)

	return models.MessageResponse{
		Message: fmt.Sprintf("%d simulated IoT records added for machine %s", n, machineID),
		Count:   n,
	}, nil
}

// TrainModel обучает модель на всех записях.
// Пустое хранилище дает сообщение MsgNoData без ошибки.
func (s *Service) TrainModel(ctx context.Context) (models.MessageResponse, error) {
	start := time.Now()
	model, err := s.trainer.Train(ctx)
	duration := time.Since(start)

	switch {
	case errors.Is(err, analytics.ErrNoData):
		metrics.TrainingRuns.WithLabelValues("no_data").Inc()
		slog.Info("training skipped, no data")
		return models.MessageResponse{Message: MsgNoData}, nil
	case errors.Is(err, analytics.ErrDegenerateTrainingSet):
		metrics.TrainingRuns.WithLabelValues("degenerate").Inc()
		slog.Warn("training rejected", "error", err)
		return models.MessageResponse{}, err
	case err != nil:
		metrics.TrainingRuns.WithLabelValues("error").Inc()
		return models.MessageResponse{}, err
	}

	metrics.TrainingRuns.WithLabelValues("trained").Inc()
	metrics.TrainingDuration.Observe(duration.Seconds())
	metrics.TrainingSamples.Set(float64(model.Samples))
	slog.Info("model trained",
		"samples", model.Samples,
		"iterations", model.Iterations,
		"converged", model.Converged,
		"duration", duration,
	)
	if !model.Converged {
		slog.Warn("training stopped before convergence", "iterations", model.Iterations)
	}

	return models.MessageResponse{Message: MsgTrained, Samples: model.Samples}, nil
}

// Predict классифицирует вектор признаков.
// Без обученной модели возвращает analytics.ErrNotTrained.
func (s *Service) Predict(ctx context.Context, req models.PredictRequest) (models.PredictionResponse, error) {
	p, err := s.predictor.Predict(ctx, req.Temperature, req.Vibration, req.Pressure)
	if err != nil {
		return models.PredictionResponse{}, err
	}

	metrics.Predictions.WithLabelValues(string(p.Status)).Inc()
	slog.Debug("prediction",
		"temperature", req.Temperature,
		"vibration", req.Vibration,
		"pressure", req.Pressure,
		"prediction", p.Status,
	)

	return models.PredictionResponse{Prediction: p.Status, Probability: p.Probability}, nil
}

// Stats сводка по хранилищу и текущей модели
type Stats struct {
	Records      int64      `json:"records"`
	ModelTrained bool       `json:"model_trained"`
	TrainedAt    *time.Time `json:"trained_at,omitempty"`
	Samples      int        `json:"samples,omitempty"`
	Weights      []float64  `json:"weights,omitempty"`
	Bias         float64    `json:"bias,omitempty"`
}

// GetStats возвращает сводку
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	count, err := s.records.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Records: count}

	model, err := s.modelStore.Load(ctx)
	switch {
	case errors.Is(err, analytics.ErrNotTrained):
		return stats, nil
	case err != nil:
		return Stats{}, err
	}

	stats.ModelTrained = true
	stats.Samples = model.Samples
	stats.Weights = model.Weights
	stats.Bias = model.Bias
	if !model.TrainedAt.IsZero() {
		trainedAt := model.TrainedAt
		stats.TrainedAt = &trainedAt
	}
	return stats, nil
}

// RefreshRecordGauge синхронизирует gauge числа записей с хранилищем
func (s *Service) RefreshRecordGauge(ctx context.Context) error {
	count, err := s.records.Count(ctx)
	if err != nil {
		return err
	}
	metrics.StoredRecords.Set(float64(count))
	return nil
}
