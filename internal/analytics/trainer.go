package analytics

import (
	"context"
	"fmt"
	"time"

	"iot-maintenance/internal/models"
)

// RecordReader источник обучающих записей
type RecordReader interface {
	ReadAll(ctx context.Context) ([]models.SensorRecord, error)
}

// Trainer обучает модель на всех сохраненных записях
type Trainer struct {
	records RecordReader
	store   ModelStore
	opts    FitOptions
	now     func() time.Time
}

// NewTrainer создает тренер с настройками обучения по умолчанию
func NewTrainer(records RecordReader, store ModelStore) *Trainer {
	return &Trainer{
		records: records,
		store:   store,
		opts:    DefaultFitOptions(),
		now:     time.Now,
	}
}

// WithFitOptions переопределяет параметры обучения
func (t *Trainer) WithFitOptions(opts FitOptions) *Trainer {
	t.opts = opts
	return t
}

// Train читает записи, обучает модель и сохраняет ее.
// ErrNoData и ErrDegenerateTrainingSet оставляют прежнюю модель без изменений.
func (t *Trainer) Train(ctx context.Context) (*LogisticModel, error) {
	records, err := t.records.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}

	features, labels := Dataset(records)

	model, err := Fit(features, labels, t.opts)
	if err != nil {
		return nil, err
	}
	model.TrainedAt = t.now().UTC()

	if err := t.store.Save(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to persist model: %w", err)
	}
	return model, nil
}

// Dataset строит матрицу признаков и вектор меток в порядке записей
func Dataset(records []models.SensorRecord) ([][]float64, []float64) {
	features := make([][]float64, len(records))
	labels := make([]float64, len(records))
	for i, r := range records {
		features[i] = r.Features()
		labels[i] = r.Status.Label()
	}
	return features, labels
}
