package analytics

import (
	"context"

	"iot-maintenance/internal/models"
)

// Prediction результат классификации одного вектора
type Prediction struct {
	Status      models.Status
	Probability float64
}

// Predictor загружает модель на каждый вызов и классифицирует вектор признаков
type Predictor struct {
	store ModelStore
}

// NewPredictor создает предиктор поверх хранилища модели
func NewPredictor(store ModelStore) *Predictor {
	return &Predictor{store: store}
}

// Predict возвращает ErrNotTrained, если модель еще не обучена
func (p *Predictor) Predict(ctx context.Context, temperature, vibration, pressure float64) (Prediction, error) {
	model, err := p.store.Load(ctx)
	if err != nil {
		return Prediction{}, err
	}

	x := []float64{temperature, vibration, pressure}
	return Prediction{
		Status:      model.Predict(x),
		Probability: model.Probability(x),
	}, nil
}
