package simulator

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"iot-maintenance/internal/models"
)

// Диапазоны генерации и пороги отказа
const (
	MinTemperature = 60.0
	MaxTemperature = 100.0
	MinVibration   = 0.01
	MaxVibration   = 0.1
	MinPressure    = 25.0
	MaxPressure    = 40.0

	FailTemperature = 90.0
	FailVibration   = 0.08
	FailPressure    = 28.0
)

// Label вычисляет эталонный статус по признакам.
// Границы порогов дают OK.
func Label(temperature, vibration, pressure float64) models.Status {
	if temperature > FailTemperature || vibration > FailVibration || pressure < FailPressure {
		return models.StatusFail
	}
	return models.StatusOK
}

// BatchInserter принимает пачку записей
type BatchInserter interface {
	InsertBatch(ctx context.Context, records []models.SensorRecord) ([]int64, error)
}

// Simulator генератор синтетических показаний.
// Безопасен для конкурентных вызовов: доступ к rng под мьютексом.
type Simulator struct {
	store BatchInserter

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator создает симулятор; rng == nil означает случайный seed
func NewSimulator(store BatchInserter, rng *rand.Rand) *Simulator {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Simulator{store: store, rng: rng}
}

// Generate создает count записей без сохранения
func (s *Simulator) Generate(machineID string, count int) []models.SensorRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]models.SensorRecord, 0, count)
	for i := 0; i < count; i++ {
		temperature := s.uniform(MinTemperature, MaxTemperature)
		vibration := s.uniform(MinVibration, MaxVibration)
		pressure := s.uniform(MinPressure, MaxPressure)

		records = append(records, models.SensorRecord{
			MachineID:   machineID,
			Temperature: temperature,
			Vibration:   vibration,
			Pressure:    pressure,
			Status:      Label(temperature, vibration, pressure),
		})
	}
	return records
}

// Simulate генерирует count записей и сохраняет их одной транзакцией
func (s *Simulator) Simulate(ctx context.Context, machineID string, count int) (int, error) {
	records := s.Generate(machineID, count)
	ids, err := s.store.InsertBatch(ctx, records)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// uniform вызывается под s.mu
func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}
