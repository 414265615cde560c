package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"iot-maintenance/internal/models"
)

type fakeReader struct {
	records []models.SensorRecord
	err     error
}

func (f *fakeReader) ReadAll(context.Context) ([]models.SensorRecord, error) {
	return f.records, f.err
}

func clusterRecords(n int) []models.SensorRecord {
	var records []models.SensorRecord
	for i := 0; i < n; i++ {
		records = append(records,
			models.SensorRecord{MachineID: "hot", Temperature: 95, Vibration: 0.01, Pressure: 35, Status: models.StatusFail},
			models.SensorRecord{MachineID: "cool", Temperature: 70, Vibration: 0.01, Pressure: 35, Status: models.StatusOK},
		)
	}
	return records
}

func TestDataset_RowOrder(t *testing.T) {
	records := []models.SensorRecord{
		{Temperature: 1, Vibration: 2, Pressure: 3, Status: models.StatusFail},
		{Temperature: 4, Vibration: 5, Pressure: 6, Status: models.StatusOK},
	}

	x, y := Dataset(records)
	if len(x) != 2 || len(y) != 2 {
		t.Fatalf("unexpected shape: %d rows, %d labels", len(x), len(y))
	}
	if x[0][0] != 1 || x[0][1] != 2 || x[0][2] != 3 || y[0] != 1 {
		t.Errorf("row 0 = %v label %v", x[0], y[0])
	}
	if x[1][0] != 4 || x[1][1] != 5 || x[1][2] != 6 || y[1] != 0 {
		t.Errorf("row 1 = %v label %v", x[1], y[1])
	}
}

func TestTrainer_NoDataLeavesModelUntouched(t *testing.T) {
	store := NewMemoryModelStore()
	ctx := context.Background()
	if err := store.Save(ctx, testModel(-7)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, err := NewTrainer(&fakeReader{}, store).Train(ctx)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Bias != -7 {
		t.Errorf("previous model was replaced: bias %v", loaded.Bias)
	}
}

func TestTrainer_DegenerateLeavesModelUntouched(t *testing.T) {
	store := NewMemoryModelStore()
	ctx := context.Background()

	reader := &fakeReader{records: []models.SensorRecord{
		{Temperature: 70, Vibration: 0.02, Pressure: 30, Status: models.StatusOK},
		{Temperature: 72, Vibration: 0.03, Pressure: 31, Status: models.StatusOK},
	}}

	_, err := NewTrainer(reader, store).Train(ctx)
	if !errors.Is(err, ErrDegenerateTrainingSet) {
		t.Fatalf("expected ErrDegenerateTrainingSet, got %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrNotTrained) {
		t.Errorf("expected no model to be stored, got %v", err)
	}
}

func TestTrainer_StorageErrorPropagates(t *testing.T) {
	storageErr := errors.New("database is locked")

	_, err := NewTrainer(&fakeReader{err: storageErr}, NewMemoryModelStore()).Train(context.Background())
	if !errors.Is(err, storageErr) {
		t.Errorf("expected storage error, got %v", err)
	}
}

func TestTrainer_TrainThenPredict(t *testing.T) {
	store := NewMemoryModelStore()
	ctx := context.Background()

	trainer := NewTrainer(&fakeReader{records: clusterRecords(10)}, store)
	trainedAt := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	trainer.now = func() time.Time { return trainedAt }

	model, err := trainer.Train(ctx)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if model.Samples != 20 {
		t.Errorf("expected 20 samples, got %d", model.Samples)
	}
	if !model.TrainedAt.Equal(trainedAt) {
		t.Errorf("expected trained_at %v, got %v", trainedAt, model.TrainedAt)
	}

	predictor := NewPredictor(store)

	hot, err := predictor.Predict(ctx, 95, 0.01, 35)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if hot.Status != models.StatusFail {
		t.Errorf("expected FAIL for hot cluster, got %s", hot.Status)
	}
	if hot.Probability <= 0.5 {
		t.Errorf("expected probability > 0.5, got %v", hot.Probability)
	}

	cool, err := predictor.Predict(ctx, 70, 0.01, 35)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if cool.Status != models.StatusOK {
		t.Errorf("expected OK for cool cluster, got %s", cool.Status)
	}
}

func TestPredictor_NotTrained(t *testing.T) {
	_, err := NewPredictor(NewMemoryModelStore()).Predict(context.Background(), 80, 0.05, 28)
	if !errors.Is(err, ErrNotTrained) {
		t.Errorf("expected ErrNotTrained, got %v", err)
	}
}

func TestPredictor_SeesRetrainedModel(t *testing.T) {
	store := NewMemoryModelStore()
	ctx := context.Background()
	predictor := NewPredictor(store)

	// модель, которая все считает отказом
	if err := store.Save(ctx, &LogisticModel{Weights: []float64{0, 0, 0}, Bias: 5}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	p, err := predictor.Predict(ctx, 70, 0.01, 35)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if p.Status != models.StatusFail {
		t.Fatalf("expected FAIL from constant model, got %s", p.Status)
	}

	if _, err := NewTrainer(&fakeReader{records: clusterRecords(5)}, store).Train(ctx); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	p, err = predictor.Predict(ctx, 70, 0.01, 35)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if p.Status != models.StatusOK {
		t.Errorf("expected OK after retraining, got %s", p.Status)
	}
}
