package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrNoData в хранилище нет записей для обучения
	ErrNoData = errors.New("no data available to train")
	// ErrNotTrained модель еще не сохранялась
	ErrNotTrained = errors.New("model not trained yet")
)

// ModelStore хранит единственную текущую модель.
// Load возвращает ErrNotTrained, если модели нет.
type ModelStore interface {
	Load(ctx context.Context) (*LogisticModel, error)
	Save(ctx context.Context, model *LogisticModel) error
}

// FileModelStore хранит модель JSON-файлом и заменяет его через rename
type FileModelStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileModelStore создает файловое хранилище модели
func NewFileModelStore(path string) *FileModelStore {
	return &FileModelStore{path: path}
}

// Path путь к файлу модели
func (s *FileModelStore) Path() string {
	return s.path
}

// Load читает модель с диска
func (s *FileModelStore) Load(_ context.Context) (*LogisticModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotTrained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}

	var model LogisticModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return &model, nil
}

// Save пишет модель во временный файл рядом с целевым и атомарно переименовывает.
// При ошибке предыдущая модель остается нетронутой.
func (s *FileModelStore) Save(_ context.Context, model *LogisticModel) error {
	if err := model.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp model file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // после успешного rename файла уже нет

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace model: %w", err)
	}
	return nil
}

// MemoryModelStore держит модель в памяти процесса
type MemoryModelStore struct {
	mu    sync.RWMutex
	model *LogisticModel
}

// NewMemoryModelStore создает пустое хранилище в памяти
func NewMemoryModelStore() *MemoryModelStore {
	return &MemoryModelStore{}
}

// Load возвращает копию текущей модели
func (s *MemoryModelStore) Load(_ context.Context) (*LogisticModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.model == nil {
		return nil, ErrNotTrained
	}
	return cloneModel(s.model), nil
}

// Save заменяет текущую модель
func (s *MemoryModelStore) Save(_ context.Context, model *LogisticModel) error {
	if err := model.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = cloneModel(model)
	return nil
}

func cloneModel(m *LogisticModel) *LogisticModel {
	c := *m
	c.Weights = append([]float64(nil), m.Weights...)
	return &c
}

var (
	_ ModelStore = (*FileModelStore)(nil)
	_ ModelStore = (*MemoryModelStore)(nil)
)
