// Package storage хранит показания датчиков в SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"iot-maintenance/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS iot_machine_data (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	machine_id TEXT NOT NULL,
	temperature REAL NOT NULL,
	vibration REAL NOT NULL,
	pressure REAL NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('OK', 'FAIL'))
);
`

const insertSQL = "INSERT INTO iot_machine_data (machine_id, temperature, vibration, pressure, status) VALUES (?, ?, ?, ?, ?)"

// RecordStore append-only хранилище SensorRecord
type RecordStore struct {
	db *sql.DB
}

// Open открывает (и при необходимости создает) файл базы данных
func Open(path string) (*RecordStore, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite пишет одним соединением; для :memory: это еще и одна база
	db.SetMaxOpenConns(1)

	store, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New оборачивает готовое соединение и создает схему
func New(db *sql.DB) (*RecordStore, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &RecordStore{db: db}, nil
}

// Insert сохраняет запись и возвращает присвоенный id
func (s *RecordStore) Insert(ctx context.Context, record models.SensorRecord) (int64, error) {
	result, err := s.db.ExecContext(ctx, insertSQL,
		record.MachineID, record.Temperature, record.Vibration, record.Pressure, string(record.Status),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

// InsertBatch сохраняет записи одной транзакцией в порядке среза
func (s *RecordStore) InsertBatch(ctx context.Context, records []models.SensorRecord) ([]int64, error) {
	if len(records) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(records))
	for _, record := range records {
		result, err := stmt.ExecContext(ctx,
			record.MachineID, record.Temperature, record.Vibration, record.Pressure, string(record.Status),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert record: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read inserted id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit batch: %w", err)
	}
	return ids, nil
}

// ReadAll возвращает все записи по возрастанию id
func (s *RecordStore) ReadAll(ctx context.Context) ([]models.SensorRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, machine_id, temperature, vibration, pressure, status FROM iot_machine_data ORDER BY id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	defer rows.Close()

	var records []models.SensorRecord
	for rows.Next() {
		var (
			record models.SensorRecord
			status string
		)
		if err := rows.Scan(&record.ID, &record.MachineID, &record.Temperature,
			&record.Vibration, &record.Pressure, &status); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		record.Status = models.Status(status)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// Count возвращает количество сохраненных записей
func (s *RecordStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM iot_machine_data").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// Ping проверяет доступность базы
func (s *RecordStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close закрывает соединение
func (s *RecordStore) Close() error {
	return s.db.Close()
}
