package models

import (
	"errors"
	"fmt"
	"strings"
)

// Status метка состояния машины
type Status string

const (
	StatusOK   Status = "OK"
	StatusFail Status = "FAIL"
)

// ErrInvalidStatus статус не входит в {OK, FAIL}
var ErrInvalidStatus = errors.New("status must be OK or FAIL")

// ParseStatus приводит строку к Status без учета регистра
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(StatusOK):
		return StatusOK, nil
	case string(StatusFail):
		return StatusFail, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidStatus, s)
	}
}

// Label возвращает 1 для FAIL и 0 для OK
func (s Status) Label() float64 {
	if s == StatusFail {
		return 1
	}
	return 0
}

// SensorRecord показание датчиков одной машины
type SensorRecord struct {
	ID          int64   `json:"id"`
	MachineID   string  `json:"machine_id"`
	Temperature float64 `json:"temperature"`
	Vibration   float64 `json:"vibration"`
	Pressure    float64 `json:"pressure"`
	Status      Status  `json:"status"`
}

// Features вектор признаков (temperature, vibration, pressure)
func (r SensorRecord) Features() []float64 {
	return []float64{r.Temperature, r.Vibration, r.Pressure}
}

// AddDataRequest входные данные add_data
type AddDataRequest struct {
	MachineID   string
	Temperature float64
	Vibration   float64
	Pressure    float64
	Status      string
}

// PredictRequest входные данные predict
type PredictRequest struct {
	Temperature float64
	Vibration   float64
	Pressure    float64
}

// MessageResponse ответ с сообщением
type MessageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
	Count   int    `json:"count,omitempty"`
	Samples int    `json:"samples,omitempty"`
}

// PredictionResponse результат предсказания
type PredictionResponse struct {
	Prediction  Status  `json:"prediction"`
	Probability float64 `json:"probability"`
}

// ErrorResponse ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}
