package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"iot-maintenance/internal/analytics"
	"iot-maintenance/internal/metrics"
	"iot-maintenance/internal/models"
	"iot-maintenance/internal/service"
)

// Pinger проверка доступности зависимости
type Pinger interface {
	Ping(ctx context.Context) error
}

// Cache кэш модели: доступность и статистика пула
type Cache interface {
	Pinger
	GetStats() map[string]interface{}
}

// errBadRequest ошибка разбора параметров запроса
var errBadRequest = errors.New("bad request")

// Handler обработчик HTTP запросов
type Handler struct {
	svc      *service.Service
	database Pinger
	cache    Cache
}

// NewHandler создает новый обработчик; cache может быть nil
func NewHandler(svc *service.Service, database Pinger, cache Cache) *Handler {
	return &Handler{
		svc:      svc,
		database: database,
		cache:    cache,
	}
}

// Routes собирает роутер
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/add_data", h.AddData)
	r.Get("/simulate_data", h.SimulateData)
	r.Get("/train_model", h.TrainModel)
	r.Get("/predict", h.Predict)
	r.Get("/health", h.HealthCheck)
	r.Get("/stats", h.GetStats)

	// Prometheus metrics endpoint
	r.Handle("/prometheus", promhttp.Handler())

	return r
}

// instrument пишет RequestsTotal и RequestDuration по шаблону маршрута
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		metrics.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
	})
}

// AddData обрабатывает GET /add_data
func (h *Handler) AddData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	machineID, err := requiredString(q.Get("machine_id"), "machine_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	features, err := parseFeatures(q.Get)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.svc.AddData(r.Context(), models.AddDataRequest{
		MachineID:   machineID,
		Temperature: features[0],
		Vibration:   features[1],
		Pressure:    features[2],
		Status:      q.Get("status"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SimulateData обрабатывает GET /simulate_data
func (h *Handler) SimulateData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	machineID, err := requiredString(q.Get("machine_id"), "machine_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	count := h.svc.DefaultCount()
	if raw := q.Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: count must be an integer", errBadRequest))
			return
		}
	}

	resp, err := h.svc.SimulateData(r.Context(), machineID, count)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// TrainModel обрабатывает GET /train_model
func (h *Handler) TrainModel(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.TrainModel(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Predict обрабатывает GET /predict
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	features, err := parseFeatures(r.URL.Query().Get)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.svc.Predict(r.Context(), models.PredictRequest{
		Temperature: features[0],
		Vibration:   features[1],
		Pressure:    features[2],
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck обрабатывает GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	dbOK := h.database.Ping(r.Context()) == nil

	body := map[string]interface{}{
		"database":  dbOK,
		"timestamp": time.Now(),
	}
	healthy := dbOK
	if h.cache != nil {
		redisOK := h.cache.Ping(r.Context()) == nil
		body["redis"] = redisOK
		healthy = healthy && redisOK
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}
	body["status"] = status

	writeJSON(w, httpStatus, body)
}

// GetStats обрабатывает GET /stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	body := map[string]interface{}{
		"store":     stats,
		"timestamp": time.Now(),
	}
	if h.cache != nil {
		body["redis"] = h.cache.GetStats()
	}
	writeJSON(w, http.StatusOK, body)
}

// writeError переводит ошибки сервиса в HTTP ответы
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, analytics.ErrNotTrained):
		// штатный результат, а не сбой
		writeJSON(w, http.StatusOK, models.ErrorResponse{Error: service.MsgNotTrained})
	case errors.Is(err, errBadRequest),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidCount):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, analytics.ErrDegenerateTrainingSet):
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// requiredString отклоняет пустое значение, само значение не меняет
func requiredString(value, name string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s is required", errBadRequest, name)
	}
	return value, nil
}

// parseFeatures читает temperature, vibration, pressure
func parseFeatures(get func(string) string) ([3]float64, error) {
	var out [3]float64
	for i, name := range []string{"temperature", "vibration", "pressure"} {
		raw := get(name)
		if raw == "" {
			return out, fmt.Errorf("%w: %s is required", errBadRequest, name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return out, fmt.Errorf("%w: %s must be a finite number", errBadRequest, name)
		}
		out[i] = v
	}
	return out, nil
}
