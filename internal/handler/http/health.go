package http

import (
	"net/http"

	"go.uber.org/zap"
)

// HealthHandler обработчик liveness probe
type HealthHandler struct {
	log *zap.Logger
}

// NewHealthHandler создает новый health handler
func NewHealthHandler(log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		log: log,
	}
}

// AppHealth всегда отвечает 200 "OK"
func (h *HealthHandler) AppHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		h.log.Error("failed to write health response", zap.Error(err))
		return
	}
	h.log.Debug("/apphealth - app health check successful")
}
