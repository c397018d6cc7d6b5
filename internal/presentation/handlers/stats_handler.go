package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/moonwatch/memetracker/internal/application/services"
	"github.com/moonwatch/memetracker/internal/domain"
)

// StatsHandler handles HTTP requests for tracker statistics
type StatsHandler struct {
	service *services.StatsService
	logger  *zap.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service *services.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  logger,
	}
}

// GetStats handles GET /stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.GetStats(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		message := "Internal Server Error"
		switch {
		case errors.Is(err, domain.ErrNotConfigured):
			message = "Server configuration error"
		case errors.Is(err, domain.ErrStoreQuery):
			message = "Database query failed"
		}
		h.logger.Error("Failed to get stats", zap.Error(err))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
