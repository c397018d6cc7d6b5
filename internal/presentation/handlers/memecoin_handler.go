package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/moonwatch/memetracker/internal/application/services"
	"github.com/moonwatch/memetracker/internal/domain"
)

// MemecoinHandler handles HTTP requests for the ranked listing
type MemecoinHandler struct {
	service *services.MemecoinService
	logger  *zap.Logger
}

// NewMemecoinHandler creates a new memecoin handler
func NewMemecoinHandler(service *services.MemecoinService, logger *zap.Logger) *MemecoinHandler {
	return &MemecoinHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the memecoin routes
func (h *MemecoinHandler) RegisterRoutes(r chi.Router) {
	r.Get("/memecoins", h.GetPage)
	r.Get("/memecoins/count", h.GetCount)
	r.Post("/memecoins/{id}/mentions", h.TrackMention)
	r.Post("/memecoins/{id}/views", h.TrackView)
}

// GetPage handles GET /memecoins?start=<int>
func (h *MemecoinHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// A non-numeric or negative start falls back to the first window
	start := 0
	if v := r.URL.Query().Get("start"); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s >= 0 {
			start = s
		}
	}

	memecoins, err := h.service.GetPage(ctx, start)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, memecoins)
}

// GetCount handles GET /memecoins/count
func (h *MemecoinHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := h.service.GetCount(ctx)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, services.CountResponse{Count: count})
}

// TrackMention handles POST /memecoins/{id}/mentions
func (h *MemecoinHandler) TrackMention(w http.ResponseWriter, r *http.Request) {
	h.trackCounter(w, r, h.service.TrackMention)
}

// TrackView handles POST /memecoins/{id}/views
func (h *MemecoinHandler) TrackView(w http.ResponseWriter, r *http.Request) {
	h.trackCounter(w, r, h.service.TrackView)
}

func (h *MemecoinHandler) trackCounter(
	w http.ResponseWriter,
	r *http.Request,
	track func(ctx context.Context, tokenID int64) error,
) {
	tokenID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid token id", "")
		return
	}

	if err := track(r.Context(), tokenID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Token not found", "")
			return
		}
		h.respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MemecoinHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *MemecoinHandler) respondError(w http.ResponseWriter, status int, message, details string) {
	body := map[string]string{"error": message}
	if details != "" {
		body["details"] = details
	}
	h.respondJSON(w, status, body)
}

// respondServiceError maps service failures to the structured error
// contract. Configuration problems leak no detail; query failures carry
// the underlying message.
func (h *MemecoinHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		h.logger.Error("Store not configured")
		h.respondError(w, http.StatusInternalServerError, "Server configuration error", "")
	case errors.Is(err, domain.ErrStoreQuery):
		h.logger.Error("Store query failed", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Database query failed", err.Error())
	default:
		h.logger.Error("Unexpected error", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}
