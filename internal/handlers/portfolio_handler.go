package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/playbook/internal/common"
	"github.com/ternarybob/playbook/internal/interfaces"
	"github.com/ternarybob/playbook/internal/services/portfolio"
)

// PortfolioHandler exposes the paper portfolio.
type PortfolioHandler struct {
	service  *portfolio.Service
	validate *validator.Validate
	logger   arbor.ILogger
}

func NewPortfolioHandler(service *portfolio.Service) *PortfolioHandler {
	return &PortfolioHandler{
		service:  service,
		validate: validator.New(),
		logger:   common.GetLogger(),
	}
}

// ListHandler handles GET /api/portfolio. Open positions are marked at the
// latest quote; pass include_closed=true for closed positions as well.
func (h *PortfolioHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	includeClosed := r.URL.Query().Get("include_closed") == "true"

	positions, err := h.service.ListPositions(r.Context(), includeClosed)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list positions")
		WriteError(w, http.StatusInternalServerError, "Failed to list positions")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"positions": positions,
		"count":     len(positions),
	})
}

// StatsHandler handles GET /api/portfolio/stats
func (h *PortfolioHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to compute portfolio stats")
		WriteError(w, http.StatusInternalServerError, "Failed to compute portfolio stats")
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

type openPositionRequest struct {
	Symbol  string  `json:"symbol" validate:"required"`
	EntryPx float64 `json:"entry_px" validate:"required,gt=0"`
	Qty     float64 `json:"qty" validate:"required,gt=0"`
	CardID  string  `json:"card_id"`
}

// OpenPositionHandler handles POST /api/portfolio/positions
func (h *PortfolioHandler) OpenPositionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req openPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	pos, err := h.service.OpenPosition(r.Context(),
		strings.ToUpper(req.Symbol),
		decimal.NewFromFloat(req.EntryPx),
		decimal.NewFromFloat(req.Qty),
		req.CardID)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, pos)
}

type closePositionRequest struct {
	ExitPx float64 `json:"exit_px" validate:"required,gt=0"`
}

// PositionRoutesHandler dispatches /api/portfolio/positions/{id}/close.
func (h *PortfolioHandler) PositionRoutesHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/portfolio/positions/")

	positionID, ok := strings.CutSuffix(rest, "/close")
	if !ok || positionID == "" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	if !RequireMethod(w, r, "PUT") {
		return
	}

	var req closePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	pos, err := h.service.ClosePosition(r.Context(), positionID, decimal.NewFromFloat(req.ExitPx))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Position not found: "+positionID)
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, pos)
}
