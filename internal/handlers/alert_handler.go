package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/playbook/internal/common"
	"github.com/ternarybob/playbook/internal/interfaces"
	"github.com/ternarybob/playbook/internal/models"
	"github.com/ternarybob/playbook/internal/services/triggers"
)

// AlertHandler exposes fired alerts and alert enablement for cards.
type AlertHandler struct {
	triggers interfaces.TriggerStorage
	cards    interfaces.CardStorage
	engine   *triggers.Engine
	logger   arbor.ILogger
}

func NewAlertHandler(store interfaces.TriggerStorage, cards interfaces.CardStorage, engine *triggers.Engine) *AlertHandler {
	return &AlertHandler{
		triggers: store,
		cards:    cards,
		engine:   engine,
		logger:   common.GetLogger(),
	}
}

// ListAlertsHandler handles GET /api/alerts, newest first.
func (h *AlertHandler) ListAlertsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	limit := GetIntParam(r, "limit", 50)

	alerts, err := h.triggers.ListAlerts(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list alerts")
		WriteError(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

type enableAlertsRequest struct {
	CardID   string   `json:"card_id"`
	Channels []string `json:"channels"`
}

// EnableAlertsHandler handles POST /api/alerts/enable. The card's triggers are
// armed at creation time; this confirms the card exists and reports how many
// rules are watching it.
func (h *AlertHandler) EnableAlertsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req enableAlertsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.CardID == "" {
		WriteError(w, http.StatusBadRequest, "card_id is required")
		return
	}
	if len(req.Channels) == 0 {
		req.Channels = []string{"ui"}
	}

	if _, err := h.cards.Get(r.Context(), req.CardID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Card not found: "+req.CardID)
			return
		}
		h.logger.Error().Err(err).Str("card_id", req.CardID).Msg("Failed to get card")
		WriteError(w, http.StatusInternalServerError, "Failed to get card")
		return
	}

	rules, err := h.triggers.ListRulesByCard(r.Context(), req.CardID)
	if err != nil {
		h.logger.Error().Err(err).Str("card_id", req.CardID).Msg("Failed to list trigger rules")
		WriteError(w, http.StatusInternalServerError, "Failed to list trigger rules")
		return
	}

	active := 0
	for _, rule := range rules {
		if rule.Status == models.TriggerStatusActive {
			active++
		}
	}

	h.logger.Info().
		Str("card_id", req.CardID).
		Int("active_triggers", active).
		Msg("Alerts enabled for card")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "Alerts enabled for card " + req.CardID,
		"channels":        req.Channels,
		"active_triggers": active,
	})
}

type eventPlaceholderRequest struct {
	CardID    string `json:"card_id"`
	EventType string `json:"event_type"`
}

// EventPlaceholderHandler handles POST /api/event/placeholder. It manually
// fires event triggers on a card, for policy, rating or margin events that
// have no market data signal.
func (h *AlertHandler) EventPlaceholderHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req eventPlaceholderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.CardID == "" || req.EventType == "" {
		WriteError(w, http.StatusBadRequest, "card_id and event_type are required")
		return
	}

	alerts, err := h.engine.FireEvent(r.Context(), req.CardID, req.EventType)
	if err != nil {
		h.logger.Error().Err(err).Str("card_id", req.CardID).Msg("Failed to fire event trigger")
		WriteError(w, http.StatusInternalServerError, "Failed to fire event trigger")
		return
	}

	h.logger.Info().
		Str("card_id", req.CardID).
		Str("event_type", req.EventType).
		Int("fired", len(alerts)).
		Msg("Event placeholder processed")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":    fmt.Sprintf("Triggered %d event(s)", len(alerts)),
		"event_type": req.EventType,
		"card_id":    req.CardID,
	})
}
