package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/playbook/internal/common"
	"github.com/ternarybob/playbook/internal/interfaces"
	"github.com/ternarybob/playbook/internal/models"
	"github.com/ternarybob/playbook/internal/services/discovery"
)

// CardHandler manages playbook card CRUD plus similar-logic discovery.
// Saving a card also registers its instruments in the catalog and arms its
// entry triggers and invalidators as active rules.
type CardHandler struct {
	cards       interfaces.CardStorage
	instruments interfaces.InstrumentStorage
	triggers    interfaces.TriggerStorage
	discovery   *discovery.Engine
	validate    *validator.Validate
	logger      arbor.ILogger
}

func NewCardHandler(cards interfaces.CardStorage, instruments interfaces.InstrumentStorage, triggers interfaces.TriggerStorage, discoveryEngine *discovery.Engine) *CardHandler {
	return &CardHandler{
		cards:       cards,
		instruments: instruments,
		triggers:    triggers,
		discovery:   discoveryEngine,
		validate:    validator.New(),
		logger:      common.GetLogger(),
	}
}

// CardsHandler handles /api/cards: GET lists cards, POST creates one.
func (h *CardHandler) CardsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.listCards(w, r)
	case "POST":
		h.createCard(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// CardRoutesHandler dispatches /api/cards/{id} and /api/cards/{id}/similar.
func (h *CardHandler) CardRoutesHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/cards/")
	if rest == "" {
		WriteError(w, http.StatusBadRequest, "Card ID is required")
		return
	}

	if cardID, ok := strings.CutSuffix(rest, "/similar"); ok {
		h.similarCards(w, r, cardID)
		return
	}

	if strings.Contains(rest, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case "GET":
		h.getCard(w, r, rest)
	case "PUT":
		h.updateCard(w, r, rest)
	case "DELETE":
		h.deleteCard(w, r, rest)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CardHandler) listCards(w http.ResponseWriter, r *http.Request) {
	limit, offset := GetListParams(r)

	cards, err := h.cards.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list cards")
		WriteError(w, http.StatusInternalServerError, "Failed to list cards")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"cards":  cards,
		"count":  len(cards),
		"limit":  limit,
		"offset": offset,
	})
}

func (h *CardHandler) createCard(w http.ResponseWriter, r *http.Request) {
	var card models.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if card.ID == "" {
		card.ID = common.NewCardID(time.Now().UTC(), 1)
	}
	if card.AsOf.IsZero() {
		card.AsOf = time.Now().UTC()
	}

	if err := h.validate.Struct(card); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	now := time.Now().UTC()
	card.CreatedAt = now
	card.UpdatedAt = now

	if err := h.cards.Save(r.Context(), &card); err != nil {
		h.logger.Error().Err(err).Str("card_id", card.ID).Msg("Failed to save card")
		WriteError(w, http.StatusInternalServerError, "Failed to save card")
		return
	}

	h.registerInstruments(r.Context(), &card)
	armed := h.armTriggers(r.Context(), &card)

	h.logger.Info().
		Str("card_id", card.ID).
		Int("triggers_armed", armed).
		Msg("Card created")

	WriteJSON(w, http.StatusCreated, card)
}

// registerInstruments makes every instrument referenced by the card known to
// the catalog, so trigger evaluation and discovery can find it.
func (h *CardHandler) registerInstruments(ctx context.Context, card *models.Card) {
	for _, ref := range card.Instruments {
		_, err := h.instruments.GetBySymbol(ctx, ref.Symbol)
		if err == nil {
			continue
		}
		if !errors.Is(err, interfaces.ErrNotFound) {
			h.logger.Warn().Err(err).Str("symbol", ref.Symbol).Msg("Instrument lookup failed")
			continue
		}

		inst := &models.Instrument{
			ID:            ref.Symbol + ":" + ref.Venue,
			Symbol:        ref.Symbol,
			Venue:         ref.Venue,
			AssetClass:    "equity",
			DisplayNameEN: ref.DisplayNameEN,
			DisplayNameCN: ref.DisplayNameCN,
		}
		if inst.DisplayNameEN == "" {
			inst.DisplayNameEN = ref.Symbol
		}
		if err := h.instruments.Save(ctx, inst); err != nil {
			h.logger.Warn().Err(err).Str("symbol", ref.Symbol).Msg("Failed to register instrument")
		}
	}
}

func (h *CardHandler) armTriggers(ctx context.Context, card *models.Card) int {
	armed := 0
	exprs := make([]models.TriggerExpr, 0, len(card.EntryTriggers)+len(card.Invalidators))
	exprs = append(exprs, card.EntryTriggers...)
	exprs = append(exprs, card.Invalidators...)

	for _, expr := range exprs {
		rule := &models.TriggerRule{
			ID:        common.NewTriggerID(),
			CardID:    card.ID,
			Expr:      expr,
			Status:    models.TriggerStatusActive,
			CreatedAt: time.Now().UTC(),
		}
		if err := h.triggers.SaveRule(ctx, rule); err != nil {
			h.logger.Warn().Err(err).Str("card_id", card.ID).Str("kind", expr.Kind).Msg("Failed to arm trigger")
			continue
		}
		armed++
	}
	return armed
}

func (h *CardHandler) getCard(w http.ResponseWriter, r *http.Request, cardID string) {
	card, err := h.cards.Get(r.Context(), cardID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Card not found: "+cardID)
			return
		}
		h.logger.Error().Err(err).Str("card_id", cardID).Msg("Failed to get card")
		WriteError(w, http.StatusInternalServerError, "Failed to get card")
		return
	}

	WriteJSON(w, http.StatusOK, card)
}

func (h *CardHandler) updateCard(w http.ResponseWriter, r *http.Request, cardID string) {
	existing, err := h.cards.Get(r.Context(), cardID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Card not found: "+cardID)
			return
		}
		h.logger.Error().Err(err).Str("card_id", cardID).Msg("Failed to get card")
		WriteError(w, http.StatusInternalServerError, "Failed to get card")
		return
	}

	var card models.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	card.ID = cardID
	card.CreatedAt = existing.CreatedAt
	card.UpdatedAt = time.Now().UTC()

	if err := h.validate.Struct(card); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if err := h.cards.Update(r.Context(), &card); err != nil {
		h.logger.Error().Err(err).Str("card_id", cardID).Msg("Failed to update card")
		WriteError(w, http.StatusInternalServerError, "Failed to update card")
		return
	}

	WriteJSON(w, http.StatusOK, card)
}

func (h *CardHandler) deleteCard(w http.ResponseWriter, r *http.Request, cardID string) {
	if err := h.cards.Delete(r.Context(), cardID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Card not found: "+cardID)
			return
		}
		h.logger.Error().Err(err).Str("card_id", cardID).Msg("Failed to delete card")
		WriteError(w, http.StatusInternalServerError, "Failed to delete card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CardHandler) similarCards(w http.ResponseWriter, r *http.Request, cardID string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	topK := GetIntParam(r, "top_k", discovery.DefaultTopK)
	minScore := GetFloatParam(r, "min_score", discovery.DefaultMinScore)

	candidates, err := h.discovery.FindSimilar(r.Context(), cardID, topK, minScore)
	if err != nil {
		h.logger.Error().Err(err).Str("card_id", cardID).Msg("Similarity search failed")
		WriteError(w, http.StatusInternalServerError, "Similarity search failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"card_id":    cardID,
		"candidates": candidates,
		"count":      len(candidates),
	})
}
