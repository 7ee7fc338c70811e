package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/playbook/internal/interfaces"
	"github.com/ternarybob/playbook/internal/models"
	"github.com/ternarybob/playbook/internal/services/discovery"
	"github.com/ternarybob/playbook/internal/services/portfolio"
	"github.com/ternarybob/playbook/internal/services/triggers"
)

type fakeCardStore struct {
	cards map[string]models.Card
}

func newFakeCardStore() *fakeCardStore {
	return &fakeCardStore{cards: make(map[string]models.Card)}
}

func (f *fakeCardStore) Get(ctx context.Context, id string) (*models.Card, error) {
	card, ok := f.cards[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &card, nil
}

func (f *fakeCardStore) List(ctx context.Context, limit, offset int) ([]models.Card, error) {
	out := make([]models.Card, 0, len(f.cards))
	for _, card := range f.cards {
		out = append(out, card)
	}
	return out, nil
}

func (f *fakeCardStore) Save(ctx context.Context, card *models.Card) error {
	f.cards[card.ID] = *card
	return nil
}

func (f *fakeCardStore) Update(ctx context.Context, card *models.Card) error {
	if _, ok := f.cards[card.ID]; !ok {
		return interfaces.ErrNotFound
	}
	f.cards[card.ID] = *card
	return nil
}

func (f *fakeCardStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.cards[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(f.cards, id)
	return nil
}

type fakeInstrumentStore struct {
	bySymbol map[string]models.Instrument
}

func newFakeInstrumentStore(instruments ...models.Instrument) *fakeInstrumentStore {
	f := &fakeInstrumentStore{bySymbol: make(map[string]models.Instrument)}
	for _, inst := range instruments {
		f.bySymbol[inst.Symbol] = inst
	}
	return f
}

func (f *fakeInstrumentStore) Get(ctx context.Context, id string) (*models.Instrument, error) {
	for _, inst := range f.bySymbol {
		if inst.ID == id {
			return &inst, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakeInstrumentStore) GetBySymbol(ctx context.Context, symbol string) (*models.Instrument, error) {
	inst, ok := f.bySymbol[symbol]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &inst, nil
}

func (f *fakeInstrumentStore) List(ctx context.Context) ([]models.Instrument, error) {
	out := make([]models.Instrument, 0, len(f.bySymbol))
	for _, inst := range f.bySymbol {
		out = append(out, inst)
	}
	return out, nil
}

func (f *fakeInstrumentStore) ListByAssetClass(ctx context.Context, assetClasses []string, exclude map[string]bool, limit int) ([]models.Instrument, error) {
	classes := make(map[string]bool)
	for _, class := range assetClasses {
		classes[class] = true
	}
	var out []models.Instrument
	for _, inst := range f.bySymbol {
		if classes[inst.AssetClass] && !exclude[inst.Symbol] {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (f *fakeInstrumentStore) Save(ctx context.Context, inst *models.Instrument) error {
	f.bySymbol[inst.Symbol] = *inst
	return nil
}

type fakeTriggerStore struct {
	rules  map[string]models.TriggerRule
	alerts []models.AlertEvent
}

func newFakeTriggerStore() *fakeTriggerStore {
	return &fakeTriggerStore{rules: make(map[string]models.TriggerRule)}
}

func (f *fakeTriggerStore) SaveRule(ctx context.Context, rule *models.TriggerRule) error {
	f.rules[rule.ID] = *rule
	return nil
}

func (f *fakeTriggerStore) GetRule(ctx context.Context, id string) (*models.TriggerRule, error) {
	rule, ok := f.rules[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &rule, nil
}

func (f *fakeTriggerStore) ListActiveRules(ctx context.Context) ([]models.TriggerRule, error) {
	var out []models.TriggerRule
	for _, rule := range f.rules {
		if rule.Status == models.TriggerStatusActive {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (f *fakeTriggerStore) ListRulesByCard(ctx context.Context, cardID string) ([]models.TriggerRule, error) {
	var out []models.TriggerRule
	for _, rule := range f.rules {
		if rule.CardID == cardID {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (f *fakeTriggerStore) UpdateRule(ctx context.Context, rule *models.TriggerRule) error {
	f.rules[rule.ID] = *rule
	return nil
}

func (f *fakeTriggerStore) SaveAlert(ctx context.Context, alert *models.AlertEvent) error {
	f.alerts = append(f.alerts, *alert)
	return nil
}

func (f *fakeTriggerStore) ListAlerts(ctx context.Context, limit int) ([]models.AlertEvent, error) {
	if limit > 0 && limit < len(f.alerts) {
		return f.alerts[:limit], nil
	}
	return f.alerts, nil
}

func testCard(id string) models.Card {
	return models.Card{
		ID:        id,
		AsOf:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		SummaryEN: "Watch MP based on relevant catalysts and market opportunities",
		Direction: "long",
		Horizon:   "3m",
		Instruments: []models.InstrumentRef{
			{Symbol: "MP", Venue: "NYSE", Role: "primary", DisplayNameEN: "MP Materials Corp"},
		},
		EntryTriggers: []models.TriggerExpr{
			{Kind: models.TriggerPriceLevel, Symbol: "MP", Op: ">=", Level: 10.0},
		},
		Invalidators: []models.TriggerExpr{
			{Kind: models.TriggerTimeStop, Days: 45},
		},
		Confidence: 0.75,
	}
}

func newCardHandler(cards *fakeCardStore, instruments *fakeInstrumentStore, triggers *fakeTriggerStore) *CardHandler {
	return NewCardHandler(cards, instruments, triggers, discovery.NewEngine(cards, instruments))
}

func TestCardsHandler_CreateArmsTriggersAndRegistersInstruments(t *testing.T) {
	cards := newFakeCardStore()
	instruments := newFakeInstrumentStore()
	triggers := newFakeTriggerStore()
	handler := newCardHandler(cards, instruments, triggers)

	body, err := json.Marshal(testCard("card_20260301_001"))
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/cards", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.CardsHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	saved, err := cards.Get(context.Background(), "card_20260301_001")
	require.NoError(t, err)
	assert.Equal(t, "long", saved.Direction)
	assert.False(t, saved.CreatedAt.IsZero())

	rules, err := triggers.ListRulesByCard(context.Background(), "card_20260301_001")
	require.NoError(t, err)
	require.Len(t, rules, 2, "entry trigger and invalidator both armed")
	for _, rule := range rules {
		assert.Equal(t, models.TriggerStatusActive, rule.Status)
	}

	inst, err := instruments.GetBySymbol(context.Background(), "MP")
	require.NoError(t, err)
	assert.Equal(t, "MP:NYSE", inst.ID)
}

func TestCardsHandler_CreateRejectsInvalidCard(t *testing.T) {
	handler := newCardHandler(newFakeCardStore(), newFakeInstrumentStore(), newFakeTriggerStore())

	card := testCard("card_20260301_001")
	card.Instruments = nil

	body, err := json.Marshal(card)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/cards", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.CardsHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCardRoutes_GetUpdateDelete(t *testing.T) {
	cards := newFakeCardStore()
	handler := newCardHandler(cards, newFakeInstrumentStore(), newFakeTriggerStore())

	card := testCard("card_20260301_001")
	require.NoError(t, cards.Save(context.Background(), &card))

	req := httptest.NewRequest("GET", "/api/cards/card_20260301_001", nil)
	rec := httptest.NewRecorder()
	handler.CardRoutesHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Card
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, card.ID, got.ID)

	card.Direction = "short"
	body, err := json.Marshal(card)
	require.NoError(t, err)
	req = httptest.NewRequest("PUT", "/api/cards/card_20260301_001", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	handler.CardRoutesHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated, err := cards.Get(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Equal(t, "short", updated.Direction)

	req = httptest.NewRequest("DELETE", "/api/cards/card_20260301_001", nil)
	rec = httptest.NewRecorder()
	handler.CardRoutesHandler(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest("GET", "/api/cards/card_20260301_001", nil)
	rec = httptest.NewRecorder()
	handler.CardRoutesHandler(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCardRoutes_SimilarReturnsCandidates(t *testing.T) {
	cards := newFakeCardStore()
	instruments := newFakeInstrumentStore(
		models.Instrument{
			ID: "MP:NYSE", Symbol: "MP", Venue: "NYSE", AssetClass: "equity",
			DisplayNameEN: "MP Materials Corp",
			Meta:          models.InstrumentMeta{Themes: []string{"rare_earths"}, Catalysts: []string{"export_controls"}, Geo: "US"},
		},
		models.Instrument{
			ID: "LYC:ASX", Symbol: "LYC", Venue: "ASX", AssetClass: "equity",
			DisplayNameEN: "Lynas Rare Earths",
			Meta:          models.InstrumentMeta{Themes: []string{"rare_earths"}, Catalysts: []string{"export_controls"}, Geo: "AU"},
		},
	)
	handler := newCardHandler(cards, instruments, newFakeTriggerStore())

	card := testCard("card_20260301_001")
	card.Catalysts = []string{"export_controls"}
	require.NoError(t, cards.Save(context.Background(), &card))

	req := httptest.NewRequest("GET", "/api/cards/card_20260301_001/similar?top_k=5&min_score=0.1", nil)
	rec := httptest.NewRecorder()
	handler.CardRoutesHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		CardID     string                       `json:"card_id"`
		Candidates []models.SimilarityCandidate `json:"candidates"`
		Count      int                          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "card_20260301_001", resp.CardID)
	require.NotEmpty(t, resp.Candidates)
	assert.Equal(t, "LYC", resp.Candidates[0].CandidateSymbol)
}

func TestEnableAlerts_CountsActiveRules(t *testing.T) {
	cards := newFakeCardStore()
	store := newFakeTriggerStore()
	handler := NewAlertHandler(store, cards, triggers.NewEngine(&fakeQuotes{}, cards, store))

	card := testCard("card_20260301_001")
	require.NoError(t, cards.Save(context.Background(), &card))

	firedAt := time.Now()
	store.rules["trig_a"] = models.TriggerRule{ID: "trig_a", CardID: card.ID, Status: models.TriggerStatusActive}
	store.rules["trig_b"] = models.TriggerRule{ID: "trig_b", CardID: card.ID, Status: models.TriggerStatusFired, FiredAt: &firedAt}

	body := []byte(`{"card_id":"card_20260301_001"}`)
	req := httptest.NewRequest("POST", "/api/alerts/enable", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.EnableAlertsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Message        string   `json:"message"`
		Channels       []string `json:"channels"`
		ActiveTriggers int      `json:"active_triggers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ActiveTriggers)
	assert.Equal(t, []string{"ui"}, resp.Channels)
}

func TestEnableAlerts_UnknownCard(t *testing.T) {
	cards := newFakeCardStore()
	store := newFakeTriggerStore()
	handler := NewAlertHandler(store, cards, triggers.NewEngine(&fakeQuotes{}, cards, store))

	body := []byte(`{"card_id":"card_missing"}`)
	req := httptest.NewRequest("POST", "/api/alerts/enable", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.EnableAlertsHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventPlaceholder_FiresMatchingEventTriggers(t *testing.T) {
	cards := newFakeCardStore()
	store := newFakeTriggerStore()
	handler := NewAlertHandler(store, cards, triggers.NewEngine(&fakeQuotes{}, cards, store))

	store.rules["trig_evt"] = models.TriggerRule{
		ID:     "trig_evt",
		CardID: "card_20260301_001",
		Expr:   models.TriggerExpr{Kind: models.TriggerEvent, EventType: "rating_downgrade"},
		Status: models.TriggerStatusActive,
	}
	store.rules["trig_px"] = models.TriggerRule{
		ID:     "trig_px",
		CardID: "card_20260301_001",
		Expr:   models.TriggerExpr{Kind: models.TriggerPriceLevel, Symbol: "MP", Op: ">=", Level: 10},
		Status: models.TriggerStatusActive,
	}

	body := []byte(`{"card_id":"card_20260301_001","event_type":"rating_downgrade"}`)
	req := httptest.NewRequest("POST", "/api/event/placeholder", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.EventPlaceholderHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Message   string `json:"message"`
		EventType string `json:"event_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Triggered 1 event(s)", resp.Message)
	assert.Equal(t, "rating_downgrade", resp.EventType)

	assert.Equal(t, models.TriggerStatusFired, store.rules["trig_evt"].Status)
	assert.Equal(t, models.TriggerStatusActive, store.rules["trig_px"].Status)
	require.Len(t, store.alerts, 1)
	assert.Equal(t, "trig_evt", store.alerts[0].TriggerID)
}

type fakePositionStore struct {
	positions map[string]models.Position
}

func (f *fakePositionStore) Get(ctx context.Context, id string) (*models.Position, error) {
	pos, ok := f.positions[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &pos, nil
}

func (f *fakePositionStore) List(ctx context.Context, includeClosed bool) ([]models.Position, error) {
	var out []models.Position
	for _, pos := range f.positions {
		if !includeClosed && pos.Status == models.PositionStatusClosed {
			continue
		}
		out = append(out, pos)
	}
	return out, nil
}

func (f *fakePositionStore) Save(ctx context.Context, pos *models.Position) error {
	f.positions[pos.ID] = *pos
	return nil
}

func (f *fakePositionStore) Update(ctx context.Context, pos *models.Position) error {
	f.positions[pos.ID] = *pos
	return nil
}

type fakeQuotes struct{ prices map[string]float64 }

func (f *fakeQuotes) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	price, ok := f.prices[symbol]
	if !ok {
		return 0, interfaces.ErrNotFound
	}
	return price, nil
}

func (f *fakeQuotes) PriceHistory(ctx context.Context, symbol string, days int) ([]float64, error) {
	return nil, interfaces.ErrNotFound
}

func TestPortfolioHandlers_OpenAndClose(t *testing.T) {
	store := &fakePositionStore{positions: make(map[string]models.Position)}
	quotes := &fakeQuotes{prices: map[string]float64{"MP": 55.0}}
	handler := NewPortfolioHandler(portfolio.NewService(store, quotes))

	body := []byte(`{"symbol":"mp","entry_px":50.0,"qty":10,"card_id":"card_20260301_001"}`)
	req := httptest.NewRequest("POST", "/api/portfolio/positions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.OpenPositionHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var opened models.Position
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opened))
	assert.Equal(t, "MP", opened.Symbol, "symbol is uppercased")
	assert.True(t, opened.EntryPx.Equal(decimal.RequireFromString("50")))

	req = httptest.NewRequest("GET", "/api/portfolio", nil)
	rec = httptest.NewRecorder()
	handler.ListHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Positions []models.PositionView `json:"positions"`
		Count     int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Equal(t, 1, listResp.Count)
	assert.True(t, listResp.Positions[0].HasPnL)

	closeBody := []byte(`{"exit_px":60.0}`)
	req = httptest.NewRequest("PUT", "/api/portfolio/positions/"+opened.ID+"/close", bytes.NewReader(closeBody))
	rec = httptest.NewRecorder()
	handler.PositionRoutesHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var closed models.Position
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &closed))
	assert.Equal(t, models.PositionStatusClosed, closed.Status)

	req = httptest.NewRequest("PUT", "/api/portfolio/positions/pos_missing/close", bytes.NewReader([]byte(`{"exit_px":60.0}`)))
	rec = httptest.NewRecorder()
	handler.PositionRoutesHandler(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPortfolioHandlers_OpenRejectsBadInput(t *testing.T) {
	store := &fakePositionStore{positions: make(map[string]models.Position)}
	handler := NewPortfolioHandler(portfolio.NewService(store, &fakeQuotes{}))

	body := []byte(`{"symbol":"MP","entry_px":-1,"qty":10}`)
	req := httptest.NewRequest("POST", "/api/portfolio/positions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.OpenPositionHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndVersionHandlers(t *testing.T) {
	handler := NewAPIHandler()

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	req = httptest.NewRequest("POST", "/api/health", nil)
	rec = httptest.NewRecorder()
	handler.HealthHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	req = httptest.NewRequest("GET", "/api/version", nil)
	rec = httptest.NewRecorder()
	handler.VersionHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["version"])
}
