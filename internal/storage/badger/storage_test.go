package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/playbook/internal/common"
	"github.com/ternarybob/playbook/internal/interfaces"
	"github.com/ternarybob/playbook/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	cfg := &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "playbook.db"),
	}

	manager, err := NewManager(common.GetLogger(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	return manager
}

func TestInstrumentStorage_SaveAndGet(t *testing.T) {
	manager := newTestManager(t)
	store := manager.InstrumentStorage()
	ctx := context.Background()

	inst := &models.Instrument{
		ID:            "IONQ:NASDAQ",
		Symbol:        "IONQ",
		Venue:         "NASDAQ",
		AssetClass:    "equity",
		DisplayNameEN: "IonQ Inc",
		DisplayNameCN: "艾恩Q",
	}
	require.NoError(t, store.Save(ctx, inst))

	got, err := store.Get(ctx, "IONQ:NASDAQ")
	require.NoError(t, err)
	assert.Equal(t, "IONQ", got.Symbol)
	assert.Equal(t, "艾恩Q", got.DisplayNameCN)

	bySymbol, err := store.GetBySymbol(ctx, "IONQ")
	require.NoError(t, err)
	assert.Equal(t, "IONQ:NASDAQ", bySymbol.ID)

	_, err = store.Get(ctx, "MISSING:NYSE")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestInstrumentStorage_ListByAssetClass(t *testing.T) {
	manager := newTestManager(t)
	store := manager.InstrumentStorage()
	ctx := context.Background()

	instruments := []models.Instrument{
		{ID: "MP:NYSE", Symbol: "MP", Venue: "NYSE", AssetClass: "equity"},
		{ID: "LYC:ASX", Symbol: "LYC", Venue: "ASX", AssetClass: "equity"},
		{ID: "GLD:NYSE", Symbol: "GLD", Venue: "NYSE", AssetClass: "etf"},
		{ID: "GC=F:COMEX", Symbol: "GC=F", Venue: "COMEX", AssetClass: "future"},
	}
	for i := range instruments {
		require.NoError(t, store.Save(ctx, &instruments[i]))
	}

	pool, err := store.ListByAssetClass(ctx, []string{"equity", "etf"}, map[string]bool{"MP": true}, 100)
	require.NoError(t, err)

	symbols := make(map[string]bool)
	for _, inst := range pool {
		symbols[inst.Symbol] = true
	}
	assert.True(t, symbols["LYC"])
	assert.True(t, symbols["GLD"])
	assert.False(t, symbols["MP"], "excluded symbol must not appear")
	assert.False(t, symbols["GC=F"], "futures are outside the requested classes")
}

func TestCardStorage_Lifecycle(t *testing.T) {
	manager := newTestManager(t)
	store := manager.CardStorage()
	ctx := context.Background()

	older := &models.Card{
		ID:        "card_20260101_001",
		AsOf:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Direction: "long",
		Horizon:   "3m",
	}
	newer := &models.Card{
		ID:        "card_20260201_001",
		AsOf:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Direction: "short",
		Horizon:   "1m",
	}
	require.NoError(t, store.Save(ctx, older))
	require.NoError(t, store.Save(ctx, newer))

	// Duplicate IDs are rejected rather than overwritten.
	assert.Error(t, store.Save(ctx, &models.Card{ID: older.ID, AsOf: older.AsOf}))

	cards, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, newer.ID, cards[0].ID, "newest as-of first")

	newer.Direction = "long"
	require.NoError(t, store.Update(ctx, newer))
	got, err := store.Get(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, "long", got.Direction)
	assert.False(t, got.UpdatedAt.IsZero())

	require.NoError(t, store.Delete(ctx, older.ID))
	_, err = store.Get(ctx, older.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, older.ID), interfaces.ErrNotFound)
}

func TestMemoryStorage_InsertIfAbsentKeepsFirstTranslation(t *testing.T) {
	manager := newTestManager(t)
	store := manager.TranslationMemoryStorage()
	ctx := context.Background()

	first := &models.TranslationMemoryEntry{
		SrcText: "保证金上调",
		SrcLang: models.LocaleChinese,
		DstLang: models.LocaleEnglish,
		DstText: "margin increase",
		Domain:  "finance",
	}
	require.NoError(t, store.InsertIfAbsent(ctx, first))

	// A concurrent producer's competing translation must not overwrite.
	second := &models.TranslationMemoryEntry{
		SrcText: "保证金上调",
		SrcLang: models.LocaleChinese,
		DstLang: models.LocaleEnglish,
		DstText: "margin raised",
		Domain:  "finance",
	}
	require.NoError(t, store.InsertIfAbsent(ctx, second))

	got, err := store.Lookup(ctx, "保证金上调", models.LocaleChinese, models.LocaleEnglish)
	require.NoError(t, err)
	assert.Equal(t, "margin increase", got.DstText)
	assert.Equal(t, 1, got.Hits)
}

func TestMemoryStorage_IncrementHits(t *testing.T) {
	manager := newTestManager(t)
	store := manager.TranslationMemoryStorage()
	ctx := context.Background()

	entry := &models.TranslationMemoryEntry{
		SrcText: "回调",
		SrcLang: models.LocaleChinese,
		DstLang: models.LocaleEnglish,
		DstText: "pullback",
		Domain:  "finance",
	}
	require.NoError(t, store.InsertIfAbsent(ctx, entry))

	require.NoError(t, store.IncrementHits(ctx, "回调", models.LocaleChinese, models.LocaleEnglish))
	require.NoError(t, store.IncrementHits(ctx, "回调", models.LocaleChinese, models.LocaleEnglish))

	got, err := store.Lookup(ctx, "回调", models.LocaleChinese, models.LocaleEnglish)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Hits)

	err = store.IncrementHits(ctx, "missing", models.LocaleChinese, models.LocaleEnglish)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestMemoryStorage_LookupMiss(t *testing.T) {
	manager := newTestManager(t)
	store := manager.TranslationMemoryStorage()

	_, err := store.Lookup(context.Background(), "永不出现", models.LocaleChinese, models.LocaleEnglish)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestTriggerStorage_ActiveRules(t *testing.T) {
	manager := newTestManager(t)
	store := manager.TriggerStorage()
	ctx := context.Background()

	active := &models.TriggerRule{
		ID:     "trig_active",
		CardID: "card_20260101_001",
		Expr:   models.TriggerExpr{Kind: models.TriggerPriceLevel, Symbol: "IONQ", Op: ">=", Level: 10},
		Status: models.TriggerStatusActive,
	}
	fired := &models.TriggerRule{
		ID:     "trig_fired",
		CardID: "card_20260101_001",
		Expr:   models.TriggerExpr{Kind: models.TriggerTimeStop, Days: 45},
		Status: models.TriggerStatusFired,
	}
	require.NoError(t, store.SaveRule(ctx, active))
	require.NoError(t, store.SaveRule(ctx, fired))

	rules, err := store.ListActiveRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "trig_active", rules[0].ID)

	byCard, err := store.ListRulesByCard(ctx, "card_20260101_001")
	require.NoError(t, err)
	assert.Len(t, byCard, 2)

	now := time.Now()
	active.Status = models.TriggerStatusFired
	active.FiredAt = &now
	require.NoError(t, store.UpdateRule(ctx, active))

	rules, err = store.ListActiveRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestTriggerStorage_Alerts(t *testing.T) {
	manager := newTestManager(t)
	store := manager.TriggerStorage()
	ctx := context.Background()

	for i, id := range []string{"alert_a", "alert_b", "alert_c"} {
		alert := &models.AlertEvent{
			ID:        id,
			TriggerID: "trig_1",
			CardID:    "card_20260101_001",
			Kind:      models.TriggerPriceLevel,
			Reason:    "IONQ crossed >= 10",
			CreatedAt: time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, store.SaveAlert(ctx, alert))
	}

	alerts, err := store.ListAlerts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "alert_c", alerts[0].ID, "newest alert first")
}

func TestPositionStorage_ListOpenOnly(t *testing.T) {
	manager := newTestManager(t)
	store := manager.PositionStorage()
	ctx := context.Background()

	open := &models.Position{
		ID:       "pos_open",
		Symbol:   "MP",
		OpenedAt: time.Now().Add(-time.Hour),
		EntryPx:  decimal.RequireFromString("50.0"),
		Qty:      decimal.RequireFromString("10"),
		Status:   models.PositionStatusOpen,
	}
	closedAt := time.Now()
	closed := &models.Position{
		ID:       "pos_closed",
		Symbol:   "LYC",
		OpenedAt: time.Now().Add(-2 * time.Hour),
		EntryPx:  decimal.RequireFromString("6.0"),
		Qty:      decimal.RequireFromString("100"),
		ClosedAt: &closedAt,
		ExitPx:   decimal.RequireFromString("6.6"),
		Status:   models.PositionStatusClosed,
	}
	require.NoError(t, store.Save(ctx, open))
	require.NoError(t, store.Save(ctx, closed))

	openOnly, err := store.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, openOnly, 1)
	assert.Equal(t, "pos_open", openOnly[0].ID)

	all, err := store.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSeedLoading(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	dir := t.TempDir()

	instrumentsFile := filepath.Join(dir, "instruments.toml")
	require.NoError(t, os.WriteFile(instrumentsFile, []byte(`
[IONQ]
venue = "NASDAQ"
asset_class = "equity"
display_name_en = "IonQ Inc"
display_name_cn = "艾恩Q"
[IONQ.meta]
sector = "Technology"
themes = ["quantum"]
`), 0644))

	glossaryFile := filepath.Join(dir, "glossary.toml")
	require.NoError(t, os.WriteFile(glossaryFile, []byte(`
[margin]
cn = "保证金"
en = "margin"
pinned = true
aliases = ["保證金"]
`), 0644))

	require.NoError(t, manager.LoadInstrumentsFromFile(ctx, instrumentsFile))
	require.NoError(t, manager.LoadGlossaryFromFile(ctx, glossaryFile))

	inst, err := manager.InstrumentStorage().Get(ctx, "IONQ:NASDAQ")
	require.NoError(t, err)
	assert.Equal(t, "IonQ Inc", inst.DisplayNameEN)
	assert.Equal(t, []string{"quantum"}, inst.Meta.Themes)

	term, err := manager.GlossaryStorage().Get(ctx, "margin")
	require.NoError(t, err)
	assert.True(t, term.Pinned)
	assert.Equal(t, []string{"保證金"}, term.Aliases)

	// Reloading never overwrites existing entries.
	inst.DisplayNameEN = "edited"
	require.NoError(t, manager.InstrumentStorage().Save(ctx, inst))
	require.NoError(t, manager.LoadInstrumentsFromFile(ctx, instrumentsFile))
	again, err := manager.InstrumentStorage().Get(ctx, "IONQ:NASDAQ")
	require.NoError(t, err)
	assert.Equal(t, "edited", again.DisplayNameEN)
}
