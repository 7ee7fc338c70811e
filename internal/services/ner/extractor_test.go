package ner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/playbook/internal/models"
)

func TestExtract_CompanyEnglish(t *testing.T) {
	extractor := NewExtractor()

	entities := extractor.Extract("IonQ announced a new quantum computer on NASDAQ", models.LocaleEnglish)

	require.NotEmpty(t, entities)

	var foundCompany, foundExchange bool
	for _, e := range entities {
		if e.Type == models.EntityCompany && e.Text == "IonQ" {
			foundCompany = true
			assert.InDelta(t, 0.95, e.Confidence, 1e-9)
		}
		if e.Type == models.EntityExchange && e.Text == "NASDAQ" {
			foundExchange = true
		}
	}
	assert.True(t, foundCompany, "expected IonQ company entity")
	assert.True(t, foundExchange, "expected NASDAQ exchange entity")
}

func TestExtract_CompanyChinese(t *testing.T) {
	extractor := NewExtractor()

	entities := extractor.Extract("艾恩Q最近发布了新的量子计算机", models.LocaleChinese)

	require.NotEmpty(t, entities)
	found := false
	for _, e := range entities {
		if e.Type == models.EntityCompany && e.Text == "艾恩Q" {
			found = true
			assert.InDelta(t, 0.95, e.Confidence, 1e-9)
		}
	}
	assert.True(t, found, "expected 艾恩Q company entity")
}

func TestExtract_CommodityBilingual(t *testing.T) {
	extractor := NewExtractor()

	entities := extractor.Extract("稀土 and rare earth prices are rising", models.LocaleMixed)

	var texts []string
	for _, e := range entities {
		if e.Type == models.EntityCommodity {
			texts = append(texts, e.Text)
		}
	}
	assert.Contains(t, texts, "稀土")
	assert.Contains(t, texts, "rare earth")
}

func TestExtract_ByteOffsetsMatchText(t *testing.T) {
	extractor := NewExtractor()

	text := "看好MP Materials的稀土业务"
	entities := extractor.Extract(text, models.LocaleMixed)

	require.NotEmpty(t, entities)
	for _, e := range entities {
		assert.Equal(t, e.Text, text[e.Start:e.End])
	}
}

func TestExtract_EmptyText(t *testing.T) {
	extractor := NewExtractor()

	entities := extractor.Extract("", models.LocaleEnglish)

	assert.Empty(t, entities)
}

func TestResolveOverlaps_HigherConfidenceWins(t *testing.T) {
	entities := []models.Entity{
		{Text: "Graphite One", Type: models.EntityCompany, Confidence: 0.90, Start: 0, End: 12},
		{Text: "Graphite", Type: models.EntityCommodity, Confidence: 0.85, Start: 0, End: 8},
	}

	resolved := ResolveOverlaps(entities)

	require.Len(t, resolved, 1)
	assert.Equal(t, "Graphite One", resolved[0].Text)
}

func TestResolveOverlaps_DisjointKept(t *testing.T) {
	entities := []models.Entity{
		{Text: "IonQ", Confidence: 0.95, Start: 0, End: 4},
		{Text: "NASDAQ", Confidence: 0.85, Start: 10, End: 16},
	}

	resolved := ResolveOverlaps(entities)

	assert.Len(t, resolved, 2)
}

func TestExtract_CategoryTieDeterministic(t *testing.T) {
	extractor := NewExtractor()

	// 石墨一号 (Company, 0.95) and its prefix 石墨 (Commodity, 0.95) tie on
	// (start, confidence); the fixed category order must keep the company
	// on every run.
	for i := 0; i < 100; i++ {
		entities := extractor.Extract("石墨一号", models.LocaleChinese)

		require.Len(t, entities, 1, "run %d", i)
		assert.Equal(t, models.EntityCompany, entities[0].Type, "run %d", i)
		assert.Equal(t, "石墨一号", entities[0].Text, "run %d", i)
	}
}

func TestResolveOverlaps_InputUnmodified(t *testing.T) {
	entities := []models.Entity{
		{Text: "NASDAQ", Confidence: 0.85, Start: 10, End: 16},
		{Text: "IonQ", Confidence: 0.95, Start: 0, End: 4},
	}

	resolved := ResolveOverlaps(entities)

	require.Len(t, resolved, 2)
	assert.Equal(t, "NASDAQ", entities[0].Text)
	assert.Equal(t, "IonQ", entities[1].Text)
	assert.Equal(t, "IonQ", resolved[0].Text)
}

func TestResolveOverlaps_NoRemainingOverlap(t *testing.T) {
	extractor := NewExtractor()

	text := "MP Materials and Lynas produce rare earth; Syrah Resources produces graphite for NASDAQ listings"
	resolved := extractor.Extract(text, models.LocaleEnglish)

	for i := 0; i < len(resolved); i++ {
		for j := i + 1; j < len(resolved); j++ {
			a, b := resolved[i], resolved[j]
			overlaps := a.Start < b.End && b.Start < a.End
			assert.False(t, overlaps, "entities %q and %q overlap", a.Text, b.Text)
		}
	}
}
