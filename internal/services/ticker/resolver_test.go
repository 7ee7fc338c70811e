package ticker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/playbook/internal/models"
)

func testCatalog() []models.Instrument {
	return []models.Instrument{
		{ID: "IONQ:NASDAQ", Symbol: "IONQ", Venue: "NASDAQ", AssetClass: "equity", DisplayNameEN: "IonQ Inc", DisplayNameCN: "艾恩Q"},
		{ID: "RGTI:NASDAQ", Symbol: "RGTI", Venue: "NASDAQ", AssetClass: "equity", DisplayNameEN: "Rigetti Computing", DisplayNameCN: "里盖蒂计算"},
		{ID: "MP:NYSE", Symbol: "MP", Venue: "NYSE", AssetClass: "equity", DisplayNameEN: "MP Materials", DisplayNameCN: "MP材料"},
		{ID: "LYC:ASX", Symbol: "LYC", Venue: "ASX", AssetClass: "equity", DisplayNameEN: "Lynas Rare Earths", DisplayNameCN: "莱纳斯稀土"},
		{ID: "SYR:ASX", Symbol: "SYR", Venue: "ASX", AssetClass: "equity", DisplayNameEN: "Syrah Resources", DisplayNameCN: "希拉资源"},
		{ID: "NGC:TSX", Symbol: "NGC", Venue: "TSX", AssetClass: "equity", DisplayNameEN: "Northern Graphite", DisplayNameCN: "北方石墨"},
		{ID: "GLD:NYSE", Symbol: "GLD", Venue: "NYSE", AssetClass: "etf", DisplayNameEN: "SPDR Gold Shares", DisplayNameCN: "黄金ETF"},
	}
}

func TestResolve_ExactSymbol(t *testing.T) {
	resolver := NewResolverFromCatalog(testCatalog())

	candidates := resolver.Resolve("IONQ", models.EntityCompany)

	require.NotEmpty(t, candidates)
	assert.Equal(t, "IONQ", candidates[0].Symbol)
	assert.InDelta(t, 0.95, candidates[0].Confidence, 1e-9)
}

func TestResolve_AliasChinese(t *testing.T) {
	resolver := NewResolverFromCatalog(testCatalog())

	candidates := resolver.Resolve("艾恩Q", models.EntityCompany)

	require.NotEmpty(t, candidates)
	assert.Equal(t, "IONQ", candidates[0].Symbol)
	assert.InDelta(t, 0.90, candidates[0].Confidence, 1e-9)
}

func TestResolve_AliasCompanyName(t *testing.T) {
	resolver := NewResolverFromCatalog(testCatalog())

	candidates := resolver.Resolve("MP Materials", models.EntityCompany)

	require.NotEmpty(t, candidates)
	assert.Equal(t, "MP", candidates[0].Symbol)
	assert.InDelta(t, 0.90, candidates[0].Confidence, 1e-9)
}

func TestResolve_SuffixStripped(t *testing.T) {
	assert.Equal(t, "ionq", NormalizeEntity("IonQ Inc"))
	assert.Equal(t, "mp materials", NormalizeEntity("  MP Materials Corp "))
}

func TestResolve_FuzzyCompany(t *testing.T) {
	resolver := NewResolverFromCatalog(testCatalog())

	candidates := resolver.Resolve("Rigetti Computing", models.EntityCompany)

	require.NotEmpty(t, candidates)
	// alias hit on "rigetti" does not apply to the full name, fuzzy does
	assert.Equal(t, "RGTI", candidates[0].Symbol)
	assert.InDelta(t, 0.70, candidates[0].Confidence, 1e-9)
}

func TestResolve_CommodityProxies(t *testing.T) {
	resolver := NewResolverFromCatalog(testCatalog())

	candidates := resolver.Resolve("稀土", models.EntityCommodity)

	require.Len(t, candidates, 2)
	symbols := []string{candidates[0].Symbol, candidates[1].Symbol}
	assert.Contains(t, symbols, "MP")
	assert.Contains(t, symbols, "LYC")
	assert.InDelta(t, 0.85, candidates[0].Confidence, 1e-9)
}

func TestResolve_CommodityMissingFromCatalog(t *testing.T) {
	resolver := NewResolverFromCatalog(testCatalog())

	// gold maps to GLD and GC=F; only GLD is in the catalog
	candidates := resolver.Resolve("gold", models.EntityCommodity)

	require.Len(t, candidates, 1)
	assert.Equal(t, "GLD", candidates[0].Symbol)
}

func TestResolve_UnknownEntity(t *testing.T) {
	resolver := NewResolverFromCatalog(testCatalog())

	candidates := resolver.Resolve("完全未知的公司", models.EntityCompany)

	assert.Empty(t, candidates)
}

func TestResolve_TopThreeCap(t *testing.T) {
	catalog := testCatalog()
	catalog = append(catalog,
		models.Instrument{ID: "GPH:TSXV", Symbol: "GPH", Venue: "TSXV", AssetClass: "equity", DisplayNameEN: "Graphite One", DisplayNameCN: "石墨一号"},
	)
	resolver := NewResolverFromCatalog(catalog)

	candidates := resolver.Resolve("graphite", models.EntityCommodity)

	assert.LessOrEqual(t, len(candidates), 3)
}
