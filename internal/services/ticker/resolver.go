// -----------------------------------------------------------------------
// Package ticker maps recognized entities to tradable instrument symbols
// using a confidence-ordered cascade against the coverage catalog.
// -----------------------------------------------------------------------

package ticker

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/ternarybob/playbook/internal/interfaces"
	"github.com/ternarybob/playbook/internal/models"
)

const (
	confidenceExact     = 0.95
	confidenceAlias     = 0.90
	confidenceCommodity = 0.85
	confidenceFuzzy     = 0.70

	maxCandidates = 3
)

var corporateSuffixPattern = regexp.MustCompile(`(?i)\s+(Inc|Corp|Ltd|LLC|Co)\b`)

// aliasMap maps normalized entity spellings to catalog symbols. Keys are
// normalized the same way entity text is at resolution time.
var aliasMap = map[string][]string{
	"ionq":            {"ionq"},
	"艾恩q":             {"ionq"},
	"rigetti":         {"rgti"},
	"里盖蒂":             {"rgti"},
	"graphite one":    {"gph"},
	"石墨一号":            {"gph"},
	"mp materials":    {"mp"},
	"lynas":           {"lyc"},
	"syrah resources": {"syr"},
}

// commodityMap maps normalized commodity names to proxy instruments.
var commodityMap = map[string][]string{
	"稀土":         {"MP", "LYC"},
	"rare earth": {"MP", "LYC"},
	"石墨":         {"SYR", "NGC"},
	"graphite":   {"SYR", "NGC"},
	"黄金":         {"GLD", "GC=F"},
	"gold":       {"GLD", "GC=F"},
	"花生":         {"CORN", "DBA"}, // proxy via agri ETFs
}

// Resolver maps entity text to ranked ticker candidates. The catalog is
// loaded once at construction and held in memory for the resolver lifetime.
type Resolver struct {
	symbolMap map[string]models.Instrument // keyed by lowercase symbol
}

// NewResolver builds a resolver from the persisted instrument catalog.
func NewResolver(ctx context.Context, store interfaces.InstrumentStorage) (*Resolver, error) {
	instruments, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewResolverFromCatalog(instruments), nil
}

// NewResolverFromCatalog builds a resolver over an in-memory catalog slice.
func NewResolverFromCatalog(instruments []models.Instrument) *Resolver {
	symbolMap := make(map[string]models.Instrument, len(instruments))
	for _, inst := range instruments {
		if inst.DisplayNameEN == "" {
			inst.DisplayNameEN = inst.Symbol
		}
		if inst.DisplayNameCN == "" {
			inst.DisplayNameCN = inst.Symbol
		}
		symbolMap[strings.ToLower(inst.Symbol)] = inst
	}
	return &Resolver{symbolMap: symbolMap}
}

// Resolve maps an entity to at most three ticker candidates, sorted by
// descending confidence. Strategies contribute in precedence order:
// exact catalog key, alias table, company fuzzy match (only when nothing
// matched yet), commodity proxy map. Unresolvable entities yield an empty
// slice, never an error.
func (r *Resolver) Resolve(text string, entityType models.EntityType) []models.TickerCandidate {
	normalized := NormalizeEntity(text)

	var candidates []models.TickerCandidate

	if inst, ok := r.symbolMap[normalized]; ok {
		candidates = append(candidates, candidateFrom(inst, confidenceExact))
	}

	if symbols, ok := aliasMap[normalized]; ok {
		for _, symbol := range symbols {
			if inst, found := r.symbolMap[strings.ToLower(symbol)]; found {
				candidates = append(candidates, candidateFrom(inst, confidenceAlias))
			}
		}
	}

	if entityType == models.EntityCompany && len(candidates) == 0 {
		candidates = append(candidates, r.fuzzyMatchCompany(normalized)...)
	}

	if entityType == models.EntityCommodity {
		for _, symbol := range commodityMap[normalized] {
			if inst, found := r.symbolMap[strings.ToLower(symbol)]; found {
				candidates = append(candidates, candidateFrom(inst, confidenceCommodity))
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}

// fuzzyMatchCompany matches by case-insensitive containment in either
// direction against catalog display names. Equities and ETFs only.
func (r *Resolver) fuzzyMatchCompany(name string) []models.TickerCandidate {
	var candidates []models.TickerCandidate
	for _, inst := range r.symbolMap {
		if inst.AssetClass != "equity" && inst.AssetClass != "etf" {
			continue
		}
		displayName := strings.ToLower(inst.DisplayNameEN)
		if strings.Contains(displayName, name) || strings.Contains(name, displayName) {
			candidates = append(candidates, candidateFrom(inst, confidenceFuzzy))
		}
	}
	return candidates
}

// NormalizeEntity strips common corporate suffixes, lowercases and trims.
func NormalizeEntity(text string) string {
	text = corporateSuffixPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(strings.ToLower(text))
}

func candidateFrom(inst models.Instrument, confidence float64) models.TickerCandidate {
	return models.TickerCandidate{
		Symbol:        inst.Symbol,
		Venue:         inst.Venue,
		DisplayNameEN: inst.DisplayNameEN,
		DisplayNameCN: inst.DisplayNameCN,
		Confidence:    confidence,
		AssetClass:    inst.AssetClass,
		Meta:          inst.Meta,
	}
}
