// -----------------------------------------------------------------------
// Package ner provides pattern-based named entity recognition for
// financial transcripts (CN/EN), with greedy overlap resolution.
// -----------------------------------------------------------------------

package ner

import (
	"regexp"
	"sort"

	"github.com/ternarybob/playbook/internal/models"
)

type compiledRule struct {
	re         *regexp.Regexp
	confidence float64
}

// categoryOrder fixes the extraction order across categories. Overlap
// resolution keeps the first candidate on (start, confidence) ties, so the
// order is part of the extraction contract: a company name wins over the
// commodity it contains.
var categoryOrder = []models.EntityType{
	models.EntityCompany,
	models.EntityCommodity,
	models.EntityExchange,
	models.EntityCountry,
	models.EntityPolicyActor,
	models.EntityRatingAgency,
}

// Extractor applies per-category pattern registries to raw text.
type Extractor struct {
	rules map[models.EntityType][]compiledRule
}

// NewExtractor creates an extractor with the default CN/EN registry
func NewExtractor() *Extractor {
	return NewExtractorWithRegistry(defaultRegistry)
}

// NewExtractorWithRegistry creates an extractor with a custom rule table.
// All patterns are compiled case-insensitively; compilation happens once.
// Only the categories in categoryOrder are matched.
func NewExtractorWithRegistry(registry map[models.EntityType][]PatternRule) *Extractor {
	rules := make(map[models.EntityType][]compiledRule, len(registry))
	for entityType, patterns := range registry {
		compiled := make([]compiledRule, 0, len(patterns))
		for _, p := range patterns {
			compiled = append(compiled, compiledRule{
				re:         regexp.MustCompile(`(?i)` + p.Pattern),
				confidence: p.Confidence,
			})
		}
		rules[entityType] = compiled
	}
	return &Extractor{rules: rules}
}

// Extract returns all entities recognized in the text, overlap-resolved.
// A category matching nothing is an empty contribution, not an error.
func (e *Extractor) Extract(text string, locale models.Locale) []models.Entity {
	var entities []models.Entity

	for _, entityType := range categoryOrder {
		for _, rule := range e.rules[entityType] {
			for _, loc := range rule.re.FindAllStringIndex(text, -1) {
				entities = append(entities, models.Entity{
					Text:       text[loc[0]:loc[1]],
					Type:       entityType,
					Confidence: rule.confidence,
					Start:      loc[0],
					End:        loc[1],
				})
			}
		}
	}

	return ResolveOverlaps(entities)
}

// ResolveOverlaps reduces candidate entities to a non-overlapping set.
// Candidates are sorted by (start asc, confidence desc) and accepted
// greedily left to right: an entity is kept only when its start is at or
// past the end of the last accepted entity. The input slice is not
// modified.
func ResolveOverlaps(entities []models.Entity) []models.Entity {
	if len(entities) == 0 {
		return []models.Entity{}
	}

	sorted := make([]models.Entity, len(entities))
	copy(sorted, entities)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].Confidence > sorted[j].Confidence
	})

	filtered := make([]models.Entity, 0, len(sorted))
	lastEnd := -1

	for _, entity := range sorted {
		if entity.Start >= lastEnd {
			filtered = append(filtered, entity)
			lastEnd = entity.End
		}
	}

	return filtered
}
