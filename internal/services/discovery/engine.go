// -----------------------------------------------------------------------
// Package discovery proposes similar-logic tickers for an existing card by
// scoring catalog instruments against the card's text and metadata.
// -----------------------------------------------------------------------

package discovery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/playbook/internal/common"
	"github.com/ternarybob/playbook/internal/interfaces"
	"github.com/ternarybob/playbook/internal/models"
)

const (
	// scoring weights; must sum to 1.0
	textWeight     = 0.5
	themeWeight    = 0.3
	catalystWeight = 0.2

	DefaultTopK     = 10
	DefaultMinScore = 0.5

	candidatePoolLimit = 1000
)

// Engine scores catalog instruments against a card.
type Engine struct {
	cards       interfaces.CardStorage
	instruments interfaces.InstrumentStorage
	log         arbor.ILogger
}

// NewEngine wires the card and instrument stores.
func NewEngine(cards interfaces.CardStorage, instruments interfaces.InstrumentStorage) *Engine {
	return &Engine{
		cards:       cards,
		instruments: instruments,
		log:         common.GetLogger(),
	}
}

type cardFeatures struct {
	tokens    map[string]bool
	themes    map[string]bool
	catalysts map[string]bool
}

// FindSimilar returns up to topK candidates scoring at or above minScore,
// best first. Instruments already on the card are excluded from the pool.
func (e *Engine) FindSimilar(ctx context.Context, cardID string, topK int, minScore float64) ([]models.SimilarityCandidate, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if minScore <= 0 {
		minScore = DefaultMinScore
	}

	card, err := e.cards.Get(ctx, cardID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return []models.SimilarityCandidate{}, nil
		}
		return nil, fmt.Errorf("card %s: %w", cardID, err)
	}

	features := e.extractFeatures(ctx, card)

	exclude := make(map[string]bool, len(card.Instruments))
	for _, ref := range card.Instruments {
		exclude[ref.Symbol] = true
	}

	pool, err := e.instruments.ListByAssetClass(ctx, []string{"equity", "etf"}, exclude, candidatePoolLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate pool: %w", err)
	}

	var candidates []models.SimilarityCandidate
	for _, inst := range pool {
		score, explanation := scoreCandidate(features, inst)
		if score < minScore {
			continue
		}
		explanationCN, explanationEN := explain(inst, score)
		candidates = append(candidates, models.SimilarityCandidate{
			CardID:          cardID,
			CandidateSymbol: inst.Symbol,
			Score:           score,
			Explanation:     explanation,
			ExplanationCN:   explanationCN,
			ExplanationEN:   explanationEN,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	e.log.Info().Str("card_id", cardID).Int("candidates", len(candidates)).Msg("Similarity scan complete")
	return candidates, nil
}

// extractFeatures collects the card's text tokens plus the themes and
// catalysts of the instruments it already references.
func (e *Engine) extractFeatures(ctx context.Context, card *models.Card) cardFeatures {
	var textParts []string
	if card.SummaryEN != "" {
		textParts = append(textParts, card.SummaryEN)
	}
	if card.SummaryCN != "" {
		textParts = append(textParts, card.SummaryCN)
	}
	for _, quote := range card.Why {
		textParts = append(textParts, quote.Quote)
	}

	features := cardFeatures{
		tokens:    tokenize(strings.Join(textParts, " ")),
		themes:    make(map[string]bool),
		catalysts: make(map[string]bool),
	}

	for _, ref := range card.Instruments {
		inst, err := e.instruments.GetBySymbol(ctx, ref.Symbol)
		if err != nil {
			continue
		}
		for _, theme := range inst.Meta.Themes {
			features.themes[theme] = true
		}
		for _, catalyst := range inst.Meta.Catalysts {
			features.catalysts[catalyst] = true
		}
	}

	return features
}

func scoreCandidate(features cardFeatures, inst models.Instrument) (float64, string) {
	score := 0.0
	var explanations []string

	instTokens := tokenize(inst.DisplayNameEN + " " + inst.Meta.Sector)
	if textSim := tokenSimilarity(features.tokens, instTokens); textSim > 0 {
		score += textSim * textWeight
		explanations = append(explanations, fmt.Sprintf("text_sim=%.2f", textSim))
	}

	if matched := overlap(features.themes, inst.Meta.Themes); len(features.themes) > 0 {
		themeOverlap := float64(len(matched)) / float64(len(features.themes))
		score += themeOverlap * themeWeight
		if len(matched) > 0 {
			explanations = append(explanations, "theme_overlap="+strings.Join(matched, ","))
		}
	}

	if matched := overlap(features.catalysts, inst.Meta.Catalysts); len(features.catalysts) > 0 {
		catalystOverlap := float64(len(matched)) / float64(len(features.catalysts))
		score += catalystOverlap * catalystWeight
		if len(matched) > 0 {
			explanations = append(explanations, "catalyst_overlap="+strings.Join(matched, ","))
		}
	}

	explanation := "no_match"
	if len(explanations) > 0 {
		explanation = strings.Join(explanations, ", ")
	}
	return math.Min(score, 1.0), explanation
}

func explain(inst models.Instrument, score float64) (cn, en string) {
	themes := inst.Meta.Themes
	if len(themes) > 2 {
		themes = themes[:2]
	}
	catalysts := inst.Meta.Catalysts
	if len(catalysts) > 2 {
		catalysts = catalysts[:2]
	}

	en = fmt.Sprintf("Matched on: similarity=%.2f", score)
	cn = fmt.Sprintf("匹配因为: 相似度=%.2f", score)
	if len(themes) > 0 {
		en += ", themes=" + strings.Join(themes, ",")
		cn += ", 主题=" + strings.Join(themes, ",")
	}
	if len(catalysts) > 0 {
		en += ", catalysts=" + strings.Join(catalysts, ",")
		cn += ", 催化=" + strings.Join(catalysts, ",")
	}
	if inst.Meta.Geo != "" {
		en += ", geo=" + inst.Meta.Geo
		cn += ", 地区=" + inst.Meta.Geo
	}
	return cn, en
}

// tokenSimilarity is cosine similarity over binary token sets.
func tokenSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for token := range a {
		if b[token] {
			shared++
		}
	}
	return float64(shared) / math.Sqrt(float64(len(a))*float64(len(b)))
}

func overlap(set map[string]bool, values []string) []string {
	var matched []string
	for _, value := range values {
		if set[value] {
			matched = append(matched, value)
		}
	}
	sort.Strings(matched)
	return matched
}

func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, field := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		tokens[field] = true
	}
	return tokens
}
