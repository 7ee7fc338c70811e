// -----------------------------------------------------------------------
// Package ingest turns expert transcripts into draft playbook cards:
// language detection, entity extraction, ticker resolution and card
// assembly run in strict sequence per request.
// -----------------------------------------------------------------------

package ingest

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/playbook/internal/common"
	"github.com/ternarybob/playbook/internal/models"
	"github.com/ternarybob/playbook/internal/services/language"
	"github.com/ternarybob/playbook/internal/services/ner"
	"github.com/ternarybob/playbook/internal/services/ticker"
	"github.com/ternarybob/playbook/internal/services/translation"
)

const (
	defaultHorizon         = "3m"
	defaultCardConfidence  = 0.75
	defaultExtractionScore = 0.75
	catalystTruncateRunes  = 50
)

var (
	bullishKeywords = []string{"上涨", "看涨", "买入", "buy", "long", "bullish", "upside"}
	bearishKeywords = []string{"下跌", "看跌", "卖出", "sell", "short", "bearish", "downside"}

	catalystKeywords = []string{"补贴", "资助", "subsidy", "grant", "政策", "policy", "评级", "rating"}
	riskKeywords     = []string{"风险", "risk", "不确定", "uncertain", "延迟", "delay"}
)

// Service runs the transcript-to-draft-card pipeline.
type Service struct {
	detector   *language.Detector
	extractor  *ner.Extractor
	resolver   *ticker.Resolver
	translator *translation.Translator
	config     common.IngestConfig
	log        arbor.ILogger

	now func() time.Time
}

// NewService wires the pipeline stages together.
func NewService(resolver *ticker.Resolver, translator *translation.Translator, config common.IngestConfig) *Service {
	return &Service{
		detector:   language.NewDetector(),
		extractor:  ner.NewExtractor(),
		resolver:   resolver,
		translator: translator,
		config:     config,
		log:        common.GetLogger(),
		now:        time.Now,
	}
}

// Ingest processes one transcript synchronously and returns draft cards.
func (s *Service) Ingest(ctx context.Context, req models.IngestRequest) (*models.IngestResponse, error) {
	started := s.now()

	text := language.CleanText(req.Text)
	locale := s.detector.Detect(text)
	sentences := s.detector.SplitSentences(text, locale)

	entities := s.extractor.Extract(text, locale)

	candidates := make([]models.EntityCandidate, 0, len(entities))
	for _, entity := range entities {
		candidates = append(candidates, models.EntityCandidate{
			Text:             entity.Text,
			Type:             entity.Type,
			Confidence:       entity.Confidence,
			TickerCandidates: s.resolver.Resolve(entity.Text, entity.Type),
		})
	}

	cards := s.assembleCards(ctx, sentences, candidates, locale, req.ExpertRef)

	s.log.Info().
		Str("locale", string(locale)).
		Int("entities", len(entities)).
		Int("cards", len(cards)).
		Msg("Transcript ingested")

	return &models.IngestResponse{
		Cards:                  cards,
		ProcessingTime:         s.now().Sub(started).Seconds(),
		TotalEntitiesExtracted: len(entities),
		LanguageDetected:       locale,
	}, nil
}

// assembleCards groups resolvable entities by their top ticker symbol and
// emits one draft card per group, in first-seen order.
func (s *Service) assembleCards(ctx context.Context, sentences []string, candidates []models.EntityCandidate, locale models.Locale, expertRef string) []models.DraftCard {
	groups := make(map[string][]models.EntityCandidate)
	var order []string

	for _, candidate := range candidates {
		if len(candidate.TickerCandidates) == 0 {
			continue
		}
		symbol := candidate.TickerCandidates[0].Symbol
		if _, seen := groups[symbol]; !seen {
			order = append(order, symbol)
		}
		groups[symbol] = append(groups[symbol], candidate)
	}

	asof := s.now()
	cards := make([]models.DraftCard, 0, len(order))

	for seq, symbol := range order {
		group := groups[symbol]

		instrument := primaryInstrument(group)
		quotes := s.selectQuotes(sentences, group)
		summaryCN, summaryEN := s.buildSummary(ctx, instrument.Symbol, locale)
		catalysts, risks := s.tagCatalystsAndRisks(quotes)

		card := models.Card{
			ID:            common.NewCardID(asof, seq+1),
			AsOf:          asof,
			SummaryCN:     summaryCN,
			SummaryEN:     summaryEN,
			Direction:     inferDirection(quotes),
			Horizon:       defaultHorizon,
			Instruments:   []models.InstrumentRef{instrument},
			EntryTriggers: []models.TriggerExpr{defaultEntryTrigger(instrument.Symbol)},
			Invalidators:  []models.TriggerExpr{s.defaultInvalidator()},
			Catalysts:     catalysts,
			Risks:         risks,
			Why:           quoteRefs(quotes, locale),
			Confidence:    defaultCardConfidence,
			CreatedAt:     asof,
			UpdatedAt:     asof,
		}

		cards = append(cards, models.DraftCard{
			Card:                 card,
			ExtractionConfidence: defaultExtractionScore,
			Entities:             group,
			ExpertRef:            expertRef,
		})
	}

	return cards
}

// primaryInstrument picks the group entity whose top ticker candidate has the
// highest confidence and references it with role "primary".
func primaryInstrument(group []models.EntityCandidate) models.InstrumentRef {
	var best models.TickerCandidate
	for _, entity := range group {
		tc := entity.TickerCandidates[0]
		if tc.Confidence > best.Confidence {
			best = tc
		}
	}
	return models.InstrumentRef{
		Symbol:        best.Symbol,
		Venue:         best.Venue,
		Role:          "primary",
		DisplayNameEN: best.DisplayNameEN,
		DisplayNameCN: best.DisplayNameCN,
	}
}

type quote struct {
	text  string
	index int
}

// selectQuotes scans sentences in order and keeps those that contain any
// group entity's text, case-insensitively, up to the configured cap.
func (s *Service) selectQuotes(sentences []string, group []models.EntityCandidate) []quote {
	max := s.config.MaxQuotesPerCard
	if max <= 0 {
		max = 3
	}

	entityTexts := make([]string, 0, len(group))
	for _, entity := range group {
		entityTexts = append(entityTexts, strings.ToLower(entity.Text))
	}

	var quotes []quote
	for i, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, entityText := range entityTexts {
			if strings.Contains(lower, entityText) {
				quotes = append(quotes, quote{text: sentence, index: i})
				break
			}
		}
		if len(quotes) >= max {
			break
		}
	}
	return quotes
}

func (s *Service) buildSummary(ctx context.Context, symbol string, locale models.Locale) (summaryCN, summaryEN string) {
	if locale == models.LocaleChinese {
		summaryCN = "关注 " + symbol + "，基于相关催化剂和市场机会"
		summaryEN = s.translator.Translate(ctx, summaryCN, models.LocaleChinese, models.LocaleEnglish)
		return summaryCN, summaryEN
	}
	summaryEN = "Watch " + symbol + " based on relevant catalysts and market opportunities"
	summaryCN = s.translator.Translate(ctx, summaryEN, models.LocaleEnglish, models.LocaleChinese)
	return summaryCN, summaryEN
}

// defaultEntryTrigger is a placeholder price level intended for manual edit.
func defaultEntryTrigger(symbol string) models.TriggerExpr {
	return models.TriggerExpr{
		Kind:   models.TriggerPriceLevel,
		Symbol: symbol,
		Op:     ">=",
		Level:  10.0,
		NLCN:   "价格 >= 10.0",
		NLEN:   "Price >= 10.0",
	}
}

func (s *Service) defaultInvalidator() models.TriggerExpr {
	days := s.config.TimeStopDays
	if days <= 0 {
		days = 45
	}
	return models.TriggerExpr{
		Kind: models.TriggerTimeStop,
		Days: days,
		NLCN: strconv.Itoa(days) + "天止损",
		NLEN: strconv.Itoa(days) + "-day time stop",
	}
}

// inferDirection counts bullish versus bearish keyword hits across the
// selected quotes. Strictly more bullish wins long, strictly more bearish
// wins short, ties default to long.
func inferDirection(quotes []quote) string {
	var parts []string
	for _, q := range quotes {
		parts = append(parts, strings.ToLower(q.text))
	}
	text := strings.Join(parts, " ")

	bullish := countKeywordHits(text, bullishKeywords)
	bearish := countKeywordHits(text, bearishKeywords)

	if bearish > bullish {
		return "short"
	}
	return "long"
}

func countKeywordHits(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	return count
}

// tagCatalystsAndRisks classifies quotes by keyword sets. A quote may be
// both a catalyst and a risk, or neither.
func (s *Service) tagCatalystsAndRisks(quotes []quote) (catalysts, risks []string) {
	maxCatalysts := s.config.MaxCatalysts
	if maxCatalysts <= 0 {
		maxCatalysts = 3
	}
	maxRisks := s.config.MaxRisks
	if maxRisks <= 0 {
		maxRisks = 2
	}

	for _, q := range quotes {
		lower := strings.ToLower(q.text)
		if countKeywordHits(lower, catalystKeywords) > 0 {
			catalysts = append(catalysts, truncate(q.text, catalystTruncateRunes))
		}
		if countKeywordHits(lower, riskKeywords) > 0 {
			risks = append(risks, truncate(q.text, catalystTruncateRunes))
		}
	}

	if len(catalysts) > maxCatalysts {
		catalysts = catalysts[:maxCatalysts]
	}
	if len(risks) > maxRisks {
		risks = risks[:maxRisks]
	}
	return catalysts, risks
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return string(runes) + "..."
}

func quoteRefs(quotes []quote, locale models.Locale) []models.QuoteRef {
	refs := make([]models.QuoteRef, 0, len(quotes))
	for _, q := range quotes {
		ref := models.QuoteRef{
			Quote:     q.text,
			SourceLoc: "p" + strconv.Itoa(q.index),
		}
		if locale == models.LocaleChinese {
			ref.GlossCN = q.text
		} else {
			ref.GlossEN = q.text
		}
		refs = append(refs, ref)
	}
	return refs
}
