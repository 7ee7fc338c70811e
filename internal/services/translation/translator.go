// -----------------------------------------------------------------------
// Package translation provides rule-based CN/EN translation with pinned
// glossary terms, protected numbers/tickers and a translation-memory cache.
// -----------------------------------------------------------------------

package translation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/playbook/internal/common"
	"github.com/ternarybob/playbook/internal/interfaces"
	"github.com/ternarybob/playbook/internal/models"
)

const memoryDomain = "finance"

var (
	numberPattern = regexp.MustCompile(`\b\d+\.?\d*\s*[%％]?`)
	tickerPattern = regexp.MustCompile(`\b[A-Z]{2,5}\b`)
)

// Translator performs glossary-pinned translation between the two supported
// locales. The pinned glossary is loaded once at construction; the
// translation memory is consulted and written on every call.
type Translator struct {
	glossary []models.GlossaryTerm
	memory   interfaces.TranslationMemoryStorage
	log      arbor.ILogger
}

// NewTranslator loads the pinned glossary and wires the memory store.
func NewTranslator(ctx context.Context, glossaryStore interfaces.GlossaryStorage, memory interfaces.TranslationMemoryStorage) (*Translator, error) {
	terms, err := glossaryStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load glossary: %w", err)
	}

	pinned := make([]models.GlossaryTerm, 0, len(terms))
	for _, term := range terms {
		if term.Pinned {
			pinned = append(pinned, term)
		}
	}
	sort.Slice(pinned, func(i, j int) bool { return pinned[i].Key < pinned[j].Key })

	return &Translator{
		glossary: pinned,
		memory:   memory,
		log:      common.GetLogger(),
	}, nil
}

// Translate converts text between locales. Pinned glossary terms, numeric
// tokens and ticker-shaped tokens survive translation byte for byte. Storage
// failures degrade to returning the input text unchanged, never an error.
func (t *Translator) Translate(ctx context.Context, text string, srcLang, dstLang models.Locale) string {
	if srcLang == dstLang {
		return text
	}

	if entry, err := t.memory.Lookup(ctx, text, srcLang, dstLang); err == nil {
		if hitErr := t.memory.IncrementHits(ctx, text, srcLang, dstLang); hitErr != nil {
			t.log.Warn().Err(hitErr).Msg("Failed to record translation memory hit")
		}
		return entry.DstText
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		t.log.Warn().Err(err).Msg("Translation memory unavailable, returning source text")
		return text
	}

	protected := make(map[string]string)
	working := t.protectGlossaryTerms(text, srcLang, protected)
	working = protectNumbersAndTickers(working, protected)

	translated := substitute(working, srcLang, dstLang)
	translated = restoreProtected(translated, protected)

	entry := &models.TranslationMemoryEntry{
		SrcText: text,
		SrcLang: srcLang,
		DstLang: dstLang,
		DstText: translated,
		Domain:  memoryDomain,
	}
	if err := t.memory.InsertIfAbsent(ctx, entry); err != nil {
		t.log.Warn().Err(err).Msg("Failed to save translation memory entry")
	}

	return translated
}

// protectGlossaryTerms replaces every occurrence of each pinned term (and its
// aliases) in the source locale with a unique placeholder.
func (t *Translator) protectGlossaryTerms(text string, srcLang models.Locale, protected map[string]string) string {
	id := 0
	for _, term := range t.glossary {
		srcTerm := term.EN
		if srcLang == models.LocaleChinese {
			srcTerm = term.CN
		}
		if srcTerm == "" {
			continue
		}

		spellings := append([]string{srcTerm}, term.Aliases...)
		for _, spelling := range spellings {
			if !strings.Contains(text, spelling) {
				continue
			}
			placeholder := fmt.Sprintf("__TERM_%d__", id)
			protected[placeholder] = spelling
			text = strings.ReplaceAll(text, spelling, placeholder)
			id++
		}
	}
	return text
}

// protectNumbersAndTickers replaces numeric tokens (optional trailing percent
// sign) and 2-5 letter all-caps tokens with unique placeholders. Placeholder
// underscores carry no word boundary, so the patterns never match inside a
// placeholder emitted by an earlier pass.
func protectNumbersAndTickers(text string, protected map[string]string) string {
	id := len(protected)

	for _, match := range numberPattern.FindAllString(text, -1) {
		placeholder := fmt.Sprintf("__NUM_%d__", id)
		protected[placeholder] = match
		text = strings.Replace(text, match, placeholder, 1)
		id++
	}

	for _, match := range tickerPattern.FindAllString(text, -1) {
		placeholder := fmt.Sprintf("__TICK_%d__", id)
		protected[placeholder] = match
		text = strings.Replace(text, match, placeholder, 1)
		id++
	}

	return text
}

func restoreProtected(text string, protected map[string]string) string {
	// placeholders are unique strings, restoration order does not matter
	for placeholder, original := range protected {
		text = strings.ReplaceAll(text, placeholder, original)
	}
	return text
}

func substitute(text string, srcLang, dstLang models.Locale) string {
	switch {
	case srcLang == models.LocaleChinese && dstLang == models.LocaleEnglish:
		return applyRules(text, cnToEnRules)
	case srcLang == models.LocaleEnglish && dstLang == models.LocaleChinese:
		return applyRules(text, enToCnRules)
	default:
		return text
	}
}
