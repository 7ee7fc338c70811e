// -----------------------------------------------------------------------
// Package language provides character-ratio language detection and
// punctuation-based sentence segmentation for CN/EN/mixed transcripts.
// -----------------------------------------------------------------------

package language

import (
	"strings"
	"unicode"

	"github.com/ternarybob/playbook/internal/models"
)

const (
	// minDetectableLength is the non-whitespace character count below which
	// detection defaults to English.
	minDetectableLength = 10

	// chineseRatio is the CJK character ratio above which text is Chinese.
	chineseRatio = 0.30

	// mixedRatio is the CJK character ratio above which text is mixed.
	mixedRatio = 0.05
)

// Detector classifies the dominant language of a text span and segments
// text into sentences. Stateless; safe for concurrent use.
type Detector struct{}

// NewDetector creates a new language detector
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the dominant locale of the text. It always returns one of
// zh-CN, en-US or mixed and is deterministic for identical input.
func (d *Detector) Detect(text string) models.Locale {
	chinese := 0
	total := 0

	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if isCJK(r) {
			chinese++
		}
	}

	if total < minDetectableLength {
		return models.LocaleEnglish
	}

	ratio := float64(chinese) / float64(total)
	switch {
	case ratio > chineseRatio:
		return models.LocaleChinese
	case ratio > mixedRatio:
		return models.LocaleMixed
	default:
		return models.LocaleEnglish
	}
}

// SplitSentences splits text into sentences using the locale's punctuation
// conventions. Chinese and mixed text split on full-width terminators
// (。！？；) and newlines; English splits on .!?; and newlines. Empty
// fragments are dropped; order follows source position.
func (d *Detector) SplitSentences(text string, locale models.Locale) []string {
	var terminators string
	if locale == models.LocaleChinese || locale == models.LocaleMixed {
		terminators = "。！？；\n"
	} else {
		terminators = ".!?;\n"
	}

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(terminators, r)
	})

	sentences := make([]string, 0, len(fields))
	for _, f := range fields {
		if s := strings.TrimSpace(f); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// isCJK reports whether the rune falls in the CJK Unified Ideographs block.
func isCJK(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fff
}
