package language

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n+`)
	numberToken = regexp.MustCompile(`[-+]?[0-9]*\.?[0-9]+(?:[eE][-+]?[0-9]+)?`)

	// Full-width digits normalize to their half-width equivalents.
	fullWidthDigits = strings.NewReplacer(
		"０", "0", "１", "1", "２", "2", "３", "3", "４", "4",
		"５", "5", "６", "6", "７", "7", "８", "8", "９", "9",
		"．", ".",
	)
)

// CleanText collapses whitespace runs and trims the text.
func CleanText(text string) string {
	text = spaceRuns.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// NormalizeNumbers converts full-width digits to half-width.
func NormalizeNumbers(text string) string {
	return fullWidthDigits.Replace(text)
}

// ExtractNumbers returns every numeric token in the text as a float.
func ExtractNumbers(text string) []float64 {
	matches := numberToken.FindAllString(text, -1)
	numbers := make([]float64, 0, len(matches))
	for _, m := range matches {
		if n, err := strconv.ParseFloat(m, 64); err == nil {
			numbers = append(numbers, n)
		}
	}
	return numbers
}
