// Package budget estimates prompt sizes against model context windows.
package budget

import (
	"math"
	"strings"
	"unicode/utf8"
)

// EstimateTokensFromChars converts a character count into an estimated token
// count (~4 chars per token in English), rounding up.
func EstimateTokensFromChars(charCount int) int {
	if charCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(charCount) / 4.0))
}

// EstimateTokens returns the estimated token count of s, counted in runes so
// non-Latin page text is not overestimated.
func EstimateTokens(s string) int {
	return EstimateTokensFromChars(utf8.RuneCountInString(s))
}

// ModelContextTokens returns an estimated context window for a model name.
// Unknown models fall back to 8192.
func ModelContextTokens(modelName string) int {
	name := strings.ToLower(strings.TrimSpace(modelName))
	if v, ok := knownModelMax[name]; ok {
		return v
	}
	for _, p := range prefixMax {
		if strings.HasPrefix(name, p.prefix) {
			return p.tokens
		}
	}
	return 8192
}

// HeadroomTokens is the larger of 5% of the context window or 512 tokens,
// covering tokenizer and framing overheads.
func HeadroomTokens(modelName string) int {
	dyn := int(math.Ceil(float64(ModelContextTokens(modelName)) * 0.05))
	if dyn < 512 {
		return 512
	}
	return dyn
}

// FitsInContext reports whether promptTokens plus reservedForOutput and the
// model's headroom fit in its context window.
func FitsInContext(modelName string, reservedForOutput, promptTokens int) bool {
	if reservedForOutput < 0 {
		reservedForOutput = 0
	}
	return ModelContextTokens(modelName)-HeadroomTokens(modelName)-reservedForOutput-promptTokens > 0
}

var knownModelMax = map[string]int{
	"gpt-4o":        128_000,
	"gpt-4o-mini":   128_000,
	"gpt-4-turbo":   128_000,
	"gpt-3.5-turbo": 16_384,
	"llama-3":       8_192,
	"llama-3.1":     128_000,
	"gpt-oss-20b":   4_096,
}

// prefixMax is checked in order, so longer prefixes come first.
var prefixMax = []struct {
	prefix string
	tokens int
}{
	{"gemini-1.5", 1_000_000},
	{"gemini-2", 1_000_000},
	{"gemini", 32_768},
	{"claude", 200_000},
	{"gpt-4.1", 1_000_000},
	{"gpt-4o", 128_000},
}
