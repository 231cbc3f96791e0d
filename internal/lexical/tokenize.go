package lexical

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it into index terms on any rune that
// is neither a letter nor a digit. The same tokenizer is used at index and
// query time so scoring stays consistent.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// termCounts folds a token stream into per-term frequencies.
func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}
