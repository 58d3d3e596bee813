package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// charsPerToken approximates the tokenizers of the chat models we call.
const charsPerToken = 4

// CountTokens estimates the prompt tokens of text. Any non-empty text counts
// as at least one token.
func CountTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return max(1, n/charsPerToken)
}

// TruncateToTokenLimit shortens text to about limit tokens, cutting at the
// last whitespace when one falls in the second half of the budget.
func TruncateToTokenLimit(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	budget := limit * charsPerToken
	if utf8.RuneCountInString(text) <= budget {
		return text
	}
	runes := []rune(text)[:budget]
	cut := len(runes)
	for i := len(runes) - 1; i >= budget/2; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace)
}
