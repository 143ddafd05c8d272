package pagesource

import "strings"

// EstimateTokens gives a rough token count using a words-based heuristic
// (~0.75 words per token for English text). Exact tokenization is not
// required here: token counts only gate page-group sizing.
func EstimateTokens(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
