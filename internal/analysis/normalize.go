package analysis

import (
	"regexp"
	"strings"
)

var (
	markdownHeading  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	markdownEmphasis = regexp.MustCompile(`[*_]{1,3}([^*_]+)[*_]{1,3}`)
	markdownLink     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	markdownCode     = regexp.MustCompile("`{1,3}([^`]*)`{1,3}")
	bulletPrefix     = regexp.MustCompile(`(?m)^\s*[-•*+]\s+`)
	multiSpace       = regexp.MustCompile(`[ \t]{2,}`)
	multiNewline     = regexp.MustCompile(`\n{3,}`)

	// token boundary keeps characters that are significant in skill
	// names, e.g. "c++", "c#", "node.js"
	nonTokenChars = regexp.MustCompile(`[^a-z0-9+#.]+`)
)

// CleanText strips markdown artifacts and collapses whitespace so that
// AI-generated or pasted text scores the same as plain text.
func CleanText(text string) string {
	text = markdownHeading.ReplaceAllString(text, "")
	text = markdownEmphasis.ReplaceAllString(text, "$1")
	text = markdownLink.ReplaceAllString(text, "$1")
	text = markdownCode.ReplaceAllString(text, "$1")
	text = bulletPrefix.ReplaceAllString(text, "")
	text = multiSpace.ReplaceAllString(text, " ")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// normalizeForMatch lowercases text and reduces it to space-separated
// tokens padded with a leading and trailing space, which makes
// substring checks behave like whole-word checks.
func normalizeForMatch(text string) string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return "  "
	}
	return " " + strings.Join(tokens, " ") + " "
}

// Tokenize splits text into lowercase word tokens, preserving
// punctuation that is part of technology names.
func Tokenize(text string) []string {
	normalized := strings.TrimSpace(nonTokenChars.ReplaceAllString(strings.ToLower(text), " "))
	if normalized == "" {
		return nil
	}
	tokens := strings.Fields(normalized)
	// trailing dots come from sentence ends, not from names like "node.js"
	for i, tok := range tokens {
		tokens[i] = strings.TrimRight(tok, ".")
	}
	return tokens
}
