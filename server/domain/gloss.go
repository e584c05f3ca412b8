package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const glossMarker = "#"

var (
	trailingDigits = regexp.MustCompile(`\d+$`)
	timeToken      = regexp.MustCompile(`^f:\d+$`)
)

// IsTimeToken reports whether tok is a time/frame token such as "f:12".
func IsTimeToken(tok string) bool {
	return timeToken.MatchString(tok)
}

// CleanGloss strips model artifacts from a raw gloss string. Time tokens are
// kept verbatim, "#" markers are removed and trailing numbering digits are
// cut from every other token.
func CleanGloss(v any) (string, error) {
	gloss, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("gloss must be a string, got %T: %w", v, ErrInvalidInput)
	}

	tokens := strings.Fields(gloss)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok = cleanToken(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return strings.Join(out, " "), nil
}

// cleanToken runs until the token stops changing, so that cutting digits
// cannot expose a new time token on a second pass ("f:1.2" -> "f:1." -> "f:1").
func cleanToken(tok string) string {
	for {
		next := cleanTokenOnce(tok)
		if next == tok {
			return next
		}
		tok = next
	}
}

func cleanTokenOnce(tok string) string {
	tok = strings.ReplaceAll(tok, glossMarker, "")
	if tok == "" {
		return ""
	}
	if strings.HasPrefix(tok, "f:") {
		if cand := strings.TrimRight(tok, ".,;!?"); IsTimeToken(cand) {
			return cand
		}
	}
	return trailingDigits.ReplaceAllString(tok, "")
}

// Tokens splits a cleaned gloss into its tokens.
func Tokens(gloss string) []string {
	return strings.Fields(gloss)
}

// LexicalTokens drops time tokens, which never take part in dictionary lookup.
func LexicalTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" || IsTimeToken(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}
