package domain

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

var sentenceTerminals = strings.NewReplacer(".", " ", "?", " ", "!", " ")

// Prepared keeps every form of an input text that the pipeline derives.
type Prepared struct {
	Raw       string
	Canonical string
	Model     string
}

// NormalizeInput canonicalizes user text without dropping meaningful content:
// NFC composition, unified line endings, control characters removed except
// tab and newline, surrounding whitespace trimmed.
func NormalizeInput(v any) (string, error) {
	text, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("text must be a string, got %T: %w", v, ErrInvalidInput)
	}

	text = norm.NFC.String(text)
	text = lineEndings.Replace(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || unicode.IsPrint(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// ModelText is the exact string sent to the translation service.
func ModelText(canonical string) string {
	return strings.Join(strings.Fields(sentenceTerminals.Replace(canonical)), " ")
}

func Prepare(v any) (Prepared, error) {
	canonical, err := NormalizeInput(v)
	if err != nil {
		return Prepared{}, err
	}
	raw, _ := v.(string)
	return Prepared{
		Raw:       raw,
		Canonical: canonical,
		Model:     ModelText(canonical),
	}, nil
}
