package usecase

import (
	"context"
	"log/slog"

	"github.com/ponyo877/signtalk/server/domain"
)

const missLogLimit = 10

// Resolver maps gloss tokens to clip URLs. It never fails: lookup errors
// are logged and every token is reported as a miss.
type Resolver struct {
	dict Dictionary
}

func NewResolver(dict Dictionary) *Resolver {
	return &Resolver{dict: dict}
}

func (r *Resolver) Resolve(ctx context.Context, tokens []string) domain.Mapping {
	lexical := domain.LexicalTokens(tokens)
	if len(lexical) == 0 {
		return domain.Mapping{URLs: []string{}, Misses: []string{}}
	}

	keys := make([]string, 0, len(lexical))
	seen := make(map[string]struct{}, len(lexical))
	for _, tok := range lexical {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		keys = append(keys, tok)
	}

	found, err := r.dict.LookupWords(ctx, keys)
	if err != nil {
		slog.Error("Dictionary lookup failed", "error", err, "keys", len(keys))
		found = map[string]string{}
	}

	mapping := domain.Mapping{
		URLs:   make([]string, 0, len(lexical)),
		Misses: []string{},
	}
	for _, tok := range lexical {
		if url, ok := found[tok]; ok {
			mapping.URLs = append(mapping.URLs, url)
			continue
		}
		mapping.Misses = append(mapping.Misses, tok)
	}

	if len(mapping.Misses) > 0 {
		shown := mapping.Misses
		if len(shown) > missLogLimit {
			shown = shown[:missLogLimit]
		}
		slog.Info("Dictionary misses", "misses", shown, "total", len(mapping.Misses))
	}
	return mapping
}
