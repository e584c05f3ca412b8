package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ponyo877/signtalk/server/domain"
)

// TranslationResult carries every stage of the text chain so callers can
// report or persist whichever form they need.
type TranslationResult struct {
	Prepared    domain.Prepared
	Translation domain.Translation
	CleanGloss  string
	Tokens      []string
	Mapping     domain.Mapping
}

// Pipeline is normalize, translate, clean and resolve. Translation and
// dictionary lookups run on the pool.
type Pipeline struct {
	translator Translator
	resolver   *Resolver
	pool       *Pool
	retries    int
	backoff    time.Duration
}

func NewPipeline(translator Translator, resolver *Resolver, pool *Pool, retries int) *Pipeline {
	if retries < 0 {
		retries = 0
	}
	return &Pipeline{
		translator: translator,
		resolver:   resolver,
		pool:       pool,
		retries:    retries,
		backoff:    200 * time.Millisecond,
	}
}

func (p *Pipeline) Run(ctx context.Context, text any) (TranslationResult, error) {
	prepared, err := domain.Prepare(text)
	if err != nil {
		return TranslationResult{}, err
	}
	if prepared.Model == "" {
		return TranslationResult{Prepared: prepared}, fmt.Errorf("%w: empty text", domain.ErrInvalidInput)
	}

	translation, err := p.translate(ctx, prepared.Model)
	if err != nil {
		return TranslationResult{Prepared: prepared}, err
	}

	clean, err := domain.CleanGloss(translation.Gloss)
	if err != nil {
		return TranslationResult{Prepared: prepared, Translation: translation}, err
	}
	tokens := domain.Tokens(clean)

	mapping, err := Call(ctx, p.pool, func(ctx context.Context) (domain.Mapping, error) {
		return p.resolver.Resolve(ctx, tokens), nil
	})
	if err != nil {
		return TranslationResult{Prepared: prepared, Translation: translation, CleanGloss: clean, Tokens: tokens},
			fmt.Errorf("resolve gloss: %w", err)
	}

	return TranslationResult{
		Prepared:    prepared,
		Translation: translation,
		CleanGloss:  clean,
		Tokens:      tokens,
		Mapping:     mapping,
	}, nil
}

// translate retries only ErrUpstreamUnavailable, and only when configured.
func (p *Pipeline) translate(ctx context.Context, text string) (domain.Translation, error) {
	var lastErr error
	for attempt := 0; attempt <= p.retries; attempt++ {
		if attempt > 0 {
			slog.Debug("Retrying translation", "attempt", attempt, "error", lastErr)
			select {
			case <-time.After(p.backoff * time.Duration(attempt)):
			case <-ctx.Done():
				return domain.Translation{}, ctx.Err()
			}
		}

		translation, err := Call(ctx, p.pool, func(ctx context.Context) (domain.Translation, error) {
			return p.translator.Translate(ctx, text)
		})
		if err == nil {
			return translation, nil
		}
		lastErr = err
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			break
		}
	}
	return domain.Translation{}, lastErr
}
