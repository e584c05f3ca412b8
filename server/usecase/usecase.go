package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ponyo877/signtalk/server/domain"
)

const defaultHistoryLimit = 1000

// Usecase serves the request/response operations around the stream:
// history, room lookup, one-off translation and admin imports.
type Usecase struct {
	repo         Repository
	dict         Dictionary
	pipeline     *Pipeline
	pool         *Pool
	historyLimit int
}

func NewUsecase(repo Repository, dict Dictionary, pipeline *Pipeline, pool *Pool, historyLimit int) *Usecase {
	if historyLimit < 1 {
		historyLimit = defaultHistoryLimit
	}
	return &Usecase{
		repo:         repo,
		dict:         dict,
		pipeline:     pipeline,
		pool:         pool,
		historyLimit: historyLimit,
	}
}

func (u *Usecase) ListMessages(ctx context.Context, roomID, limit int) ([]domain.Message, error) {
	if roomID <= 0 {
		return nil, fmt.Errorf("%w: room id %d", domain.ErrInvalidInput, roomID)
	}
	if limit <= 0 || limit > u.historyLimit {
		limit = u.historyLimit
	}
	messages, err := Call(ctx, u.pool, func(ctx context.Context) ([]domain.Message, error) {
		return u.repo.ListMessages(ctx, roomID, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	return messages, nil
}

// SearchMessages filters a room's history with a regular expression.
func (u *Usecase) SearchMessages(ctx context.Context, roomID int, pattern string) ([]domain.Message, error) {
	if roomID <= 0 {
		return nil, fmt.Errorf("%w: room id %d", domain.ErrInvalidInput, roomID)
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	messages, err := Call(ctx, u.pool, func(ctx context.Context) ([]domain.Message, error) {
		return u.repo.SearchMessages(ctx, roomID, pattern, u.historyLimit)
	})
	if err != nil {
		return nil, fmt.Errorf("error searching messages: %w", err)
	}
	return messages, nil
}

func (u *Usecase) LookupRoom(ctx context.Context, userA, userB string) (int, error) {
	userA, userB = strings.TrimSpace(userA), strings.TrimSpace(userB)
	if userA == "" || userB == "" {
		return 0, fmt.Errorf("%w: both users are required", domain.ErrInvalidInput)
	}
	roomID, err := Call(ctx, u.pool, func(ctx context.Context) (int, error) {
		return u.repo.LookupOrCreateRoom(ctx, userA, userB)
	})
	if err != nil {
		return 0, fmt.Errorf("error looking up room: %w", err)
	}
	return roomID, nil
}

// Translate runs the text chain without persisting or broadcasting.
func (u *Usecase) Translate(ctx context.Context, text any) (TranslationResult, error) {
	return u.pipeline.Run(ctx, text)
}

func (u *Usecase) AddUser(ctx context.Context, userID, fullName string) (domain.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.User{}, fmt.Errorf("%w: empty user id", domain.ErrInvalidInput)
	}
	if fullName == "" {
		fullName = userID
	}
	user, err := u.repo.CreateUser(ctx, userID, fullName)
	if err != nil {
		return domain.User{}, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// ImportWords upserts dictionary entries. Keys are normalized the same way
// gloss tokens are, so imported words match what the resolver looks up.
func (u *Usecase) ImportWords(ctx context.Context, words map[string]string) (int, error) {
	clean := make(map[string]string, len(words))
	for word, url := range words {
		key, err := domain.NormalizeInput(word)
		if err == nil {
			key, err = domain.CleanGloss(key)
		}
		if err != nil || key == "" || strings.Contains(key, " ") || url == "" {
			continue
		}
		clean[key] = url
	}
	if len(clean) == 0 {
		return 0, nil
	}
	if err := u.dict.UpsertWords(ctx, clean); err != nil {
		return 0, fmt.Errorf("error importing words: %w", err)
	}
	return len(clean), nil
}
