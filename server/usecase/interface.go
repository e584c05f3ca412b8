package usecase

import (
	"context"

	"github.com/ponyo877/signtalk/server/domain"
)

type Repository interface {
	// User
	LookupUser(ctx context.Context, userID string) (domain.User, error)
	CreateUser(ctx context.Context, userID, fullName string) (domain.User, error)

	// Room
	LookupOrCreateRoom(ctx context.Context, userA, userB string) (int, error)

	// Message
	InsertMessage(ctx context.Context, roomID, userNo int, content string) (domain.Message, error)
	ListMessages(ctx context.Context, roomID, limit int) ([]domain.Message, error)
	SearchMessages(ctx context.Context, roomID int, pattern string, limit int) ([]domain.Message, error)
}

// Dictionary is the word to clip URL store. LookupWords returns only the
// words that have an entry.
type Dictionary interface {
	LookupWords(ctx context.Context, words []string) (map[string]string, error)
	UpsertWords(ctx context.Context, words map[string]string) error
}

type Translator interface {
	Translate(ctx context.Context, text string) (domain.Translation, error)
}

// Recognizer turns a window of landmark frames into at most one gloss token.
// An empty string means nothing was recognized.
type Recognizer interface {
	Recognize(ctx context.Context, window domain.Window) (string, error)
}

// Composer turns recognized gloss tokens into a sentence.
type Composer interface {
	Compose(ctx context.Context, tokens []string) (string, error)
}
