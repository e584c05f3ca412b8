package adaptor

import (
	"context"

	"github.com/ponyo877/signtalk/server/domain"
	"github.com/ponyo877/signtalk/server/usecase"
)

type Usecase interface {
	ListMessages(ctx context.Context, roomID, limit int) ([]domain.Message, error)
	SearchMessages(ctx context.Context, roomID int, pattern string) ([]domain.Message, error)
	LookupRoom(ctx context.Context, userA, userB string) (int, error)
	Translate(ctx context.Context, text any) (usecase.TranslationResult, error)
}

type StreamUsecase interface {
	HandleStreamSession(ctx context.Context, requestChan <-chan domain.StreamRequest, responseChan chan<- domain.StreamResponse, sessionID, remote string) error
	GetStreamStats() domain.StreamStats
}

// HealthChecker reports whether the model server answers.
type HealthChecker interface {
	Health(ctx context.Context) error
}
