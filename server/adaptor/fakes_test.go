package adaptor

import (
	"context"
	"fmt"
	"sync"

	"github.com/ponyo877/signtalk/server/domain"
	"github.com/ponyo877/signtalk/server/usecase"
	"github.com/stretchr/testify/mock"
)

type mockUsecase struct {
	mock.Mock
}

func (m *mockUsecase) ListMessages(ctx context.Context, roomID, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, roomID, limit)
	messages, _ := args.Get(0).([]domain.Message)
	return messages, args.Error(1)
}

func (m *mockUsecase) SearchMessages(ctx context.Context, roomID int, pattern string) ([]domain.Message, error) {
	args := m.Called(ctx, roomID, pattern)
	messages, _ := args.Get(0).([]domain.Message)
	return messages, args.Error(1)
}

func (m *mockUsecase) LookupRoom(ctx context.Context, userA, userB string) (int, error) {
	args := m.Called(ctx, userA, userB)
	return args.Int(0), args.Error(1)
}

func (m *mockUsecase) Translate(ctx context.Context, text any) (usecase.TranslationResult, error) {
	args := m.Called(ctx, text)
	result, _ := args.Get(0).(usecase.TranslationResult)
	return result, args.Error(1)
}

// echoStream answers every send with a receive for the sender's own session
// and rejects landmark ends, which transports must not emit.
type echoStream struct {
	mu       sync.Mutex
	requests []domain.StreamRequest
	sessions int
}

func (e *echoStream) HandleStreamSession(ctx context.Context, requestChan <-chan domain.StreamRequest, responseChan chan<- domain.StreamResponse, sessionID, remote string) error {
	e.mu.Lock()
	e.sessions++
	e.mu.Unlock()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case request, ok := <-requestChan:
			if !ok {
				return nil
			}
			e.mu.Lock()
			e.requests = append(e.requests, request)
			e.mu.Unlock()

			switch request.Type {
			case domain.RequestSend:
				responseChan <- domain.NewStreamResponse(request.ResolveRoom(), domain.Receive{
					Sender:     request.UserID,
					SenderName: request.UserID,
					Message:    request.Text,
					Gloss:      "학교 가다",
					URLs:       []string{"/v/school.mp4"},
					Miss:       []string{"가다"},
					Time:       "12:04",
				})
			case domain.RequestLandmark:
				if request.End {
					responseChan <- domain.NewStreamError("trace-1", fmt.Errorf("%w: no sentence", domain.ErrInvalidInput))
					continue
				}
				responseChan <- domain.NewStreamResponse(request.ResolveRoom(), domain.Receive{
					Sender:  request.UserID,
					Message: fmt.Sprintf("frame %d", len(request.Frame)),
				})
			}
		}
	}
}

func (e *echoStream) GetStreamStats() domain.StreamStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.StreamStats{ActiveSessions: e.sessions, Uptime: "1m0s"}
}

func (e *echoStream) seen() []domain.StreamRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.StreamRequest(nil), e.requests...)
}

type stubHealth struct {
	err error
}

func (s stubHealth) Health(context.Context) error {
	return s.err
}
