package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ponyo877/signtalk/server/domain"
)

type OutcomeState string

const (
	// OutcomePending means a landmark frame was buffered.
	OutcomePending   OutcomeState = "pending"
	OutcomeDelivered OutcomeState = "delivered"
	// OutcomeEmpty means a landmark stream ended with nothing to say.
	OutcomeEmpty  OutcomeState = "empty"
	OutcomeFailed OutcomeState = "failed"
)

// Outcome is the terminal state of one pipeline event.
type Outcome struct {
	State     OutcomeState
	Trace     string
	Err       error
	Published domain.PublishResult
}

// StreamUsecase drives inbound events through the pipeline and hands the
// result to the stream manager for delivery.
type StreamUsecase struct {
	repo          Repository
	streamManager domain.StreamManager
	pipeline      *Pipeline
	aggregator    *Aggregator
	pool          *Pool
	location      *time.Location
	now           func() time.Time
}

// NewStreamUsecase creates a new stream usecase
func NewStreamUsecase(
	repo Repository,
	streamManager domain.StreamManager,
	pipeline *Pipeline,
	aggregator *Aggregator,
	pool *Pool,
	location *time.Location,
) *StreamUsecase {
	if location == nil {
		location = time.UTC
	}
	return &StreamUsecase{
		repo:          repo,
		streamManager: streamManager,
		pipeline:      pipeline,
		aggregator:    aggregator,
		pool:          pool,
		location:      location,
		now:           time.Now,
	}
}

// HandleStreamSession processes one connection's requests in arrival order
// until the request channel closes or ctx ends. The session and all of its
// room memberships are released on return.
func (u *StreamUsecase) HandleStreamSession(
	ctx context.Context,
	requestChan <-chan domain.StreamRequest,
	responseChan chan<- domain.StreamResponse,
	sessionID, remote string,
) error {
	session := domain.NewStreamSession(sessionID, remote)
	if err := u.streamManager.RegisterSession(session, responseChan); err != nil {
		return fmt.Errorf("failed to register session: %w", err)
	}

	streaming := make(map[string]struct{})
	defer func() {
		if err := u.streamManager.UnregisterSession(sessionID); err != nil {
			slog.Warn("Failed to unregister session", "error", err, "sessionID", sessionID)
		}
		// A user still connected elsewhere may be streaming into the same buffer.
		for userID := range streaming {
			if u.streamManager.UserSessionCount(userID) == 0 {
				u.aggregator.Discard(userID)
			}
		}
		slog.Debug("Session closed", "sessionID", sessionID, "remote", remote)
	}()
	slog.Debug("Session opened", "sessionID", sessionID, "remote", remote)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case request, ok := <-requestChan:
			if !ok {
				return nil
			}
			u.handleRequest(ctx, sessionID, request, streaming)
		}
	}
}

func (u *StreamUsecase) handleRequest(ctx context.Context, sessionID string, request domain.StreamRequest, streaming map[string]struct{}) {
	if !request.IsValid() {
		slog.Warn("Invalid stream request", "sessionID", sessionID, "request", request.String())
		u.reject(sessionID, "", fmt.Errorf("%w: %s", domain.ErrInvalidInput, request.Type))
		return
	}
	if request.UserID != "" {
		if err := u.streamManager.SetSessionUser(sessionID, request.UserID); err != nil {
			slog.Warn("Failed to set session user", "error", err, "sessionID", sessionID)
		}
	}

	switch request.Type {
	case domain.RequestJoin:
		if err := u.streamManager.JoinRoom(sessionID, request.ResolveRoom()); err != nil {
			u.reject(sessionID, "", err)
		}
	case domain.RequestLeave:
		if err := u.streamManager.LeaveRoom(sessionID, request.ResolveRoom()); err != nil {
			u.reject(sessionID, "", err)
		}
	case domain.RequestSend, domain.RequestLandmark:
		event, err := request.ToEvent(u.now())
		if err != nil {
			u.reject(sessionID, "", err)
			return
		}
		if request.Type == domain.RequestLandmark {
			if request.End {
				delete(streaming, request.UserID)
			} else {
				streaming[request.UserID] = struct{}{}
			}
		}
		u.Process(ctx, sessionID, event)
	}
}

// Process runs one event to a terminal state. Failures are logged with the
// event's trace id and reported only to the sending session; nothing is
// broadcast for a failed event.
func (u *StreamUsecase) Process(ctx context.Context, sessionID string, event domain.Event) Outcome {
	trace := NewTraceID()
	header := event.Header()
	log := slog.With("trace", trace, "sessionID", sessionID, "userID", header.UserID, "room", header.Room)

	var outcome Outcome
	switch ev := event.(type) {
	case domain.TextEvent:
		outcome = u.processText(ctx, log, ev)
	case domain.LandmarkEvent:
		outcome = u.processLandmark(ctx, log, ev)
	default:
		outcome = Outcome{State: OutcomeFailed, Err: fmt.Errorf("%w: unknown event %T", domain.ErrInvalidInput, event)}
	}
	outcome.Trace = trace

	if outcome.State == OutcomeFailed {
		u.reject(sessionID, trace, outcome.Err)
	}
	return outcome
}

func (u *StreamUsecase) processText(ctx context.Context, log *slog.Logger, ev domain.TextEvent) Outcome {
	if ev.RoomID <= 0 {
		return u.fail(log, "Text event without room id", fmt.Errorf("%w: room id %d", domain.ErrInvalidInput, ev.RoomID))
	}

	started := time.Now()
	result, err := u.pipeline.Run(ctx, ev.Text)
	if err != nil {
		return u.fail(log, "Translation failed", err)
	}
	log.Debug("Translation finished",
		"gloss", result.CleanGloss,
		"urls", len(result.Mapping.URLs),
		"misses", len(result.Mapping.Misses),
		"latency", time.Since(started))

	user, err := u.persist(ctx, ev.EventHeader, result.Prepared.Canonical)
	if err != nil {
		// The translation is kept in the log so it can be recovered.
		return u.fail(log, "Persist failed after translation", err,
			"gloss", result.CleanGloss,
			"urls", result.Mapping.URLs,
			"misses", result.Mapping.Misses)
	}

	receive := domain.Receive{
		Sender:     user.UserID,
		SenderName: user.FullName,
		Message:    result.Prepared.Canonical,
		Gloss:      result.CleanGloss,
		URLs:       result.Mapping.URLs,
		Miss:       result.Mapping.Misses,
		Time:       u.clock(ev.ReceivedAt),
	}
	return u.deliver(log, ev.Room, receive)
}

func (u *StreamUsecase) processLandmark(ctx context.Context, log *slog.Logger, ev domain.LandmarkEvent) Outcome {
	if !ev.End {
		err := u.pool.Do(ctx, func(ctx context.Context) error {
			return u.aggregator.Push(ctx, ev.UserID, ev.Frame)
		})
		if err != nil {
			return u.fail(log, "Landmark frame rejected", err)
		}
		return Outcome{State: OutcomePending}
	}

	sentence, err := Call(ctx, u.pool, func(ctx context.Context) (domain.Sentence, error) {
		sentence, err := u.aggregator.Finish(ctx, ev.UserID)
		if err != nil {
			// The tokens are gone from the buffer; keep them in the log.
			slog.Warn("Dropping recognized tokens", "userID", ev.UserID, "tokens", sentence.Tokens)
		}
		return sentence, err
	})
	if err != nil {
		return u.fail(log, "Landmark stream could not be finished", err)
	}
	if sentence.IsEmpty() {
		log.Info("Landmark stream produced no sentence")
		return Outcome{State: OutcomeEmpty}
	}
	if ev.RoomID <= 0 {
		return u.fail(log, "Landmark event without room id", fmt.Errorf("%w: room id %d", domain.ErrInvalidInput, ev.RoomID))
	}

	user, err := u.persist(ctx, ev.EventHeader, sentence.Text)
	if err != nil {
		return u.fail(log, "Persist failed after recognition", err, "sentenceLen", len(sentence.Text))
	}

	receive := domain.Receive{
		Sender:     user.UserID,
		SenderName: user.FullName,
		Message:    sentence.Text,
		Gloss:      strings.Join(sentence.Tokens, " "),
		Time:       u.clock(ev.ReceivedAt),
	}
	return u.deliver(log, ev.Room, receive)
}

// persist stores the message before it is delivered so history reads never
// lag behind what clients have seen.
func (u *StreamUsecase) persist(ctx context.Context, header domain.EventHeader, content string) (domain.User, error) {
	return Call(ctx, u.pool, func(ctx context.Context) (domain.User, error) {
		user, err := u.repo.LookupUser(ctx, header.UserID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUserNotFound, header.UserID)
		}
		if err != nil {
			return domain.User{}, err
		}
		if _, err := u.repo.InsertMessage(ctx, header.RoomID, user.No, content); err != nil {
			return domain.User{}, err
		}
		return user, nil
	})
}

func (u *StreamUsecase) deliver(log *slog.Logger, room string, receive domain.Receive) Outcome {
	published := u.streamManager.Broadcast(room, domain.NewStreamResponse(room, receive))
	log.Info("Message delivered", "sent", published.Sent, "skipped", published.Skipped)
	return Outcome{State: OutcomeDelivered, Published: published}
}

func (u *StreamUsecase) fail(log *slog.Logger, msg string, err error, args ...any) Outcome {
	log.Error(msg, append([]any{"error", err}, args...)...)
	return Outcome{State: OutcomeFailed, Err: err}
}

func (u *StreamUsecase) reject(sessionID, trace string, err error) {
	if sessionID == "" || err == nil {
		return
	}
	if sendErr := u.streamManager.SendToSession(sessionID, domain.NewStreamError(trace, err)); sendErr != nil {
		slog.Debug("Failed to report error to session", "error", sendErr, "sessionID", sessionID)
	}
}

func (u *StreamUsecase) clock(at time.Time) string {
	if at.IsZero() {
		at = u.now()
	}
	return at.In(u.location).Format("15:04")
}

// GetStreamStats returns streaming statistics
func (u *StreamUsecase) GetStreamStats() domain.StreamStats {
	return u.streamManager.GetStats()
}
