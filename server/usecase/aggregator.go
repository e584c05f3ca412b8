package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ponyo877/signtalk/server/domain"
)

const defaultLandmarkBatch = 10

// Aggregator keeps one landmark buffer per user. The map lock only guards
// creation and removal of buffers; each buffer has its own lock, so frames
// from one user are applied in order while different users never contend.
type Aggregator struct {
	recognizer Recognizer
	composer   Composer
	batch      int

	mu      sync.Mutex
	buffers map[string]*landmarkBuffer
}

type landmarkBuffer struct {
	mu      sync.Mutex
	retired bool
	count   int
	window  []domain.Frame
	tokens  []string
}

func NewAggregator(recognizer Recognizer, composer Composer, batch int) *Aggregator {
	if batch < 1 {
		batch = defaultLandmarkBatch
	}
	return &Aggregator{
		recognizer: recognizer,
		composer:   composer,
		batch:      batch,
		buffers:    make(map[string]*landmarkBuffer),
	}
}

// acquire returns the locked buffer for userID, creating it if needed.
func (a *Aggregator) acquire(userID string) *landmarkBuffer {
	for {
		a.mu.Lock()
		buf, ok := a.buffers[userID]
		if !ok {
			buf = &landmarkBuffer{window: make([]domain.Frame, 0, a.batch)}
			a.buffers[userID] = buf
		}
		a.mu.Unlock()

		buf.mu.Lock()
		if !buf.retired {
			return buf
		}
		// Finished between lookup and lock; start over on a fresh buffer.
		buf.mu.Unlock()
	}
}

// Push appends a frame. Every batch-th frame runs one recognition over the
// frames collected since the previous one. A recognition error is logged
// and yields no token.
func (a *Aggregator) Push(ctx context.Context, userID string, frame domain.Frame) error {
	if userID == "" || len(frame) == 0 {
		return fmt.Errorf("%w: landmark frame for %q", domain.ErrInvalidInput, userID)
	}

	buf := a.acquire(userID)
	defer buf.mu.Unlock()

	buf.count++
	buf.window = append(buf.window, frame)
	if buf.count%a.batch != 0 {
		return nil
	}

	window := domain.Window{UserID: userID, Seq: buf.count / a.batch, Frames: buf.window}
	buf.window = make([]domain.Frame, 0, a.batch)

	token, err := a.recognizer.Recognize(ctx, window)
	if err != nil {
		slog.Warn("Landmark recognition failed", "error", err, "userID", userID, "window", window.Seq)
		return nil
	}
	if token != "" {
		buf.tokens = append(buf.tokens, token)
		slog.Debug("Landmark token recognized", "userID", userID, "window", window.Seq, "token", token)
	}
	return nil
}

// Finish drains the user's tokens into a sentence and drops the buffer.
// A user without a buffer, or with no tokens, gets an empty sentence.
func (a *Aggregator) Finish(ctx context.Context, userID string) (domain.Sentence, error) {
	a.mu.Lock()
	buf, ok := a.buffers[userID]
	if !ok {
		a.mu.Unlock()
		return domain.Sentence{Tokens: []string{}}, nil
	}
	delete(a.buffers, userID)
	a.mu.Unlock()

	buf.mu.Lock()
	buf.retired = true
	tokens := buf.tokens
	frames := buf.count
	buf.tokens, buf.window = nil, nil
	buf.mu.Unlock()

	if len(tokens) == 0 {
		slog.Info("Landmark stream ended without tokens", "userID", userID, "frames", frames)
		return domain.Sentence{Tokens: []string{}}, nil
	}

	text, err := a.composer.Compose(ctx, tokens)
	if err != nil {
		return domain.Sentence{Tokens: tokens}, fmt.Errorf("compose sentence: %w", err)
	}
	return domain.Sentence{Text: text, Tokens: tokens}, nil
}

// Pending reports how many frames and tokens a user has buffered.
func (a *Aggregator) Pending(userID string) (frames, tokens int) {
	a.mu.Lock()
	buf, ok := a.buffers[userID]
	a.mu.Unlock()
	if !ok {
		return 0, 0
	}
	buf.mu.Lock()
	defer buf.mu.Unlock()
	return buf.count, len(buf.tokens)
}

func (a *Aggregator) ActiveUsers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buffers)
}

// Discard drops a user's buffer without composing a sentence.
func (a *Aggregator) Discard(userID string) {
	a.mu.Lock()
	buf, ok := a.buffers[userID]
	delete(a.buffers, userID)
	a.mu.Unlock()
	if !ok {
		return
	}
	buf.mu.Lock()
	buf.retired = true
	buf.mu.Unlock()
}
