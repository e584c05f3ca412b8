package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/ponyo877/signtalk/server/domain"
	"github.com/stretchr/testify/mock"
)

type mockDictionary struct {
	mock.Mock
}

func (m *mockDictionary) LookupWords(ctx context.Context, words []string) (map[string]string, error) {
	args := m.Called(ctx, words)
	found, _ := args.Get(0).(map[string]string)
	return found, args.Error(1)
}

func (m *mockDictionary) UpsertWords(ctx context.Context, words map[string]string) error {
	return m.Called(ctx, words).Error(0)
}

type mockTranslator struct {
	mock.Mock
}

func (m *mockTranslator) Translate(ctx context.Context, text string) (domain.Translation, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(domain.Translation), args.Error(1)
}

// mapDictionary is a fixed dictionary that counts lookups.
type mapDictionary struct {
	mu      sync.Mutex
	words   map[string]string
	lookups int
}

func (d *mapDictionary) LookupWords(_ context.Context, words []string) (map[string]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++
	found := make(map[string]string)
	for _, w := range words {
		if url, ok := d.words[w]; ok {
			found[w] = url
		}
	}
	return found, nil
}

func (d *mapDictionary) UpsertWords(_ context.Context, words map[string]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, v := range words {
		d.words[k] = v
	}
	return nil
}

// memoryRepository is an in-memory storage collaborator.
type memoryRepository struct {
	mu        sync.Mutex
	users     map[string]domain.User
	messages  []domain.Message
	insertErr error
}

func newMemoryRepository(users ...domain.User) *memoryRepository {
	r := &memoryRepository{users: make(map[string]domain.User)}
	for _, u := range users {
		r.users[u.UserID] = u
	}
	return r
}

func (r *memoryRepository) LookupUser(_ context.Context, userID string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (r *memoryRepository) CreateUser(_ context.Context, userID, fullName string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := domain.User{No: len(r.users) + 1, UserID: userID, FullName: fullName}
	r.users[userID] = u
	return u, nil
}

func (r *memoryRepository) LookupOrCreateRoom(_ context.Context, userA, userB string) (int, error) {
	return 1, nil
}

func (r *memoryRepository) InsertMessage(_ context.Context, roomID, userNo int, content string) (domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", domain.ErrStorageFailure, r.insertErr)
	}
	m := domain.Message{ID: len(r.messages) + 1, RoomID: roomID, Content: content, CreatedAt: time.Now()}
	r.messages = append(r.messages, m)
	return m, nil
}

func (r *memoryRepository) ListMessages(_ context.Context, roomID, limit int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Message{}
	for _, m := range r.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *memoryRepository) SearchMessages(_ context.Context, roomID int, pattern string, limit int) ([]domain.Message, error) {
	re := regexp.MustCompile(pattern)
	all, _ := r.ListMessages(context.Background(), roomID, limit)
	out := []domain.Message{}
	for _, m := range all {
		if re.MatchString(m.Content) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryRepository) stored() []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Message(nil), r.messages...)
}

// countingRecognizer yields "단어 <seq>" and records every call.
type countingRecognizer struct {
	mu    sync.Mutex
	calls []domain.Window
	err   error
}

func (r *countingRecognizer) Recognize(_ context.Context, w domain.Window) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, w)
	if r.err != nil {
		return "", r.err
	}
	return fmt.Sprintf("단어 %d", w.Seq), nil
}

func (r *countingRecognizer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type joinComposer struct {
	calls int
}

func (c *joinComposer) Compose(_ context.Context, tokens []string) (string, error) {
	c.calls++
	out := ""
	for i, t := range tokens {
		if i > 0 {
			out += " "
		}
		out += t
	}
	return out, nil
}

func startedPool(t *testing.T) *Pool {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPool(4, 16)
	p.Start(ctx)
	t.Cleanup(func() {
		_ = p.Stop(context.Background())
		cancel()
	})
	return p
}

func frame() domain.Frame {
	return make(domain.Frame, 96)
}

// slowRepository blocks LookupUser until release is closed, ignoring ctx.
type slowRepository struct {
	*memoryRepository
	entered  chan struct{}
	release  chan struct{}
	finished chan struct{}
}

func (r *slowRepository) LookupUser(ctx context.Context, userID string) (domain.User, error) {
	close(r.entered)
	<-r.release
	defer close(r.finished)
	return r.memoryRepository.LookupUser(ctx, userID)
}
