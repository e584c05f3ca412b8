package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ponyo877/signtalk/server/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "signtalk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func TestUsersAndRooms(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newTestRepository(t)

	alice, err := repo.CreateUser(ctx, "alice", "Alice")
	require.NoError(t, err)
	bob, err := repo.CreateUser(ctx, "bob", "Bob")
	require.NoError(t, err)
	assert.NotEqual(t, alice.No, bob.No)

	got, err := repo.LookupUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = repo.LookupUser(ctx, "mallory")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	first, err := repo.LookupOrCreateRoom(ctx, "alice", "bob")
	require.NoError(t, err)
	second, err := repo.LookupOrCreateRoom(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = repo.LookupOrCreateRoom(ctx, "alice", "mallory")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestMessages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newTestRepository(t)
	alice, err := repo.CreateUser(ctx, "alice", "Alice")
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, "bob", "Bob")
	require.NoError(t, err)
	roomID, err := repo.LookupOrCreateRoom(ctx, "alice", "bob")
	require.NoError(t, err)

	for _, text := range []string{"안녕", "학교 가?", "응 학교"} {
		_, err := repo.InsertMessage(ctx, roomID, alice.No, text)
		require.NoError(t, err)
	}

	messages, err := repo.ListMessages(ctx, roomID, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "학교 가?", messages[0].Content)
	assert.Equal(t, "응 학교", messages[1].Content)
	assert.Equal(t, "alice", messages[1].Sender)
	assert.Equal(t, "Alice", messages[1].SenderName)

	found, err := repo.SearchMessages(ctx, roomID, "^학교", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "학교 가?", found[0].Content)

	_, err = repo.InsertMessage(ctx, roomID, 999, "ghost")
	assert.Error(t, err)
}

func TestCorpus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.UpsertWords(ctx, map[string]string{"가": "/v/ga.mp4", "나": "/v/na.mp4"}))
	require.NoError(t, repo.UpsertWords(ctx, map[string]string{"가": "/v/ga2.mp4"}))

	found, err := repo.LookupWords(ctx, []string{"가", "나", "모름"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"가": "/v/ga2.mp4", "나": "/v/na.mp4"}, found)

	found, err = repo.LookupWords(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, found)

	all, err := repo.ListWords(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
