package dictionary

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingImporter struct {
	mu    sync.Mutex
	loads []map[string]string
}

func (r *recordingImporter) ImportWords(_ context.Context, words map[string]string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, words)
	return len(words), nil
}

func (r *recordingImporter) last() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.loads) == 0 {
		return nil
	}
	return r.loads[len(r.loads)-1]
}

func TestDecode(t *testing.T) {
	t.Parallel()

	words, err := Decode([]byte("[words]\n\"학교\" = \"/v/school.mp4\"\n\"가다\" = \"/v/go.mp4\"\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"학교": "/v/school.mp4", "가다": "/v/go.mp4"}, words)

	words, err = Decode([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, words)

	_, err = Decode([]byte("[words\n"))
	assert.Error(t, err)
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := Encode(map[string]string{"사과": "/v/apple.mp4"})
	require.NoError(t, err)
	words, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "/v/apple.mp4", words["사과"])
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dictionary.toml")
	require.NoError(t, os.WriteFile(path, []byte("[words]\n\"가\" = \"/v/ga.mp4\"\n"), 0o644))

	importer := &recordingImporter{}
	w, err := NewWatcher(path, importer)
	require.NoError(t, err)
	require.NoError(t, w.Sync(context.Background()))
	assert.Equal(t, "/v/ga.mp4", importer.last()["가"])

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("[words]\n\"나\" = \"/v/na.mp4\"\n"), 0o644)
		return importer.last()["나"] == "/v/na.mp4"
	}, 5*time.Second, 300*time.Millisecond)
}

func TestWatcherRunCanRestart(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dictionary.toml")
	require.NoError(t, os.WriteFile(path, []byte("[words]\n\"가\" = \"/v/ga.mp4\"\n"), 0o644))

	w, err := NewWatcher(path, &recordingImporter{})
	require.NoError(t, err)

	// Each Run owns its own fsnotify watcher and closes it on return.
	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()
		cancel()
		assert.NoError(t, <-done)
	}
}

func TestWatcherRunMissingDirectory(t *testing.T) {
	t.Parallel()

	w, err := NewWatcher(filepath.Join(t.TempDir(), "gone", "dictionary.toml"), &recordingImporter{})
	require.NoError(t, err)
	assert.Error(t, w.Run(context.Background()))
}
