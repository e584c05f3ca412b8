package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ponyo877/signtalk/server/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRecognizer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/recognize", r.URL.Path)
		var req recognizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Frames, 2)
		assert.Equal(t, 3, req.Seq)
		_, _ = w.Write([]byte(`{"gloss": " 안녕 "}`))
	}))
	t.Cleanup(server.Close)

	rec := NewHTTPRecognizer(server.URL, time.Second)
	got, err := rec.Recognize(context.Background(), domain.Window{
		UserID: "alice",
		Seq:    3,
		Frames: []domain.Frame{{0.1, 0.2}, {0.3, 0.4}},
	})
	require.NoError(t, err)
	assert.Equal(t, "안녕", got)
}

func TestHTTPRecognizerUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	_, err := NewHTTPRecognizer(server.URL, time.Second).Recognize(context.Background(), domain.Window{Seq: 1})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestSequenceRecognizer(t *testing.T) {
	t.Parallel()

	got, err := SequenceRecognizer{}.Recognize(context.Background(), domain.Window{Seq: 2})
	require.NoError(t, err)
	assert.Equal(t, "단어 2", got)
}
