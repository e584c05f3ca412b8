package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ponyo877/signtalk/server/domain"
)

type recognizeRequest struct {
	UserID string      `json:"user_id"`
	Seq    int         `json:"seq"`
	Frames [][]float64 `json:"frames"`
}

type recognizeResponse struct {
	Gloss string `json:"gloss"`
}

// HTTPRecognizer posts a landmark window to a gesture model server.
type HTTPRecognizer struct {
	baseURL string
	http    *http.Client
}

func NewHTTPRecognizer(baseURL string, timeout time.Duration) *HTTPRecognizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPRecognizer{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (r *HTTPRecognizer) Recognize(ctx context.Context, window domain.Window) (string, error) {
	frames := make([][]float64, len(window.Frames))
	for i, f := range window.Frames {
		frames[i] = f
	}
	body, err := json.Marshal(recognizeRequest{UserID: window.UserID, Seq: window.Seq, Frames: frames})
	if err != nil {
		return "", fmt.Errorf("failed to encode window: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/recognize", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return "", fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var out recognizeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamInvalidResponse, err)
	}
	return strings.TrimSpace(out.Gloss), nil
}

// SequenceRecognizer stands in for a gesture model: the n-th window of a
// stream is recognized as "단어 n".
type SequenceRecognizer struct{}

func (SequenceRecognizer) Recognize(_ context.Context, window domain.Window) (string, error) {
	slog.Debug("Placeholder recognition", "userID", window.UserID, "window", window.Seq, "frames", len(window.Frames))
	return fmt.Sprintf("단어 %d", window.Seq), nil
}
