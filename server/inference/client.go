// Package inference talks to the model services: text translation, gesture
// recognition and sentence composition.
package inference

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ponyo877/signtalk/server/domain"
)

const (
	DefaultTimeout = 10 * time.Second
	previewRunes   = 80
	maxBodyBytes   = 1 << 20
)

type translateRequest struct {
	Text      string `json:"text"`
	RequestID string `json:"request_id"`
}

type translateResponse struct {
	RequestID string         `json:"request_id"`
	Input     string         `json:"input"`
	Gloss     *string        `json:"gloss"`
	Meta      map[string]any `json:"meta"`
}

// Client calls the translation model server. It does not retry.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Translate(ctx context.Context, text string) (domain.Translation, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Translation{}, fmt.Errorf("%w: text must be non-empty", domain.ErrInvalidInput)
	}

	url := c.baseURL + "/v1/translate"
	requestID := uuid.NewString()
	log := slog.With("requestID", requestID, "url", url)
	log.Info("Translate request",
		"timeout", c.timeout,
		"inputLen", len(text),
		"inputHash", hashText(text))
	log.Debug("Translate input", "preview", preview(text))

	body, err := json.Marshal(translateRequest{Text: text, RequestID: requestID})
	if err != nil {
		return domain.Translation{}, fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.Translation{}, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(started)
	if err != nil {
		log.Warn("Translate request failed", "error", err, "latency", elapsed)
		return domain.Translation{}, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	log.Info("Translate response", "status", resp.StatusCode, "latency", elapsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return domain.Translation{}, fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var out translateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.Translation{}, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		}
		return domain.Translation{}, fmt.Errorf("%w: %v", domain.ErrUpstreamInvalidResponse, err)
	}
	if out.Gloss == nil || strings.TrimSpace(*out.Gloss) == "" {
		return domain.Translation{}, fmt.Errorf("%w: missing gloss", domain.ErrUpstreamInvalidResponse)
	}
	if out.Meta == nil {
		out.Meta = map[string]any{}
	}
	return domain.Translation{Gloss: *out.Gloss, Meta: out.Meta}, nil
}

// Health checks GET {base}/health.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}
	return nil
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes])
}
