package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dubstudio/internal/services"
)

const (
	defaultBaseURL     = "https://translate.googleapis.com"
	defaultHTTPTimeout = 30 * time.Second

	// The free endpoint rejects very large single requests, so long
	// transcripts are split on sentence boundaries.
	maxChunkRunes = 4500
)

// Client wraps the free Google Translate web endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes the translate client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient constructs a translation client. No API key is required.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Translate converts text into the target language, auto-detecting the source.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("translate: text required")
	}
	targetLanguage = strings.ToLower(strings.TrimSpace(targetLanguage))
	if targetLanguage == "" {
		return "", errors.New("translate: target language required")
	}

	var out strings.Builder
	for _, chunk := range splitChunks(text, maxChunkRunes) {
		translated, err := c.translateChunk(ctx, chunk, targetLanguage)
		if err != nil {
			return "", err
		}
		if out.Len() > 0 {
			out.WriteString(" ")
		}
		out.WriteString(translated)
	}
	return out.String(), nil
}

func (c *Client) translateChunk(ctx context.Context, text, targetLanguage string) (string, error) {
	endpoint, err := url.JoinPath(c.baseURL, "/translate_a/single")
	if err != nil {
		return "", fmt.Errorf("translate: build url: %w", err)
	}
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", "auto")
	query.Set("tl", targetLanguage)
	query.Set("dt", "t")
	query.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("translate: request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(
			services.ErrTransient, "translating", "google translate",
			"Translation request failed; check network connectivity", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("translate: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	translated, err := decodeSegments(body)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(translated) == "" {
		return "", services.Wrap(
			services.ErrExternalTool, "translating", "google translate",
			"Translation service returned an empty result", nil)
	}
	return translated, nil
}

// decodeSegments parses the undocumented nested-array payload: the first
// element is a list of [translatedSegment, sourceSegment, ...] tuples.
func decodeSegments(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	if len(payload) == 0 {
		return "", errors.New("translate: empty response payload")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("translate: decode segments: %w", err)
	}

	var out strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(segment[0], &piece); err != nil {
			continue
		}
		out.WriteString(piece)
	}
	return out.String(), nil
}

// splitChunks breaks text into pieces at most limit runes long, preferring
// sentence boundaries.
func splitChunks(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = append(chunks, strings.TrimSpace(string(runes)))
			break
		}
		cut := limit
		for i := limit; i > limit/2; i-- {
			r := runes[i-1]
			if r == '.' || r == '!' || r == '?' || r == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimSpace(string(runes[:cut])))
		runes = runes[cut:]
	}
	return chunks
}
