package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dubstudio/internal/services"
)

const (
	defaultBaseURL     = "https://api.deepgram.com"
	defaultModel       = "nova-2"
	defaultHTTPTimeout = 120 * time.Second
)

// Client wraps the Deepgram prerecorded transcription API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option customizes the Deepgram client.
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

// WithModel overrides the transcription model.
func WithModel(model string) Option {
	return func(c *Client) {
		model = strings.TrimSpace(model)
		if model != "" {
			c.model = model
		}
	}
}

// NewClient constructs a Deepgram API client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Word carries one word-level timestamp from the transcript.
type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Utterance is a speaker-attributed span of the transcript.
type Utterance struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Transcript string  `json:"transcript"`
	Speaker    int     `json:"speaker"`
}

// Transcription is the distilled result of a prerecorded transcription call.
type Transcription struct {
	Text       string      `json:"text"`
	Words      []Word      `json:"words"`
	Utterances []Utterance `json:"utterances"`
}

type prerecordedResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
				Words      []Word `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
		Utterances []Utterance `json:"utterances"`
	} `json:"results"`
}

var mimeTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".webm": "audio/webm",
	".opus": "audio/opus",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

// TranscribeFile uploads an audio file and returns the distilled transcription.
func (c *Client) TranscribeFile(ctx context.Context, audioPath string) (Transcription, error) {
	var empty Transcription
	if strings.TrimSpace(c.apiKey) == "" {
		return empty, services.Wrap(
			services.ErrConfiguration, "transcribing", "deepgram",
			"Deepgram API key is not configured; set deepgram.api_key or DEEPGRAM_API_KEY", nil)
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return empty, fmt.Errorf("deepgram transcribe: read audio: %w", err)
	}
	if len(audio) == 0 {
		return empty, errors.New("deepgram transcribe: audio file is empty")
	}

	endpoint, err := url.JoinPath(c.baseURL, "/v1/listen")
	if err != nil {
		return empty, fmt.Errorf("deepgram transcribe: build url: %w", err)
	}
	query := url.Values{}
	query.Set("model", c.model)
	query.Set("smart_format", "true")
	query.Set("utterances", "true")
	query.Set("punctuate", "true")
	query.Set("diarize", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+query.Encode(), bytes.NewReader(audio))
	if err != nil {
		return empty, fmt.Errorf("deepgram transcribe: request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", mimeTypeFor(audioPath))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, services.Wrap(
			services.ErrTransient, "transcribing", "deepgram",
			"Transcription request failed; check network connectivity", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("deepgram transcribe: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return empty, fmt.Errorf("deepgram transcribe: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed prerecordedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return empty, fmt.Errorf("deepgram transcribe: decode response: %w", err)
	}

	result := Transcription{Utterances: parsed.Results.Utterances}
	if len(parsed.Results.Channels) > 0 && len(parsed.Results.Channels[0].Alternatives) > 0 {
		alt := parsed.Results.Channels[0].Alternatives[0]
		result.Text = strings.TrimSpace(alt.Transcript)
		result.Words = alt.Words
	}
	if result.Text == "" {
		return empty, services.Wrap(
			services.ErrExternalTool, "transcribing", "deepgram",
			"No transcription was generated", nil)
	}
	return result, nil
}

func mimeTypeFor(path string) string {
	if mime, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "audio/wav"
}
