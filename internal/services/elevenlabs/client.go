package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"dubstudio/internal/catalog"
	"dubstudio/internal/services"
)

const (
	defaultBaseURL     = "https://api.elevenlabs.io/v1"
	defaultModelID     = "eleven_multilingual_v2"
	defaultHTTPTimeout = 60 * time.Second

	// Cloning needs enough source material to produce a usable voice.
	minCloneSampleBytes = 1024
)

// Client wraps the ElevenLabs voices and text-to-speech APIs.
type Client struct {
	apiKey     string
	baseURL    string
	modelID    string
	httpClient *http.Client
}

// Option customizes the ElevenLabs client.
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

// WithModelID overrides the synthesis model.
func WithModelID(modelID string) Option {
	return func(c *Client) {
		modelID = strings.TrimSpace(modelID)
		if modelID != "" {
			c.modelID = modelID
		}
	}
}

// NewClient constructs an ElevenLabs API client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		modelID:    defaultModelID,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Voice describes one available prebuilt voice.
type Voice struct {
	VoiceID  string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type voicesResponse struct {
	Voices []Voice `json:"voices"`
}

// Voices lists the prebuilt voices available to the account.
func (c *Client) Voices(ctx context.Context) ([]Voice, error) {
	if err := c.requireKey("voices"); err != nil {
		return nil, err
	}
	endpoint, err := url.JoinPath(c.baseURL, "/voices")
	if err != nil {
		return nil, fmt.Errorf("elevenlabs voices: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs voices: request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(
			services.ErrTransient, "generating_voice", "list voices",
			"Voice listing request failed; check network connectivity", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs voices: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs voices: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed voicesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("elevenlabs voices: decode response: %w", err)
	}
	return parsed.Voices, nil
}

// CloneVoice builds a temporary voice from a source audio sample and returns
// its voice ID. Callers are expected to delete the voice once synthesis is done.
func (c *Client) CloneVoice(ctx context.Context, audioPath, voiceName string) (string, error) {
	if err := c.requireKey("clone voice"); err != nil {
		return "", err
	}
	voiceName = strings.TrimSpace(voiceName)
	if voiceName == "" {
		voiceName = "temp_cloned_voice"
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("elevenlabs clone: read audio: %w", err)
	}
	if len(audio) < minCloneSampleBytes {
		return "", services.Wrap(
			services.ErrValidation, "generating_voice", "clone voice",
			"Audio sample too small for voice cloning", nil)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("elevenlabs clone: build form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("elevenlabs clone: write sample: %w", err)
	}
	if err := writer.WriteField("name", voiceName); err != nil {
		return "", fmt.Errorf("elevenlabs clone: write name: %w", err)
	}
	if err := writer.WriteField("description", "Voice cloned from original video"); err != nil {
		return "", fmt.Errorf("elevenlabs clone: write description: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("elevenlabs clone: close form: %w", err)
	}

	endpoint, err := url.JoinPath(c.baseURL, "/voices/add")
	if err != nil {
		return "", fmt.Errorf("elevenlabs clone: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("elevenlabs clone: request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(
			services.ErrTransient, "generating_voice", "clone voice",
			"Voice cloning request failed; check network connectivity", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("elevenlabs clone: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("elevenlabs clone: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("elevenlabs clone: decode response: %w", err)
	}
	if strings.TrimSpace(parsed.VoiceID) == "" {
		return "", services.Wrap(
			services.ErrExternalTool, "generating_voice", "clone voice",
			"Voice cloning succeeded but returned no voice id", nil)
	}
	return parsed.VoiceID, nil
}

// DeleteVoice removes a voice created by CloneVoice.
func (c *Client) DeleteVoice(ctx context.Context, voiceID string) error {
	if err := c.requireKey("delete voice"); err != nil {
		return err
	}
	voiceID = strings.TrimSpace(voiceID)
	if voiceID == "" {
		return errors.New("elevenlabs delete: voice id required")
	}
	endpoint, err := url.JoinPath(c.baseURL, "/voices", voiceID)
	if err != nil {
		return fmt.Errorf("elevenlabs delete: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("elevenlabs delete: request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("elevenlabs delete: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("elevenlabs delete: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Synthesize renders text as MP3 audio using the given voice and style preset.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string, style catalog.VoiceStyle) ([]byte, error) {
	if err := c.requireKey("synthesize"); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("elevenlabs synthesize: text required")
	}
	voiceID = strings.TrimSpace(voiceID)
	if voiceID == "" {
		return nil, errors.New("elevenlabs synthesize: voice id required")
	}

	payload := map[string]any{
		"text":     text,
		"model_id": c.modelID,
		"voice_settings": map[string]any{
			"stability":         style.Stability,
			"similarity_boost":  style.SimilarityBoost,
			"style":             style.Style,
			"use_speaker_boost": style.UseSpeakerBoost,
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs synthesize: encode request: %w", err)
	}

	endpoint, err := url.JoinPath(c.baseURL, "/text-to-speech", voiceID)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs synthesize: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs synthesize: request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(
			services.ErrTransient, "generating_voice", "synthesize",
			"Speech synthesis request failed; check network connectivity", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs synthesize: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs synthesize: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if len(body) == 0 {
		return nil, services.Wrap(
			services.ErrExternalTool, "generating_voice", "synthesize",
			"Speech synthesis returned no audio", nil)
	}
	return body, nil
}

func (c *Client) requireKey(operation string) error {
	if strings.TrimSpace(c.apiKey) == "" {
		return services.Wrap(
			services.ErrConfiguration, "generating_voice", operation,
			"ElevenLabs API key is not configured; set elevenlabs.api_key or ELEVENLABS_API_KEY", nil)
	}
	return nil
}
