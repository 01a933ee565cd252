package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dubstudio/internal/api"
	"dubstudio/internal/session"
)

// daemonClient talks to the dubstudiod HTTP API.
type daemonClient struct {
	baseURL    string
	httpClient *http.Client
}

func newDaemonClient(addr string) *daemonClient {
	base := strings.TrimSpace(addr)
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &daemonClient{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Minute},
	}
}

func (c *daemonClient) SubmitDub(ctx context.Context, request api.DubRequest) (api.DubbingResponse, error) {
	var response api.DubbingResponse
	err := c.post(ctx, "/api/dub", request, &response)
	return response, err
}

func (c *daemonClient) Status(ctx context.Context, sessionID string) (api.DubbingResponse, error) {
	var response api.DubbingResponse
	err := c.get(ctx, "/api/dub/status/"+url.PathEscape(sessionID), &response)
	return response, err
}

func (c *daemonClient) Describe(ctx context.Context, sessionID string) (api.SessionView, error) {
	var view api.SessionView
	err := c.get(ctx, "/api/sessions/"+url.PathEscape(sessionID), &view)
	return view, err
}

func (c *daemonClient) Sessions(ctx context.Context, statuses ...session.Status) (api.SessionsResponse, error) {
	path := "/api/sessions"
	if len(statuses) > 0 {
		values := url.Values{}
		for _, status := range statuses {
			values.Add("status", string(status))
		}
		path += "?" + values.Encode()
	}
	var response api.SessionsResponse
	err := c.get(ctx, path, &response)
	return response, err
}

func (c *daemonClient) Transcribe(ctx context.Context, request api.TranscribeRequest) (api.TranscriptionResponse, error) {
	var response api.TranscriptionResponse
	err := c.post(ctx, "/api/transcribe", request, &response)
	return response, err
}

func (c *daemonClient) Translate(ctx context.Context, request api.TranslateRequest) (api.TranslationResponse, error) {
	var response api.TranslationResponse
	err := c.post(ctx, "/api/translate", request, &response)
	return response, err
}

func (c *daemonClient) Languages(ctx context.Context) (api.LanguagesResponse, error) {
	var response api.LanguagesResponse
	err := c.get(ctx, "/api/languages", &response)
	return response, err
}

func (c *daemonClient) Voices(ctx context.Context) (api.VoiceOptionsResponse, error) {
	var response api.VoiceOptionsResponse
	err := c.get(ctx, "/api/voices", &response)
	return response, err
}

func (c *daemonClient) TestNotification(ctx context.Context) (api.NotificationTestResponse, error) {
	var response api.NotificationTestResponse
	err := c.post(ctx, "/api/notifications/test", struct{}{}, &response)
	return response, err
}

func (c *daemonClient) Health(ctx context.Context) (api.HealthResponse, error) {
	var response api.HealthResponse
	err := c.get(ctx, "/api/health", &response)
	return response, err
}

func (c *daemonClient) get(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, target)
}

func (c *daemonClient) post(ctx context.Context, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, target)
}

func (c *daemonClient) do(req *http.Request, target any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect to daemon at %s: %w (is dubstudiod running?)", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var failure api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&failure); decodeErr == nil && failure.Error != "" {
			return fmt.Errorf("daemon: %s", failure.Error)
		}
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
