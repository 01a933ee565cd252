package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"dubstudio/internal/catalog"
	"dubstudio/internal/logging"
	"dubstudio/internal/onepass"
	"dubstudio/internal/services"
	"dubstudio/internal/session"
)

// Launcher starts the asynchronous pipeline for a queued session.
type Launcher interface {
	Launch(ctx context.Context, sessionID string) error
}

// OnePassRunner executes the synchronous transcribe and translate flows.
type OnePassRunner interface {
	Transcribe(ctx context.Context, videoURL string) (onepass.Result, error)
	Translate(ctx context.Context, videoURL, targetLanguage string) (onepass.Result, error)
}

// SessionCreator persists new sessions.
type SessionCreator interface {
	Create(ctx context.Context, params session.NewSessionParams) (*session.Session, error)
}

// Gateway validates submissions and dispatches them to the pipeline or
// the synchronous one-pass flows.
type Gateway struct {
	store    SessionCreator
	launcher Launcher
	runner   OnePassRunner
	logger   *slog.Logger
}

// NewGateway constructs the submission gateway.
func NewGateway(store SessionCreator, launcher Launcher, runner OnePassRunner, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Gateway{
		store:    store,
		launcher: launcher,
		runner:   runner,
		logger:   logger.With(logging.String("component", "gateway")),
	}
}

// SubmitDub validates the request, creates a session, and launches the
// pipeline. The session id is returned immediately; progress is polled.
func (g *Gateway) SubmitDub(ctx context.Context, req DubRequest) (DubbingResponse, error) {
	if err := validateSourceURL(req.URL); err != nil {
		return DubbingResponse{}, err
	}
	if !catalog.IsSupportedLanguage(req.TargetLanguage) {
		return DubbingResponse{}, services.Wrap(
			services.ErrValidation, "submission", "validate language",
			fmt.Sprintf("Unsupported language: %s", strings.TrimSpace(req.TargetLanguage)), nil)
	}
	style := strings.TrimSpace(req.VoiceStyle)
	if style != "" && !catalog.IsKnownStyle(style) {
		return DubbingResponse{}, services.Wrap(
			services.ErrValidation, "submission", "validate voice style",
			fmt.Sprintf("Unknown voice style: %s (known styles: %s)", style, strings.Join(catalog.StyleNames(), ", ")), nil)
	}
	if g.store == nil || g.launcher == nil {
		return DubbingResponse{}, services.Wrap(
			services.ErrConfiguration, "submission", "dispatch",
			"Submission gateway is not fully configured", nil)
	}

	sess, err := g.store.Create(ctx, session.NewSessionParams{
		SourceURL:      strings.TrimSpace(req.URL),
		TargetLanguage: strings.TrimSpace(req.TargetLanguage),
		VoiceOption:    strings.TrimSpace(req.VoiceOption),
		VoiceStyle:     style,
	})
	if err != nil {
		return DubbingResponse{}, err
	}
	if err := g.launcher.Launch(ctx, sess.ID); err != nil {
		return DubbingResponse{}, fmt.Errorf("launch session %s: %w", sess.ID, err)
	}

	logging.WithContext(ctx, g.logger).Info("dub session submitted",
		logging.String("session_id", sess.ID),
		logging.String("target_language", sess.TargetLanguage),
		logging.String("voice_option", sess.VoiceOption),
	)
	return DubbingResponse{
		Success:   true,
		SessionID: sess.ID,
		Status:    string(sess.Status),
		Progress:  sess.ProgressPercent,
	}, nil
}

// Transcribe runs the synchronous transcribe-only flow.
func (g *Gateway) Transcribe(ctx context.Context, req TranscribeRequest) (TranscriptionResponse, error) {
	if err := validateSourceURL(req.URL); err != nil {
		return TranscriptionResponse{}, err
	}
	if g.runner == nil {
		return TranscriptionResponse{}, services.Wrap(
			services.ErrConfiguration, "transcribing", "dispatch",
			"Transcription runner is not configured", nil)
	}
	result, err := g.runner.Transcribe(ctx, strings.TrimSpace(req.URL))
	if err != nil {
		return TranscriptionResponse{}, err
	}
	return TranscriptionResponse{
		Success:       true,
		Transcription: result.Transcription,
		VideoTitle:    result.Title,
		Duration:      result.DurationSeconds,
	}, nil
}

// Translate runs the synchronous transcribe-and-translate flow.
func (g *Gateway) Translate(ctx context.Context, req TranslateRequest) (TranslationResponse, error) {
	if err := validateSourceURL(req.URL); err != nil {
		return TranslationResponse{}, err
	}
	if g.runner == nil {
		return TranslationResponse{}, services.Wrap(
			services.ErrConfiguration, "translating", "dispatch",
			"Translation runner is not configured", nil)
	}
	result, err := g.runner.Translate(ctx, strings.TrimSpace(req.URL), strings.TrimSpace(req.TargetLanguage))
	if err != nil {
		return TranslationResponse{}, err
	}
	return TranslationResponse{
		Success:               true,
		OriginalTranscription: result.Transcription,
		TranslatedText:        result.TranslatedText,
		TargetLanguage:        strings.TrimSpace(req.TargetLanguage),
		VideoTitle:            result.Title,
		Duration:              result.DurationSeconds,
	}, nil
}

func validateSourceURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return services.Wrap(
			services.ErrValidation, "submission", "validate url",
			"Video URL is required", nil)
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return services.Wrap(
			services.ErrValidation, "submission", "validate url",
			fmt.Sprintf("Video URL %q is not a valid http or https URL", raw), err)
	}
	return nil
}
