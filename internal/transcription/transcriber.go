package transcription

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dubstudio/internal/config"
	"dubstudio/internal/logging"
	"dubstudio/internal/services"
	"dubstudio/internal/services/deepgram"
	"dubstudio/internal/session"
	"dubstudio/internal/stage"
)

// TranscriptionClient defines the behaviour the transcription handler requires.
type TranscriptionClient interface {
	TranscribeFile(ctx context.Context, audioPath string) (deepgram.Transcription, error)
}

// Transcriber drives speech-to-text for a session's extracted audio.
type Transcriber struct {
	store  *session.Store
	cfg    *config.Config
	logger *slog.Logger
	client TranscriptionClient
}

// NewTranscriber constructs the transcription handler using default dependencies.
func NewTranscriber(cfg *config.Config, store *session.Store, logger *slog.Logger) *Transcriber {
	opts := []deepgram.Option{
		deepgram.WithModel(cfg.Deepgram.Model),
	}
	if base := strings.TrimSpace(cfg.Deepgram.BaseURL); base != "" {
		opts = append(opts, deepgram.WithBaseURL(base))
	}
	if cfg.Deepgram.TimeoutSeconds > 0 {
		opts = append(opts, deepgram.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Deepgram.TimeoutSeconds) * time.Second,
		}))
	}
	client := deepgram.NewClient(cfg.Deepgram.APIKey, opts...)
	return NewTranscriberWithClient(cfg, store, logger, client)
}

// NewTranscriberWithClient allows injecting the transcription client (used in tests).
func NewTranscriberWithClient(cfg *config.Config, store *session.Store, logger *slog.Logger, client TranscriptionClient) *Transcriber {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "transcriber"))
	}
	return &Transcriber{store: store, cfg: cfg, logger: stageLogger, client: client}
}

func (t *Transcriber) Prepare(ctx context.Context, sess *session.Session) error {
	logger := logging.WithContext(ctx, t.logger)
	if err := stage.RequireArtifact("transcribing", "extracted audio", sess.AudioFile); err != nil {
		return err
	}
	sess.SetProgress(sess.ProgressPercent, "Starting transcription")
	logger.Info("starting transcription preparation", logging.String("audio_file", sess.AudioFile))
	return nil
}

func (t *Transcriber) Execute(ctx context.Context, sess *session.Session) error {
	logger := logging.WithContext(ctx, t.logger)
	if t.client == nil {
		return services.Wrap(
			services.ErrConfiguration, "transcribing", "deepgram",
			"Transcription client unavailable; configure deepgram.api_key", nil)
	}

	logger.Info("transcribing audio", logging.String("audio_file", sess.AudioFile))
	result, err := t.client.TranscribeFile(ctx, sess.AudioFile)
	if err != nil {
		return err
	}

	sess.Transcript = result.Text
	if encoded, encodeErr := json.Marshal(result); encodeErr == nil {
		sess.TranscriptJSON = string(encoded)
	}
	sess.SetProgress(45, "Transcription completed")
	logger.Info("transcription completed",
		logging.Int("transcript_chars", len(result.Text)),
		logging.Int("word_count", len(result.Words)),
	)
	return nil
}

// HealthCheck verifies transcription dependencies.
func (t *Transcriber) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcriber"
	if t.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(t.cfg.Deepgram.APIKey) == "" {
		return stage.Unhealthy(name, "deepgram api key not configured")
	}
	if t.client == nil {
		return stage.Unhealthy(name, "transcription client unavailable")
	}
	return stage.Healthy(name)
}
