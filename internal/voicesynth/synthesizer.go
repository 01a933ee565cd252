package voicesynth

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dubstudio/internal/catalog"
	"dubstudio/internal/config"
	"dubstudio/internal/logging"
	"dubstudio/internal/services"
	"dubstudio/internal/services/elevenlabs"
	"dubstudio/internal/session"
	"dubstudio/internal/stage"
)

// SynthesisClient defines the behaviour the synthesis handler requires.
type SynthesisClient interface {
	CloneVoice(ctx context.Context, audioPath, voiceName string) (string, error)
	DeleteVoice(ctx context.Context, voiceID string) error
	Synthesize(ctx context.Context, text, voiceID string, style catalog.VoiceStyle) ([]byte, error)
}

// Synthesizer drives dubbed speech generation for a session.
type Synthesizer struct {
	store  *session.Store
	cfg    *config.Config
	logger *slog.Logger
	client SynthesisClient
}

// NewSynthesizer constructs the synthesis handler using default dependencies.
func NewSynthesizer(cfg *config.Config, store *session.Store, logger *slog.Logger) *Synthesizer {
	opts := []elevenlabs.Option{
		elevenlabs.WithModelID(cfg.ElevenLabs.ModelID),
	}
	if base := strings.TrimSpace(cfg.ElevenLabs.BaseURL); base != "" {
		opts = append(opts, elevenlabs.WithBaseURL(base))
	}
	if cfg.ElevenLabs.TimeoutSeconds > 0 {
		opts = append(opts, elevenlabs.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.ElevenLabs.TimeoutSeconds) * time.Second,
		}))
	}
	client := elevenlabs.NewClient(cfg.ElevenLabs.APIKey, opts...)
	return NewSynthesizerWithClient(cfg, store, logger, client)
}

// NewSynthesizerWithClient allows injecting the synthesis client (used in tests).
func NewSynthesizerWithClient(cfg *config.Config, store *session.Store, logger *slog.Logger, client SynthesisClient) *Synthesizer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "synthesizer"))
	}
	return &Synthesizer{store: store, cfg: cfg, logger: stageLogger, client: client}
}

func (s *Synthesizer) Prepare(ctx context.Context, sess *session.Session) error {
	logger := logging.WithContext(ctx, s.logger)
	if err := stage.RequireText("generating_voice", "translated text", sess.TranslatedText); err != nil {
		return err
	}
	if sess.VoiceOption == catalog.VoiceOptionClone {
		if err := stage.RequireArtifact("generating_voice", "extracted audio", sess.AudioFile); err != nil {
			return err
		}
	}
	sess.SetProgress(sess.ProgressPercent, "Starting voice generation")
	logger.Info("starting synthesis preparation",
		logging.String("voice_option", sess.VoiceOption),
		logging.String("voice_style", sess.VoiceStyle),
	)
	return nil
}

func (s *Synthesizer) Execute(ctx context.Context, sess *session.Session) error {
	logger := logging.WithContext(ctx, s.logger)
	if s.client == nil {
		return services.Wrap(
			services.ErrConfiguration, "generating_voice", "elevenlabs",
			"Synthesis client unavailable; configure elevenlabs.api_key", nil)
	}

	voiceID, cleanup := s.resolveVoice(ctx, sess, logger)
	defer cleanup()

	style := catalog.StyleByName(sess.VoiceStyle)
	logger.Info("synthesizing dubbed speech",
		logging.String("voice_id", voiceID),
		logging.String("voice_style", style.Name),
		logging.Int("text_chars", len(sess.TranslatedText)),
	)
	audio, err := s.client.Synthesize(ctx, sess.TranslatedText, voiceID, style)
	if err != nil {
		return err
	}

	dest := filepath.Join(s.cfg.SessionWorkDir(sess.ID), "dubbed_audio.mp3")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return services.Wrap(
			services.ErrConfiguration, "generating_voice", "write audio",
			"Failed to create session working directory", err)
	}
	if err := os.WriteFile(dest, audio, 0o644); err != nil {
		return services.Wrap(
			services.ErrTransient, "generating_voice", "write audio",
			"Failed to write dubbed audio file", err)
	}

	sess.DubbedAudioFile = dest
	sess.SetProgress(85, "Voice generation completed")
	logger.Info("synthesis completed",
		logging.String("dubbed_audio_file", dest),
		logging.Int("audio_bytes", len(audio)),
	)
	return nil
}

// resolveVoice picks the voice to synthesize with. Cloning failures fall
// back to the default prebuilt voice rather than failing the session.
func (s *Synthesizer) resolveVoice(ctx context.Context, sess *session.Session, logger *slog.Logger) (string, func()) {
	noop := func() {}
	option := strings.TrimSpace(sess.VoiceOption)
	if option != "" && option != catalog.VoiceOptionClone {
		return option, noop
	}

	voiceID, err := s.client.CloneVoice(ctx, sess.AudioFile, "dub-"+sess.ID)
	if err != nil {
		logger.Warn("voice cloning failed, using default voice",
			logging.String("fallback_voice", catalog.DefaultPrebuiltName),
			logging.Error(err),
		)
		return catalog.DefaultPrebuiltVoiceID, noop
	}

	logger.Info("voice cloned", logging.String("voice_id", voiceID))
	if s.cfg != nil && s.cfg.ElevenLabs.CloneVoiceRetention {
		return voiceID, noop
	}
	return voiceID, func() {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		if err := s.client.DeleteVoice(cleanupCtx, voiceID); err != nil {
			logger.Warn("failed to delete cloned voice", logging.String("voice_id", voiceID), logging.Error(err))
		}
	}
}

// HealthCheck verifies synthesis dependencies.
func (s *Synthesizer) HealthCheck(ctx context.Context) stage.Health {
	const name = "synthesizer"
	if s.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(s.cfg.ElevenLabs.APIKey) == "" {
		return stage.Unhealthy(name, "elevenlabs api key not configured")
	}
	if s.client == nil {
		return stage.Unhealthy(name, "synthesis client unavailable")
	}
	return stage.Healthy(name)
}
