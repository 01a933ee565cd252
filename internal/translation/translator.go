package translation

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dubstudio/internal/catalog"
	"dubstudio/internal/config"
	"dubstudio/internal/logging"
	"dubstudio/internal/services"
	"dubstudio/internal/services/translate"
	"dubstudio/internal/session"
	"dubstudio/internal/stage"
)

// TranslateClient defines the behaviour the translation handler requires.
type TranslateClient interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Translator drives transcript translation for a session.
type Translator struct {
	store  *session.Store
	cfg    *config.Config
	logger *slog.Logger
	client TranslateClient
}

// NewTranslator constructs the translation handler using default dependencies.
func NewTranslator(cfg *config.Config, store *session.Store, logger *slog.Logger) *Translator {
	opts := []translate.Option{}
	if base := strings.TrimSpace(cfg.Translation.BaseURL); base != "" {
		opts = append(opts, translate.WithBaseURL(base))
	}
	if cfg.Translation.TimeoutSeconds > 0 {
		opts = append(opts, translate.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Translation.TimeoutSeconds) * time.Second,
		}))
	}
	return NewTranslatorWithClient(cfg, store, logger, translate.NewClient(opts...))
}

// NewTranslatorWithClient allows injecting the translate client (used in tests).
func NewTranslatorWithClient(cfg *config.Config, store *session.Store, logger *slog.Logger, client TranslateClient) *Translator {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "translator"))
	}
	return &Translator{store: store, cfg: cfg, logger: stageLogger, client: client}
}

func (t *Translator) Prepare(ctx context.Context, sess *session.Session) error {
	logger := logging.WithContext(ctx, t.logger)
	if err := stage.RequireText("translating", "transcript", sess.Transcript); err != nil {
		return err
	}
	if !catalog.IsSupportedLanguage(sess.TargetLanguage) {
		return services.Wrap(
			services.ErrValidation, "translating", "check language",
			fmt.Sprintf("Unsupported language: %s", sess.TargetLanguage), nil)
	}
	sess.SetProgress(sess.ProgressPercent, "Starting translation")
	logger.Info("starting translation preparation",
		logging.String("target_language", sess.TargetLanguage),
	)
	return nil
}

func (t *Translator) Execute(ctx context.Context, sess *session.Session) error {
	logger := logging.WithContext(ctx, t.logger)
	if t.client == nil {
		return services.Wrap(
			services.ErrConfiguration, "translating", "google translate",
			"Translation client unavailable", nil)
	}

	logger.Info("translating transcript",
		logging.String("target_language", sess.TargetLanguage),
		logging.Int("transcript_chars", len(sess.Transcript)),
	)
	translated, err := t.client.Translate(ctx, sess.Transcript, sess.TargetLanguage)
	if err != nil {
		return err
	}
	if strings.TrimSpace(translated) == "" {
		return services.Wrap(
			services.ErrExternalTool, "translating", "google translate",
			"Translation service returned an empty result", nil)
	}

	sess.TranslatedText = translated
	sess.SetProgress(65, "Translation completed")
	logger.Info("translation completed",
		logging.String("language_name", catalog.LanguageName(sess.TargetLanguage)),
		logging.Int("translated_chars", len(translated)),
	)
	return nil
}

// HealthCheck verifies translation dependencies.
func (t *Translator) HealthCheck(ctx context.Context) stage.Health {
	const name = "translator"
	if t.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if t.client == nil {
		return stage.Unhealthy(name, "translation client unavailable")
	}
	return stage.Healthy(name)
}
