// Package onepass runs the download and transcription stages
// synchronously for callers that want a result without enqueueing a
// dubbing session. The flows reuse the pipeline stage handlers but
// operate on a transient session that is never persisted.
package onepass

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"dubstudio/internal/catalog"
	"dubstudio/internal/config"
	"dubstudio/internal/download"
	"dubstudio/internal/logging"
	"dubstudio/internal/services"
	"dubstudio/internal/session"
	"dubstudio/internal/stage"
	"dubstudio/internal/transcription"
	"dubstudio/internal/translation"
)

// Result carries the output of a one-shot flow.
type Result struct {
	Transcription   string
	TranslatedText  string
	Title           string
	DurationSeconds float64
}

// Runner executes the one-shot flows.
type Runner struct {
	cfg        *config.Config
	logger     *slog.Logger
	download   stage.Handler
	transcribe stage.Handler
	translate  stage.Handler
}

// NewRunner builds a runner with the default stage handlers.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	return NewRunnerWithHandlers(cfg, logger,
		download.NewDownloader(cfg, nil, logger),
		transcription.NewTranscriber(cfg, nil, logger),
		translation.NewTranslator(cfg, nil, logger),
	)
}

// NewRunnerWithHandlers allows injecting stage handlers (used in tests).
func NewRunnerWithHandlers(cfg *config.Config, logger *slog.Logger, downloadHandler, transcribeHandler, translateHandler stage.Handler) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		logger:     logger.With(logging.String("component", "onepass")),
		download:   downloadHandler,
		transcribe: transcribeHandler,
		translate:  translateHandler,
	}
}

// Transcribe downloads the video and returns its transcription.
func (r *Runner) Transcribe(ctx context.Context, videoURL string) (Result, error) {
	sess := r.newTransientSession(videoURL, "")
	defer r.cleanup(sess)

	ctx, cancel := r.flowContext(ctx, sess)
	defer cancel()

	stages := []flowStage{
		{name: "downloading", handler: r.download},
		{name: "transcribing", handler: r.transcribe},
	}
	if err := r.runStages(ctx, sess, stages); err != nil {
		return Result{}, err
	}
	return resultFrom(sess), nil
}

// Translate downloads the video, transcribes it, and translates the
// transcript into the target language.
func (r *Runner) Translate(ctx context.Context, videoURL, targetLanguage string) (Result, error) {
	if !catalog.IsSupportedLanguage(targetLanguage) {
		return Result{}, services.Wrap(
			services.ErrValidation, "translating", "validate language",
			fmt.Sprintf("Unsupported language: %s", targetLanguage), nil)
	}

	sess := r.newTransientSession(videoURL, targetLanguage)
	defer r.cleanup(sess)

	ctx, cancel := r.flowContext(ctx, sess)
	defer cancel()

	stages := []flowStage{
		{name: "downloading", handler: r.download},
		{name: "transcribing", handler: r.transcribe},
		{name: "translating", handler: r.translate},
	}
	if err := r.runStages(ctx, sess, stages); err != nil {
		return Result{}, err
	}
	return resultFrom(sess), nil
}

type flowStage struct {
	name    string
	handler stage.Handler
}

func (r *Runner) newTransientSession(videoURL, targetLanguage string) *session.Session {
	return &session.Session{
		ID:             "adhoc-" + uuid.NewString(),
		SourceURL:      strings.TrimSpace(videoURL),
		TargetLanguage: strings.TrimSpace(targetLanguage),
		Status:         session.StatusQueued,
	}
}

func (r *Runner) flowContext(ctx context.Context, sess *session.Session) (context.Context, context.CancelFunc) {
	ctx = services.WithSessionID(ctx, sess.ID)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	if r.cfg != nil && r.cfg.Workflow.SessionTimeoutSeconds > 0 {
		return context.WithTimeout(ctx, time.Duration(r.cfg.Workflow.SessionTimeoutSeconds)*time.Second)
	}
	return context.WithCancel(ctx)
}

func (r *Runner) runStages(ctx context.Context, sess *session.Session, stages []flowStage) error {
	for _, st := range stages {
		if st.handler == nil {
			return services.Wrap(
				services.ErrConfiguration, st.name, "dispatch",
				fmt.Sprintf("Stage %s is not available", st.name), nil)
		}
		stageCtx := services.WithStage(ctx, st.name)
		logger := logging.WithContext(stageCtx, r.logger)

		logger.Info("stage started",
			logging.String(logging.FieldEventType, "stage_start"),
			logging.String("source_url", sess.SourceURL),
		)
		if err := st.handler.Prepare(stageCtx, sess); err != nil {
			return r.stageError(logger, st.name, err)
		}
		if err := st.handler.Execute(stageCtx, sess); err != nil {
			return r.stageError(logger, st.name, err)
		}
		logger.Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.String("progress_message", sess.ProgressMessage),
		)
	}
	return nil
}

func (r *Runner) stageError(logger *slog.Logger, stageName string, err error) error {
	details := services.Details(err)
	message := strings.TrimSpace(details.Message)
	if message == "" {
		message = strings.TrimSpace(err.Error())
	}
	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_message", message),
		logging.Error(err),
	)
	return err
}

// cleanup removes the transient working directory.
func (r *Runner) cleanup(sess *session.Session) {
	if r.cfg == nil || !r.cfg.Workflow.CleanupTempFiles {
		return
	}
	workDir := r.cfg.SessionWorkDir(sess.ID)
	if strings.TrimSpace(workDir) == "" {
		return
	}
	if err := os.RemoveAll(workDir); err != nil {
		r.logger.Warn("failed to remove temporary files",
			logging.String("work_dir", workDir),
			logging.Error(err),
		)
	}
}

func resultFrom(sess *session.Session) Result {
	return Result{
		Transcription:   sess.Transcript,
		TranslatedText:  sess.TranslatedText,
		Title:           sess.Title,
		DurationSeconds: sess.DurationSeconds,
	}
}
