package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dubstudio/internal/config"
	"dubstudio/internal/logging"
	"dubstudio/internal/notifications"
	"dubstudio/internal/services"
	"dubstudio/internal/session"
	"dubstudio/internal/stage"
)

// StageSet bundles the concrete pipeline handlers the orchestrator drives.
type StageSet struct {
	Download   stage.Handler
	Transcribe stage.Handler
	Translate  stage.Handler
	Synthesize stage.Handler
	Remux      stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	processingStatus session.Status
}

// Orchestrator runs dubbing sessions to completion in the background.
type Orchestrator struct {
	cfg      *config.Config
	store    *session.Store
	logger   *slog.Logger
	notifier notifications.Service
	stages   []pipelineStage

	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	active map[string]struct{}
	wg     sync.WaitGroup
}

// NewOrchestrator constructs an orchestrator with default notifications.
func NewOrchestrator(cfg *config.Config, store *session.Store, logger *slog.Logger, stages StageSet) *Orchestrator {
	return NewOrchestratorWithNotifier(cfg, store, logger, stages, notifications.NewService(cfg))
}

// NewOrchestratorWithNotifier allows injecting the notifier (used in tests).
func NewOrchestratorWithNotifier(cfg *config.Config, store *session.Store, logger *slog.Logger, stages StageSet, notifier notifications.Service) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cfg:      cfg,
		store:    store,
		logger:   logger.With(logging.String("component", "orchestrator")),
		notifier: notifier,
		stages: []pipelineStage{
			{name: "downloading", handler: stages.Download, processingStatus: session.StatusDownloading},
			{name: "transcribing", handler: stages.Transcribe, processingStatus: session.StatusTranscribing},
			{name: "translating", handler: stages.Translate, processingStatus: session.StatusTranslating},
			{name: "generating_voice", handler: stages.Synthesize, processingStatus: session.StatusGeneratingVoice},
			{name: "combining_video", handler: stages.Remux, processingStatus: session.StatusCombiningVideo},
		},
		baseCtx: baseCtx,
		cancel:  cancel,
		active:  make(map[string]struct{}),
	}
}

// Launch starts background processing of a queued session. Sessions that are
// unknown, already running, or past the queued state are rejected.
func (o *Orchestrator) Launch(ctx context.Context, sessionID string) error {
	sess, err := o.store.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("launch session: %w", err)
	}
	if sess == nil {
		return fmt.Errorf("launch session: %w: %s", session.ErrNotFound, sessionID)
	}
	if sess.Status != session.StatusQueued {
		return fmt.Errorf("launch session: %s is %s, expected queued", sessionID, sess.Status)
	}

	o.mu.Lock()
	if o.baseCtx.Err() != nil {
		o.mu.Unlock()
		return errors.New("launch session: orchestrator stopped")
	}
	if _, running := o.active[sessionID]; running {
		o.mu.Unlock()
		return fmt.Errorf("launch session: %s already running", sessionID)
	}
	o.active[sessionID] = struct{}{}
	o.wg.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.wg.Done()
		defer func() {
			o.mu.Lock()
			delete(o.active, sessionID)
			o.mu.Unlock()
		}()
		o.run(sessionID)
	}()
	return nil
}

// Active reports whether a session is currently being processed.
func (o *Orchestrator) Active(sessionID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.active[sessionID]
	return ok
}

// Wait blocks until all launched sessions finish.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Stop cancels in-flight sessions and waits for their goroutines to exit.
func (o *Orchestrator) Stop() {
	o.cancel()
	o.wg.Wait()
}

// Health runs every stage health check and returns the results.
func (o *Orchestrator) Health(ctx context.Context) []stage.Health {
	checks := make([]stage.Health, 0, len(o.stages))
	for _, stg := range o.stages {
		if stg.handler == nil {
			checks = append(checks, stage.Unhealthy(stg.name, "handler unavailable"))
			continue
		}
		checks = append(checks, stg.handler.HealthCheck(ctx))
	}
	return checks
}

func (o *Orchestrator) run(sessionID string) {
	ctx := services.WithSessionID(o.baseCtx, sessionID)
	ctx = services.WithRequestID(ctx, uuid.NewString())

	if timeout := time.Duration(o.cfg.Workflow.SessionTimeoutSeconds) * time.Second; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger := logging.WithContext(ctx, o.logger)
	sess, err := o.store.GetByID(ctx, sessionID)
	if err != nil || sess == nil {
		logger.Error("session vanished before processing", logging.Error(err))
		return
	}

	start := time.Now()
	logger.Info("session processing started",
		logging.String(logging.FieldEventType, "session_start"),
		logging.String("source_url", sess.SourceURL),
		logging.String("target_language", sess.TargetLanguage),
	)
	if o.notifier != nil {
		if err := o.notifier.NotifyDubStarted(ctx, sess.SourceURL, sess.TargetLanguage); err != nil {
			logger.Warn("failed to send start notification", logging.Error(err))
		}
	}

	for _, stg := range o.stages {
		if err := o.runStage(ctx, stg, sess); err != nil {
			if errors.Is(err, context.Canceled) && o.baseCtx.Err() != nil {
				logger.Debug("session interrupted by shutdown", logging.String(logging.FieldStage, stg.name))
				return
			}
			o.failSession(ctx, stg, sess, err)
			return
		}
	}

	sess.SetCompleted(sess.FinalFile)
	if err := o.store.Update(ctx, sess); err != nil {
		logger.Error("failed to persist session completion", logging.Error(err))
		return
	}
	logger.Info("session completed",
		logging.String(logging.FieldEventType, "session_complete"),
		logging.String("final_file", sess.FinalFile),
		logging.Duration("session_duration", time.Since(start)),
	)
	if o.notifier != nil {
		if err := o.notifier.NotifyDubCompleted(ctx, sess.Title, sess.TargetLanguage, sess.FinalFile); err != nil {
			logger.Warn("failed to send completion notification", logging.Error(err))
		}
	}
}

func (o *Orchestrator) runStage(ctx context.Context, stg pipelineStage, sess *session.Session) error {
	stageCtx := services.WithStage(ctx, stg.name)
	logger := logging.WithContext(stageCtx, o.logger)

	if stg.handler == nil {
		return services.Wrap(
			services.ErrConfiguration, stg.name, "dispatch",
			fmt.Sprintf("No handler configured for %s", stg.name), nil)
	}

	sess.Status = stg.processingStatus
	if err := o.store.Update(stageCtx, sess); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}

	stageStart := time.Now()
	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(stg.processingStatus)),
	)

	if err := stg.handler.Prepare(stageCtx, sess); err != nil {
		return err
	}
	if err := o.store.Update(stageCtx, sess); err != nil {
		return fmt.Errorf("persist stage preparation: %w", err)
	}

	execCtx := stageCtx
	if timeout := time.Duration(o.cfg.Workflow.StageTimeoutSeconds) * time.Second; timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(stageCtx, timeout)
		defer cancel()
	}
	if err := stg.handler.Execute(execCtx, sess); err != nil {
		if execCtx.Err() != nil && ctx.Err() == nil {
			return services.Wrap(
				services.ErrTimeout, stg.name, "watchdog",
				fmt.Sprintf("Stage %s exceeded its time limit", stg.name), err)
		}
		return err
	}

	if err := o.store.Update(stageCtx, sess); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Int("progress_percent", sess.ProgressPercent),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

func (o *Orchestrator) failSession(ctx context.Context, stg pipelineStage, sess *session.Session, stageErr error) {
	logger := logging.WithContext(ctx, o.logger)

	details := services.Details(stageErr)
	message := strings.TrimSpace(details.Message)
	if message == "" {
		message = strings.TrimSpace(stageErr.Error())
	}
	if message == "" {
		message = fmt.Sprintf("%s failed", stg.name)
	}
	stageName := details.Stage
	if stageName == "" {
		stageName = stg.name
	}

	sess.SetFailed(stageName, message)

	attrs := []logging.Attr{
		logging.String(logging.FieldStage, stageName),
		logging.String("error_message", message),
		logging.Alert("stage_failure"),
		logging.String(logging.FieldEventType, "stage_failure"),
	}
	if details.Cause != nil {
		attrs = append(attrs, logging.Error(details.Cause))
	} else {
		attrs = append(attrs, logging.Error(stageErr))
	}
	logger.Error("stage failed", logging.Args(attrs...)...)

	// Persist with a fresh context so shutdown cancellation cannot lose the
	// terminal state.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := o.store.Update(persistCtx, sess); err != nil {
		logger.Error("failed to persist session failure", logging.Error(err))
	}

	if o.notifier != nil {
		if err := o.notifier.NotifyDubFailed(persistCtx, sess.Title, stageName, message); err != nil {
			logger.Warn("failed to send failure notification", logging.Error(err))
		}
	}
}
