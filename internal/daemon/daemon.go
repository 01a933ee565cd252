package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"dubstudio/internal/api"
	"dubstudio/internal/config"
	"dubstudio/internal/logging"
	"dubstudio/internal/notifications"
	"dubstudio/internal/onepass"
	"dubstudio/internal/pipeline"
	"dubstudio/internal/services/elevenlabs"
	"dubstudio/internal/session"
)

// Daemon coordinates the dubbing pipeline and enforces single-instance
// execution.
type Daemon struct {
	cfg          *config.Config
	logger       *slog.Logger
	store        *session.Store
	orchestrator *pipeline.Orchestrator
	gateway      *api.Gateway
	statusSvc    *api.StatusService
	voices       api.VoiceLister
	logPath      string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	apiSrv *apiServer
}

// New constructs a daemon with default collaborators.
func New(cfg *config.Config, store *session.Store, logger *slog.Logger, orchestrator *pipeline.Orchestrator) (*Daemon, error) {
	runner := onepass.NewRunner(cfg, logger)
	return NewWithRunner(cfg, store, logger, orchestrator, runner)
}

// NewWithRunner allows injecting the one-pass runner (used in tests).
func NewWithRunner(cfg *config.Config, store *session.Store, logger *slog.Logger, orchestrator *pipeline.Orchestrator, runner api.OnePassRunner) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || orchestrator == nil {
		return nil, errors.New("daemon requires config, store, logger, and orchestrator")
	}

	var voices api.VoiceLister
	if strings.TrimSpace(cfg.ElevenLabs.APIKey) != "" {
		voices = elevenlabs.NewClient(cfg.ElevenLabs.APIKey,
			elevenlabs.WithBaseURL(cfg.ElevenLabs.BaseURL))
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "dubstudiod.lock")
	return &Daemon{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		orchestrator: orchestrator,
		gateway:      api.NewGateway(store, orchestrator, runner, logger),
		statusSvc:    api.NewStatusService(store),
		voices:       voices,
		logPath:      filepath.Join(cfg.Paths.LogDir, "dubstudio.log"),
		lockPath:     lockPath,
		lock:         flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, fails over stale sessions, and starts
// the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another dubstudio daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	failed, err := d.store.FailInFlight(d.ctx, session.DaemonStopReason)
	if err != nil {
		d.releaseLock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("fail in-flight sessions: %w", err)
	}
	if failed > 0 {
		d.logger.Info("failed stale in-flight sessions",
			logging.Int("count", int(failed)))
	}

	srv, err := newAPIServer(d.cfg, d, d.logger)
	if err != nil {
		d.releaseLock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}
	d.apiSrv = srv
	if d.apiSrv != nil {
		if err := d.apiSrv.start(d.ctx); err != nil {
			d.releaseLock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("dubstudio daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.apiSrv != nil {
		d.apiSrv.stop()
		d.apiSrv = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.orchestrator.Stop()
	d.releaseLock()
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("dubstudio daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Health aggregates session counts and stage readiness.
func (d *Daemon) Health(ctx context.Context) api.HealthResponse {
	response := api.HealthResponse{
		Status:  "healthy",
		Message: "Video dubbing service is running",
	}
	counts, err := d.statusSvc.Counts(ctx)
	if err != nil {
		response.Status = "degraded"
		response.Message = "Session store is unavailable"
	} else {
		response.Sessions = &counts
	}
	stages := api.FromStageHealth(d.orchestrator.Health(ctx))
	for _, record := range stages {
		if !record.Ready {
			response.Status = "degraded"
			response.Message = "One or more pipeline stages are not ready"
			break
		}
	}
	response.Stages = stages
	return response
}

// TestNotification triggers a test notification using the current
// configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// LockPath returns the path of the single-instance lock file.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Running reports whether the daemon has been started.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Addr returns the bound API address, empty until Start succeeds.
func (d *Daemon) Addr() string {
	if d.apiSrv == nil {
		return ""
	}
	return d.apiSrv.addr()
}

func (d *Daemon) releaseLock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
}
