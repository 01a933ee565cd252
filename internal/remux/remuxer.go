package remux

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dubstudio/internal/config"
	"dubstudio/internal/logging"
	"dubstudio/internal/media"
	"dubstudio/internal/media/ffprobe"
	"dubstudio/internal/services"
	"dubstudio/internal/session"
	"dubstudio/internal/stage"
	"dubstudio/internal/textutil"
)

// Remuxer drives final video assembly for a session.
type Remuxer struct {
	store     *session.Store
	cfg       *config.Config
	logger    *slog.Logger
	processor *media.Processor
}

// NewRemuxer constructs the remux handler using default dependencies.
func NewRemuxer(cfg *config.Config, store *session.Store, logger *slog.Logger) *Remuxer {
	processor, err := media.NewProcessor(cfg.Download.FFmpegBinary)
	if err != nil {
		logger.Warn("ffmpeg processor unavailable", logging.Error(err))
	}
	return NewRemuxerWithProcessor(cfg, store, logger, processor)
}

// NewRemuxerWithProcessor allows injecting the ffmpeg processor (used in tests).
func NewRemuxerWithProcessor(cfg *config.Config, store *session.Store, logger *slog.Logger, processor *media.Processor) *Remuxer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "remuxer"))
	}
	return &Remuxer{store: store, cfg: cfg, logger: stageLogger, processor: processor}
}

func (r *Remuxer) Prepare(ctx context.Context, sess *session.Session) error {
	logger := logging.WithContext(ctx, r.logger)
	if err := stage.RequireArtifact("combining_video", "source video", sess.MediaFile); err != nil {
		return err
	}
	if err := stage.RequireArtifact("combining_video", "dubbed audio", sess.DubbedAudioFile); err != nil {
		return err
	}
	sess.SetProgress(sess.ProgressPercent, "Combining video")
	logger.Info("starting remux preparation",
		logging.String("video_file", sess.MediaFile),
		logging.String("dubbed_audio_file", sess.DubbedAudioFile),
	)
	return nil
}

func (r *Remuxer) Execute(ctx context.Context, sess *session.Session) error {
	logger := logging.WithContext(ctx, r.logger)
	if r.processor == nil {
		return services.Wrap(
			services.ErrConfiguration, "combining_video", "ffmpeg",
			"ffmpeg is not available; set download.ffmpeg_binary to a valid path", nil)
	}

	dest := filepath.Join(r.cfg.SessionWorkDir(sess.ID), finalName(sess))
	logger.Info("combining video and dubbed audio", logging.String("final_file", dest))
	if err := r.processor.Combine(ctx, sess.MediaFile, sess.DubbedAudioFile, dest); err != nil {
		return services.Wrap(
			services.ErrExternalTool, "combining_video", "ffmpeg combine",
			"Failed to combine video with dubbed audio", err)
	}
	if err := r.verifyFinal(ctx, sess, dest, logger); err != nil {
		return err
	}

	// The 100% milestone is written together with the completed status so
	// pollers never see a non-terminal session at 100.
	sess.FinalFile = dest
	sess.SetProgress(sess.ProgressPercent, "Dubbed video assembled")
	logger.Info("remux completed", logging.String("final_file", dest))

	if r.cfg.Workflow.CleanupTempFiles {
		r.cleanupIntermediates(sess, logger)
	}
	return nil
}

// cleanupIntermediates removes stage handoff files once the final video
// exists. The original download and final output are kept for serving.
func (r *Remuxer) cleanupIntermediates(sess *session.Session, logger *slog.Logger) {
	for _, path := range []string{sess.AudioFile, sess.DubbedAudioFile} {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove intermediate file", logging.String("path", path), logging.Error(err))
		}
	}
}

// HealthCheck verifies remux dependencies.
func (r *Remuxer) HealthCheck(ctx context.Context) stage.Health {
	const name = "remuxer"
	if r.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if r.processor == nil {
		return stage.Unhealthy(name, "ffmpeg processor unavailable")
	}
	return stage.Healthy(name)
}

// verifyFinal probes the combined file and rejects output that lost its
// video or audio stream. Probe failures only warn: ffprobe is an optional
// dependency.
func (r *Remuxer) verifyFinal(ctx context.Context, sess *session.Session, dest string, logger *slog.Logger) error {
	report, err := ffprobe.Inspect(ctx, "", dest)
	if err != nil {
		logger.Warn("final file inspection skipped", logging.Error(err))
		return nil
	}
	if report.VideoStreamCount() == 0 || report.AudioStreamCount() == 0 {
		return services.Wrap(
			services.ErrExternalTool, "combining_video", "ffprobe verify",
			"Combined output is missing a video or audio stream", nil)
	}
	if sess.DurationSeconds == 0 {
		if seconds := report.DurationSeconds(); seconds > 0 {
			sess.DurationSeconds = seconds
		}
	}
	logger.Info("final file verified",
		logging.Int64("size_bytes", report.SizeBytes()),
		logging.Int("audio_streams", report.AudioStreamCount()),
	)
	return nil
}

func finalName(sess *session.Session) string {
	title := textutil.SanitizeFileName(sess.Title)
	if title == "" {
		base := baseName(sess.MediaFile)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return fmt.Sprintf("dubbed_%s_%s.mp4", textutil.SanitizeToken(sess.TargetLanguage), title)
}

func baseName(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	if base == "." || base == string(filepath.Separator) {
		return "video.mp4"
	}
	return base
}
