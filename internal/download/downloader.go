package download

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dubstudio/internal/config"
	"dubstudio/internal/logging"
	"dubstudio/internal/media"
	"dubstudio/internal/media/ffprobe"
	"dubstudio/internal/services"
	"dubstudio/internal/services/ytdlp"
	"dubstudio/internal/session"
	"dubstudio/internal/stage"
)

// Downloader fetches source videos and prepares their audio track.
type Downloader struct {
	store     *session.Store
	cfg       *config.Config
	logger    *slog.Logger
	client    ytdlp.Downloader
	processor *media.Processor
}

// NewDownloader constructs the download handler using default dependencies.
func NewDownloader(cfg *config.Config, store *session.Store, logger *slog.Logger) *Downloader {
	client, err := ytdlp.New(cfg.Download.YtDlpBinary, cfg.Download.TimeoutSeconds, cfg.Download.Retries)
	if err != nil {
		logger.Warn("yt-dlp client unavailable", logging.Error(err))
	}
	processor, err := media.NewProcessor(cfg.Download.FFmpegBinary)
	if err != nil {
		logger.Warn("ffmpeg processor unavailable", logging.Error(err))
	}
	return NewDownloaderWithDependencies(cfg, store, logger, client, processor)
}

// NewDownloaderWithDependencies allows injecting all collaborators (used in tests).
func NewDownloaderWithDependencies(cfg *config.Config, store *session.Store, logger *slog.Logger, client ytdlp.Downloader, processor *media.Processor) *Downloader {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "downloader"))
	}
	return &Downloader{store: store, cfg: cfg, logger: stageLogger, client: client, processor: processor}
}

func (d *Downloader) Prepare(ctx context.Context, sess *session.Session) error {
	logger := logging.WithContext(ctx, d.logger)
	if err := validateURL(sess.SourceURL); err != nil {
		return err
	}
	sess.SetProgress(sess.ProgressPercent, "Starting download")
	logger.Info("starting download preparation", logging.String("source_url", sess.SourceURL))
	return nil
}

func (d *Downloader) Execute(ctx context.Context, sess *session.Session) error {
	logger := logging.WithContext(ctx, d.logger)
	if d.client == nil {
		return services.Wrap(
			services.ErrConfiguration, "downloading", "yt-dlp",
			"yt-dlp is not available; set download.ytdlp_binary to a valid path", nil)
	}
	if d.processor == nil {
		return services.Wrap(
			services.ErrConfiguration, "downloading", "ffmpeg",
			"ffmpeg is not available; set download.ffmpeg_binary to a valid path", nil)
	}

	workDir := d.cfg.SessionWorkDir(sess.ID)
	logger.Info("downloading video",
		logging.String("source_url", sess.SourceURL),
		logging.String("work_dir", workDir),
	)

	videoPath, info, err := d.client.Download(ctx, sess.SourceURL, workDir)
	if err != nil {
		return err
	}

	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = inferTitle(videoPath)
	}
	duration := info.DurationSeconds
	if duration <= 0 {
		if probed, probeErr := ffprobe.Inspect(ctx, "ffprobe", videoPath); probeErr == nil {
			duration = probed.DurationSeconds()
		}
	}

	audioPath := filepath.Join(workDir, "audio.wav")
	logger.Info("extracting audio", logging.String("audio_file", audioPath))
	if err := d.processor.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return services.Wrap(
			services.ErrExternalTool, "downloading", "extract audio",
			"Failed to extract audio from downloaded video", err)
	}

	sess.MediaFile = videoPath
	sess.AudioFile = audioPath
	sess.Title = title
	sess.DurationSeconds = duration
	sess.SetProgress(20, "Download completed")
	logger.Info("download completed",
		logging.String("video_file", videoPath),
		logging.String("title", title),
		logging.Float64("duration_seconds", duration),
	)
	return nil
}

// HealthCheck verifies download dependencies.
func (d *Downloader) HealthCheck(ctx context.Context) stage.Health {
	const name = "downloader"
	if d.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Paths.WorkDir) == "" {
		return stage.Unhealthy(name, "working directory not configured")
	}
	if d.client == nil {
		return stage.Unhealthy(name, "yt-dlp client unavailable")
	}
	if binary := strings.TrimSpace(d.cfg.Download.YtDlpBinary); binary != "" {
		if _, err := exec.LookPath(binary); err != nil {
			return stage.Unhealthy(name, fmt.Sprintf("yt-dlp binary %q not found", binary))
		}
	}
	if d.processor == nil {
		return stage.Unhealthy(name, "ffmpeg processor unavailable")
	}
	if binary := strings.TrimSpace(d.cfg.Download.FFmpegBinary); binary != "" {
		if _, err := exec.LookPath(binary); err != nil {
			return stage.Unhealthy(name, fmt.Sprintf("ffmpeg binary %q not found", binary))
		}
	}
	return stage.Healthy(name)
}

func validateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return services.Wrap(
			services.ErrValidation, "downloading", "validate url",
			"Video URL is required", nil)
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return services.Wrap(
			services.ErrValidation, "downloading", "validate url",
			fmt.Sprintf("Video URL %q is not a valid http or https URL", raw), err)
	}
	return nil
}

// inferTitle derives a display title from the downloaded file name.
func inferTitle(videoPath string) string {
	base := filepath.Base(videoPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Untitled Video"
	}
	return cases.Title(language.Und).String(title)
}
