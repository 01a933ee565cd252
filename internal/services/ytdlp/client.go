package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"dubstudio/internal/services"
)

// VideoInfo captures the metadata yt-dlp reports for a downloaded video.
type VideoInfo struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	DurationSeconds float64 `json:"duration"`
	Uploader        string  `json:"uploader"`
	Extension       string  `json:"ext"`
}

// Downloader defines the behaviour the download stage requires.
type Downloader interface {
	Download(ctx context.Context, videoURL, destDir string) (string, VideoInfo, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary  string
	retries int
	timeout time.Duration
	exec    Executor
}

// New constructs a yt-dlp client.
func New(binary string, timeoutSeconds, retries int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	if retries < 0 {
		retries = 0
	}
	client := &Client{
		binary:  binary,
		retries: retries,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mkv":  {},
	".avi":  {},
	".mov":  {},
	".webm": {},
}

// Download fetches the best available rendition of videoURL into destDir and
// returns the local file path plus parsed metadata.
func (c *Client) Download(ctx context.Context, videoURL, destDir string) (string, VideoInfo, error) {
	var empty VideoInfo
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return "", empty, errors.New("ytdlp download: video url required")
	}
	if destDir == "" {
		return "", empty, errors.New("ytdlp download: destination directory required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", empty, fmt.Errorf("ytdlp download: create destination: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{
		"--format", "best",
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"--retries", fmt.Sprintf("%d", c.retries),
		"--fragment-retries", fmt.Sprintf("%d", c.retries),
		"--print-json",
		"--output", filepath.Join(destDir, "%(title)s.%(ext)s"),
		videoURL,
	}

	output, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		return "", empty, classifyError(err, output)
	}

	info, err := parseInfo(output)
	if err != nil {
		return "", empty, err
	}

	videoPath, err := findDownloadedVideo(destDir)
	if err != nil {
		return "", empty, err
	}
	return videoPath, info, nil
}

// parseInfo decodes the last JSON line yt-dlp printed.
func parseInfo(output string) (VideoInfo, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var info VideoInfo
		if err := json.Unmarshal([]byte(line), &info); err == nil {
			return info, nil
		}
	}
	return VideoInfo{}, errors.New("ytdlp download: no metadata in output")
}

func findDownloadedVideo(destDir string) (string, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", fmt.Errorf("ytdlp download: scan destination: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := videoExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			return filepath.Join(destDir, entry.Name()), nil
		}
	}
	return "", services.Wrap(
		services.ErrExternalTool, "downloading", "yt-dlp",
		"Failed to download video", nil)
}

// classifyError maps known yt-dlp failure modes onto actionable messages.
func classifyError(err error, output string) error {
	combined := strings.ToLower(output + " " + err.Error())
	switch {
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(combined, "context deadline exceeded"):
		return services.Wrap(
			services.ErrTimeout, "downloading", "yt-dlp",
			"Video download timed out", err)
	case strings.Contains(combined, "403") || strings.Contains(combined, "forbidden"):
		return services.Wrap(
			services.ErrValidation, "downloading", "yt-dlp",
			"This video is restricted and cannot be downloaded; try a different video", err)
	case strings.Contains(combined, "404") || strings.Contains(combined, "not found"):
		return services.Wrap(
			services.ErrNotFound, "downloading", "yt-dlp",
			"Video not found; check the URL and try again", err)
	case strings.Contains(combined, "signature extraction failed"):
		return services.Wrap(
			services.ErrExternalTool, "downloading", "yt-dlp",
			"Video has enhanced protection and cannot be downloaded", err)
	default:
		return services.Wrap(
			services.ErrExternalTool, "downloading", "yt-dlp",
			"Video download failed: "+strings.TrimSpace(firstLine(output)), err)
	}
}

func firstLine(output string) string {
	if idx := strings.IndexByte(output, '\n'); idx >= 0 {
		return output[:idx]
	}
	return output
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	return string(output), err
}
