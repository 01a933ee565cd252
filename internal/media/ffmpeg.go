package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

// Option configures the processor.
type Option func(*Processor)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(p *Processor) {
		if exec != nil {
			p.exec = exec
		}
	}
}

// Processor runs ffmpeg for audio extraction and final assembly.
type Processor struct {
	binary string
	exec   Executor
}

// NewProcessor constructs an ffmpeg processor around the given binary.
func NewProcessor(binary string, opts ...Option) (*Processor, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	proc := &Processor{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(proc)
	}
	return proc, nil
}

// ExtractAudio pulls the audio track out of source as a mono 22.05kHz WAV.
// The format matches what transcription and voice cloning both consume.
func (p *Processor) ExtractAudio(ctx context.Context, source, dest string) error {
	source = strings.TrimSpace(source)
	dest = strings.TrimSpace(dest)
	if source == "" || dest == "" {
		return errors.New("extract audio: source and destination required")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("extract audio: create destination dir: %w", err)
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "22050",
		"-c:a", "pcm_s16le",
		dest,
	}
	if output, err := p.exec.Run(ctx, p.binary, args); err != nil {
		return fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(output))
	}
	return nil
}

// Combine remuxes the original video stream with the dubbed audio track.
// The video stream is copied untouched; audio is re-encoded to AAC and the
// output stops at the shorter of the two inputs.
func (p *Processor) Combine(ctx context.Context, videoPath, audioPath, dest string) error {
	videoPath = strings.TrimSpace(videoPath)
	audioPath = strings.TrimSpace(audioPath)
	dest = strings.TrimSpace(dest)
	if videoPath == "" || audioPath == "" || dest == "" {
		return errors.New("combine: video, audio, and destination required")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("combine: create destination dir: %w", err)
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		dest,
	}
	if output, err := p.exec.Run(ctx, p.binary, args); err != nil {
		return fmt.Errorf("ffmpeg combine: %w: %s", err, strings.TrimSpace(output))
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	return string(output), err
}
