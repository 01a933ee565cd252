// Package deps reports availability of the external binaries the
// dubbing pipeline shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"dubstudio/internal/config"
)

// Requirement defines an external dependency the dubbing service relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Required returns the binaries the pipeline needs, honoring configured
// overrides.
func Required(cfg *config.Config) []Requirement {
	ytdlp := "yt-dlp"
	ffmpeg := "ffmpeg"
	if cfg != nil {
		if binary := strings.TrimSpace(cfg.Download.YtDlpBinary); binary != "" {
			ytdlp = binary
		}
		if binary := strings.TrimSpace(cfg.Download.FFmpegBinary); binary != "" {
			ffmpeg = binary
		}
	}
	return []Requirement{
		{Name: "yt-dlp", Command: ytdlp, Description: "downloads source videos"},
		{Name: "FFmpeg", Command: ffmpeg, Description: "extracts audio and remuxes dubbed video"},
		{Name: "FFprobe", Command: "ffprobe", Description: "inspects downloaded media", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional
// dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
