package session

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a dubbing session.
type Status string

const (
	StatusQueued          Status = "queued"
	StatusDownloading     Status = "downloading"
	StatusTranscribing    Status = "transcribing"
	StatusTranslating     Status = "translating"
	StatusGeneratingVoice Status = "generating_voice"
	StatusCombiningVideo  Status = "combining_video"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
)

// DaemonStopReason is the error message set when sessions are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusQueued,
	StatusDownloading,
	StatusTranscribing,
	StatusTranslating,
	StatusGeneratingVoice,
	StatusCombiningVideo,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusDownloading:     {},
	StatusTranscribing:    {},
	StatusTranslating:     {},
	StatusGeneratingVoice: {},
	StatusCombiningVideo:  {},
}

// HealthSummary describes aggregated session counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Queued     int
	Processing int
	Failed     int
	Completed  int
}

// Session represents a dubbing session persisted in SQLite.
//
// ID, SourceURL, TargetLanguage, VoiceOption, and VoiceStyle are fixed at
// creation. Status and ProgressPercent are mutated only by the orchestrator
// driving the session; the remaining fields carry stage handoff data.
type Session struct {
	ID              string
	SourceURL       string
	TargetLanguage  string
	VoiceOption     string
	VoiceStyle      string
	Status          Status
	ProgressPercent int
	ProgressMessage string
	ErrorMessage    string
	FailedStage     string
	Title           string
	DurationSeconds float64
	MediaFile       string
	AudioFile       string
	Transcript      string
	TranscriptJSON  string
	TranslatedText  string
	DubbedAudioFile string
	FinalFile       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminalStatus reports whether a status is a sink.
func IsTerminalStatus(status Status) bool {
	return status == StatusCompleted || status == StatusFailed
}

// IsProcessing returns true when the session is inside a pipeline stage.
func (s Session) IsProcessing() bool {
	return IsProcessingStatus(s.Status)
}

// IsTerminal returns true once the session reached completed or failed.
func (s Session) IsTerminal() bool {
	return IsTerminalStatus(s.Status)
}

// SetProgress updates the progress fields together.
// Use this instead of setting ProgressPercent and ProgressMessage individually.
func (s *Session) SetProgress(percent int, message string) {
	if percent < s.ProgressPercent {
		// Progress is monotonically non-decreasing while non-terminal.
		percent = s.ProgressPercent
	}
	if percent > 100 {
		percent = 100
	}
	s.ProgressPercent = percent
	s.ProgressMessage = message
}

// SetCompleted marks the session as finished with the final artifact path.
func (s *Session) SetCompleted(finalFile string) {
	s.Status = StatusCompleted
	s.FinalFile = finalFile
	s.ProgressPercent = 100
	s.ProgressMessage = "Dubbing completed"
	s.ErrorMessage = ""
	s.FailedStage = ""
}

// SetFailed marks the session as failed at the named stage. ProgressPercent
// keeps the last value reached so pollers can tell how far the pipeline got.
func (s *Session) SetFailed(stage, message string) {
	s.Status = StatusFailed
	s.FailedStage = stage
	s.ErrorMessage = message
	s.ProgressMessage = message
}

// StageLabel renders a status as a human-readable progress label.
func (s Status) StageLabel() string {
	parts := strings.Fields(strings.ReplaceAll(string(s), "_", " "))
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
