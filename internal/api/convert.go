package api

import (
	"strings"

	"dubstudio/internal/session"
	"dubstudio/internal/stage"
)

// FromSession converts a stored session into its transport representation.
func FromSession(sess *session.Session) SessionView {
	if sess == nil {
		return SessionView{}
	}
	view := SessionView{
		SessionID:      sess.ID,
		SourceURL:      sess.SourceURL,
		TargetLanguage: sess.TargetLanguage,
		VoiceOption:    sess.VoiceOption,
		VoiceStyle:     sess.VoiceStyle,
		Status:         string(sess.Status),
		StageLabel:     sess.Status.StageLabel(),
		Progress:       sess.ProgressPercent,
		Message:        strings.TrimSpace(sess.ProgressMessage),
		Error:          strings.TrimSpace(sess.ErrorMessage),
		FailedStage:    strings.TrimSpace(sess.FailedStage),
		VideoTitle:     strings.TrimSpace(sess.Title),
		Duration:       sess.DurationSeconds,
		FinalFile:      sess.FinalFile,
	}
	if !sess.CreatedAt.IsZero() {
		view.CreatedAt = sess.CreatedAt.Format(dateTimeFormat)
	}
	if !sess.UpdatedAt.IsZero() {
		view.UpdatedAt = sess.UpdatedAt.Format(dateTimeFormat)
	}
	return view
}

// FromSessions converts a slice of sessions, skipping nil entries.
func FromSessions(sessions []*session.Session) []SessionView {
	views := make([]SessionView, 0, len(sessions))
	for _, sess := range sessions {
		if sess == nil {
			continue
		}
		views = append(views, FromSession(sess))
	}
	return views
}

// FromHealthSummary converts store counts into the API payload.
func FromHealthSummary(summary session.HealthSummary) SessionCounts {
	return SessionCounts{
		Total:      summary.Total,
		Queued:     summary.Queued,
		Processing: summary.Processing,
		Completed:  summary.Completed,
		Failed:     summary.Failed,
	}
}

// FromStageHealth converts stage readiness records into API payloads.
func FromStageHealth(records []stage.Health) []StageHealth {
	out := make([]StageHealth, 0, len(records))
	for _, record := range records {
		out = append(out, StageHealth{
			Name:   record.Name,
			Ready:  record.Ready,
			Detail: record.Detail,
		})
	}
	return out
}
