package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// TranscribeRequest asks for a synchronous download-and-transcribe run.
type TranscribeRequest struct {
	URL string `json:"url"`
}

// TranslateRequest asks for a synchronous transcribe-and-translate run.
type TranslateRequest struct {
	URL            string `json:"url"`
	TargetLanguage string `json:"target_language"`
}

// DubRequest submits a new asynchronous dubbing session.
type DubRequest struct {
	URL            string `json:"url"`
	TargetLanguage string `json:"target_language"`
	VoiceOption    string `json:"voice_option"`
	VoiceStyle     string `json:"voice_style"`
}

// TranscriptionResponse carries the result of a transcribe-only run.
type TranscriptionResponse struct {
	Success       bool    `json:"success"`
	Transcription string  `json:"transcription,omitempty"`
	Error         string  `json:"error,omitempty"`
	VideoTitle    string  `json:"video_title,omitempty"`
	Duration      float64 `json:"duration,omitempty"`
}

// TranslationResponse carries the result of a translate-only run.
type TranslationResponse struct {
	Success               bool    `json:"success"`
	OriginalTranscription string  `json:"original_transcription,omitempty"`
	TranslatedText        string  `json:"translated_text,omitempty"`
	TargetLanguage        string  `json:"target_language,omitempty"`
	Error                 string  `json:"error,omitempty"`
	VideoTitle            string  `json:"video_title,omitempty"`
	Duration              float64 `json:"duration,omitempty"`
}

// DubbingResponse reports submission acknowledgements and status polls.
type DubbingResponse struct {
	Success     bool   `json:"success"`
	SessionID   string `json:"session_id,omitempty"`
	Status      string `json:"status,omitempty"`
	Progress    int    `json:"progress"`
	Message     string `json:"message,omitempty"`
	VideoURL    string `json:"video_url,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SessionView is the full transport representation of a session.
type SessionView struct {
	SessionID      string  `json:"session_id"`
	SourceURL      string  `json:"source_url"`
	TargetLanguage string  `json:"target_language"`
	VoiceOption    string  `json:"voice_option"`
	VoiceStyle     string  `json:"voice_style"`
	Status         string  `json:"status"`
	StageLabel     string  `json:"stage_label"`
	Progress       int     `json:"progress"`
	Message        string  `json:"message,omitempty"`
	Error          string  `json:"error,omitempty"`
	FailedStage    string  `json:"failed_stage,omitempty"`
	VideoTitle     string  `json:"video_title,omitempty"`
	Duration       float64 `json:"duration,omitempty"`
	FinalFile      string  `json:"final_file,omitempty"`
	CreatedAt      string  `json:"created_at,omitempty"`
	UpdatedAt      string  `json:"updated_at,omitempty"`
}

// SessionsResponse wraps a collection of sessions.
type SessionsResponse struct {
	Sessions []SessionView `json:"sessions"`
}

// LanguagesResponse maps language codes to display names.
type LanguagesResponse struct {
	Languages map[string]string `json:"languages"`
}

// CloneVoiceOption describes the always-available voice cloning choice.
type CloneVoiceOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

// PrebuiltVoice describes a selectable prebuilt voice.
type PrebuiltVoice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// VoiceOptions groups the voice choices offered to submitters.
type VoiceOptions struct {
	Clone    CloneVoiceOption `json:"clone"`
	Prebuilt []PrebuiltVoice  `json:"prebuilt"`
	Styles   []string         `json:"styles"`
}

// VoiceOptionsResponse wraps the voice catalog payload.
type VoiceOptionsResponse struct {
	Voices VoiceOptions `json:"voices"`
}

// SessionCounts summarizes stored sessions by state.
type SessionCounts struct {
	Total      int `json:"total"`
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// StageHealth mirrors readiness reporting for pipeline stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// HealthResponse reports daemon health plus session and stage summaries.
type HealthResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message"`
	Sessions *SessionCounts `json:"sessions,omitempty"`
	Stages   []StageHealth  `json:"stages,omitempty"`
}

// NotificationTestResponse reports the outcome of a test notification.
type NotificationTestResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the uniform failure payload.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
