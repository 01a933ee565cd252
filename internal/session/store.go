package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"dubstudio/internal/config"
)

// ErrNotFound is returned when a session identifier is unknown to the store.
var ErrNotFound = errors.New("session not found")

// ErrTerminal is returned when an update would mutate a completed or failed session.
var ErrTerminal = errors.New("session is terminal")

// Store manages session persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the session database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "sessions.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// NewSessionParams carries the immutable inputs of a dubbing request.
type NewSessionParams struct {
	SourceURL      string
	TargetLanguage string
	VoiceOption    string
	VoiceStyle     string
}

// Create inserts a new session at queued with a freshly generated identifier.
func (s *Store) Create(ctx context.Context, params NewSessionParams) (*Session, error) {
	if strings.TrimSpace(params.SourceURL) == "" {
		return nil, errors.New("source url is required")
	}
	if strings.TrimSpace(params.TargetLanguage) == "" {
		return nil, errors.New("target language is required")
	}
	voiceOption := strings.TrimSpace(params.VoiceOption)
	if voiceOption == "" {
		voiceOption = "clone"
	}
	voiceStyle := strings.TrimSpace(params.VoiceStyle)
	if voiceStyle == "" {
		voiceStyle = "natural"
	}

	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (
            id, source_url, target_language, voice_option, voice_style,
            status, progress_percent, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		params.SourceURL,
		params.TargetLanguage,
		voiceOption,
		voiceStyle,
		StatusQueued,
		0,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return s.GetByID(ctx, id)
}

const sessionColumns = `id, source_url, target_language, voice_option, voice_style,
    status, progress_percent, progress_message, error_message, failed_stage,
    title, duration_seconds, media_file, audio_file, transcript, transcript_json,
    translated_text, dubbed_audio_file, final_file, created_at, updated_at`

// GetByID fetches a consistent snapshot of a session, or nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// Update persists changes to an existing session atomically.
//
// The write happens in one transaction that first re-reads the stored status:
// unknown identifiers fail with ErrNotFound and terminal sessions reject any
// further mutation with ErrTerminal, so completed/failed are sinks even if a
// stale in-memory copy is replayed.
func (s *Store) Update(ctx context.Context, sess *Session) error {
	if sess == nil {
		return errors.New("session is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current Status
	err = tx.QueryRowContext(ctx, `SELECT status FROM sessions WHERE id = ?`, sess.ID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, sess.ID)
	}
	if err != nil {
		return fmt.Errorf("read current status: %w", err)
	}
	if IsTerminalStatus(current) {
		return fmt.Errorf("%w: %s is %s", ErrTerminal, sess.ID, current)
	}

	sess.UpdatedAt = time.Now().UTC()
	_, err = tx.ExecContext(
		ctx,
		`UPDATE sessions
         SET status = ?, progress_percent = ?, progress_message = ?,
             error_message = ?, failed_stage = ?, title = ?, duration_seconds = ?,
             media_file = ?, audio_file = ?, transcript = ?, transcript_json = ?,
             translated_text = ?, dubbed_audio_file = ?, final_file = ?, updated_at = ?
         WHERE id = ?`,
		sess.Status,
		sess.ProgressPercent,
		nullableString(sess.ProgressMessage),
		nullableString(sess.ErrorMessage),
		nullableString(sess.FailedStage),
		nullableString(sess.Title),
		sess.DurationSeconds,
		nullableString(sess.MediaFile),
		nullableString(sess.AudioFile),
		nullableString(sess.Transcript),
		nullableString(sess.TranscriptJSON),
		nullableString(sess.TranslatedText),
		nullableString(sess.DubbedAudioFile),
		nullableString(sess.FinalFile),
		sess.UpdatedAt.Format(time.RFC3339Nano),
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// List returns sessions filtered by status set (or all sessions when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Session, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + sessionColumns + ` FROM sessions`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Count returns the total number of stored sessions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sessions`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return total, nil
}

// Health aggregates session counts per lifecycle group.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	summary := HealthSummary{}
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM sessions GROUP BY status`)
	if err != nil {
		return summary, fmt.Errorf("session health: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return summary, fmt.Errorf("scan health row: %w", err)
		}
		summary.Total += count
		switch {
		case status == StatusQueued:
			summary.Queued += count
		case IsProcessingStatus(status):
			summary.Processing += count
		case status == StatusFailed:
			summary.Failed += count
		case status == StatusCompleted:
			summary.Completed += count
		}
	}
	return summary, rows.Err()
}

// FailInFlight fails queued and in-flight sessions with the supplied reason.
// Used during daemon startup so sessions orphaned by a previous process do
// not appear alive to pollers; delivery across restarts is out of scope.
func (s *Store) FailInFlight(ctx context.Context, reason string) (int64, error) {
	if strings.TrimSpace(reason) == "" {
		reason = DaemonStopReason
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions
         SET status = ?, error_message = ?, failed_stage = status,
             progress_message = ?, updated_at = ?
         WHERE status IN (?, ?, ?, ?, ?, ?)`,
		StatusFailed,
		reason,
		reason,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusQueued,
		StatusDownloading,
		StatusTranscribing,
		StatusTranslating,
		StatusGeneratingVoice,
		StatusCombiningVideo,
	)
	if err != nil {
		return 0, fmt.Errorf("fail in-flight sessions: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(scanner rowScanner) (*Session, error) {
	var (
		sess            Session
		progressMessage sql.NullString
		errorMessage    sql.NullString
		failedStage     sql.NullString
		title           sql.NullString
		mediaFile       sql.NullString
		audioFile       sql.NullString
		transcript      sql.NullString
		transcriptJSON  sql.NullString
		translatedText  sql.NullString
		dubbedAudioFile sql.NullString
		finalFile       sql.NullString
		createdAt       string
		updatedAt       string
	)

	err := scanner.Scan(
		&sess.ID,
		&sess.SourceURL,
		&sess.TargetLanguage,
		&sess.VoiceOption,
		&sess.VoiceStyle,
		&sess.Status,
		&sess.ProgressPercent,
		&progressMessage,
		&errorMessage,
		&failedStage,
		&title,
		&sess.DurationSeconds,
		&mediaFile,
		&audioFile,
		&transcript,
		&transcriptJSON,
		&translatedText,
		&dubbedAudioFile,
		&finalFile,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	sess.ProgressMessage = progressMessage.String
	sess.ErrorMessage = errorMessage.String
	sess.FailedStage = failedStage.String
	sess.Title = title.String
	sess.MediaFile = mediaFile.String
	sess.AudioFile = audioFile.String
	sess.Transcript = transcript.String
	sess.TranscriptJSON = transcriptJSON.String
	sess.TranslatedText = translatedText.String
	sess.DubbedAudioFile = dubbedAudioFile.String
	sess.FinalFile = finalFile.String
	sess.CreatedAt = parseTimestamp(createdAt)
	sess.UpdatedAt = parseTimestamp(updatedAt)

	return &sess, nil
}

func parseTimestamp(value string) time.Time {
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	return time.Time{}
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
