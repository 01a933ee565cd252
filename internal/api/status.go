package api

import (
	"context"
	"fmt"
	"strings"

	"dubstudio/internal/services"
	"dubstudio/internal/session"
)

// SessionReader abstracts the read-only store operations the status
// service needs.
type SessionReader interface {
	GetByID(ctx context.Context, id string) (*session.Session, error)
	List(ctx context.Context, statuses ...session.Status) ([]*session.Session, error)
	Health(ctx context.Context) (session.HealthSummary, error)
}

// StatusService exposes read-only session queries returning API DTOs.
type StatusService struct {
	store SessionReader
}

// NewStatusService constructs a StatusService around the provided reader.
func NewStatusService(store SessionReader) *StatusService {
	if store == nil {
		return nil
	}
	return &StatusService{store: store}
}

// Query returns the polling view of a session. Completed sessions carry
// the streaming and download URLs; failed sessions carry the error.
func (s *StatusService) Query(ctx context.Context, id string) (DubbingResponse, error) {
	sess, err := s.fetch(ctx, id)
	if err != nil {
		return DubbingResponse{}, err
	}
	response := DubbingResponse{
		Success:   true,
		SessionID: sess.ID,
		Status:    string(sess.Status),
		Progress:  sess.ProgressPercent,
		Message:   strings.TrimSpace(sess.ProgressMessage),
	}
	switch sess.Status {
	case session.StatusCompleted:
		response.VideoURL = "/api/video/" + sess.ID
		response.DownloadURL = "/api/download/" + sess.ID
	case session.StatusFailed:
		response.Error = strings.TrimSpace(sess.ErrorMessage)
		if response.Error == "" {
			response.Error = "Unknown error occurred"
		}
	}
	return response, nil
}

// Describe returns the full session view.
func (s *StatusService) Describe(ctx context.Context, id string) (SessionView, error) {
	sess, err := s.fetch(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	return FromSession(sess), nil
}

// FinalFile returns the completed artifact path for file serving.
func (s *StatusService) FinalFile(ctx context.Context, id string) (string, error) {
	sess, err := s.fetch(ctx, id)
	if err != nil {
		return "", err
	}
	if sess.Status != session.StatusCompleted || strings.TrimSpace(sess.FinalFile) == "" {
		return "", services.Wrap(
			services.ErrNotFound, "status", "final file",
			fmt.Sprintf("Session %s has no completed video", id), nil)
	}
	return sess.FinalFile, nil
}

// List returns session views filtered by status.
func (s *StatusService) List(ctx context.Context, statuses ...session.Status) ([]SessionView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	sessions, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromSessions(sessions), nil
}

// Counts returns session totals keyed by state.
func (s *StatusService) Counts(ctx context.Context) (SessionCounts, error) {
	if s == nil || s.store == nil {
		return SessionCounts{}, nil
	}
	summary, err := s.store.Health(ctx)
	if err != nil {
		return SessionCounts{}, err
	}
	return FromHealthSummary(summary), nil
}

func (s *StatusService) fetch(ctx context.Context, id string) (*session.Session, error) {
	if s == nil || s.store == nil {
		return nil, services.Wrap(
			services.ErrConfiguration, "status", "query",
			"Status service is not configured", nil)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, services.Wrap(
			services.ErrValidation, "status", "query",
			"Session id is required", nil)
	}
	sess, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, services.Wrap(
			services.ErrNotFound, "status", "query",
			fmt.Sprintf("Session %s not found", id), nil)
	}
	return sess, nil
}
