package services_test

import (
	"errors"
	"strings"
	"testing"

	"dubstudio/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("connection refused")
	err := services.Wrap(services.ErrExternalTool, "downloading", "run yt-dlp", "download failed", cause)

	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatal("expected error to match ErrExternalTool")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected error to match the wrapped cause")
	}
	if !strings.Contains(err.Error(), "downloading: run yt-dlp: download failed") {
		t.Fatalf("unexpected error text: %q", err.Error())
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "translating", "", "provider unavailable", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatal("expected nil marker to default to ErrTransient")
	}
}

func TestDetailsExtractsStructuredContext(t *testing.T) {
	cause := errors.New("http 500")
	err := services.Wrap(services.ErrTimeout, "transcribing", "call deepgram", "request timed out", cause)

	details := services.Details(err)
	if details.Stage != "transcribing" {
		t.Fatalf("unexpected stage: %q", details.Stage)
	}
	if details.Operation != "call deepgram" {
		t.Fatalf("unexpected operation: %q", details.Operation)
	}
	if details.Message != "request timed out" {
		t.Fatalf("unexpected message: %q", details.Message)
	}
	if details.Cause != cause {
		t.Fatal("expected cause to round-trip")
	}
}

func TestDetailsFromPlainError(t *testing.T) {
	details := services.Details(errors.New("boom"))
	if details.Message != "boom" {
		t.Fatalf("unexpected message: %q", details.Message)
	}
	if details.Marker != nil {
		t.Fatal("expected no marker for plain errors")
	}
}
