package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"dubstudio/internal/api"
)

func TestStatusRendersSessionDetails(t *testing.T) {
	daemon := newFakeDaemon(t)
	daemon.respond("/api/sessions/abc123", http.StatusOK, api.SessionView{
		SessionID:      "abc123",
		SourceURL:      "https://youtube.com/watch?v=jNQXAC9IVRw",
		TargetLanguage: "es",
		VoiceOption:    "clone",
		VoiceStyle:     "natural",
		Status:         "translating",
		StageLabel:     "Translating",
		Progress:       45,
		Message:        "Translating transcript",
		VideoTitle:     "Me at the zoo",
		Duration:       19,
	})

	out, _, err := runCLI(t, daemon.addr(), "status", "abc123")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "abc123")
	requireContains(t, out, "Translating")
	requireContains(t, out, "45%")
	requireContains(t, out, "Me at the zoo")
	requireContains(t, out, "19s")
}

func TestStatusJSONOutput(t *testing.T) {
	daemon := newFakeDaemon(t)
	daemon.respond("/api/sessions/abc123", http.StatusOK, api.SessionView{
		SessionID:  "abc123",
		Status:     "completed",
		StageLabel: "Completed",
		Progress:   100,
		FinalFile:  "/tmp/dubbed_final.mp4",
	})

	out, _, err := runCLI(t, daemon.addr(), "status", "abc123", "--json")
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var view api.SessionView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if view.SessionID != "abc123" || view.Progress != 100 {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestStatusUnknownSession(t *testing.T) {
	daemon := newFakeDaemon(t)
	daemon.respond("/api/sessions/missing", http.StatusNotFound, api.ErrorResponse{
		Success: false,
		Error:   "Session missing not found",
	})

	_, _, err := runCLI(t, daemon.addr(), "status", "missing")
	if err == nil {
		t.Fatal("expected not-found error")
	}
	requireContains(t, err.Error(), "Session missing not found")
}
