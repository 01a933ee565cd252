package main

import (
	"net/http"
	"testing"

	"dubstudio/internal/api"
)

func TestHealthRendersSummary(t *testing.T) {
	daemon := newFakeDaemon(t)
	daemon.respond("/api/health", http.StatusOK, api.HealthResponse{
		Status:  "healthy",
		Message: "All stages ready",
		Sessions: &api.SessionCounts{
			Total:      4,
			Queued:     1,
			Processing: 1,
			Completed:  2,
		},
		Stages: []api.StageHealth{
			{Name: "download", Ready: true},
			{Name: "transcription", Ready: true},
		},
	})

	out, _, err := runCLI(t, daemon.addr(), "health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	requireContains(t, out, "[OK] All stages ready")
	requireContains(t, out, "4 total, 1 queued, 1 processing, 2 completed, 0 failed")
	requireContains(t, out, "download")
}

func TestHealthFlagsDegradedStages(t *testing.T) {
	daemon := newFakeDaemon(t)
	daemon.respond("/api/health", http.StatusOK, api.HealthResponse{
		Status:  "degraded",
		Message: "1 stage not ready",
		Stages: []api.StageHealth{
			{Name: "download", Ready: true},
			{Name: "voice synthesis", Ready: false, Detail: "ElevenLabs API key not configured"},
		},
	})

	out, _, err := runCLI(t, daemon.addr(), "health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	requireContains(t, out, "[WARN] 1 stage not ready")
	requireContains(t, out, "[ERROR] ElevenLabs API key not configured")
}
