package main

import (
	"strings"
	"testing"

	"dubstudio/internal/api"
)

func TestRenderSessionTableFallsBackToSourceURL(t *testing.T) {
	out := renderSessionTable([]api.SessionView{
		{SessionID: "abc123", VideoTitle: "Me at the zoo", TargetLanguage: "es", StageLabel: "Completed", Progress: 100},
		{SessionID: "def456", SourceURL: "https://youtube.com/watch?v=xyz", TargetLanguage: "fr", StageLabel: "Queued"},
	})
	if !strings.Contains(out, "Me at the zoo") {
		t.Fatalf("expected title row, got:\n%s", out)
	}
	if !strings.Contains(out, "https://youtube.com/watch?v=xyz") {
		t.Fatalf("expected source URL fallback, got:\n%s", out)
	}
	if !strings.Contains(out, "100%") {
		t.Fatalf("expected progress column, got:\n%s", out)
	}
}
