package remux_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubstudio/internal/logging"
	"dubstudio/internal/media"
	"dubstudio/internal/remux"
	"dubstudio/internal/services"
	"dubstudio/internal/session"
	"dubstudio/internal/testsupport"
)

type fakeExecutor struct {
	args []string
	err  error
}

func (f *fakeExecutor) Run(_ context.Context, _ string, args []string) (string, error) {
	f.args = args
	return "", f.err
}

func readySession(t *testing.T, store *session.Store) *session.Session {
	t.Helper()
	sess := testsupport.NewSession(t, store, "https://example.com/v", "es")
	dir := t.TempDir()
	sess.MediaFile = filepath.Join(dir, "Me at the zoo.mp4")
	sess.DubbedAudioFile = filepath.Join(dir, "dubbed_audio.mp3")
	sess.AudioFile = filepath.Join(dir, "audio.wav")
	for _, path := range []string{sess.MediaFile, sess.DubbedAudioFile, sess.AudioFile} {
		if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	sess.SetProgress(85, "Voice generation completed")
	return sess
}

func TestExecuteProducesFinalFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sess := readySession(t, store)

	exec := &fakeExecutor{}
	proc, err := media.NewProcessor("ffmpeg", media.WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	handler := remux.NewRemuxerWithProcessor(cfg, store, logging.NewNop(), proc)

	ctx := context.Background()
	if err := handler.Prepare(ctx, sess); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := handler.Execute(ctx, sess); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if sess.FinalFile == "" || !strings.HasPrefix(filepath.Base(sess.FinalFile), "dubbed_") {
		t.Fatalf("unexpected final file %q", sess.FinalFile)
	}
	if sess.ProgressPercent != 85 {
		t.Fatalf("expected progress to stay at 85 until completion, got %d", sess.ProgressPercent)
	}
	if sess.Status == session.StatusCompleted {
		t.Fatalf("remux must not mark the session completed itself")
	}
}

func TestExecuteCleansIntermediates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.CleanupTempFiles = true
	store := testsupport.MustOpenStore(t, cfg)
	sess := readySession(t, store)

	proc, err := media.NewProcessor("ffmpeg", media.WithExecutor(&fakeExecutor{}))
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	handler := remux.NewRemuxerWithProcessor(cfg, store, logging.NewNop(), proc)

	if err := handler.Execute(context.Background(), sess); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if _, err := os.Stat(sess.AudioFile); !os.IsNotExist(err) {
		t.Fatalf("expected extracted audio removed, stat err %v", err)
	}
	if _, err := os.Stat(sess.MediaFile); err != nil {
		t.Fatalf("expected source video preserved: %v", err)
	}
}

func TestPrepareRequiresArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sess := testsupport.NewSession(t, store, "https://example.com/v", "es")

	proc, err := media.NewProcessor("ffmpeg", media.WithExecutor(&fakeExecutor{}))
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	handler := remux.NewRemuxerWithProcessor(cfg, store, logging.NewNop(), proc)

	if err := handler.Prepare(context.Background(), sess); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExecuteWrapsCombineFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sess := readySession(t, store)

	proc, err := media.NewProcessor("ffmpeg", media.WithExecutor(&fakeExecutor{err: errors.New("exit status 1")}))
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	handler := remux.NewRemuxerWithProcessor(cfg, store, logging.NewNop(), proc)

	if err := handler.Execute(context.Background(), sess); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if sess.ProgressPercent != 85 {
		t.Fatalf("progress advanced on failure: %d", sess.ProgressPercent)
	}
}
