package pipeline_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dubstudio/internal/logging"
	"dubstudio/internal/pipeline"
	"dubstudio/internal/services"
	"dubstudio/internal/session"
	"dubstudio/internal/stage"
	"dubstudio/internal/testsupport"
)

type fakeHandler struct {
	name    string
	percent int
	message string
	execute func(ctx context.Context, sess *session.Session) error
}

func (f *fakeHandler) Prepare(context.Context, *session.Session) error { return nil }

func (f *fakeHandler) Execute(ctx context.Context, sess *session.Session) error {
	if f.execute != nil {
		return f.execute(ctx, sess)
	}
	sess.SetProgress(f.percent, f.message)
	return nil
}

func (f *fakeHandler) HealthCheck(context.Context) stage.Health { return stage.Healthy(f.name) }

func happyStages() pipeline.StageSet {
	return pipeline.StageSet{
		Download: &fakeHandler{name: "downloader", percent: 20, message: "Download completed",
			execute: func(_ context.Context, sess *session.Session) error {
				sess.Title = "Me at the zoo"
				sess.SetProgress(20, "Download completed")
				return nil
			}},
		Transcribe: &fakeHandler{name: "transcriber", percent: 45, message: "Transcription completed"},
		Translate:  &fakeHandler{name: "translator", percent: 65, message: "Translation completed"},
		Synthesize: &fakeHandler{name: "synthesizer", percent: 85, message: "Voice generation completed"},
		Remux: &fakeHandler{name: "remuxer",
			execute: func(_ context.Context, sess *session.Session) error {
				sess.FinalFile = "/tmp/dubbed_final.mp4"
				sess.SetProgress(sess.ProgressPercent, "Dubbed video assembled")
				return nil
			}},
	}
}

type recordingNotifier struct {
	mu        sync.Mutex
	started   []string
	completed []string
	failed    []string
}

func (r *recordingNotifier) NotifyDubStarted(_ context.Context, title, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, title)
	return nil
}

func (r *recordingNotifier) NotifyDubCompleted(_ context.Context, title, _, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, title)
	return nil
}

func (r *recordingNotifier) NotifyDubFailed(_ context.Context, _, stageName, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, stageName)
	return nil
}

func (r *recordingNotifier) NotifyError(context.Context, error, string) error { return nil }
func (r *recordingNotifier) TestNotification(context.Context) error           { return nil }

func TestSessionRunsToCompletion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sess := testsupport.NewSession(t, store, "https://example.com/v", "es")

	notifier := &recordingNotifier{}
	orch := pipeline.NewOrchestratorWithNotifier(cfg, store, logging.NewNop(), happyStages(), notifier)
	defer orch.Stop()

	if err := orch.Launch(context.Background(), sess.ID); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	orch.Wait()

	final, err := store.GetByID(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if final.Status != session.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", final.Status, final.ErrorMessage)
	}
	if final.ProgressPercent != 100 {
		t.Fatalf("expected progress 100, got %d", final.ProgressPercent)
	}
	if final.FinalFile != "/tmp/dubbed_final.mp4" {
		t.Fatalf("unexpected final file %q", final.FinalFile)
	}
	if len(notifier.completed) != 1 || notifier.completed[0] != "Me at the zoo" {
		t.Fatalf("unexpected completion notifications: %v", notifier.completed)
	}
	if len(notifier.started) != 1 || notifier.started[0] != "https://example.com/v" {
		t.Fatalf("unexpected start notifications: %v", notifier.started)
	}
}

func TestStageFailureMarksSessionFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sess := testsupport.NewSession(t, store, "https://example.com/v", "es")

	stages := happyStages()
	stages.Transcribe = &fakeHandler{name: "transcriber",
		execute: func(context.Context, *session.Session) error {
			return services.Wrap(services.ErrExternalTool, "transcribing", "deepgram",
				"No transcription was generated", nil)
		}}

	notifier := &recordingNotifier{}
	orch := pipeline.NewOrchestratorWithNotifier(cfg, store, logging.NewNop(), stages, notifier)
	defer orch.Stop()

	if err := orch.Launch(context.Background(), sess.ID); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	orch.Wait()

	final, err := store.GetByID(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if final.Status != session.StatusFailed {
		t.Fatalf("expected failed, got %s", final.Status)
	}
	if final.FailedStage != "transcribing" {
		t.Fatalf("unexpected failed stage %q", final.FailedStage)
	}
	if final.ErrorMessage != "No transcription was generated" {
		t.Fatalf("unexpected error message %q", final.ErrorMessage)
	}
	if final.ProgressPercent != 20 {
		t.Fatalf("expected progress frozen at 20, got %d", final.ProgressPercent)
	}
	if len(notifier.failed) != 1 || notifier.failed[0] != "transcribing" {
		t.Fatalf("unexpected failure notifications: %v", notifier.failed)
	}
}

func TestLaunchRejectsDoubleStart(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sess := testsupport.NewSession(t, store, "https://example.com/v", "es")

	release := make(chan struct{})
	stages := happyStages()
	stages.Download = &fakeHandler{name: "downloader",
		execute: func(ctx context.Context, s *session.Session) error {
			select {
			case <-release:
			case <-ctx.Done():
				return ctx.Err()
			}
			s.SetProgress(20, "Download completed")
			return nil
		}}

	orch := pipeline.NewOrchestratorWithNotifier(cfg, store, logging.NewNop(), stages, &recordingNotifier{})
	defer orch.Stop()

	if err := orch.Launch(context.Background(), sess.ID); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for !orch.Active(sess.ID) {
		if time.Now().After(deadline) {
			t.Fatal("session never became active")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := orch.Launch(context.Background(), sess.ID); err == nil {
		t.Fatal("expected second Launch to be rejected")
	}
	close(release)
	orch.Wait()
}

func TestLaunchRequiresQueuedSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	orch := pipeline.NewOrchestratorWithNotifier(cfg, store, logging.NewNop(), happyStages(), &recordingNotifier{})
	defer orch.Stop()

	if err := orch.Launch(context.Background(), "no-such-session"); err == nil {
		t.Fatal("expected error for unknown session")
	}

	done := testsupport.NewSession(t, store, "https://example.com/v", "es")
	done.SetCompleted("/tmp/final.mp4")
	if err := store.Update(context.Background(), done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := orch.Launch(context.Background(), done.ID); err == nil {
		t.Fatal("expected error for terminal session")
	}
}

func TestStageWatchdogTimesOut(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.StageTimeoutSeconds = 1
	store := testsupport.MustOpenStore(t, cfg)
	sess := testsupport.NewSession(t, store, "https://example.com/v", "es")

	stages := happyStages()
	stages.Download = &fakeHandler{name: "downloader",
		execute: func(ctx context.Context, _ *session.Session) error {
			<-ctx.Done()
			return ctx.Err()
		}}

	orch := pipeline.NewOrchestratorWithNotifier(cfg, store, logging.NewNop(), stages, &recordingNotifier{})
	defer orch.Stop()

	if err := orch.Launch(context.Background(), sess.ID); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	orch.Wait()

	final, err := store.GetByID(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if final.Status != session.StatusFailed {
		t.Fatalf("expected failed after watchdog, got %s", final.Status)
	}
	if final.FailedStage != "downloading" {
		t.Fatalf("unexpected failed stage %q", final.FailedStage)
	}
}

func TestStatusProgressionIsMonotonic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sess := testsupport.NewSession(t, store, "https://example.com/v", "es")

	orch := pipeline.NewOrchestratorWithNotifier(cfg, store, logging.NewNop(), happyStages(), &recordingNotifier{})
	defer orch.Stop()

	ctx := context.Background()
	if err := orch.Launch(ctx, sess.ID); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	last := -1
	for {
		snap, err := store.GetByID(ctx, sess.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if snap.ProgressPercent < last {
			t.Fatalf("progress regressed from %d to %d", last, snap.ProgressPercent)
		}
		if snap.ProgressPercent == 100 && !snap.IsTerminal() {
			t.Fatalf("observed 100%% on non-terminal status %s", snap.Status)
		}
		last = snap.ProgressPercent
		if snap.IsTerminal() {
			break
		}
		time.Sleep(time.Millisecond)
	}
	orch.Wait()
}

func TestCompletionWriteIsAtomic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sess := testsupport.NewSession(t, store, "https://example.com/v", "es")

	entered := make(chan struct{})
	release := make(chan struct{})
	stages := happyStages()
	stages.Remux = &fakeHandler{name: "remuxer",
		execute: func(_ context.Context, s *session.Session) error {
			s.FinalFile = "/tmp/dubbed_final.mp4"
			s.SetProgress(s.ProgressPercent, "Dubbed video assembled")
			close(entered)
			<-release
			return nil
		}}

	orch := pipeline.NewOrchestratorWithNotifier(cfg, store, logging.NewNop(), stages, &recordingNotifier{})
	defer orch.Stop()

	ctx := context.Background()
	if err := orch.Launch(ctx, sess.ID); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	<-entered
	snap, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if snap.Status != session.StatusCombiningVideo {
		t.Fatalf("expected combining_video while remux runs, got %s", snap.Status)
	}
	if snap.ProgressPercent >= 100 {
		t.Fatalf("non-terminal session must stay below 100, got %d", snap.ProgressPercent)
	}

	close(release)
	orch.Wait()

	final, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if final.Status != session.StatusCompleted || final.ProgressPercent != 100 {
		t.Fatalf("expected completed at 100, got %s/%d", final.Status, final.ProgressPercent)
	}
}
