package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dubstudio/internal/session"
	"dubstudio/internal/testsupport"
)

func TestCreateAssignsIdentifier(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	sess, err := store.Create(ctx, session.NewSessionParams{
		SourceURL:      "https://www.youtube.com/watch?v=jNQXAC9IVRw",
		TargetLanguage: "es",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected session ID to be assigned")
	}
	if sess.Status != session.StatusQueued {
		t.Fatalf("expected queued status, got %s", sess.Status)
	}
	if sess.VoiceOption != "clone" || sess.VoiceStyle != "natural" {
		t.Fatalf("expected voice defaults, got %q/%q", sess.VoiceOption, sess.VoiceStyle)
	}

	fetched, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.SourceURL != sess.SourceURL {
		t.Fatalf("unexpected fetched session: %#v", fetched)
	}
}

func TestCreateRequiresInputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := store.Create(ctx, session.NewSessionParams{TargetLanguage: "es"}); err == nil {
		t.Fatal("expected error for missing source url")
	}
	if _, err := store.Create(ctx, session.NewSessionParams{SourceURL: "https://example.com/v"}); err == nil {
		t.Fatal("expected error for missing target language")
	}
}

func TestGetByIDUnknownReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	sess, err := store.GetByID(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if sess != nil {
		t.Fatalf("expected nil for unknown id, got %#v", sess)
	}
}

func TestUpdatePersistsTransition(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	sess := testsupport.NewSession(t, store, "https://example.com/v", "fr")

	sess.Status = session.StatusDownloading
	sess.SetProgress(20, "Download completed")
	sess.Title = "First Video"
	sess.DurationSeconds = 19.5
	if err := store.Update(ctx, sess); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != session.StatusDownloading || fetched.ProgressPercent != 20 {
		t.Fatalf("unexpected snapshot: %s %d", fetched.Status, fetched.ProgressPercent)
	}
	if fetched.Title != "First Video" {
		t.Fatalf("unexpected title: %q", fetched.Title)
	}
}

func TestUpdateUnknownIDFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	sess := &session.Session{ID: "ghost", Status: session.StatusDownloading}
	err := store.Update(context.Background(), sess)
	if !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTerminalStatesAreSinks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	sess := testsupport.NewSession(t, store, "https://example.com/v", "de")

	sess.SetFailed("transcribing", "transcription failed")
	if err := store.Update(ctx, sess); err != nil {
		t.Fatalf("Update to failed: %v", err)
	}

	sess.Status = session.StatusTranslating
	err := store.Update(ctx, sess)
	if !errors.Is(err, session.ErrTerminal) {
		t.Fatalf("expected ErrTerminal, got %v", err)
	}

	fetched, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != session.StatusFailed {
		t.Fatalf("terminal state mutated: %s", fetched.Status)
	}
}

func TestFailedFreezesProgress(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	sess := testsupport.NewSession(t, store, "https://example.com/v", "es")

	sess.Status = session.StatusTranscribing
	sess.SetProgress(20, "Download completed")
	if err := store.Update(ctx, sess); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	sess.SetFailed("transcribing", "no transcription was generated")
	if err := store.Update(ctx, sess); err != nil {
		t.Fatalf("Update to failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.ProgressPercent != 20 {
		t.Fatalf("expected progress frozen at 20, got %d", fetched.ProgressPercent)
	}
	if fetched.FailedStage != "transcribing" || fetched.ErrorMessage == "" {
		t.Fatalf("expected failure detail, got %#v", fetched)
	}
}

func TestConcurrentReadsSeeConsistentSnapshots(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	sess := testsupport.NewSession(t, store, "https://example.com/v", "es")

	milestones := map[session.Status]int{
		session.StatusQueued:          0,
		session.StatusDownloading:     0,
		session.StatusTranscribing:    20,
		session.StatusTranslating:     45,
		session.StatusGeneratingVoice: 65,
		session.StatusCombiningVideo:  85,
		session.StatusCompleted:       100,
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap, err := store.GetByID(ctx, sess.ID)
				if err != nil || snap == nil {
					errs <- err
					return
				}
				floor, ok := milestones[snap.Status]
				if !ok {
					continue
				}
				if snap.ProgressPercent < floor {
					errs <- errors.New("observed torn snapshot: " + string(snap.Status))
					return
				}
			}
		}()
	}

	transitions := []struct {
		status  session.Status
		percent int
	}{
		{session.StatusDownloading, 0},
		{session.StatusTranscribing, 20},
		{session.StatusTranslating, 45},
		{session.StatusGeneratingVoice, 65},
		{session.StatusCombiningVideo, 85},
	}
	for _, tr := range transitions {
		sess.Status = tr.status
		sess.SetProgress(tr.percent, string(tr.status))
		if err := store.Update(ctx, sess); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}
	sess.SetCompleted("/tmp/out.mp4")
	if err := store.Update(ctx, sess); err != nil {
		t.Fatalf("final Update failed: %v", err)
	}

	close(stop)
	wg.Wait()
	select {
	case err := <-errs:
		t.Fatalf("poller observed inconsistency: %v", err)
	default:
	}
}

func TestFailInFlight(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	active := testsupport.NewSession(t, store, "https://example.com/a", "es")
	active.Status = session.StatusGeneratingVoice
	active.SetProgress(65, "Synthesizing")
	if err := store.Update(ctx, active); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	done := testsupport.NewSession(t, store, "https://example.com/b", "es")
	done.SetCompleted("/tmp/done.mp4")
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	count, err := store.FailInFlight(ctx, session.DaemonStopReason)
	if err != nil {
		t.Fatalf("FailInFlight failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 session failed, got %d", count)
	}

	fetched, err := store.GetByID(ctx, active.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != session.StatusFailed || fetched.ErrorMessage != session.DaemonStopReason {
		t.Fatalf("unexpected state after restart cleanup: %#v", fetched)
	}

	untouched, err := store.GetByID(ctx, done.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if untouched.Status != session.StatusCompleted {
		t.Fatalf("completed session mutated: %s", untouched.Status)
	}
}

func TestHealthSummary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewSession(t, store, "https://example.com/a", "es")
	working := testsupport.NewSession(t, store, "https://example.com/b", "fr")
	working.Status = session.StatusDownloading
	if err := store.Update(ctx, working); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	summary, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if summary.Total != 2 || summary.Queued != 1 || summary.Processing != 1 {
		t.Fatalf("unexpected summary: %#v", summary)
	}
}
