package api_test

import (
	"context"
	"errors"
	"testing"

	"dubstudio/internal/api"
	"dubstudio/internal/logging"
	"dubstudio/internal/onepass"
	"dubstudio/internal/services"
	"dubstudio/internal/session"
	"dubstudio/internal/testsupport"
)

type recordingLauncher struct {
	launched []string
	err      error
}

func (r *recordingLauncher) Launch(_ context.Context, sessionID string) error {
	if r.err != nil {
		return r.err
	}
	r.launched = append(r.launched, sessionID)
	return nil
}

type stubRunner struct {
	transcribeResult onepass.Result
	translateResult  onepass.Result
	err              error
}

func (s *stubRunner) Transcribe(context.Context, string) (onepass.Result, error) {
	return s.transcribeResult, s.err
}

func (s *stubRunner) Translate(context.Context, string, string) (onepass.Result, error) {
	return s.translateResult, s.err
}

func TestSubmitDubCreatesAndLaunchesSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	launcher := &recordingLauncher{}
	gateway := api.NewGateway(store, launcher, &stubRunner{}, logging.NewNop())

	response, err := gateway.SubmitDub(context.Background(), api.DubRequest{
		URL:            "https://example.com/watch?v=jNQXAC9IVRw",
		TargetLanguage: "es",
		VoiceStyle:     "dramatic",
	})
	if err != nil {
		t.Fatalf("SubmitDub failed: %v", err)
	}
	if !response.Success || response.SessionID == "" {
		t.Fatalf("unexpected response: %+v", response)
	}
	if response.Status != string(session.StatusQueued) {
		t.Fatalf("expected queued status, got %q", response.Status)
	}
	if len(launcher.launched) != 1 || launcher.launched[0] != response.SessionID {
		t.Fatalf("launcher saw %v", launcher.launched)
	}

	stored, err := store.GetByID(context.Background(), response.SessionID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored == nil || stored.VoiceStyle != "dramatic" {
		t.Fatalf("unexpected stored session: %+v", stored)
	}
}

func TestSubmitDubRejectsInvalidInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	launcher := &recordingLauncher{}
	gateway := api.NewGateway(store, launcher, &stubRunner{}, logging.NewNop())

	cases := []struct {
		name    string
		request api.DubRequest
	}{
		{"missing url", api.DubRequest{TargetLanguage: "es"}},
		{"bad scheme", api.DubRequest{URL: "ftp://example.com/v", TargetLanguage: "es"}},
		{"unsupported language", api.DubRequest{URL: "https://example.com/v", TargetLanguage: "xx"}},
		{"unknown style", api.DubRequest{URL: "https://example.com/v", TargetLanguage: "es", VoiceStyle: "operatic"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gateway.SubmitDub(context.Background(), tc.request)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if len(launcher.launched) != 0 {
		t.Fatalf("no session should launch for invalid input, saw %v", launcher.launched)
	}
	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("no session should be created for invalid input, found %d", count)
	}
}

func TestTranscribeReturnsRunnerResult(t *testing.T) {
	runner := &stubRunner{transcribeResult: onepass.Result{
		Transcription:   "All right, so here we are in front of the elephants.",
		Title:           "Me at the zoo",
		DurationSeconds: 19,
	}}
	gateway := api.NewGateway(nil, nil, runner, logging.NewNop())

	response, err := gateway.Transcribe(context.Background(), api.TranscribeRequest{URL: "https://example.com/v"})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if !response.Success || response.Transcription == "" {
		t.Fatalf("unexpected response: %+v", response)
	}
	if response.VideoTitle != "Me at the zoo" || response.Duration != 19 {
		t.Fatalf("unexpected metadata: %+v", response)
	}
}

func TestTranslateReturnsRunnerResult(t *testing.T) {
	runner := &stubRunner{translateResult: onepass.Result{
		Transcription:  "Hello world",
		TranslatedText: "Hola mundo",
		Title:          "Greeting",
	}}
	gateway := api.NewGateway(nil, nil, runner, logging.NewNop())

	response, err := gateway.Translate(context.Background(), api.TranslateRequest{
		URL:            "https://example.com/v",
		TargetLanguage: "es",
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if response.TranslatedText != "Hola mundo" || response.OriginalTranscription != "Hello world" {
		t.Fatalf("unexpected response: %+v", response)
	}
	if response.TargetLanguage != "es" {
		t.Fatalf("unexpected target language %q", response.TargetLanguage)
	}
}

func TestTranscribePropagatesRunnerError(t *testing.T) {
	runner := &stubRunner{err: services.Wrap(services.ErrExternalTool, "downloading", "yt-dlp",
		"Failed to download video", nil)}
	gateway := api.NewGateway(nil, nil, runner, logging.NewNop())

	_, err := gateway.Transcribe(context.Background(), api.TranscribeRequest{URL: "https://example.com/v"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
