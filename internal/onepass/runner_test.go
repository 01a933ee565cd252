package onepass_test

import (
	"context"
	"errors"
	"testing"

	"dubstudio/internal/logging"
	"dubstudio/internal/onepass"
	"dubstudio/internal/services"
	"dubstudio/internal/session"
	"dubstudio/internal/stage"
	"dubstudio/internal/testsupport"
)

type scriptedHandler struct {
	prepared int
	executed int
	execute  func(ctx context.Context, sess *session.Session) error
}

func (s *scriptedHandler) Prepare(context.Context, *session.Session) error {
	s.prepared++
	return nil
}

func (s *scriptedHandler) Execute(ctx context.Context, sess *session.Session) error {
	s.executed++
	if s.execute != nil {
		return s.execute(ctx, sess)
	}
	return nil
}

func (s *scriptedHandler) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("scripted")
}

func TestTranscribeReturnsTranscription(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	downloadHandler := &scriptedHandler{execute: func(_ context.Context, sess *session.Session) error {
		sess.Title = "Me at the zoo"
		sess.DurationSeconds = 19
		sess.AudioFile = "/tmp/audio.wav"
		sess.SetProgress(20, "Download completed")
		return nil
	}}
	transcribeHandler := &scriptedHandler{execute: func(_ context.Context, sess *session.Session) error {
		sess.Transcript = "All right, so here we are in front of the elephants."
		sess.SetProgress(45, "Transcription completed")
		return nil
	}}
	translateHandler := &scriptedHandler{}

	runner := onepass.NewRunnerWithHandlers(cfg, logging.NewNop(), downloadHandler, transcribeHandler, translateHandler)
	result, err := runner.Transcribe(context.Background(), "https://example.com/v")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if result.Transcription != "All right, so here we are in front of the elephants." {
		t.Fatalf("unexpected transcription %q", result.Transcription)
	}
	if result.Title != "Me at the zoo" || result.DurationSeconds != 19 {
		t.Fatalf("unexpected metadata: %+v", result)
	}
	if translateHandler.executed != 0 {
		t.Fatal("translate handler should not run for transcribe flow")
	}
}

func TestTranslateRunsAllThreeStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	downloadHandler := &scriptedHandler{execute: func(_ context.Context, sess *session.Session) error {
		sess.AudioFile = "/tmp/audio.wav"
		return nil
	}}
	transcribeHandler := &scriptedHandler{execute: func(_ context.Context, sess *session.Session) error {
		sess.Transcript = "Hello world"
		return nil
	}}
	translateHandler := &scriptedHandler{execute: func(_ context.Context, sess *session.Session) error {
		if sess.TargetLanguage != "es" {
			t.Fatalf("unexpected target language %q", sess.TargetLanguage)
		}
		sess.TranslatedText = "Hola mundo"
		return nil
	}}

	runner := onepass.NewRunnerWithHandlers(cfg, logging.NewNop(), downloadHandler, transcribeHandler, translateHandler)
	result, err := runner.Translate(context.Background(), "https://example.com/v", "es")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if result.TranslatedText != "Hola mundo" {
		t.Fatalf("unexpected translation %q", result.TranslatedText)
	}
	if downloadHandler.executed != 1 || transcribeHandler.executed != 1 || translateHandler.executed != 1 {
		t.Fatal("expected each stage to run exactly once")
	}
}

func TestTranslateRejectsUnsupportedLanguage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	downloadHandler := &scriptedHandler{}

	runner := onepass.NewRunnerWithHandlers(cfg, logging.NewNop(), downloadHandler, &scriptedHandler{}, &scriptedHandler{})
	_, err := runner.Translate(context.Background(), "https://example.com/v", "xx")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if downloadHandler.executed != 0 {
		t.Fatal("download should not run for an unsupported language")
	}
}

func TestTranscribeStopsOnStageFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	downloadHandler := &scriptedHandler{execute: func(context.Context, *session.Session) error {
		return services.Wrap(services.ErrExternalTool, "downloading", "yt-dlp",
			"Failed to download video", nil)
	}}
	transcribeHandler := &scriptedHandler{}

	runner := onepass.NewRunnerWithHandlers(cfg, logging.NewNop(), downloadHandler, transcribeHandler, &scriptedHandler{})
	_, err := runner.Transcribe(context.Background(), "https://example.com/v")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if transcribeHandler.executed != 0 {
		t.Fatal("transcription should not run after a download failure")
	}
}
