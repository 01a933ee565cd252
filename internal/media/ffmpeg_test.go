package media

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
)

type fakeExecutor struct {
	binary string
	args   []string
	output string
	err    error
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string) (string, error) {
	f.binary = binary
	f.args = args
	return f.output, f.err
}

func TestExtractAudioArgs(t *testing.T) {
	exec := &fakeExecutor{}
	proc, err := NewProcessor("ffmpeg", WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}

	dir := t.TempDir()
	source := filepath.Join(dir, "video.mp4")
	dest := filepath.Join(dir, "audio.wav")
	if err := proc.ExtractAudio(context.Background(), source, dest); err != nil {
		t.Fatalf("ExtractAudio failed: %v", err)
	}

	if exec.binary != "ffmpeg" {
		t.Fatalf("binary = %q", exec.binary)
	}
	for _, pair := range [][2]string{
		{"-i", source},
		{"-ac", "1"},
		{"-ar", "22050"},
		{"-c:a", "pcm_s16le"},
	} {
		idx := slices.Index(exec.args, pair[0])
		if idx < 0 || idx+1 >= len(exec.args) || exec.args[idx+1] != pair[1] {
			t.Errorf("expected %s %s in args %v", pair[0], pair[1], exec.args)
		}
	}
	if exec.args[len(exec.args)-1] != dest {
		t.Errorf("expected destination last, got %v", exec.args)
	}
}

func TestCombineArgs(t *testing.T) {
	exec := &fakeExecutor{}
	proc, err := NewProcessor("ffmpeg", WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}

	dir := t.TempDir()
	video := filepath.Join(dir, "video.mp4")
	audio := filepath.Join(dir, "dubbed.mp3")
	dest := filepath.Join(dir, "final.mp4")
	if err := proc.Combine(context.Background(), video, audio, dest); err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	for _, pair := range [][2]string{
		{"-map", "0:v:0"},
		{"-c:v", "copy"},
		{"-c:a", "aac"},
	} {
		idx := slices.Index(exec.args, pair[0])
		if idx < 0 || idx+1 >= len(exec.args) || exec.args[idx+1] != pair[1] {
			t.Errorf("expected %s %s in args %v", pair[0], pair[1], exec.args)
		}
	}
	if !slices.Contains(exec.args, "-shortest") {
		t.Errorf("expected -shortest in args %v", exec.args)
	}
}

func TestCombineValidatesInputs(t *testing.T) {
	proc, err := NewProcessor("ffmpeg", WithExecutor(&fakeExecutor{}))
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	if err := proc.Combine(context.Background(), "", "a.mp3", "out.mp4"); err == nil {
		t.Fatal("expected error for missing video path")
	}
}

func TestExtractAudioWrapsFailure(t *testing.T) {
	exec := &fakeExecutor{output: "No such file", err: errors.New("exit status 1")}
	proc, err := NewProcessor("ffmpeg", WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}

	dir := t.TempDir()
	err = proc.ExtractAudio(context.Background(), filepath.Join(dir, "in.mp4"), filepath.Join(dir, "out.wav"))
	if err == nil {
		t.Fatal("expected failure")
	}
}

func TestNewProcessorRequiresBinary(t *testing.T) {
	if _, err := NewProcessor("  "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
