package main

import (
	"log/slog"

	"dubstudio/internal/config"
	"dubstudio/internal/download"
	"dubstudio/internal/pipeline"
	"dubstudio/internal/remux"
	"dubstudio/internal/session"
	"dubstudio/internal/transcription"
	"dubstudio/internal/translation"
	"dubstudio/internal/voicesynth"
)

func buildStages(cfg *config.Config, store *session.Store, logger *slog.Logger) pipeline.StageSet {
	return pipeline.StageSet{
		Download:   download.NewDownloader(cfg, store, logger),
		Transcribe: transcription.NewTranscriber(cfg, store, logger),
		Translate:  translation.NewTranslator(cfg, store, logger),
		Synthesize: voicesynth.NewSynthesizer(cfg, store, logger),
		Remux:      remux.NewRemuxer(cfg, store, logger),
	}
}
