package api

import (
	"context"

	"dubstudio/internal/catalog"
	"dubstudio/internal/services/elevenlabs"
)

// VoiceLister fetches the live voice inventory.
type VoiceLister interface {
	Voices(ctx context.Context) ([]elevenlabs.Voice, error)
}

// Languages returns the supported translation languages.
func Languages() LanguagesResponse {
	languages := make(map[string]string)
	for _, lang := range catalog.Languages() {
		languages[lang.Code] = lang.Name
	}
	return LanguagesResponse{Languages: languages}
}

// VoiceCatalog assembles the voice options payload. The prebuilt list is
// fetched live when a lister is available; any fetch failure falls back
// to the static default so the endpoint keeps working without an API key.
func VoiceCatalog(ctx context.Context, lister VoiceLister, maxPrebuilt int) VoiceOptionsResponse {
	options := VoiceOptions{
		Clone: CloneVoiceOption{
			ID:          catalog.VoiceOptionClone,
			Name:        "Voice Cloning (Match Original Speaker)",
			Description: "AI will clone the original speaker's voice",
			Default:     true,
		},
		Styles: catalog.StyleNames(),
	}

	if lister != nil {
		if voices, err := lister.Voices(ctx); err == nil {
			for _, voice := range voices {
				if maxPrebuilt > 0 && len(options.Prebuilt) >= maxPrebuilt {
					break
				}
				options.Prebuilt = append(options.Prebuilt, PrebuiltVoice{
					ID:       voice.VoiceID,
					Name:     voice.Name,
					Category: voice.Category,
				})
			}
		}
	}
	if len(options.Prebuilt) == 0 {
		options.Prebuilt = []PrebuiltVoice{{
			ID:       catalog.DefaultPrebuiltVoiceID,
			Name:     catalog.DefaultPrebuiltName,
			Category: "premade",
		}}
	}
	return VoiceOptionsResponse{Voices: options}
}
