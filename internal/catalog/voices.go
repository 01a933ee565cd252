package catalog

import "strings"

// Voice selection modes. Clone builds a temporary voice from the source
// audio; prebuilt voices are selected by their provider identifier.
const (
	VoiceOptionClone = "clone"

	// DefaultPrebuiltVoiceID is the fallback voice (Adam) used when cloning
	// is unavailable or fails.
	DefaultPrebuiltVoiceID = "pNInz6obpgDQGcFmaJgB"
	DefaultPrebuiltName    = "Adam"
)

// VoiceStyle carries the synthesis tuning knobs for one preset.
type VoiceStyle struct {
	Name            string  `json:"name"`
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

var voiceStyles = []VoiceStyle{
	{Name: "natural", Stability: 0.5, SimilarityBoost: 0.8, Style: 0.0, UseSpeakerBoost: true},
	{Name: "dramatic", Stability: 0.3, SimilarityBoost: 0.9, Style: 0.2, UseSpeakerBoost: true},
	{Name: "calm", Stability: 0.8, SimilarityBoost: 0.6, Style: 0.0, UseSpeakerBoost: false},
	{Name: "energetic", Stability: 0.2, SimilarityBoost: 0.9, Style: 0.3, UseSpeakerBoost: true},
}

var stylesByName = func() map[string]VoiceStyle {
	m := make(map[string]VoiceStyle, len(voiceStyles))
	for _, style := range voiceStyles {
		m[style.Name] = style
	}
	return m
}()

// VoiceStyles returns all presets in display order.
func VoiceStyles() []VoiceStyle {
	cp := make([]VoiceStyle, len(voiceStyles))
	copy(cp, voiceStyles)
	return cp
}

// StyleByName resolves a preset, falling back to natural for unknown names.
func StyleByName(name string) VoiceStyle {
	if style, ok := stylesByName[normalizeStyle(name)]; ok {
		return style
	}
	return stylesByName["natural"]
}

// IsKnownStyle reports whether name matches a preset exactly.
func IsKnownStyle(name string) bool {
	_, ok := stylesByName[normalizeStyle(name)]
	return ok
}

// StyleNames returns preset names in display order.
func StyleNames() []string {
	names := make([]string, len(voiceStyles))
	for i, style := range voiceStyles {
		names[i] = style.Name
	}
	return names
}

func normalizeStyle(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
