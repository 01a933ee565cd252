package catalog

import "testing"

func TestLanguagesComplete(t *testing.T) {
	langs := Languages()
	if len(langs) != 21 {
		t.Fatalf("expected 21 supported languages, got %d", len(langs))
	}
	if langs[0].Code != "es" || langs[0].Name != "Spanish" {
		t.Fatalf("unexpected first language: %+v", langs[0])
	}
}

func TestIsSupportedLanguage(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"es", true},
		{"ES", true},
		{" vi ", true},
		{"en", false},
		{"xx", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSupportedLanguage(tt.code); got != tt.want {
			t.Errorf("IsSupportedLanguage(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestLanguageName(t *testing.T) {
	if got := LanguageName("no"); got != "Norwegian" {
		t.Errorf("LanguageName(no) = %q", got)
	}
	if got := LanguageName("zz"); got != "zz" {
		t.Errorf("LanguageName(zz) = %q, want passthrough", got)
	}
}

func TestStyleByName(t *testing.T) {
	calm := StyleByName("calm")
	if calm.Stability != 0.8 || calm.SimilarityBoost != 0.6 || calm.UseSpeakerBoost {
		t.Fatalf("unexpected calm preset: %+v", calm)
	}

	fallback := StyleByName("unknown")
	if fallback.Name != "natural" {
		t.Fatalf("expected natural fallback, got %q", fallback.Name)
	}
	if fallback.Stability != 0.5 || fallback.SimilarityBoost != 0.8 {
		t.Fatalf("unexpected natural preset: %+v", fallback)
	}
}

func TestIsKnownStyle(t *testing.T) {
	for _, name := range []string{"natural", "dramatic", "calm", "energetic"} {
		if !IsKnownStyle(name) {
			t.Errorf("expected %q to be known", name)
		}
	}
	if IsKnownStyle("robotic") {
		t.Error("did not expect robotic to be known")
	}
}
