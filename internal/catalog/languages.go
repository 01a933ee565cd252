package catalog

import "strings"

// Language describes one supported dubbing target.
type Language struct {
	Code string // ISO 639-1 (2-letter)
	Name string // Human-readable name
}

var languages = []Language{
	{"es", "Spanish"},
	{"fr", "French"},
	{"de", "German"},
	{"it", "Italian"},
	{"pt", "Portuguese"},
	{"ru", "Russian"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"zh", "Chinese"},
	{"ar", "Arabic"},
	{"hi", "Hindi"},
	{"nl", "Dutch"},
	{"sv", "Swedish"},
	{"no", "Norwegian"},
	{"da", "Danish"},
	{"fi", "Finnish"},
	{"pl", "Polish"},
	{"tr", "Turkish"},
	{"he", "Hebrew"},
	{"th", "Thai"},
	{"vi", "Vietnamese"},
}

var byCode = func() map[string]Language {
	m := make(map[string]Language, len(languages))
	for _, lang := range languages {
		m[lang.Code] = lang
	}
	return m
}()

// Languages returns the supported target languages in display order.
func Languages() []Language {
	cp := make([]Language, len(languages))
	copy(cp, languages)
	return cp
}

// LanguageName resolves a code to its display name, or the code itself
// when unknown.
func LanguageName(code string) string {
	if lang, ok := byCode[normalizeCode(code)]; ok {
		return lang.Name
	}
	return code
}

// IsSupportedLanguage reports whether code names a dubbing target.
func IsSupportedLanguage(code string) bool {
	_, ok := byCode[normalizeCode(code)]
	return ok
}

// LanguageCodes returns the supported codes in display order.
func LanguageCodes() []string {
	codes := make([]string, len(languages))
	for i, lang := range languages {
		codes[i] = lang.Code
	}
	return codes
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
