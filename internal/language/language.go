// Package language normalizes narration language codes.
//
// Projects store an ISO 639-1 code; user input may arrive as a 2-letter
// code, a 3-letter code, or the English language name. Normalization is
// consolidated here so the CLI and the transcription layer agree.
package language

import "strings"

type entry struct {
	code    string // ISO 639-1
	alt     string // ISO 639-2
	display string
	word    string // English name, lowercase
}

var languages = []entry{
	{"en", "eng", "English", "english"},
	{"es", "spa", "Spanish", "spanish"},
	{"fr", "fra", "French", "french"},
	{"de", "deu", "German", "german"},
	{"it", "ita", "Italian", "italian"},
	{"pt", "por", "Portuguese", "portuguese"},
	{"ja", "jpn", "Japanese", "japanese"},
	{"ko", "kor", "Korean", "korean"},
	{"zh", "zho", "Chinese", "chinese"},
	{"ru", "rus", "Russian", "russian"},
	{"hi", "hin", "Hindi", "hindi"},
	{"nl", "nld", "Dutch", "dutch"},
	{"pl", "pol", "Polish", "polish"},
	{"tr", "tur", "Turkish", "turkish"},
	{"uk", "ukr", "Ukrainian", "ukrainian"},
	{"vi", "vie", "Vietnamese", "vietnamese"},
}

var index = func() map[string]*entry {
	m := make(map[string]*entry, len(languages)*3)
	for i := range languages {
		e := &languages[i]
		m[e.code] = e
		m[e.alt] = e
		m[e.word] = e
	}
	return m
}()

// Normalize converts user input into an ISO 639-1 code. The second return
// reports whether the input named a supported language.
func Normalize(value string) (string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", false
	}
	if e, ok := index[value]; ok {
		return e.code, true
	}
	return "", false
}

// DisplayName returns a human-readable name for a recognized code, or the
// uppercased input when the code is unknown.
func DisplayName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "Unknown"
	}
	if e, ok := index[code]; ok {
		return e.display
	}
	return strings.ToUpper(code)
}

// Supported lists the ISO 639-1 codes accepted for narration.
func Supported() []string {
	codes := make([]string, 0, len(languages))
	for _, e := range languages {
		codes = append(codes, e.code)
	}
	return codes
}
