// Package language classifies the input language of user questions so the
// query translator can pick the right prompt variant.
package language

import (
	"strings"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
)

// Unknown is returned when the language cannot be determined
const Unknown = "unknown"

// Detector wraps a lingua language detector restricted to the languages
// the translation prompt bank knows about
type Detector struct {
	detector lingua.LanguageDetector
}

// NewDetector creates a detector for the supported prompt languages
func NewDetector() *Detector {
	languages := []lingua.Language{
		lingua.English,
		lingua.Turkish,
		lingua.Spanish,
		lingua.French,
		lingua.German,
		lingua.Italian,
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		Build()

	return &Detector{detector: detector}
}

// Detect returns the lowercase ISO 639-1 code of the text's language.
// Inputs shorter than 3 runes return Unknown rather than guessing, and
// any detector failure degrades to Unknown instead of propagating.
func (d *Detector) Detect(text string) (code string) {
	defer func() {
		if r := recover(); r != nil {
			code = Unknown
		}
	}()

	clean := strings.ToLower(strings.TrimSpace(text))
	if utf8.RuneCountInString(clean) < 3 {
		return Unknown
	}

	detected, ok := d.detector.DetectLanguageOf(clean)
	if !ok {
		return Unknown
	}

	return strings.ToLower(detected.IsoCode639_1().String())
}
