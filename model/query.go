package model

// TranslationRequest carries one natural-language question through translation.
// It is request-scoped and discarded once a GeneratedQuery exists.
type TranslationRequest struct {
	RawQuery         string         `json:"raw_query"`
	DetectedLanguage string         `json:"detected_language"`
	Filters          map[string]any `json:"filters,omitempty"`
}

// GeneratedQuery is the translated graph query
type GeneratedQuery struct {
	Query          string  `json:"query"`
	SourceLanguage string  `json:"source_language"`
	Confidence     float64 `json:"confidence"` // coarse heuristic in [0,1]
	Repaired       bool    `json:"repaired"`
}
