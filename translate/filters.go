package translate

import (
	"fmt"
	"strings"
)

// Filters are structured, caller-supplied constraints. They can steer
// the generated traversal through the prompt or, via BuildFromFilters,
// produce a traversal directly without any generation involved.
type Filters struct {
	Language  string   `json:"language,omitempty" yaml:"language,omitempty"`
	Source    string   `json:"source,omitempty" yaml:"source,omitempty"`
	Aspect    string   `json:"aspect,omitempty" yaml:"aspect,omitempty"`
	Sentiment string   `json:"sentiment,omitempty" yaml:"sentiment,omitempty"`
	Room      string   `json:"room,omitempty" yaml:"room,omitempty"`
	DateRange string   `json:"date_range,omitempty" yaml:"date_range,omitempty"`
	Hotel     string   `json:"hotel,omitempty" yaml:"hotel,omitempty"`
	GuestType string   `json:"guest_type,omitempty" yaml:"guest_type,omitempty"`
	MinRating *float64 `json:"min_rating,omitempty" yaml:"min_rating,omitempty"`
	MaxRating *float64 `json:"max_rating,omitempty" yaml:"max_rating,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return f == Filters{}
}

// ToMap renders the set filters as a map for prompt summaries.
func (f Filters) ToMap() map[string]any {
	m := map[string]any{}
	for key, value := range map[string]string{
		"language": f.Language, "source": f.Source, "aspect": f.Aspect,
		"sentiment": f.Sentiment, "room": f.Room, "date_range": f.DateRange,
		"hotel": f.Hotel, "guest_type": f.GuestType,
	} {
		if value != "" {
			m[key] = value
		}
	}
	if f.MinRating != nil {
		m["min_rating"] = *f.MinRating
	}
	if f.MaxRating != nil {
		m["max_rating"] = *f.MaxRating
	}
	return m
}

// MetadataFilters renders the filters usable against the semantic
// index. Only exact-match fields carry over, rating and date bounds
// have no chunk-level counterpart.
func (f Filters) MetadataFilters() map[string]any {
	m := map[string]any{}
	for key, value := range map[string]string{
		"language": f.Language, "source": f.Source, "aspect": f.Aspect,
		"sentiment": f.Sentiment, "hotel": f.Hotel, "guest_type": f.GuestType,
	} {
		if value != "" {
			m[key] = value
		}
	}
	return m
}

// BuildFromFilters converts structured filters straight into a Gremlin
// traversal. No generation involved, so the output is fully
// deterministic and always valid.
func BuildFromFilters(f Filters, maxResults int) string {
	if maxResults <= 0 {
		maxResults = 10
	}

	var b strings.Builder
	b.WriteString("g.V()")

	if f.Hotel != "" {
		fmt.Fprintf(&b, ".hasLabel('Hotel').has('name', '%s')", escapeValue(f.Hotel))
	} else {
		b.WriteString(".hasLabel('Review')")
	}

	if f.Language != "" {
		fmt.Fprintf(&b, ".where(__.out('WRITTEN_IN').has('code', '%s'))", escapeValue(f.Language))
	}
	if f.Source != "" {
		fmt.Fprintf(&b, ".where(__.out('SOURCED_FROM').has('name', '%s'))", escapeValue(f.Source))
	}
	if f.Aspect != "" {
		fmt.Fprintf(&b, ".where(__.out('HAS_ANALYSIS').out('ANALYZES_ASPECT').has('name', '%s'))", escapeValue(f.Aspect))
	}
	if f.Sentiment != "" {
		sentiment := ".where(__.out('HAS_ANALYSIS').has('sentiment_score', gte(0)))"
		if strings.EqualFold(f.Sentiment, "negative") {
			sentiment = ".where(__.out('HAS_ANALYSIS').has('sentiment_score', lte(0)))"
		}
		b.WriteString(sentiment)
	}
	if f.Room != "" {
		fmt.Fprintf(&b, ".where(__.out('REFERS_TO').has('name', '%s'))", escapeValue(f.Room))
	}
	if f.GuestType != "" {
		fmt.Fprintf(&b, ".where(__.in('WROTE').has('traveler_type', '%s'))", escapeValue(f.GuestType))
	}
	if f.MinRating != nil {
		fmt.Fprintf(&b, ".has('score', gte(%g))", *f.MinRating)
	}
	if f.MaxRating != nil {
		fmt.Fprintf(&b, ".has('score', lte(%g))", *f.MaxRating)
	}
	if days, ok := dateRangeDays(f.DateRange); ok {
		fmt.Fprintf(&b, ".has('created_at', gte('now-%dd'))", days)
	}

	fmt.Fprintf(&b, ".valueMap(true).limit(%d)", maxResults)
	return b.String()
}

func dateRangeDays(dateRange string) (int, bool) {
	switch dateRange {
	case "last_7_days":
		return 7, true
	case "last_14_days":
		return 14, true
	case "last_30_days":
		return 30, true
	default:
		return 0, false
	}
}

// escapeValue keeps caller-supplied values from breaking out of their
// quoted position in the traversal.
func escapeValue(value string) string {
	return strings.NewReplacer("'", "\\'", "\n", " ").Replace(value)
}
