package translate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/guestgraph/guestgraph/schema"
)

const gremlinRules = `GREMLIN SYNTAX EXAMPLES:
- Find all hotels: g.V().hasLabel('Hotel')
- Find hotel by name: g.V().hasLabel('Hotel').has('name', 'Grand Palace')
- Find reviews for a hotel: g.V().hasLabel('Hotel').has('name', 'Grand Palace').out('HAS_REVIEW')
- Find high-rated reviews: g.V().hasLabel('Review').has('score', gte(8))
- Find reviews about an aspect: g.V().hasLabel('Review').where(__.out('HAS_ANALYSIS').out('ANALYZES_ASPECT').has('name', 'service'))
- Find reviews by language: g.V().hasLabel('Review').where(__.out('WRITTEN_IN').has('code', 'en'))
- Find hotels in a city: g.V().hasLabel('Hotel').has('city', 'Istanbul')
- Find reviews by guest type: g.V().hasLabel('Reviewer').has('traveler_type', 'business').out('WROTE')

IMPORTANT GREMLIN RULES:
- Always start with g.V() for vertex queries
- Use hasLabel('VertexName') to filter by vertex type
- Use has('property', 'value') for exact matches
- Use has('property', gte(value)) and has('property', lte(value)) for ranges
- Use out('EdgeLabel') and in('EdgeLabel') to traverse edges
- Use valueMap(true) to return full vertices including id and label
- Use limit(n) to cap results`

// Worked Turkish question and traversal pairs. A few-shot block beats
// literal translation on low-resource inputs, so every recurring
// question shape in the domain gets one pair here.
var turkishExamples = [][2]string{
	{"Tüm otelleri göster", "g.V().hasLabel('Hotel').valueMap(true).limit(10)"},
	{"İstanbul'daki otelleri listele", "g.V().hasLabel('Hotel').has('city', 'Istanbul').valueMap(true).limit(10)"},
	{"VIP misafirlerin yorumlarını göster", "g.V().hasLabel('Reviewer').has('traveler_type', 'VIP').out('WROTE').valueMap(true).limit(10)"},
	{"Temizlik şikayetlerini bul", "g.V().hasLabel('Review').where(__.out('HAS_ANALYSIS').out('ANALYZES_ASPECT').has('name', 'cleanliness')).valueMap(true).limit(10)"},
	{"Türkçe yazılmış yorumları göster", "g.V().hasLabel('Review').where(__.out('WRITTEN_IN').has('code', 'tr')).valueMap(true).limit(10)"},
	{"Puanı 8'den yüksek yorumları bul", "g.V().hasLabel('Review').has('score', gte(8)).valueMap(true).limit(10)"},
	{"Hizmet hakkındaki olumsuz yorumları göster", "g.V().hasLabel('Review').where(__.out('HAS_ANALYSIS').has('sentiment_score', lte(0))).where(__.out('HAS_ANALYSIS').out('ANALYZES_ASPECT').has('name', 'service')).valueMap(true).limit(10)"},
	{"Beş yıldızlı otelleri listele", "g.V().hasLabel('Hotel').has('star_rating', 5).valueMap(true).limit(10)"},
	{"Booking.com'dan gelen yorumları bul", "g.V().hasLabel('Review').where(__.out('SOURCED_FROM').has('name', 'Booking.com')).valueMap(true).limit(10)"},
	{"İş amaçlı seyahat eden misafirlerin yorumlarını göster", "g.V().hasLabel('Reviewer').has('traveler_type', 'business').out('WROTE').valueMap(true).limit(10)"},
	{"Ankara'daki otellerin yorumlarını göster", "g.V().hasLabel('Hotel').has('city', 'Ankara').out('HAS_REVIEW').valueMap(true).limit(10)"},
	{"Doğrulanmış yorumları listele", "g.V().hasLabel('Review').has('verified', true).valueMap(true).limit(10)"},
}

var turkishGlossary = map[string]string{
	"otel":     "hotel",
	"misafir":  "guest",
	"oda":      "room",
	"temizlik": "cleanliness",
	"şikayet":  "complaint",
	"yorum":    "review",
	"hizmet":   "service",
	"bakım":    "maintenance",
	"sorun":    "problem",
	"puan":     "score",
	"göster":   "show",
	"listele":  "list",
	"bul":      "find",
}

// European languages that get the lighter semantic hint instead of the
// full few-shot block.
var hintedLanguages = map[string]bool{"es": true, "fr": true, "de": true, "it": true}

type promptBuilder struct {
	schemaPrompt string
}

func newPromptBuilder(catalog *schema.Catalog) *promptBuilder {
	return &promptBuilder{schemaPrompt: catalog.PromptDescription()}
}

// Build assembles the translation prompt for a single request. The
// schema description and syntax rules are always present; language
// blocks and the filter summary only when they apply.
func (p *promptBuilder) Build(rawQuery string, detectedLanguage string, filters map[string]any) string {
	var b strings.Builder

	b.WriteString(p.schemaPrompt)
	b.WriteString("\n\n")
	b.WriteString(gremlinRules)
	b.WriteString("\n\nTASK: Convert the following natural language query into a valid Gremlin query.\n")

	switch {
	case detectedLanguage == "tr":
		b.WriteString("\nLANGUAGE NOTE: The input query is in Turkish. Understand the meaning and convert to Gremlin.\n")
		b.WriteString("\nTURKISH EXAMPLES:\n")
		for _, example := range turkishExamples {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", example[0], example[1])
		}
		b.WriteString("\nTURKISH GLOSSARY:\n")
		for _, term := range sortedKeys(turkishGlossary) {
			fmt.Fprintf(&b, "- %q = %s\n", term, turkishGlossary[term])
		}
	case hintedLanguages[detectedLanguage]:
		fmt.Fprintf(&b, "\nLANGUAGE NOTE: The input query is in %s. Focus on the semantic meaning rather than literal translation.\n", strings.ToUpper(detectedLanguage))
	}

	if summary := filterSummary(filters); summary != "" {
		fmt.Fprintf(&b, "\nAdditional filters requested by the caller: %s\n", summary)
	}

	fmt.Fprintf(&b, `
User Query: %q

Requirements:
1. Generate ONLY the Gremlin query, no explanation
2. The query must be syntactically correct
3. Use the exact vertex and edge labels from the schema above
4. Include appropriate filters and traversals
5. Add .limit(10) at the end unless a specific limit is requested
6. If the query is ambiguous, make reasonable assumptions based on the hotel review domain

Gremlin Query:`, rawQuery)

	return b.String()
}

func filterSummary(filters map[string]any) string {
	if len(filters) == 0 {
		return ""
	}
	parts := make([]string, 0, len(filters))
	for _, key := range sortedKeysAny(filters) {
		parts = append(parts, fmt.Sprintf("%s: %v", key, filters[key]))
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysAny(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
