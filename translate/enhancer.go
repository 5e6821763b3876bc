package translate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/guestgraph/guestgraph/schema"
)

// Vocabulary used to recognize Turkish hotel questions on the source
// text itself. Detection on short strings is unreliable, so the repair
// path triggers on either the detected language or these terms.
var turkishTerms = []string{
	"otel", "misafir", "oda", "temizlik", "şikayet", "sikayet",
	"yorum", "hizmet", "bakım", "bakim", "sorun", "göster", "goster",
	"listele", "bul", "puan", "yıldız", "yildiz",
}

// Languages a source text can name, mapped to their ISO 639-1 code.
// Turkish and English spellings both count.
var namedLanguages = map[string]string{
	"türkçe": "tr", "turkce": "tr", "turkish": "tr",
	"ingilizce": "en", "english": "en",
	"almanca": "de", "german": "de",
	"fransızca": "fr", "fransizca": "fr", "french": "fr",
	"ispanyolca": "es", "spanish": "es",
	"italyanca": "it", "italian": "it",
}

// Enhancer applies deterministic repairs to generated traversals. It
// never calls out anywhere, so the same input always yields the same
// output and repairing an already repaired query changes nothing.
type Enhancer struct {
	catalog      *schema.Catalog
	defaultLimit int
}

func NewEnhancer(catalog *schema.Catalog, defaultLimit int) *Enhancer {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &Enhancer{catalog: catalog, defaultLimit: defaultLimit}
}

// Enhance validates and repairs a generated traversal. Universal
// invariants are enforced on every query: full value retrieval must
// include id and label (valueMap(true)), and listings must carry a
// result cap. Turkish sources additionally get a structural rebuild of
// hotel listings plus two narrow safety nets for recurring failure
// patterns, the VIP filter and the written-language filter.
//
// Queries that do not parse are returned unchanged. The caller decides
// whether to execute or discard them.
func (e *Enhancer) Enhance(queryText string, detectedLanguage string, sourceText string) string {
	parsed, err := ParseQuery(queryText)
	if err != nil {
		return queryText
	}

	source := strings.ToLower(sourceText)
	turkish := detectedLanguage == "tr" || hasTurkishTerm(source)

	if turkish {
		e.injectVIPFilter(parsed, source)
		e.injectLanguageFilter(parsed, source)
		parsed = e.rebuildHotelListing(parsed)
	}

	e.enforceFullValueRetrieval(parsed)
	e.enforceResultCap(parsed)

	return parsed.Render()
}

// enforceFullValueRetrieval upgrades valueMap() to valueMap(true) and,
// when the traversal returns raw vertices, appends a full value
// retrieval before the cap. Aggregations and explicit projections are
// left alone.
func (e *Enhancer) enforceFullValueRetrieval(q *Query) {
	for i, s := range q.Steps {
		if s.Name == "valueMap" && strings.TrimSpace(s.Args) == "" {
			q.Steps[i].Args = "true"
		}
	}

	for _, name := range []string{"valueMap", "values", "project", "select", "count", "groupCount", "path", "elementMap", "id", "label"} {
		if q.HasStep(name) {
			return
		}
	}

	retrieval := Step{Name: "valueMap", Args: "true"}
	if last := len(q.Steps) - 1; last >= 0 && q.Steps[last].Name == "limit" {
		q.Steps = append(q.Steps[:last], retrieval, q.Steps[last])
		return
	}
	q.Append(retrieval)
}

// enforceResultCap appends the default limit to unbounded listings.
// Aggregations already return a single value and stay uncapped.
func (e *Enhancer) enforceResultCap(q *Query) {
	if q.HasStep("limit") || q.HasStep("count") || q.HasStep("groupCount") {
		return
	}
	q.Append(Step{Name: "limit", Args: fmt.Sprintf("%d", e.defaultLimit)})
}

// injectVIPFilter adds has('traveler_type', 'VIP') after the base
// label filter when the source text asks about VIP guests but the
// generated traversal dropped the filter.
func (e *Enhancer) injectVIPFilter(q *Query, source string) {
	if !strings.Contains(source, "vip") {
		return
	}
	if !strings.Contains(source, "misafir") && !strings.Contains(source, "guest") {
		return
	}
	if q.ContainsText("traveler_type") {
		return
	}
	q.InsertAfter("hasLabel", Step{Name: "has", Args: "'traveler_type', 'VIP'"})
}

// injectLanguageFilter adds a written-language filter when the source
// text names a language, the schema carries the relationship and the
// traversal starts from reviews but never constrains their language.
func (e *Enhancer) injectLanguageFilter(q *Query, source string) {
	if e.catalog == nil || !e.catalog.HasRelationship("WRITTEN_IN") {
		return
	}
	if q.BaseLabel() != "Review" || q.ContainsText("WRITTEN_IN") {
		return
	}

	code := ""
	for term, iso := range namedLanguages {
		if strings.Contains(source, term) {
			code = iso
			break
		}
	}
	if code == "" {
		return
	}

	q.InsertAfter("hasLabel", Step{
		Name: "where",
		Args: fmt.Sprintf("__.out('WRITTEN_IN').has('code', '%s')", code),
	})
}

// rebuildHotelListing reconstructs hotel listing traversals that omit
// the hotel name projection. Turkish questions frequently produce
// traversals that filter hotels correctly but return them in a shape
// the rest of the pipeline cannot name, so the traversal is rebuilt in
// a fixed order: base filter, extra filters, bounded traversals, full
// value retrieval with name projection, cap.
func (e *Enhancer) rebuildHotelListing(q *Query) *Query {
	if q.BaseLabel() != "Hotel" || q.ContainsText("hotel_name") {
		return q
	}

	rebuilt := &Query{Steps: []Step{
		{Name: "V"},
		{Name: "hasLabel", Args: "'Hotel'"},
	}}

	for _, s := range q.Steps {
		if s.Name == "has" {
			rebuilt.Append(s)
		}
	}
	for _, s := range q.Steps {
		switch s.Name {
		case "out", "in", "where", "order", "by":
			rebuilt.Append(s)
		}
	}

	rebuilt.Append(Step{
		Name: "project",
		Args: "'details', 'hotel_name'",
	})
	rebuilt.Append(Step{Name: "by", Args: "__.valueMap(true)"})
	rebuilt.Append(Step{Name: "by", Args: "__.values('name')"})

	limit := fmt.Sprintf("%d", e.defaultLimit)
	for _, s := range q.Steps {
		if s.Name == "limit" {
			limit = s.Args
		}
	}
	rebuilt.Append(Step{Name: "limit", Args: limit})

	return rebuilt
}

// hasTurkishTerm tokenizes the source text and matches tokens by
// prefix. Turkish is agglutinative, so "otelleri" and "yorumlarını"
// still count, while a plain substring match would fire on English
// words like "hotels".
func hasTurkishTerm(source string) bool {
	tokens := strings.FieldsFunc(source, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, token := range tokens {
		for _, term := range turkishTerms {
			if strings.HasPrefix(token, term) {
				return true
			}
		}
	}
	return false
}
