package semantic

import (
	"strings"
)

// sentence terminators recognized by the splitter
var sentenceBreaks = []string{"! ", "? ", ". "}

// SplitSentences splits a review text into trimmed sentences.
func SplitSentences(text string) []string {
	for _, br := range sentenceBreaks {
		text = strings.ReplaceAll(text, br, strings.TrimSuffix(br, " ")+"|")
	}

	var sentences []string
	for _, s := range strings.Split(text, "|") {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// ChunkReview splits a long review into chunks of at most
// maxSentences sentences each. Short reviews come back as a single
// chunk so most inputs index unchanged.
func ChunkReview(text string, maxSentences int) []string {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := SplitSentences(text)
	if len(sentences) <= maxSentences {
		return []string{strings.Join(sentences, " ")}
	}

	var chunks []string
	for start := 0; start < len(sentences); start += maxSentences {
		end := start + maxSentences
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, strings.Join(sentences[start:end], " "))
	}
	return chunks
}
