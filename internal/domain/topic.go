package domain

import (
	"strings"
	"unicode"
)

const (
	// MaxTopicsPerEntry caps how many topics a single entry may contribute.
	MaxTopicsPerEntry = 5

	// MinEntryLength is the minimum trimmed content length worth extracting
	// from. Anything shorter gets the fallback result without an external call.
	MinEntryLength = 10

	// MinSummaryConfidence is the gating threshold: extractions below it are
	// stored but contribute nothing to the knowledge base.
	MinSummaryConfidence = 0.3

	// FallbackDomain and FallbackSubtopic classify entries that could not be
	// extracted (too short, or the extraction capability failed).
	FallbackDomain     = "general"
	FallbackSubtopic   = "uncategorized"
	FallbackConfidence = 0.1
)

// Topic is a single extracted unit of knowledge. Topics are transient: they
// exist as extraction output and are folded into summaries, never persisted
// on their own.
type Topic struct {
	Key   string `json:"topic_key"`
	Label string `json:"topic_label"`
	Info  string `json:"extracted_info"`
}

// Extraction is the structured result of running topic extraction over one
// entry's content.
type Extraction struct {
	Domain     string
	Subtopic   string
	Topics     []Topic
	Confidence float64
}

// FallbackExtraction returns the fixed degraded result used for sparse
// input and for extraction failures.
func FallbackExtraction() *Extraction {
	return &Extraction{
		Domain:     FallbackDomain,
		Subtopic:   FallbackSubtopic,
		Topics:     []Topic{},
		Confidence: FallbackConfidence,
	}
}

// Qualifies reports whether the extraction is confident enough to create or
// update a summary.
func (e *Extraction) Qualifies() bool {
	return e.Confidence >= MinSummaryConfidence
}

// TopicKeys returns the keys of all extracted topics, in order.
func (e *Extraction) TopicKeys() []string {
	keys := make([]string, len(e.Topics))
	for i, t := range e.Topics {
		keys[i] = t.Key
	}
	return keys
}

// Normalize enforces the invariants the rest of the pipeline depends on,
// regardless of what the extraction capability returned: lowercased
// underscore-separated domain/subtopic (summary identity is derived from
// them), snake_case topic keys, and at most MaxTopicsPerEntry topics.
func (e *Extraction) Normalize() {
	e.Domain = NormalizeCategory(e.Domain)
	if e.Domain == "" {
		e.Domain = FallbackDomain
	}
	e.Subtopic = NormalizeCategory(e.Subtopic)
	if e.Subtopic == "" {
		e.Subtopic = FallbackSubtopic
	}

	if len(e.Topics) > MaxTopicsPerEntry {
		e.Topics = e.Topics[:MaxTopicsPerEntry]
	}

	normalized := e.Topics[:0]
	for _, t := range e.Topics {
		t.Key = NormalizeTopicKey(t.Key)
		if t.Key == "" {
			continue
		}
		normalized = append(normalized, t)
	}
	e.Topics = normalized

	if e.Confidence < 0 {
		e.Confidence = 0
	}
	if e.Confidence > 1 {
		e.Confidence = 1
	}
}

// NormalizeCategory lowercases a domain or subtopic and replaces internal
// whitespace runs with single underscores ("Computer Science" becomes
// "computer_science").
func NormalizeCategory(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), "_")
}

// NormalizeTopicKey rewrites a topic key into snake_case: lowercase with
// runs of non-alphanumeric characters collapsed to single underscores.
func NormalizeTopicKey(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
