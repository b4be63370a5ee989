package domain

import "time"

// SummaryContext is the reduced view of a summary handed to the
// answer-synthesis capability.
type SummaryContext struct {
	SummaryID string   `json:"summary_id"`
	Domain    string   `json:"domain"`
	Subtopic  string   `json:"subtopic"`
	Content   string   `json:"content"`
	Topics    []string `json:"topics"`
}

// AnswerOutcome is the raw result of answer synthesis, before provenance
// resolution.
type AnswerOutcome struct {
	Answer           string
	SummariesUsed    []string
	TopicsReferenced map[string][]string // summary id -> topic keys cited
	Confidence       float64
	InsufficientInfo bool
	MissingInfo      string
}

// InsufficientAnswerOutcome is the degraded result used when there is no
// material to answer from, or the synthesis capability failed.
func InsufficientAnswerOutcome() *AnswerOutcome {
	return &AnswerOutcome{
		Answer:           "",
		SummariesUsed:    []string{},
		TopicsReferenced: map[string][]string{},
		Confidence:       0,
		InsufficientInfo: true,
	}
}

// EntrySource is one original entry attached to a resolved answer. Missing
// is set when the cited entry could no longer be fetched and the record is a
// placeholder.
type EntrySource struct {
	EntryID     string
	Content     string
	SourceType  SourceType
	Contributor string
	CreatedAt   time.Time
	Missing     bool
}

// PlaceholderEntrySource stands in for a cited entry that no longer exists.
func PlaceholderEntrySource(entryID string) EntrySource {
	return EntrySource{
		EntryID: entryID,
		Content: "[entry no longer available]",
		Missing: true,
	}
}

// QueryResult is the fully resolved answer to one query: the synthesized
// text plus topic-level source attribution mapped back to original entries.
type QueryResult struct {
	ID               string
	SpaceID          string
	Query            string
	Answer           string
	SummariesUsed    []string
	TopicsReferenced map[string][]string
	OriginalEntries  []string
	EntryDetails     []EntrySource
	Confidence       float64
	InsufficientInfo bool
	CreatedAt        time.Time
}
