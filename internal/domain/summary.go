package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// SummaryWordSoftCap is the word budget the merge instruction asks the
	// text-generation capability to stay within.
	SummaryWordSoftCap = 500

	// SummarySplitWordThreshold and SummarySplitTopicThreshold trigger the
	// advisory split-needed warning. Splitting itself is future work.
	SummarySplitWordThreshold  = 1000
	SummarySplitTopicThreshold = 10
)

// Summary is the accumulating knowledge artifact for one (domain, subtopic)
// pair within a space. Its ID is derived deterministically from domain and
// subtopic so that repeated extraction into the same pair always targets the
// same summary instead of creating duplicates.
type Summary struct {
	ID       string
	SpaceID  string
	Domain   string // immutable once created; part of identity
	Subtopic string // immutable once created; part of identity
	Content  string

	// TopicSources maps topic_key to the ordered, deduplicated set of entry
	// ids that contributed factual content under that topic.
	TopicSources map[string][]string

	// ContributingEntries is the union of every entry id that has ever
	// contributed to this summary (a superset of TopicSources values).
	ContributingEntries []string

	EntryCount  int
	Version     int64
	CreatedAt   time.Time
	LastUpdated time.Time
}

// NewSummaryID derives the deterministic summary id for a normalized
// (domain, subtopic) pair.
func NewSummaryID(domain, subtopic string) string {
	return NormalizeCategory(domain) + "__" + NormalizeCategory(subtopic)
}

// NewSummary creates the first version of a summary, seeded from a single
// entry's extraction.
func NewSummary(spaceID, domain, subtopic, content, entryID string, topicKeys []string, now time.Time) *Summary {
	s := &Summary{
		ID:                  NewSummaryID(domain, subtopic),
		SpaceID:             spaceID,
		Domain:              NormalizeCategory(domain),
		Subtopic:            NormalizeCategory(subtopic),
		Content:             content,
		TopicSources:        make(map[string][]string, len(topicKeys)),
		ContributingEntries: []string{},
		Version:             1,
		CreatedAt:           now,
		LastUpdated:         now,
	}
	for _, key := range topicKeys {
		s.AddTopicSource(key, entryID)
	}
	s.AddContributingEntry(entryID)
	return s
}

// AddTopicSource records that entryID contributed under topicKey. An entry
// id never appears twice under the same key.
func (s *Summary) AddTopicSource(topicKey, entryID string) {
	if s.TopicSources == nil {
		s.TopicSources = make(map[string][]string)
	}
	for _, id := range s.TopicSources[topicKey] {
		if id == entryID {
			return
		}
	}
	s.TopicSources[topicKey] = append(s.TopicSources[topicKey], entryID)
}

// AddContributingEntry adds entryID to the deduplicated union of all
// contributing entries and keeps EntryCount in sync.
func (s *Summary) AddContributingEntry(entryID string) {
	for _, id := range s.ContributingEntries {
		if id == entryID {
			s.EntryCount = len(s.ContributingEntries)
			return
		}
	}
	s.ContributingEntries = append(s.ContributingEntries, entryID)
	s.EntryCount = len(s.ContributingEntries)
}

// WordCount counts whitespace-delimited tokens in the summary content.
func (s *Summary) WordCount() int {
	return len(strings.Fields(s.Content))
}

// TopicCount returns the number of distinct topic keys with provenance.
func (s *Summary) TopicCount() int {
	return len(s.TopicSources)
}

// NeedsSplit reports whether the summary has outgrown the advisory size
// thresholds. The caller only warns; nothing is split automatically.
func (s *Summary) NeedsSplit() bool {
	return s.WordCount() > SummarySplitWordThreshold || s.TopicCount() > SummarySplitTopicThreshold
}

// ValidateSummary validates a Summary instance
func ValidateSummary(s *Summary) error {
	if s == nil {
		return fmt.Errorf("summary cannot be nil")
	}

	if s.ID == "" {
		return fmt.Errorf("summary ID is required")
	}

	if s.SpaceID == "" {
		return fmt.Errorf("summary SpaceID is required")
	}

	if s.Domain == "" {
		return fmt.Errorf("summary Domain is required")
	}

	if s.Subtopic == "" {
		return fmt.Errorf("summary Subtopic is required")
	}

	if s.ID != NewSummaryID(s.Domain, s.Subtopic) {
		return fmt.Errorf("summary ID does not match domain/subtopic: %s", s.ID)
	}

	if s.Version <= 0 {
		return fmt.Errorf("summary Version must be greater than 0")
	}

	contributing := make(map[string]struct{}, len(s.ContributingEntries))
	for _, id := range s.ContributingEntries {
		contributing[id] = struct{}{}
	}
	for key, ids := range s.TopicSources {
		for _, id := range ids {
			if _, ok := contributing[id]; !ok {
				return fmt.Errorf("topic %q cites entry %q not in contributing entries", key, id)
			}
		}
	}

	return nil
}
