package service

import (
	"sort"
	"strings"

	"github.com/hivemindhq/hivemind/internal/domain"
)

// maxSummariesForAnswer caps how many summaries are handed to answer
// synthesis for a single query.
const maxSummariesForAnswer = 5

// scoreSummary rates how relevant a summary looks for a query using plain
// keyword overlap. Categories and topic keys are stored with underscores, so
// both the raw and space-separated forms are matched.
func scoreSummary(query string, s *domain.Summary) int {
	q := strings.ToLower(query)
	score := 0

	if categoryInQuery(q, s.Domain) {
		score += 3
	}
	if categoryInQuery(q, s.Subtopic) {
		score += 2
	}

	content := strings.ToLower(s.Content)
	for _, word := range strings.Fields(q) {
		word = strings.Trim(word, ".,!?:;\"'()")
		if len(word) > 2 && strings.Contains(content, word) {
			score++
		}
	}

	for key := range s.TopicSources {
		if categoryInQuery(q, key) {
			score += 2
		}
	}

	return score
}

func categoryInQuery(query, category string) bool {
	if category == "" {
		return false
	}
	if strings.Contains(query, category) {
		return true
	}
	return strings.Contains(query, strings.ReplaceAll(category, "_", " "))
}

// selectSummaries picks the most relevant summaries for a query. Summaries
// with no keyword overlap at all are only used when nothing scored, in which
// case every summary is handed to synthesis rather than none.
func selectSummaries(query string, summaries []*domain.Summary) []*domain.Summary {
	type scored struct {
		summary *domain.Summary
		score   int
	}

	ranked := make([]scored, 0, len(summaries))
	for _, s := range summaries {
		if score := scoreSummary(query, s); score > 0 {
			ranked = append(ranked, scored{summary: s, score: score})
		}
	}

	if len(ranked) == 0 {
		return summaries
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].summary.ID < ranked[j].summary.ID
	})

	if len(ranked) > maxSummariesForAnswer {
		ranked = ranked[:maxSummariesForAnswer]
	}

	selected := make([]*domain.Summary, len(ranked))
	for i, r := range ranked {
		selected[i] = r.summary
	}
	return selected
}
