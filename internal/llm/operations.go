package llm

import (
	"context"
	"fmt"

	"github.com/hivemindhq/hivemind/internal/domain"
)

type extractionPayload struct {
	Domain     string `json:"domain"`
	Subtopic   string `json:"subtopic"`
	Topics     []struct {
		Key   string `json:"topic_key"`
		Label string `json:"topic_label"`
		Info  string `json:"extracted_info"`
	} `json:"topics"`
	Confidence float64 `json:"confidence"`
}

// ExtractTopics classifies one entry's content into a domain, subtopic and
// topic list. existingDomains are the domains already present in the space;
// the model is told to reuse one when it fits rather than coin a variant.
// Callers are expected to apply the fallback extraction on error.
func (c *Client) ExtractTopics(ctx context.Context, content string, existingDomains []string) (*domain.Extraction, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}

	var payload extractionPayload
	if err := c.completeJSON(ctx, extractSystemPrompt, extractUserPrompt(content, existingDomains), &payload); err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	result := &domain.Extraction{
		Domain:     payload.Domain,
		Subtopic:   payload.Subtopic,
		Topics:     make([]domain.Topic, 0, len(payload.Topics)),
		Confidence: payload.Confidence,
	}
	for _, t := range payload.Topics {
		result.Topics = append(result.Topics, domain.Topic{Key: t.Key, Label: t.Label, Info: t.Info})
	}
	return result, nil
}

type createSummaryPayload struct {
	Content string `json:"content"`
}

// CreateSummary writes the first summary content for a (domain, subtopic)
// pair from a single extraction's topics.
func (c *Client) CreateSummary(ctx context.Context, domainName, subtopic string, topics []domain.Topic) (string, error) {
	if len(topics) == 0 {
		return "", ErrEmptyContent
	}

	system := fmt.Sprintf(createSummarySystemPrompt, domain.SummaryWordSoftCap)
	var payload createSummaryPayload
	if err := c.completeJSON(ctx, system, createSummaryUserPrompt(domainName, subtopic, topics), &payload); err != nil {
		return "", fmt.Errorf("summary creation failed: %w", err)
	}
	if payload.Content == "" {
		return "", ErrEmptyCompletion
	}
	return payload.Content, nil
}

type mergePayload struct {
	UpdatedContent string   `json:"updated_content"`
	TopicsUpdated  []string `json:"topics_updated"`
	NewTopicsAdded []string `json:"new_topics_added"`
	MergeNotes     string   `json:"merge_notes"`
}

// MergeSummary folds new topics into an existing summary's content and
// classifies each incoming topic key as updated or newly added. Callers are
// expected to apply the fallback merge on error.
func (c *Client) MergeSummary(ctx context.Context, existingContent string, topics []domain.Topic, existingKeys []string) (*domain.MergeOutcome, error) {
	if existingContent == "" || len(topics) == 0 {
		return nil, ErrEmptyContent
	}

	system := fmt.Sprintf(mergeSummarySystemPrompt, domain.SummaryWordSoftCap)
	var payload mergePayload
	if err := c.completeJSON(ctx, system, mergeSummaryUserPrompt(existingContent, topics, existingKeys), &payload); err != nil {
		return nil, fmt.Errorf("summary merge failed: %w", err)
	}
	if payload.UpdatedContent == "" {
		return nil, ErrEmptyCompletion
	}

	outcome := &domain.MergeOutcome{
		UpdatedContent: payload.UpdatedContent,
		TopicsUpdated:  payload.TopicsUpdated,
		NewTopicsAdded: payload.NewTopicsAdded,
		MergeNotes:     payload.MergeNotes,
	}
	if outcome.TopicsUpdated == nil {
		outcome.TopicsUpdated = []string{}
	}
	if outcome.NewTopicsAdded == nil {
		outcome.NewTopicsAdded = []string{}
	}
	return outcome, nil
}

type answerPayload struct {
	Answer           string              `json:"answer"`
	SummariesUsed    []string            `json:"summaries_used"`
	TopicsReferenced map[string][]string `json:"topics_referenced"`
	Confidence       float64             `json:"confidence"`
	InsufficientInfo bool                `json:"insufficient_info"`
	MissingInfo      string              `json:"missing_info"`
}

// SynthesizeAnswer answers a query from the given summaries only.
func (c *Client) SynthesizeAnswer(ctx context.Context, query string, summaries []domain.SummaryContext) (*domain.AnswerOutcome, error) {
	if query == "" {
		return nil, ErrEmptyContent
	}

	var payload answerPayload
	if err := c.completeJSON(ctx, answerSystemPrompt, answerUserPrompt(query, summaries), &payload); err != nil {
		return nil, fmt.Errorf("answer synthesis failed: %w", err)
	}

	outcome := &domain.AnswerOutcome{
		Answer:           payload.Answer,
		SummariesUsed:    payload.SummariesUsed,
		TopicsReferenced: payload.TopicsReferenced,
		Confidence:       payload.Confidence,
		InsufficientInfo: payload.InsufficientInfo,
		MissingInfo:      payload.MissingInfo,
	}
	if outcome.SummariesUsed == nil {
		outcome.SummariesUsed = []string{}
	}
	if outcome.TopicsReferenced == nil {
		outcome.TopicsReferenced = map[string][]string{}
	}
	return outcome, nil
}
