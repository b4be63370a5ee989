package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hivemindhq/hivemind/internal/domain"
)

func TestSummarizerService_Compose_Success(t *testing.T) {
	mockWriter := new(MockSummaryWriter)
	svc := NewSummarizerService(mockWriter)

	extraction := &domain.Extraction{
		Domain:   "programming",
		Subtopic: "golang",
		Topics:   []domain.Topic{{Key: "goroutines", Label: "Goroutines", Info: "lightweight threads"}},
	}
	mockWriter.On("CreateSummary", mock.Anything, "programming", "golang", extraction.Topics).
		Return("Goroutines are lightweight threads.", nil)

	content := svc.Compose(context.Background(), extraction)

	assert.Equal(t, "Goroutines are lightweight threads.", content)
	mockWriter.AssertExpectations(t)
}

func TestSummarizerService_Compose_FailureUsesExtractedInfo(t *testing.T) {
	mockWriter := new(MockSummaryWriter)
	svc := NewSummarizerService(mockWriter)

	extraction := &domain.Extraction{
		Domain:   "programming",
		Subtopic: "golang",
		Topics: []domain.Topic{
			{Key: "goroutines", Label: "Goroutines", Info: "lightweight threads"},
			{Key: "channels", Label: "Channels", Info: "typed conduits"},
		},
	}
	mockWriter.On("CreateSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("unavailable"))

	content := svc.Compose(context.Background(), extraction)

	assert.Equal(t, "Goroutines: lightweight threads\n\nChannels: typed conduits", content)
}

func TestSummarizerService_Merge_Success(t *testing.T) {
	mockWriter := new(MockSummaryWriter)
	svc := NewSummarizerService(mockWriter)

	summary := domain.NewSummary("space1", "programming", "golang",
		"Goroutines are lightweight.", "e1", []string{"goroutines"}, time.Now().UTC())
	extraction := &domain.Extraction{
		Domain:   "programming",
		Subtopic: "golang",
		Topics: []domain.Topic{
			{Key: "goroutines", Label: "Goroutines", Info: "scheduled by the runtime"},
			{Key: "channels", Label: "Channels", Info: "typed conduits"},
		},
	}
	mockWriter.On("MergeSummary", mock.Anything, summary.Content, extraction.Topics, []string{"goroutines"}).
		Return(&domain.MergeOutcome{
			UpdatedContent: "Goroutines are lightweight and runtime scheduled. Channels are typed conduits.",
			TopicsUpdated:  []string{"channels"}, // deliberately wrong, must be reconciled
			NewTopicsAdded: []string{"goroutines"},
		}, nil)

	outcome := svc.Merge(context.Background(), summary, extraction)

	require.NotNil(t, outcome)
	assert.Equal(t, []string{"goroutines"}, outcome.TopicsUpdated)
	assert.Equal(t, []string{"channels"}, outcome.NewTopicsAdded)
	assert.Contains(t, outcome.UpdatedContent, "Channels")
}

func TestSummarizerService_Merge_FailureAppendsContent(t *testing.T) {
	mockWriter := new(MockSummaryWriter)
	svc := NewSummarizerService(mockWriter)

	summary := domain.NewSummary("space1", "programming", "golang",
		"Existing summary text.", "e1", []string{"goroutines"}, time.Now().UTC())
	extraction := &domain.Extraction{
		Domain:   "programming",
		Subtopic: "golang",
		Topics:   []domain.Topic{{Key: "channels", Label: "Channels", Info: "typed conduits"}},
	}
	mockWriter.On("MergeSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("unavailable"))

	outcome := svc.Merge(context.Background(), summary, extraction)

	require.NotNil(t, outcome)
	assert.Equal(t, "Existing summary text.\n\nAdditional information: Channels: typed conduits", outcome.UpdatedContent)
	assert.Empty(t, outcome.TopicsUpdated)
	assert.Equal(t, []string{"channels"}, outcome.NewTopicsAdded)
}
