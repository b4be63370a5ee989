package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hivemindhq/hivemind/internal/domain"
)

// MockChatAPI is a mock for the chat completion API
type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func newTestClient(api ChatAPI) *Client {
	return &Client{api: api, model: DefaultModel, timeout: time.Second}
}

func completionWith(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestClient_ExtractTopics_Success(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := newTestClient(mockAPI)

	reply := `{
		"domain": "programming",
		"subtopic": "golang",
		"topics": [
			{"topic_key": "goroutines", "topic_label": "Goroutines", "extracted_info": "Goroutines are lightweight threads."}
		],
		"confidence": 0.9
	}`
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(completionWith(reply), nil)

	result, err := client.ExtractTopics(context.Background(), "Goroutines are lightweight threads managed by the Go runtime.", nil)

	require.NoError(t, err)
	assert.Equal(t, "programming", result.Domain)
	assert.Equal(t, "golang", result.Subtopic)
	require.Len(t, result.Topics, 1)
	assert.Equal(t, "goroutines", result.Topics[0].Key)
	assert.Equal(t, 0.9, result.Confidence)
	mockAPI.AssertExpectations(t)
}

func TestClient_ExtractTopics_StripsCodeFence(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := newTestClient(mockAPI)

	reply := "```json\n{\"domain\": \"cooking\", \"subtopic\": \"baking\", \"topics\": [], \"confidence\": 0.5}\n```"
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(completionWith(reply), nil)

	result, err := client.ExtractTopics(context.Background(), "Sourdough needs a mature starter.", nil)

	require.NoError(t, err)
	assert.Equal(t, "cooking", result.Domain)
}

func TestClient_ExtractTopics_EmptyContent(t *testing.T) {
	client := newTestClient(new(MockChatAPI))

	_, err := client.ExtractTopics(context.Background(), "", nil)

	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestClient_ExtractTopics_APIError(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := newTestClient(mockAPI)

	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, errors.New("rate limited"))

	_, err := client.ExtractTopics(context.Background(), "some content", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "extraction failed")
}

func TestClient_ExtractTopics_MalformedJSON(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := newTestClient(mockAPI)

	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(completionWith("not json at all"), nil)

	_, err := client.ExtractTopics(context.Background(), "some content", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse completion")
}

func TestClient_ExtractTopics_PromptListsKnownDomains(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := newTestClient(mockAPI)

	var captured openai.ChatCompletionRequest
	reply := `{"domain": "programming", "subtopic": "golang", "topics": [], "confidence": 0.5}`
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(openai.ChatCompletionRequest)
		}).
		Return(completionWith(reply), nil)

	_, err := client.ExtractTopics(context.Background(), "Defer runs at function exit.", []string{"cooking", "programming"})

	require.NoError(t, err)
	require.Len(t, captured.Messages, 2)
	assert.Contains(t, captured.Messages[1].Content, "Known domains: cooking, programming")
	assert.Contains(t, captured.Messages[0].Content, "reuse it instead of inventing a near-duplicate")
}

func TestClient_ExtractTopics_PromptStatesKeyAndConfidenceRules(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := newTestClient(mockAPI)

	var captured openai.ChatCompletionRequest
	reply := `{"domain": "programming", "subtopic": "golang", "topics": [], "confidence": 0.5}`
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(openai.ChatCompletionRequest)
		}).
		Return(completionWith(reply), nil)

	_, err := client.ExtractTopics(context.Background(), "Defer runs at function exit.", nil)

	require.NoError(t, err)
	require.Len(t, captured.Messages, 2)
	system := captured.Messages[0].Content
	assert.Contains(t, system, "never a person")
	assert.Contains(t, system, `not "johns_interview_rounds"`)
	assert.Contains(t, system, "return confidence below 0.3")
	assert.NotContains(t, captured.Messages[1].Content, "Known domains")
}

func TestClient_CreateSummary_Success(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := newTestClient(mockAPI)

	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(completionWith(`{"content": "Goroutines are lightweight threads."}`), nil)

	content, err := client.CreateSummary(context.Background(), "programming", "golang", []domain.Topic{
		{Key: "goroutines", Label: "Goroutines", Info: "lightweight threads"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Goroutines are lightweight threads.", content)
}

func TestClient_CreateSummary_NoTopics(t *testing.T) {
	client := newTestClient(new(MockChatAPI))

	_, err := client.CreateSummary(context.Background(), "programming", "golang", nil)

	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestClient_MergeSummary_Success(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := newTestClient(mockAPI)

	reply := `{
		"updated_content": "Goroutines are lightweight. Channels synchronize them.",
		"topics_updated": ["goroutines"],
		"new_topics_added": ["channels"],
		"merge_notes": "added channel synchronization"
	}`
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(completionWith(reply), nil)

	outcome, err := client.MergeSummary(
		context.Background(),
		"Goroutines are lightweight.",
		[]domain.Topic{{Key: "channels", Label: "Channels", Info: "channels synchronize goroutines"}},
		[]string{"goroutines"},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"goroutines"}, outcome.TopicsUpdated)
	assert.Equal(t, []string{"channels"}, outcome.NewTopicsAdded)
	assert.Contains(t, outcome.UpdatedContent, "Channels")
}

func TestClient_MergeSummary_PromptKeepsBothSidesOfContradictions(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := newTestClient(mockAPI)

	var captured openai.ChatCompletionRequest
	reply := `{"updated_content": "Some report 5 rounds, others report 3 rounds.", "topics_updated": ["interview_rounds"], "new_topics_added": []}`
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(openai.ChatCompletionRequest)
		}).
		Return(completionWith(reply), nil)

	_, err := client.MergeSummary(
		context.Background(),
		"The interview has 5 rounds.",
		[]domain.Topic{{Key: "interview_rounds", Label: "Interview rounds", Info: "there are 3 rounds"}},
		[]string{"interview_rounds"},
	)

	require.NoError(t, err)
	require.Len(t, captured.Messages, 2)
	system := captured.Messages[0].Content
	assert.Contains(t, system, "present both viewpoints")
	assert.Contains(t, system, "Never drop either claim")
	assert.NotContains(t, system, "prefer the newer")
}

func TestClient_MergeSummary_NilSlicesBecomeEmpty(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := newTestClient(mockAPI)

	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(completionWith(`{"updated_content": "merged text"}`), nil)

	outcome, err := client.MergeSummary(
		context.Background(),
		"existing",
		[]domain.Topic{{Key: "k", Label: "l", Info: "i"}},
		nil,
	)

	require.NoError(t, err)
	assert.NotNil(t, outcome.TopicsUpdated)
	assert.NotNil(t, outcome.NewTopicsAdded)
	assert.Empty(t, outcome.TopicsUpdated)
}

func TestClient_MergeSummary_EmptyCompletion(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := newTestClient(mockAPI)

	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(completionWith(`{"updated_content": ""}`), nil)

	_, err := client.MergeSummary(
		context.Background(),
		"existing",
		[]domain.Topic{{Key: "k"}},
		nil,
	)

	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestClient_SynthesizeAnswer_Success(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := newTestClient(mockAPI)

	reply := `{
		"answer": "Goroutines are lightweight threads.",
		"summaries_used": ["programming__golang"],
		"topics_referenced": {"programming__golang": ["goroutines"]},
		"confidence": 0.85,
		"insufficient_info": false
	}`
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(completionWith(reply), nil)

	outcome, err := client.SynthesizeAnswer(context.Background(), "What are goroutines?", []domain.SummaryContext{
		{SummaryID: "programming__golang", Domain: "programming", Subtopic: "golang", Content: "Goroutines are lightweight threads.", Topics: []string{"goroutines"}},
	})

	require.NoError(t, err)
	assert.False(t, outcome.InsufficientInfo)
	assert.Equal(t, []string{"programming__golang"}, outcome.SummariesUsed)
	assert.Equal(t, []string{"goroutines"}, outcome.TopicsReferenced["programming__golang"])
}

func TestClient_SynthesizeAnswer_InsufficientInfo(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := newTestClient(mockAPI)

	reply := `{
		"answer": "",
		"confidence": 0.1,
		"insufficient_info": true,
		"missing_info": "nothing about quantum physics is stored"
	}`
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(completionWith(reply), nil)

	outcome, err := client.SynthesizeAnswer(context.Background(), "Explain quantum tunneling", nil)

	require.NoError(t, err)
	assert.True(t, outcome.InsufficientInfo)
	assert.NotNil(t, outcome.SummariesUsed)
	assert.NotNil(t, outcome.TopicsReferenced)
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain", `{"a": 1}`, `{"a": 1}`},
		{"JSONFence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"BareFence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Whitespace", "  {\"a\": 1}  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripCodeFence(tt.input))
		})
	}
}
