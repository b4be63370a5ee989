package llm

import (
	"fmt"
	"strings"

	"github.com/hivemindhq/hivemind/internal/domain"
)

const extractSystemPrompt = `You are a knowledge extraction system. Given a piece of text contributed by a user, identify the knowledge domain, subtopic, and the distinct topics it covers.

Respond with a JSON object:
{
  "domain": "broad knowledge area, e.g. programming, cooking, medicine",
  "subtopic": "specific area within the domain, e.g. golang, baking, cardiology",
  "topics": [
    {
      "topic_key": "short_snake_case_identifier",
      "topic_label": "Human-readable topic name",
      "extracted_info": "The factual content for this topic, restated concisely"
    }
  ],
  "confidence": 0.0
}

Rules:
- Use lowercase with underscores for domain and subtopic.
- When a list of known domains is provided and one of them fits the text, reuse it instead of inventing a near-duplicate.
- Extract at most 5 topics; prefer fewer, well-separated topics.
- topic_key must describe the subject, never a person. Use "interview_rounds", not "johns_interview_rounds".
- extracted_info must preserve the facts from the text, not add new ones.
- confidence is between 0.0 and 1.0 and reflects how clearly the text maps to the chosen domain and subtopic.
- If the text is too vague or trivial to be useful knowledge, return confidence below 0.3.`

const createSummarySystemPrompt = `You are a knowledge base writer. Create a concise, well-organized summary from the extracted topics of a single contribution.

Respond with a JSON object:
{
  "content": "the summary text"
}

Rules:
- Organize the content by topic.
- Preserve every fact from the extracted information; do not invent facts.
- Stay under %d words.`

const mergeSummarySystemPrompt = `You are a knowledge base editor. Merge new information into an existing summary.

Respond with a JSON object:
{
  "updated_content": "the full revised summary text",
  "topics_updated": ["topic keys that already existed and were revised"],
  "new_topics_added": ["topic keys that were not covered before"],
  "merge_notes": "one sentence describing what changed"
}

Rules:
- Keep every fact from the existing summary.
- When the new information contradicts the existing summary, present both viewpoints in the content, for example "some report X, others report Y". Never drop either claim. Describe the conflict in merge_notes.
- Classify every incoming topic key as either updated or newly added.
- Stay under %d words.`

const answerSystemPrompt = `You are a knowledge base assistant. Answer the user's question using ONLY the provided summaries.

Respond with a JSON object:
{
  "answer": "the answer, or empty if the summaries are insufficient",
  "summaries_used": ["summary ids actually drawn on"],
  "topics_referenced": {"summary_id": ["topic keys cited from that summary"]},
  "confidence": 0.0,
  "insufficient_info": false,
  "missing_info": "what is missing, when insufficient_info is true"
}

Rules:
- Never use knowledge that is not in the summaries.
- Cite only topic keys listed for the summary you drew on.
- Set insufficient_info to true when the summaries cannot answer the question.`

func extractUserPrompt(content string, knownDomains []string) string {
	var b strings.Builder
	if len(knownDomains) > 0 {
		b.WriteString("Known domains: ")
		b.WriteString(strings.Join(knownDomains, ", "))
		b.WriteString("\n\n")
	}
	b.WriteString("Extract knowledge from this text:\n\n")
	b.WriteString(content)
	return b.String()
}

func createSummaryUserPrompt(domainName, subtopic string, topics []domain.Topic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Domain: %s\nSubtopic: %s\n\nExtracted topics:\n", domainName, subtopic)
	writeTopicList(&b, topics)
	return b.String()
}

func mergeSummaryUserPrompt(existingContent string, topics []domain.Topic, existingKeys []string) string {
	var b strings.Builder
	b.WriteString("Existing summary:\n")
	b.WriteString(existingContent)
	b.WriteString("\n\nTopic keys already covered: ")
	if len(existingKeys) == 0 {
		b.WriteString("(none)")
	} else {
		b.WriteString(strings.Join(existingKeys, ", "))
	}
	b.WriteString("\n\nNew information to merge:\n")
	writeTopicList(&b, topics)
	return b.String()
}

func answerUserPrompt(query string, summaries []domain.SummaryContext) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\n\nAvailable summaries:\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "\n[%s] domain=%s subtopic=%s topics=%s\n%s\n",
			s.SummaryID, s.Domain, s.Subtopic, strings.Join(s.Topics, ","), s.Content)
	}
	return b.String()
}

func writeTopicList(b *strings.Builder, topics []domain.Topic) {
	for _, t := range topics {
		fmt.Fprintf(b, "- %s (%s): %s\n", t.Key, t.Label, t.Info)
	}
}
