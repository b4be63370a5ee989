package domain

// MergeOutcome is the result of incorporating a new entry into an existing
// summary. Every incoming topic key is classified as either updated (already
// present in the summary) or newly added; the classification drives
// provenance bookkeeping.
type MergeOutcome struct {
	UpdatedContent string
	TopicsUpdated  []string
	NewTopicsAdded []string
	MergeNotes     string
}

// MergeFallbackMarker prefixes content appended by the degraded merge path,
// used when the external merge capability returned nothing.
const MergeFallbackMarker = "\n\nAdditional information: "

// FallbackMergeOutcome builds the degraded merge result: the new entry's raw
// content is appended verbatim so no information is lost, and every incoming
// topic key is treated as newly added.
func FallbackMergeOutcome(existingContent, entryContent string, topicKeys []string) *MergeOutcome {
	added := make([]string, len(topicKeys))
	copy(added, topicKeys)
	return &MergeOutcome{
		UpdatedContent: existingContent + MergeFallbackMarker + entryContent,
		TopicsUpdated:  []string{},
		NewTopicsAdded: added,
		MergeNotes:     "automatic merge: external merge unavailable, new entry content appended",
	}
}
