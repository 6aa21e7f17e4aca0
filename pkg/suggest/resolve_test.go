package suggest

import (
	"testing"

	"ai-writing-be/pkg/segment"

	"github.com/stretchr/testify/assert"
)

func TestResolveByStartOffset(t *testing.T) {
	fullText := "First one here. Second one has grown since the snapshot."
	// Caller snapshot: stale text for the sentence starting at offset 16.
	caller := segment.Sentence{Id: "old-id", Text: "Second one has gro", StartIndex: 16, EndIndex: 34}

	resolved, prev := resolveSentence(fullText, caller)

	assert.Equal(t, "old-id", resolved.Id)
	assert.Equal(t, "Second one has grown since the snapshot.", resolved.Text)
	assert.Equal(t, "First one here.", prev)
}

func TestResolveByNormalizedText(t *testing.T) {
	fullText := "An inserted intro. First one here. Second one here."
	// Offsets shifted by the insertion; text still matches the middle sentence.
	caller := segment.Sentence{Id: "old-id", Text: "  FIRST one here. ", StartIndex: 0, EndIndex: 15}

	resolved, prev := resolveSentence(fullText, caller)

	assert.Equal(t, "old-id", resolved.Id)
	assert.Equal(t, "First one here.", resolved.Text)
	assert.Equal(t, "An inserted intro.", prev)
}

func TestResolveFallsBackToLastSentence(t *testing.T) {
	fullText := "Completely new text. Nothing matches the snapshot here"
	caller := segment.Sentence{Id: "old-id", Text: "Vanished sentence.", StartIndex: 99, EndIndex: 117}

	resolved, prev := resolveSentence(fullText, caller)

	assert.Equal(t, "old-id", resolved.Id)
	assert.Equal(t, "Nothing matches the snapshot here", resolved.Text)
	assert.Equal(t, "Completely new text.", prev)
}

func TestResolveEmptyDocument(t *testing.T) {
	caller := segment.Sentence{Id: "old-id", Text: "Anything at all.", StartIndex: 0, EndIndex: 16}

	resolved, prev := resolveSentence("", caller)

	assert.Equal(t, caller, resolved)
	assert.Equal(t, "", prev)
}

func TestTailContext(t *testing.T) {
	assert.Equal(t, "short", tailContext("short", 100))
	assert.Equal(t, "cdef", tailContext("abcdef", 4))
}
