package suggest

import (
	"ai-writing-be/pkg/segment"
)

// resolveSentence maps a caller-supplied sentence onto the current full text.
// Sentence ids are regenerated whenever segmentation re-parses the document,
// so the caller's snapshot may carry stale text or offsets. Matching ladder:
// identical start offset, then normalized-text equality, then the last
// sentence of the latest segmentation. The caller's id is kept as the
// sentence's identity; only text and offsets are refreshed.
//
// Returns the resolved sentence and the text of the sentence immediately
// preceding it ("" when first), which the pre-filter compares against.
func resolveSentence(fullText string, s segment.Sentence) (segment.Sentence, string) {
	current := segment.Split(fullText)
	if len(current) == 0 {
		return s, ""
	}

	match := -1
	for i, cand := range current {
		if cand.StartIndex == s.StartIndex {
			match = i
			break
		}
	}
	if match == -1 {
		want := segment.Normalize(s.Text)
		for i, cand := range current {
			if segment.Normalize(cand.Text) == want {
				match = i
				break
			}
		}
	}
	if match == -1 {
		match = len(current) - 1
	}

	resolved := current[match]
	resolved.Id = s.Id

	prevText := ""
	if match > 0 {
		prevText = current[match-1].Text
	}
	return resolved, prevText
}

// tailContext returns up to limit trailing runes of the document, for the
// provider's context window.
func tailContext(fullText string, limit int) string {
	runes := []rune(fullText)
	if len(runes) <= limit {
		return fullText
	}
	return string(runes[len(runes)-limit:])
}
