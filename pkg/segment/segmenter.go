package segment

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Sentence is a segmented unit of the document. StartIndex/EndIndex are rune
// offsets into the full text (end exclusive). The Id is regenerated on every
// re-segmentation, so an edited-but-unpunctuated sentence may receive a new id
// while its text grows. Consumers must not rely on id stability.
type Sentence struct {
	Id         string `json:"id"`
	Text       string `json:"text"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
}

// terminators end a sentence. An ellipsis is handled by the run-collapsing
// below, so '.' alone is enough.
func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Split segments text into sentences with rune offsets. Trailing text without
// a terminator still forms a sentence (the one the user is mid-typing).
// Whitespace between sentences belongs to neither.
func Split(text string) []Sentence {
	runes := []rune(text)
	var sentences []Sentence

	start := -1 // first non-space rune of the current sentence
	i := 0
	for i < len(runes) {
		r := runes[i]
		if start == -1 {
			if unicode.IsSpace(r) {
				i++
				continue
			}
			start = i
		}
		if isTerminator(r) {
			// Collapse terminator runs ("...", "?!") into one sentence end.
			for i+1 < len(runes) && isTerminator(runes[i+1]) {
				i++
			}
			sentences = append(sentences, newSentence(runes, start, i+1))
			start = -1
		}
		i++
	}
	if start != -1 {
		sentences = append(sentences, newSentence(runes, start, len(runes)))
	}
	return sentences
}

func newSentence(runes []rune, start, end int) Sentence {
	return Sentence{
		Id:         uuid.NewString(),
		Text:       strings.TrimSpace(string(runes[start:end])),
		StartIndex: start,
		EndIndex:   end,
	}
}

// Normalize produces the dedup key for a sentence: trimmed, case-folded,
// inner whitespace collapsed to single spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
