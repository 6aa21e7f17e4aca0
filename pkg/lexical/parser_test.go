package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFlattensBlocksToPlainText(t *testing.T) {
	state := `{"root":{"type":"root","children":[
		{"type":"paragraph","children":[
			{"type":"text","text":"I feel "},
			{"type":"text","text":"stuck"},
			{"type":"text","text":" on this chapter."}
		]},
		{"type":"paragraph","children":[]},
		{"type":"paragraph","children":[
			{"type":"link","children":[{"type":"text","text":"The outline"}]},
			{"type":"text","text":" needs work."}
		]}
	]}}`

	got, err := NewParser().Parse(state)
	assert.NoError(t, err)
	assert.Equal(t, "I feel stuck on this chapter.\nThe outline needs work.", got)
}

func TestParseListItemsBecomeLines(t *testing.T) {
	state := `{"root":{"type":"root","children":[
		{"type":"list","listType":"bullet","children":[
			{"type":"listitem","children":[{"type":"text","text":"Write the intro."}]},
			{"type":"listitem","children":[{"type":"text","text":"Cut the filler."}]}
		]}
	]}}`

	got, err := NewParser().Parse(state)
	assert.NoError(t, err)
	assert.Equal(t, "Write the intro.\nCut the filler.", got)
}

func TestParseContentPassesPlainTextThrough(t *testing.T) {
	assert.Equal(t, "Just a plain sentence.", ParseContent("Just a plain sentence."))
}

func TestParseContentFallsBackOnBrokenJson(t *testing.T) {
	broken := `{"root": not json`
	assert.Equal(t, broken, ParseContent(broken))
}
