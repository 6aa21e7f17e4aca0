package guard

import (
	"testing"
	"time"

	"ai-writing-be/pkg/segment"

	"github.com/stretchr/testify/assert"
)

func sentence(id, text string) segment.Sentence {
	return segment.Sentence{Id: id, Text: text, StartIndex: 0, EndIndex: len([]rune(text))}
}

func TestAdmitMarksEnqueueGuard(t *testing.T) {
	s := NewStore(time.Minute, time.Minute)

	first := s.Admit(sentence("s1", "I feel anxious about the deadline."), "", false)
	assert.Equal(t, Admitted, first)

	// Same id, same text: the fingerprint is still warm.
	second := s.Admit(sentence("s1", "I feel anxious about the deadline."), "", false)
	assert.Equal(t, RejectedRecentlyQueued, second)
}

func TestAdmitAllowsReEditOfSameId(t *testing.T) {
	s := NewStore(time.Minute, time.Minute)

	assert.Equal(t, Admitted, s.Admit(sentence("s1", "I feel anxious about it."), "", false))
	// Text changed under the same id: genuine re-edit, new fingerprint.
	assert.Equal(t, Admitted, s.Admit(sentence("s1", "I feel anxious about the deadline."), "", false))
}

func TestEnqueueGuardExpires(t *testing.T) {
	s := NewStore(30*time.Millisecond, time.Minute)

	assert.Equal(t, Admitted, s.Admit(sentence("s1", "I feel anxious about it."), "", false))
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, Admitted, s.Admit(sentence("s1", "I feel anxious about it."), "", false))
}

func TestDisplayGuardSurvivesIdChurn(t *testing.T) {
	s := NewStore(time.Minute, time.Minute)
	s.MarkDisplayed("Hello world today, friend.")

	// Different id, differently-cased and spaced but normalized-equal text.
	verdict := s.Admit(sentence("s2", "  hello   WORLD today, friend. "), "", false)
	assert.Equal(t, RejectedDisplayed, verdict)
}

func TestDisplayGuardExpires(t *testing.T) {
	s := NewStore(time.Minute, 30*time.Millisecond)
	s.MarkDisplayed("Hello world today, friend.")

	time.Sleep(60 * time.Millisecond)
	verdict := s.Admit(sentence("s2", "Hello world today, friend."), "", false)
	assert.Equal(t, Admitted, verdict)
}

func TestPreFilter(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		prevText string
		force    bool
		want     Verdict
	}{
		{name: "too short", text: "Hi.", want: RejectedPreFilter},
		{name: "pure punctuation", text: "!?... ---", want: RejectedPreFilter},
		{name: "pure numeric", text: "12345 67890", want: RejectedPreFilter},
		{name: "repeat of preceding", text: "So it goes on.", prevText: "so it  GOES on.", want: RejectedPreFilter},
		{name: "normal sentence", text: "This deadline worries me.", want: Admitted},
		{name: "force bypasses filter", text: "Hi.", force: true, want: Admitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(time.Minute, time.Minute)
			got := s.Admit(sentence("s1", tt.text), tt.prevText, tt.force)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReset(t *testing.T) {
	s := NewStore(time.Minute, time.Minute)
	s.MarkDisplayed("Hello world today, friend.")
	assert.Equal(t, Admitted, s.Admit(sentence("s1", "This deadline worries me."), "", false))

	s.Reset()

	assert.False(t, s.WasDisplayed("Hello world today, friend."))
	assert.Equal(t, Admitted, s.Admit(sentence("s1", "This deadline worries me."), "", false))
}
