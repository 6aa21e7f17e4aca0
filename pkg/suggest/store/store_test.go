package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func suggestion(text string) Suggestion {
	return Suggestion{
		Id:         uuid.New(),
		Text:       text,
		SentenceId: "s1",
		SourceText: "Some source sentence.",
		CreatedAt:  time.Now(),
	}
}

func TestInsertSupersedesEphemeral(t *testing.T) {
	s := New()

	a := suggestion("first nudge")
	b := suggestion("second nudge")
	s.Insert(a)
	evicted := s.Insert(b)

	assert.Equal(t, []uuid.UUID{a.Id}, evicted)
	list := s.List()
	assert.Len(t, list, 1)
	assert.Equal(t, b.Id, list[0].Id)
}

func TestPinnedSurviveSupersession(t *testing.T) {
	s := New()

	a := suggestion("pinned nudge")
	s.Insert(a)
	assert.True(t, s.Pin(a.Id))

	b := suggestion("second nudge")
	evicted := s.Insert(b)
	assert.Empty(t, evicted)

	c := suggestion("third nudge")
	evicted = s.Insert(c)
	assert.Equal(t, []uuid.UUID{b.Id}, evicted)

	// One pinned plus the latest ephemeral.
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.IsPinned(a.Id))
}

func TestPinUnknownId(t *testing.T) {
	s := New()
	assert.False(t, s.Pin(uuid.New()))
}

func TestRemoveEvictsPinnedMark(t *testing.T) {
	s := New()
	a := suggestion("pinned nudge")
	s.Insert(a)
	s.Pin(a.Id)

	assert.True(t, s.Remove(a.Id))
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.IsPinned(a.Id))
	assert.Empty(t, s.PinnedIds())
}

func TestClearAllDropsPinnedToo(t *testing.T) {
	s := New()
	a := suggestion("pinned nudge")
	s.Insert(a)
	s.Pin(a.Id)
	s.Insert(suggestion("ephemeral nudge"))

	s.ClearAll()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.PinnedIds())
}

func TestRecentTexts(t *testing.T) {
	s := New()
	a := suggestion("first")
	s.Insert(a)
	s.Pin(a.Id)
	s.Insert(suggestion("second"))

	texts := s.RecentTexts(5)
	assert.Equal(t, []string{"second", "first"}, texts)

	texts = s.RecentTexts(1)
	assert.Equal(t, []string{"second"}, texts)
}
