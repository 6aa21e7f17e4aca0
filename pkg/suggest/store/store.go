package store

import (
	"time"

	"github.com/google/uuid"
)

// Suggestion is an accepted writing nudge tied to the sentence that triggered
// it. SourceText keeps the exact sentence text at acceptance time so the UI
// can anchor the chip even after the document moves.
type Suggestion struct {
	Id         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	SentenceId string    `json:"sentence_id"`
	SourceText string    `json:"source_text"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is the live, UI-visible suggestion list, partitioned into pinned
// (user-retained) and ephemeral entries. At most one ephemeral suggestion is
// kept live at a time; inserting a fresh one supersedes the previous.
//
// Not safe for concurrent use; the coordinator loop is the single writer.
type Store struct {
	suggestions []Suggestion
	pinned      map[uuid.UUID]bool
}

func New() *Store {
	return &Store{pinned: make(map[uuid.UUID]bool)}
}

// Insert adds an accepted suggestion and prunes ephemeral entries so that
// only the new one plus all pinned ones remain. Returns the ids it evicted.
func (s *Store) Insert(sg Suggestion) []uuid.UUID {
	var evicted []uuid.UUID
	kept := s.suggestions[:0]
	for _, existing := range s.suggestions {
		if s.pinned[existing.Id] {
			kept = append(kept, existing)
			continue
		}
		evicted = append(evicted, existing.Id)
	}
	s.suggestions = append(kept, sg)
	return evicted
}

// Pin marks a suggestion as user-retained. Unknown ids are ignored.
func (s *Store) Pin(id uuid.UUID) bool {
	for _, sg := range s.suggestions {
		if sg.Id == id {
			s.pinned[id] = true
			return true
		}
	}
	return false
}

// Remove deletes a suggestion unconditionally, evicting its pinned mark too.
func (s *Store) Remove(id uuid.UUID) bool {
	delete(s.pinned, id)
	for i, sg := range s.suggestions {
		if sg.Id == id {
			s.suggestions = append(s.suggestions[:i], s.suggestions[i+1:]...)
			return true
		}
	}
	return false
}

// ClearAll deletes every suggestion and every pinned mark. Full session reset
// semantics; topic shifts deliberately do NOT call this.
func (s *Store) ClearAll() {
	s.suggestions = nil
	s.pinned = make(map[uuid.UUID]bool)
}

// List returns the live suggestions, oldest first.
func (s *Store) List() []Suggestion {
	out := make([]Suggestion, len(s.suggestions))
	copy(out, s.suggestions)
	return out
}

// PinnedIds returns the current pinned id set.
func (s *Store) PinnedIds() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.pinned))
	for id := range s.pinned {
		out = append(out, id)
	}
	return out
}

func (s *Store) IsPinned(id uuid.UUID) bool { return s.pinned[id] }

func (s *Store) Len() int { return len(s.suggestions) }

// RecentTexts returns up to limit suggestion texts, newest first. Fed back to
// the provider so it avoids repeating itself.
func (s *Store) RecentTexts(limit int) []string {
	var out []string
	for i := len(s.suggestions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.suggestions[i].Text)
	}
	return out
}
