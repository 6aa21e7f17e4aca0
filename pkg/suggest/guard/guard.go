package guard

import (
	"time"
	"unicode"

	"ai-writing-be/pkg/segment"

	"github.com/patrickmn/go-cache"
)

// Verdict explains why a sentence was turned away, or that it was admitted.
type Verdict int

const (
	Admitted Verdict = iota
	RejectedDisplayed      // a suggestion for equivalent text was shown recently
	RejectedPreFilter      // sentence failed the relevance pre-filter
	RejectedRecentlyQueued // this sentence id was enqueued recently
	RejectedInFlight       // an identical request is already outstanding; applied by the coordinator
)

func (v Verdict) String() string {
	switch v {
	case Admitted:
		return "admitted"
	case RejectedDisplayed:
		return "rejected_displayed"
	case RejectedPreFilter:
		return "rejected_prefilter"
	case RejectedRecentlyQueued:
		return "rejected_recently_queued"
	case RejectedInFlight:
		return "rejected_in_flight"
	default:
		return "unknown"
	}
}

// Store holds the two time-windowed dedup tables: the enqueue guard (keyed by
// sentence id plus normalized text, short TTL) and the display guard (keyed by
// normalized sentence text alone, longer TTL). TTLs are supplied by the
// caller; the store itself is mode-agnostic.
type Store struct {
	enqueueGuard *cache.Cache
	displayGuard *cache.Cache
	minLength    int
}

// minimum sentence length (runes) for the relevance pre-filter
const DefaultMinSentenceLength = 8

func NewStore(enqueueTTL, displayTTL time.Duration) *Store {
	// go-cache runs a janitor at half the TTL, but we also sweep on each
	// write so memory stays bounded even on idle caches.
	return &Store{
		enqueueGuard: cache.New(enqueueTTL, enqueueTTL),
		displayGuard: cache.New(displayTTL, displayTTL),
		minLength:    DefaultMinSentenceLength,
	}
}

// Admit applies the admission checks in order: display guard, relevance
// pre-filter (skipped when force), enqueue guard. On admission the enqueue
// guard is marked immediately; the display guard is only marked later, on
// acceptance of a suggestion (MarkDisplayed).
//
// prevText is the text of the sentence immediately preceding the candidate in
// the latest segmentation ("" when the candidate is first).
func (s *Store) Admit(sentence segment.Sentence, prevText string, force bool) Verdict {
	s.enqueueGuard.DeleteExpired()
	s.displayGuard.DeleteExpired()

	if _, shown := s.displayGuard.Get(segment.Normalize(sentence.Text)); shown {
		return RejectedDisplayed
	}

	if !force && !s.looksSuggestible(sentence.Text, prevText) {
		return RejectedPreFilter
	}

	// Fingerprint of id plus normalized text: a genuine re-edit of the same
	// sentence id misses the guard, while an unchanged repeat hits it.
	fp := sentence.Id + "|" + segment.Normalize(sentence.Text)
	if _, queued := s.enqueueGuard.Get(fp); queued {
		return RejectedRecentlyQueued
	}

	s.enqueueGuard.Set(fp, time.Now(), cache.DefaultExpiration)
	return Admitted
}

// MarkDisplayed records that a suggestion was surfaced for this sentence text.
// Keyed by normalized text so the guard survives sentence id churn.
func (s *Store) MarkDisplayed(text string) {
	s.displayGuard.DeleteExpired()
	s.displayGuard.Set(segment.Normalize(text), time.Now(), cache.DefaultExpiration)
}

// WasDisplayed reports whether equivalent text is still inside the display TTL.
func (s *Store) WasDisplayed(text string) bool {
	_, shown := s.displayGuard.Get(segment.Normalize(text))
	return shown
}

// Reset drops both tables. Used by topic shifts and cache clears.
func (s *Store) Reset() {
	s.enqueueGuard.Flush()
	s.displayGuard.Flush()
}

// looksSuggestible is the relevance pre-filter: long enough, contains letters
// (not pure punctuation or numbers), and not a repeat of the sentence right
// before it.
func (s *Store) looksSuggestible(text, prevText string) bool {
	runes := []rune(text)
	if len(runes) < s.minLength {
		return false
	}

	hasLetter := false
	for _, r := range runes {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return false
	}

	if prevText != "" && segment.Normalize(text) == segment.Normalize(prevText) {
		return false
	}
	return true
}
