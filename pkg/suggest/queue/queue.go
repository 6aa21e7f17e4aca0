package queue

import (
	"time"

	"ai-writing-be/pkg/segment"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
)

// WorkItem is one "sentence + full document at time T" unit of pending work.
// Items are owned exclusively by the Queue and removed on completion or
// failure; failures are terminal, never retried.
type WorkItem struct {
	Id         uuid.UUID
	FullText   string
	Sentence   segment.Sentence
	EnqueuedAt time.Time
	Status     Status
	Force      bool
}

// Queue is a bounded ordered collection of work items. When pending items
// exceed the bound the oldest pending ones are dropped: only the latest edits
// matter to the user, so recency wins over FIFO fairness.
//
// Not safe for concurrent use; the coordinator loop is the single writer.
type Queue struct {
	items   []*WorkItem
	maxSize int
}

func New(maxSize int) *Queue {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Queue{maxSize: maxSize}
}

// Push appends a pending item and enforces the bound, returning the items
// that were dropped to make room (oldest pending first).
func (q *Queue) Push(fullText string, sentence segment.Sentence, force bool) (*WorkItem, []*WorkItem) {
	item := &WorkItem{
		Id:         uuid.New(),
		FullText:   fullText,
		Sentence:   sentence,
		EnqueuedAt: time.Now(),
		Status:     StatusPending,
		Force:      force,
	}
	q.items = append(q.items, item)

	var dropped []*WorkItem
	for q.pendingCount() > q.maxSize {
		oldest := q.oldestPending()
		if oldest == nil {
			break
		}
		q.remove(oldest.Id)
		dropped = append(dropped, oldest)
	}
	return item, dropped
}

// NextPending returns the most recently enqueued pending item (LIFO selection)
// or nil when nothing is pending.
func (q *Queue) NextPending() *WorkItem {
	for i := len(q.items) - 1; i >= 0; i-- {
		if q.items[i].Status == StatusPending {
			return q.items[i]
		}
	}
	return nil
}

// MarkProcessing transitions an item to processing before dispatch.
func (q *Queue) MarkProcessing(id uuid.UUID) bool {
	for _, it := range q.items {
		if it.Id == id && it.Status == StatusPending {
			it.Status = StatusProcessing
			return true
		}
	}
	return false
}

// Remove deletes an item regardless of status. Completion and failure both
// end here; the distinction lives in the coordinator's accounting, not in the
// queue.
func (q *Queue) Remove(id uuid.UUID) bool {
	return q.remove(id)
}

// RemoveBySentence drops every item carrying the given sentence id and
// returns how many were removed.
func (q *Queue) RemoveBySentence(sentenceId string) int {
	removed := 0
	kept := q.items[:0]
	for _, it := range q.items {
		if it.Sentence.Id == sentenceId {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	q.items = kept
	return removed
}

// Clear drops all pending items without dispatch. Processing items stay until
// their in-flight request resolves; the coordinator cancels those separately.
func (q *Queue) Clear() int {
	cleared := 0
	kept := q.items[:0]
	for _, it := range q.items {
		if it.Status == StatusPending {
			cleared++
			continue
		}
		kept = append(kept, it)
	}
	q.items = kept
	return cleared
}

// PendingBySentence reports whether a pending item already exists for the
// sentence id.
func (q *Queue) PendingBySentence(sentenceId string) *WorkItem {
	for _, it := range q.items {
		if it.Status == StatusPending && it.Sentence.Id == sentenceId {
			return it
		}
	}
	return nil
}

// Snapshot returns copies of all items, oldest first, for diagnostics.
func (q *Queue) Snapshot() []WorkItem {
	out := make([]WorkItem, 0, len(q.items))
	for _, it := range q.items {
		out = append(out, *it)
	}
	return out
}

func (q *Queue) Len() int { return len(q.items) }

func (q *Queue) pendingCount() int {
	n := 0
	for _, it := range q.items {
		if it.Status == StatusPending {
			n++
		}
	}
	return n
}

func (q *Queue) oldestPending() *WorkItem {
	for _, it := range q.items {
		if it.Status == StatusPending {
			return it
		}
	}
	return nil
}

func (q *Queue) remove(id uuid.UUID) bool {
	for i, it := range q.items {
		if it.Id == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}
