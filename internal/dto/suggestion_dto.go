package dto

import (
	"time"

	"github.com/google/uuid"
)

type SentencePayload struct {
	Id         string `json:"id" validate:"required"`
	Text       string `json:"text" validate:"required"`
	StartIndex int    `json:"start_index" validate:"gte=0"`
	EndIndex   int    `json:"end_index" validate:"gte=0"`
}

type CreateSessionRequest struct {
	Mode string `json:"mode" validate:"omitempty,oneof=live demo"`
}

type CreateSessionResponse struct {
	Id   uuid.UUID `json:"id"`
	Mode string    `json:"mode"`
}

type EnqueueRequest struct {
	// FullText may carry serialized rich-editor state; it is flattened to
	// plain text server-side before segmentation.
	FullText string          `json:"full_text" validate:"required"`
	Sentence SentencePayload `json:"sentence" validate:"required"`
	Force    bool            `json:"force"`
}

type EnqueueResponse struct {
	Verdict string `json:"verdict"`
}

type InjectRequest struct {
	FullText string          `json:"full_text" validate:"required"`
	Sentence SentencePayload `json:"sentence" validate:"required"`
	Text     string          `json:"text" validate:"required"`
}

type InjectResponse struct {
	Surfaced bool `json:"surfaced"`
}

type TopicShiftRequest struct {
	Keywords []string `json:"keywords"`
}

type SuggestionResponse struct {
	Id         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	SentenceId string    `json:"sentence_id"`
	SourceText string    `json:"source_text"`
	Pinned     bool      `json:"pinned"`
	CreatedAt  time.Time `json:"created_at"`
}

type SuggestionListResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
	PinnedIds   []uuid.UUID          `json:"pinned_ids"`
}

type QueueItemResponse struct {
	Id         uuid.UUID `json:"id"`
	SentenceId string    `json:"sentence_id"`
	Text       string    `json:"text"`
	Status     string    `json:"status"`
	Force      bool      `json:"force"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type QueueSnapshotResponse struct {
	Items     []QueueItemResponse `json:"items"`
	InFlight  int                 `json:"in_flight"`
	Completed int                 `json:"completed"`
	Failed    int                 `json:"failed"`
}
