package model

import (
	"time"

	"github.com/google/uuid"
)

// PushMessage is one frame pushed to a session's websocket clients.
type PushMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SuggestionPush is the payload for an accepted suggestion frame.
type SuggestionPush struct {
	Id         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	SentenceId string    `json:"sentence_id"`
	SourceText string    `json:"source_text"`
	CreatedAt  time.Time `json:"created_at"`
}

// TopicShiftPush notifies clients that pending work was invalidated.
type TopicShiftPush struct {
	Version int64 `json:"version"`
}

// EditFrame is what a client sends for each edited sentence. Rich editors may
// send their serialized editor state instead of plain full_text; the server
// flattens it before segmentation.
type EditFrame struct {
	Type        string `json:"type"` // "sentence_edit" | "topic_shift"
	FullText    string `json:"full_text"`
	EditorState string `json:"editor_state,omitempty"`
	Sentence struct {
		Id         string `json:"id"`
		Text       string `json:"text"`
		StartIndex int    `json:"start_index"`
		EndIndex   int    `json:"end_index"`
	} `json:"sentence"`
	Force bool `json:"force"`
}
