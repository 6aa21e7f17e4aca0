package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SUGGESTION_ACCEPTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation used by all coordinator events.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Suggestion lifecycle event types.
const (
	TypeSuggestionAccepted  = "SUGGESTION_ACCEPTED"
	TypeSuggestionDiscarded = "SUGGESTION_DISCARDED"
	TypeTopicShifted        = "TOPIC_SHIFTED"
)

func NewSuggestionAccepted(sessionId, suggestionId, sentenceId, text, sourceText string) Event {
	return BaseEvent{
		Type: TypeSuggestionAccepted,
		Data: map[string]interface{}{
			"session_id":    sessionId,
			"suggestion_id": suggestionId,
			"sentence_id":   sentenceId,
			"text":          text,
			"source_text":   sourceText,
		},
		OccurredAt: time.Now(),
	}
}

func NewSuggestionDiscarded(sessionId, sentenceId, reason string) Event {
	return BaseEvent{
		Type: TypeSuggestionDiscarded,
		Data: map[string]interface{}{
			"session_id":  sessionId,
			"sentence_id": sentenceId,
			"reason":      reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewTopicShifted(sessionId string, version int64) Event {
	return BaseEvent{
		Type: TypeTopicShifted,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"version":    version,
		},
		OccurredAt: time.Now(),
	}
}
