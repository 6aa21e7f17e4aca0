package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-writing-be/internal/model"
	"ai-writing-be/internal/websocket"
	"ai-writing-be/pkg/events"
	pktNats "ai-writing-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains coordinator lifecycle events off the in-process bus
// and fans them out: accepted suggestions and topic shifts go to the session's
// websocket clients, everything goes to NATS when it is connected.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
	natsPub   *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
	natsPub *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
		natsPub:   natsPub,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	eventType := msg.Metadata.Get("event_type")
	sessionId, _ := uuid.Parse(stringField(payload, "session_id"))

	if cs.hub != nil && sessionId != uuid.Nil {
		switch eventType {
		case events.TypeSuggestionAccepted:
			id, _ := uuid.Parse(stringField(payload, "suggestion_id"))
			cs.hub.Send(sessionId, model.PushMessage{
				Type: "suggestion",
				Data: model.SuggestionPush{
					Id:         id,
					Text:       stringField(payload, "text"),
					SentenceId: stringField(payload, "sentence_id"),
					SourceText: stringField(payload, "source_text"),
					CreatedAt:  time.Now(),
				},
			})
		case events.TypeTopicShifted:
			version, _ := payload["version"].(float64)
			cs.hub.Send(sessionId, model.PushMessage{
				Type: "topic_shift",
				Data: model.TopicShiftPush{Version: int64(version)},
			})
		}
	}

	if cs.natsPub != nil {
		event := events.BaseEvent{Type: eventType, Data: payload, OccurredAt: time.Now()}
		if err := cs.natsPub.Publish(ctx, event); err != nil {
			log.Printf("[WARN] Failed to publish event to NATS: %v", err)
		}
	}

	msg.Ack()
}

func stringField(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
