package bootstrap

import (
	"context"
	"log"

	"ai-writing-be/internal/config"
	"ai-writing-be/internal/controller"
	"ai-writing-be/internal/pkg/logger"
	"ai-writing-be/internal/repository/memory"
	"ai-writing-be/internal/service"
	"ai-writing-be/internal/websocket"
	"ai-writing-be/pkg/embedding"
	"ai-writing-be/pkg/embedding/jina"
	"ai-writing-be/pkg/llm/factory"
	pktNats "ai-writing-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const suggestionEventsTopic = "suggestion_lifecycle"

type Container struct {
	// Controllers
	SuggestionController controller.ISuggestionController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)

	// 3. Suggestion Provider
	provider, err := factory.NewSuggestionProvider(
		cfg.Ai.Provider,
		cfg.Ai.Model,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiApiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize suggestion provider: %v", err)
	}
	log.Printf("[INFO] Using suggestion provider: %s (%s)", cfg.Ai.Provider, cfg.Ai.Model)

	// Embedding provider for topic-drift detection (optional)
	embedder := newEmbedder(cfg.Ai)

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/suggestion_push.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(suggestionEventsTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, suggestionEventsTopic, wsHub, natsPub)

	sessionRepo := memory.NewSessionRepository(cfg.App.SessionTTL)
	suggestionService := service.NewSuggestionService(
		sessionRepo,
		provider,
		publisherService,
		cfg.Tuning,
		sysLogger,
		embedder,
		cfg.Ai.DriftThreshold,
	)

	// 5. Controllers
	return &Container{
		SuggestionController: controller.NewSuggestionController(suggestionService, wsHub),
		ConsumerService:      consumerService,
		WebSocketHub:         wsHub,
	}
}

// newEmbedder selects the embedding backend for topic-drift detection.
// Returns nil, which disables the detector, when none is configured.
func newEmbedder(ai config.AIConfig) embedding.Provider {
	switch ai.EmbeddingProvider {
	case "ollama":
		return embedding.NewOllamaProvider(ai.OllamaBaseURL, ai.EmbeddingModel)
	case "gemini":
		return embedding.NewGeminiProvider(ai.GeminiApiKey, ai.EmbeddingModel)
	case "jina":
		return jina.NewJinaProvider(ai.JinaApiKey)
	case "":
		return nil
	default:
		log.Printf("[WARN] Unknown embedding provider %q, topic-drift detection disabled", ai.EmbeddingProvider)
		return nil
	}
}
