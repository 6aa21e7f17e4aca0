package service

import (
	"context"
	"log"
	"time"

	"ai-writing-be/internal/config"
	"ai-writing-be/internal/dto"
	"ai-writing-be/internal/model"
	"ai-writing-be/internal/pkg/logger"
	"ai-writing-be/internal/pkg/serverutils"
	"ai-writing-be/internal/repository/memory"
	"ai-writing-be/pkg/embedding"
	"ai-writing-be/pkg/events"
	"ai-writing-be/pkg/lexical"
	"ai-writing-be/pkg/llm"
	"ai-writing-be/pkg/segment"
	"ai-writing-be/pkg/suggest"
	"ai-writing-be/pkg/suggest/guard"
	"ai-writing-be/pkg/suggest/store"
	"ai-writing-be/pkg/topic"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ISuggestionService manages writing sessions and fronts their coordinators.
type ISuggestionService interface {
	CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	Enqueue(ctx context.Context, sessionId uuid.UUID, req *dto.EnqueueRequest) (*dto.EnqueueResponse, error)
	Inject(ctx context.Context, sessionId uuid.UUID, req *dto.InjectRequest) (*dto.InjectResponse, error)
	Pin(ctx context.Context, sessionId, suggestionId uuid.UUID) error
	Remove(ctx context.Context, sessionId, suggestionId uuid.UUID) error
	ClearAll(ctx context.Context, sessionId uuid.UUID) error
	ClearCachedSentences(ctx context.Context, sessionId uuid.UUID) error
	TopicShift(ctx context.Context, sessionId uuid.UUID, req *dto.TopicShiftRequest) error
	Suggestions(ctx context.Context, sessionId uuid.UUID) (*dto.SuggestionListResponse, error)
	QueueSnapshot(ctx context.Context, sessionId uuid.UUID) (*dto.QueueSnapshotResponse, error)

	// HandleEdit is the websocket ingest path (websocket.EditSink).
	HandleEdit(sessionId uuid.UUID, frame model.EditFrame)
}

type suggestionService struct {
	sessionRepo    *memory.SessionRepository
	provider       llm.SuggestionProvider
	publisher      IPublisherService
	tuning         config.TuningSet
	logger         logger.ILogger
	embedder       embedding.Provider // nil disables topic-drift detection
	driftThreshold float64
}

func NewSuggestionService(
	sessionRepo *memory.SessionRepository,
	provider llm.SuggestionProvider,
	publisher IPublisherService,
	tuning config.TuningSet,
	log logger.ILogger,
	embedder embedding.Provider,
	driftThreshold float64,
) ISuggestionService {
	return &suggestionService{
		sessionRepo:    sessionRepo,
		provider:       provider,
		publisher:      publisher,
		tuning:         tuning,
		logger:         log,
		embedder:       embedder,
		driftThreshold: driftThreshold,
	}
}

func (s *suggestionService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	mode := req.Mode
	if mode == "" {
		mode = "live"
	}
	t := s.tuning.ForMode(mode)

	sessionId := uuid.New()
	coord := suggest.NewCoordinator(suggest.Config{
		RateLimitSpacing:    t.RateLimitSpacing,
		RequestTimeout:      t.RequestTimeout,
		MaxQueueSize:        t.MaxQueueSize,
		MaxConcurrent:       t.MaxConcurrent,
		EnqueueGuardTTL:     t.EnqueueGuardTTL,
		DisplayGuardTTL:     t.DisplayGuardTTL,
		ConfidenceThreshold: t.ConfidenceThreshold,
	}, s.provider, s.logger, &sessionNotifier{sessionId: sessionId, publisher: s.publisher})

	var detector *topic.Detector
	if s.embedder != nil {
		detector = topic.NewDetector(s.embedder, s.driftThreshold)
	}

	s.sessionRepo.Save(&memory.Session{
		Id:          sessionId,
		Mode:        mode,
		Coordinator: coord,
		Detector:    detector,
		CreatedAt:   time.Now(),
	})

	log.Printf("[INFO] Created suggestion session %s (mode=%s)", sessionId, mode)
	return &dto.CreateSessionResponse{Id: sessionId, Mode: mode}, nil
}

func (s *suggestionService) Enqueue(ctx context.Context, sessionId uuid.UUID, req *dto.EnqueueRequest) (*dto.EnqueueResponse, error) {
	session, err := s.session(sessionId)
	if err != nil {
		return nil, err
	}
	fullText := lexical.ParseContent(req.FullText)
	verdict := session.Coordinator.Enqueue(fullText, toSentence(req.Sentence), req.Force)
	if verdict == guard.Admitted {
		s.observeDrift(session, req.Sentence.Text)
	}
	return &dto.EnqueueResponse{Verdict: verdict.String()}, nil
}

func (s *suggestionService) Inject(ctx context.Context, sessionId uuid.UUID, req *dto.InjectRequest) (*dto.InjectResponse, error) {
	session, err := s.session(sessionId)
	if err != nil {
		return nil, err
	}
	surfaced := session.Coordinator.InjectSuggestion(req.FullText, toSentence(req.Sentence), req.Text)
	return &dto.InjectResponse{Surfaced: surfaced}, nil
}

func (s *suggestionService) Pin(ctx context.Context, sessionId, suggestionId uuid.UUID) error {
	session, err := s.session(sessionId)
	if err != nil {
		return err
	}
	if !session.Coordinator.Pin(suggestionId) {
		return serverutils.NewAppError(fiber.StatusNotFound, "suggestion %s not found", suggestionId)
	}
	return nil
}

func (s *suggestionService) Remove(ctx context.Context, sessionId, suggestionId uuid.UUID) error {
	session, err := s.session(sessionId)
	if err != nil {
		return err
	}
	session.Coordinator.Remove(suggestionId)
	return nil
}

func (s *suggestionService) ClearAll(ctx context.Context, sessionId uuid.UUID) error {
	session, err := s.session(sessionId)
	if err != nil {
		return err
	}
	session.Coordinator.ClearAll()
	return nil
}

func (s *suggestionService) ClearCachedSentences(ctx context.Context, sessionId uuid.UUID) error {
	session, err := s.session(sessionId)
	if err != nil {
		return err
	}
	session.Coordinator.ClearCachedSentences()
	return nil
}

func (s *suggestionService) TopicShift(ctx context.Context, sessionId uuid.UUID, req *dto.TopicShiftRequest) error {
	session, err := s.session(sessionId)
	if err != nil {
		return err
	}
	session.Coordinator.OnTopicShift(req.Keywords...)
	if session.Detector != nil {
		session.Detector.Reset()
	}
	return nil
}

func (s *suggestionService) Suggestions(ctx context.Context, sessionId uuid.UUID) (*dto.SuggestionListResponse, error) {
	session, err := s.session(sessionId)
	if err != nil {
		return nil, err
	}

	pinned := session.Coordinator.PinnedIds()
	pinnedSet := make(map[uuid.UUID]bool, len(pinned))
	for _, id := range pinned {
		pinnedSet[id] = true
	}

	list := session.Coordinator.Suggestions()
	out := make([]dto.SuggestionResponse, 0, len(list))
	for _, sg := range list {
		out = append(out, dto.SuggestionResponse{
			Id:         sg.Id,
			Text:       sg.Text,
			SentenceId: sg.SentenceId,
			SourceText: sg.SourceText,
			Pinned:     pinnedSet[sg.Id],
			CreatedAt:  sg.CreatedAt,
		})
	}
	return &dto.SuggestionListResponse{Suggestions: out, PinnedIds: pinned}, nil
}

func (s *suggestionService) QueueSnapshot(ctx context.Context, sessionId uuid.UUID) (*dto.QueueSnapshotResponse, error) {
	session, err := s.session(sessionId)
	if err != nil {
		return nil, err
	}

	items := session.Coordinator.QueueSnapshot()
	out := make([]dto.QueueItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.QueueItemResponse{
			Id:         it.Id,
			SentenceId: it.Sentence.Id,
			Text:       it.Sentence.Text,
			Status:     string(it.Status),
			Force:      it.Force,
			EnqueuedAt: it.EnqueuedAt,
		})
	}
	stats := session.Coordinator.Stats()
	return &dto.QueueSnapshotResponse{
		Items:     out,
		InFlight:  session.Coordinator.InFlight(),
		Completed: stats.Completed,
		Failed:    stats.Failed,
	}, nil
}

// HandleEdit is the hot path for websocket edit frames. Failures are absorbed:
// a suggestion either appears later or it doesn't.
func (s *suggestionService) HandleEdit(sessionId uuid.UUID, frame model.EditFrame) {
	session, found := s.sessionRepo.Get(sessionId)
	if !found {
		return
	}

	switch frame.Type {
	case "sentence_edit":
		fullText := frame.FullText
		if frame.EditorState != "" {
			fullText = lexical.ParseContent(frame.EditorState)
		}
		sentence := segment.Sentence{
			Id:         frame.Sentence.Id,
			Text:       frame.Sentence.Text,
			StartIndex: frame.Sentence.StartIndex,
			EndIndex:   frame.Sentence.EndIndex,
		}
		if session.Coordinator.Enqueue(fullText, sentence, frame.Force) == guard.Admitted {
			s.observeDrift(session, frame.Sentence.Text)
		}
	case "topic_shift":
		session.Coordinator.OnTopicShift()
		if session.Detector != nil {
			session.Detector.Reset()
		}
	}
}

// observeDrift feeds an admitted sentence to the session's drift detector off
// the hot path. A detected drift triggers the same topic-shift handling an
// explicit client signal would.
func (s *suggestionService) observeDrift(session *memory.Session, text string) {
	if session.Detector == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		shifted, err := session.Detector.Observe(ctx, text)
		if err != nil {
			log.Printf("[WARN] Topic drift observation failed: %v", err)
			return
		}
		if shifted {
			log.Printf("[INFO] Topic drift detected for session %s", session.Id)
			session.Coordinator.OnTopicShift()
		}
	}()
}

func (s *suggestionService) session(sessionId uuid.UUID) (*memory.Session, error) {
	session, found := s.sessionRepo.Get(sessionId)
	if !found {
		return nil, serverutils.NewAppError(fiber.StatusNotFound, "session %s not found", sessionId)
	}
	return session, nil
}

func toSentence(p dto.SentencePayload) segment.Sentence {
	return segment.Sentence{
		Id:         p.Id,
		Text:       p.Text,
		StartIndex: p.StartIndex,
		EndIndex:   p.EndIndex,
	}
}

// sessionNotifier bridges one coordinator's callbacks onto the event bus.
// Calls arrive on the coordinator goroutine, so publishing must stay quick;
// the gochannel bus is buffered.
type sessionNotifier struct {
	sessionId uuid.UUID
	publisher IPublisherService
}

func (n *sessionNotifier) SuggestionAccepted(sg store.Suggestion) {
	if n.publisher == nil {
		return
	}
	ev := events.NewSuggestionAccepted(n.sessionId.String(), sg.Id.String(), sg.SentenceId, sg.Text, sg.SourceText)
	if err := n.publisher.Publish(context.Background(), ev); err != nil {
		log.Printf("[WARN] Failed to publish accepted suggestion: %v", err)
	}
}

func (n *sessionNotifier) SuggestionDiscarded(sentenceId string, reason string) {
	if n.publisher == nil {
		return
	}
	ev := events.NewSuggestionDiscarded(n.sessionId.String(), sentenceId, reason)
	if err := n.publisher.Publish(context.Background(), ev); err != nil {
		log.Printf("[WARN] Failed to publish discarded suggestion: %v", err)
	}
}

func (n *sessionNotifier) TopicShifted(version int64) {
	if n.publisher == nil {
		return
	}
	ev := events.NewTopicShifted(n.sessionId.String(), version)
	if err := n.publisher.Publish(context.Background(), ev); err != nil {
		log.Printf("[WARN] Failed to publish topic shift: %v", err)
	}
}
