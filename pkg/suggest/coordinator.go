package suggest

import (
	"context"
	"errors"
	"sync"
	"time"

	"ai-writing-be/internal/pkg/logger"
	"ai-writing-be/pkg/llm"
	"ai-writing-be/pkg/segment"
	"ai-writing-be/pkg/suggest/guard"
	"ai-writing-be/pkg/suggest/queue"
	"ai-writing-be/pkg/suggest/ratelimit"
	"ai-writing-be/pkg/suggest/store"

	"github.com/google/uuid"
)

// Notifier receives coordinator lifecycle callbacks. All methods are invoked
// from the coordinator's own goroutine and must not block.
type Notifier interface {
	SuggestionAccepted(s store.Suggestion)
	SuggestionDiscarded(sentenceId string, reason string)
	TopicShifted(version int64)
}

// Stats are diagnostic counters for the coordinator's terminal outcomes.
// Cancelled and gated requests count as completed, not failed.
type Stats struct {
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Coordinator decides which edited sentences are worth sending to the
// suggestion provider, throttles and deduplicates those requests, tracks
// in-flight work, cancels stale work, and publishes accepted results.
//
// All mutable state is owned by a single scheduling goroutine; public
// operations post commands into that loop and wait for the reply. The only
// suspension points are the rate-limiter wait and the provider call, both of
// which happen in per-request goroutines that report back via events.
//
// Scheduling policy: bounded-parallel dispatch (up to MaxConcurrent) with
// most-recent-pending (LIFO) selection; queue overflow drops the oldest
// pending items. MaxConcurrent=1 yields single-flight behavior.
type Coordinator struct {
	cfg      Config
	provider llm.SuggestionProvider
	limiter  *ratelimit.Limiter
	guards   *guard.Store
	queue    *queue.Queue
	sgStore  *store.Store
	log      logger.ILogger
	notifier Notifier

	events chan coordEvent
	done   chan struct{}
	once   sync.Once

	// loop-owned state
	ongoing       map[string]*ongoingRequest // keyed by sentence id
	topicVersion  int64
	topicKeywords []string
	stats         Stats
}

// ongoingRequest exists only while a provider call is outstanding.
type ongoingRequest struct {
	requestId    uuid.UUID
	cancel       context.CancelFunc
	startedAt    time.Time
	sentenceId   string
	sourceText   string
	topicVersion int64
	itemId       uuid.UUID
}

type coordEvent interface{}

type cmdEnqueue struct {
	fullText string
	sentence segment.Sentence
	force    bool
	reply    chan guard.Verdict
}

type cmdInject struct {
	fullText string
	sentence segment.Sentence
	text     string
	reply    chan bool
}

type cmdPin struct {
	id    uuid.UUID
	reply chan bool
}

type cmdRemove struct {
	id    uuid.UUID
	reply chan bool
}

type cmdClearAll struct{ reply chan struct{} }

type cmdClearCached struct{ reply chan struct{} }

type cmdTopicShift struct {
	keywords []string
	reply    chan struct{}
}

type cmdSetTopicVersion struct {
	version int64
	reply   chan struct{}
}

type querySnapshot struct {
	reply chan snapshot
}

type snapshot struct {
	suggestions []store.Suggestion
	pinnedIds   []uuid.UUID
	queueItems  []queue.WorkItem
	inFlight    int
	stats       Stats
}

// evResult is the executor's report for one finished provider call.
type evResult struct {
	requestId  uuid.UUID
	itemId     uuid.UUID
	sentenceId string
	sourceText string
	force      bool
	result     *llm.SuggestionResult
	err        error
}

func NewCoordinator(cfg Config, provider llm.SuggestionProvider, log logger.ILogger, notifier Notifier) *Coordinator {
	cfg = cfg.withDefaults()
	c := &Coordinator{
		cfg:      cfg,
		provider: provider,
		limiter:  ratelimit.New(cfg.RateLimitSpacing),
		guards:   guard.NewStore(cfg.EnqueueGuardTTL, cfg.DisplayGuardTTL),
		queue:    queue.New(cfg.MaxQueueSize),
		sgStore:  store.New(),
		log:      log,
		notifier: notifier,
		events:   make(chan coordEvent),
		done:     make(chan struct{}),
		ongoing:  make(map[string]*ongoingRequest),
	}
	go c.run()
	return c
}

// Close stops the scheduling loop and cancels all in-flight work. Idempotent.
func (c *Coordinator) Close() {
	c.once.Do(func() { close(c.done) })
}

// --- Public operations ---

// Enqueue submits an edited sentence for consideration. Never returns an
// error: rejection is a plain no-op for the caller, reported only as the
// admission verdict.
func (c *Coordinator) Enqueue(fullText string, sentence segment.Sentence, force bool) guard.Verdict {
	reply := make(chan guard.Verdict, 1)
	if !c.post(cmdEnqueue{fullText: fullText, sentence: sentence, force: force, reply: reply}) {
		return guard.RejectedPreFilter
	}
	return <-reply
}

// InjectSuggestion surfaces the given text as a suggestion without any
// provider call. Still subject to the display guard. Returns whether the
// suggestion was surfaced.
func (c *Coordinator) InjectSuggestion(fullText string, sentence segment.Sentence, text string) bool {
	reply := make(chan bool, 1)
	if !c.post(cmdInject{fullText: fullText, sentence: sentence, text: text, reply: reply}) {
		return false
	}
	return <-reply
}

func (c *Coordinator) Pin(id uuid.UUID) bool {
	reply := make(chan bool, 1)
	if !c.post(cmdPin{id: id, reply: reply}) {
		return false
	}
	return <-reply
}

func (c *Coordinator) Remove(id uuid.UUID) bool {
	reply := make(chan bool, 1)
	if !c.post(cmdRemove{id: id, reply: reply}) {
		return false
	}
	return <-reply
}

// ClearAll deletes every suggestion and pinned mark. Full reset, unlike
// OnTopicShift which keeps what was already shown.
func (c *Coordinator) ClearAll() {
	reply := make(chan struct{}, 1)
	if c.post(cmdClearAll{reply: reply}) {
		<-reply
	}
}

// ClearCachedSentences drops both guard tables so previously seen text may be
// suggested again.
func (c *Coordinator) ClearCachedSentences() {
	reply := make(chan struct{}, 1)
	if c.post(cmdClearCached{reply: reply}) {
		<-reply
	}
}

// OnTopicShift cancels all in-flight requests, clears pending work and both
// guard tables, and bumps the topic version so late responses are discarded.
// Suggestions already shown stay visible.
func (c *Coordinator) OnTopicShift(keywords ...string) {
	reply := make(chan struct{}, 1)
	if c.post(cmdTopicShift{keywords: keywords, reply: reply}) {
		<-reply
	}
}

// SetTopicVersion adopts an externally supplied topic version. Values lower
// than the current one are ignored; the version only moves forward.
func (c *Coordinator) SetTopicVersion(version int64) {
	reply := make(chan struct{}, 1)
	if c.post(cmdSetTopicVersion{version: version, reply: reply}) {
		<-reply
	}
}

// Suggestions returns the live suggestion list, oldest first.
func (c *Coordinator) Suggestions() []store.Suggestion {
	return c.snapshot().suggestions
}

// PinnedIds returns the current pinned-id set.
func (c *Coordinator) PinnedIds() []uuid.UUID {
	return c.snapshot().pinnedIds
}

// QueueSnapshot returns the queue contents for diagnostics, oldest first.
func (c *Coordinator) QueueSnapshot() []queue.WorkItem {
	return c.snapshot().queueItems
}

// InFlight returns how many provider calls are currently outstanding.
func (c *Coordinator) InFlight() int {
	return c.snapshot().inFlight
}

// Stats returns the terminal-outcome counters.
func (c *Coordinator) Stats() Stats {
	return c.snapshot().stats
}

func (c *Coordinator) snapshot() snapshot {
	reply := make(chan snapshot, 1)
	if !c.post(querySnapshot{reply: reply}) {
		return snapshot{}
	}
	return <-reply
}

// post delivers an event to the loop unless the coordinator is closed.
func (c *Coordinator) post(ev coordEvent) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

// --- Scheduling loop ---

func (c *Coordinator) run() {
	for {
		select {
		case ev := <-c.events:
			c.handle(ev)
			// Re-evaluate dispatch after every state transition so a pending
			// item is never starved behind a slow in-flight one.
			c.dispatch()
		case <-c.done:
			for _, og := range c.ongoing {
				og.cancel()
			}
			c.ongoing = make(map[string]*ongoingRequest)
			return
		}
	}
}

func (c *Coordinator) handle(ev coordEvent) {
	switch e := ev.(type) {
	case cmdEnqueue:
		e.reply <- c.admit(e.fullText, e.sentence, e.force)
	case cmdInject:
		e.reply <- c.inject(e.fullText, e.sentence, e.text)
	case cmdPin:
		e.reply <- c.sgStore.Pin(e.id)
	case cmdRemove:
		e.reply <- c.sgStore.Remove(e.id)
	case cmdClearAll:
		c.sgStore.ClearAll()
		e.reply <- struct{}{}
	case cmdClearCached:
		c.guards.Reset()
		e.reply <- struct{}{}
	case cmdTopicShift:
		c.topicShift(e.keywords)
		e.reply <- struct{}{}
	case cmdSetTopicVersion:
		if e.version > c.topicVersion {
			c.topicVersion = e.version
		}
		e.reply <- struct{}{}
	case querySnapshot:
		e.reply <- snapshot{
			suggestions: c.sgStore.List(),
			pinnedIds:   c.sgStore.PinnedIds(),
			queueItems:  c.queue.Snapshot(),
			inFlight:    len(c.ongoing),
			stats:       c.stats,
		}
	case evResult:
		c.finish(e)
	}
}

// admit runs the full admission sequence for one edited sentence: identity
// re-resolution, guard checks, the in-flight duplicate check, then queueing.
func (c *Coordinator) admit(fullText string, sentence segment.Sentence, force bool) guard.Verdict {
	resolved, prevText := resolveSentence(fullText, sentence)

	verdict := c.guards.Admit(resolved, prevText, force)
	if verdict != guard.Admitted {
		c.logInfo("admission rejected", map[string]interface{}{
			"sentence_id": resolved.Id,
			"verdict":     verdict.String(),
		})
		return verdict
	}

	// In-flight duplicate check. The enqueue guard already filtered unchanged
	// repeats of the same id, so reaching here with an outstanding request
	// means either a genuine re-edit (cancel and replace) or a text-equal
	// duplicate slipping in under a different fingerprint (reject).
	if og, ok := c.ongoing[resolved.Id]; ok {
		if segment.Normalize(og.sourceText) == segment.Normalize(resolved.Text) {
			return guard.RejectedInFlight
		}
		c.supersede(og)
	}
	if pending := c.queue.PendingBySentence(resolved.Id); pending != nil {
		if segment.Normalize(pending.Sentence.Text) == segment.Normalize(resolved.Text) {
			return guard.RejectedInFlight
		}
		c.queue.Remove(pending.Id)
	}

	_, dropped := c.queue.Push(fullText, resolved, force)
	for _, d := range dropped {
		c.logInfo("pending item dropped for queue bound", map[string]interface{}{
			"item_id":     d.Id.String(),
			"sentence_id": d.Sentence.Id,
		})
	}
	return guard.Admitted
}

// supersede cancels an outstanding request for a re-edited sentence and
// forgets it; the late result event is recognized by request id and ignored.
func (c *Coordinator) supersede(og *ongoingRequest) {
	og.cancel()
	delete(c.ongoing, og.sentenceId)
	c.queue.Remove(og.itemId)
}

func (c *Coordinator) inject(fullText string, sentence segment.Sentence, text string) bool {
	if text == "" {
		return false
	}
	resolved, _ := resolveSentence(fullText, sentence)
	if c.guards.WasDisplayed(resolved.Text) {
		return false
	}
	c.accept(resolved.Id, resolved.Text, text)
	return true
}

func (c *Coordinator) topicShift(keywords []string) {
	for _, og := range c.ongoing {
		og.cancel()
		c.queue.Remove(og.itemId)
	}
	c.ongoing = make(map[string]*ongoingRequest)
	cleared := c.queue.Clear()
	c.guards.Reset()
	c.topicVersion++
	if len(keywords) > 0 {
		c.topicKeywords = keywords
	}
	c.logInfo("topic shift", map[string]interface{}{
		"version":         c.topicVersion,
		"cleared_pending": cleared,
	})
	if c.notifier != nil {
		c.notifier.TopicShifted(c.topicVersion)
	}
}

// dispatch hands pending items to executor goroutines while capacity allows.
func (c *Coordinator) dispatch() {
	for len(c.ongoing) < c.cfg.MaxConcurrent {
		item := c.queue.NextPending()
		if item == nil {
			return
		}
		c.queue.MarkProcessing(item.Id)

		ctx, cancel := context.WithCancel(context.Background())
		og := &ongoingRequest{
			requestId:    uuid.New(),
			cancel:       cancel,
			startedAt:    time.Now(),
			sentenceId:   item.Sentence.Id,
			sourceText:   item.Sentence.Text,
			topicVersion: c.topicVersion,
			itemId:       item.Id,
		}
		c.ongoing[item.Sentence.Id] = og

		req := &llm.SuggestionRequest{
			SentenceText:      item.Sentence.Text,
			DocumentContext:   tailContext(item.FullText, c.cfg.ContextLimit),
			RecentSuggestions: c.sgStore.RecentTexts(5),
			TopicKeywords:     append([]string(nil), c.topicKeywords...),
		}
		go c.execute(ctx, og.requestId, item.Id, item.Sentence.Id, item.Sentence.Text, item.Force, req)
	}
}

// execute is the request executor body: rate-limiter wait, then the provider
// call under the per-request timeout. Runs outside the loop; reports back via
// evResult. Response gating happens in the loop, where state is owned.
func (c *Coordinator) execute(ctx context.Context, requestId, itemId uuid.UUID, sentenceId, sourceText string, force bool, req *llm.SuggestionRequest) {
	result := evResult{
		requestId:  requestId,
		itemId:     itemId,
		sentenceId: sentenceId,
		sourceText: sourceText,
		force:      force,
	}

	if err := c.limiter.Wait(ctx); err != nil {
		result.err = err
		c.post(result)
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	res, err := c.provider.Suggest(callCtx, req)
	result.result = res
	result.err = err
	c.post(result)
}

// finish applies response gating for one executor report.
func (c *Coordinator) finish(e evResult) {
	og, ok := c.ongoing[e.sentenceId]
	if !ok || og.requestId != e.requestId {
		// Superseded or topic-shifted while in flight; everything about this
		// request was already cleaned up.
		return
	}
	delete(c.ongoing, e.sentenceId)
	c.queue.Remove(e.itemId)

	switch {
	case e.err != nil && (errors.Is(e.err, context.Canceled) || errors.Is(e.err, context.DeadlineExceeded)):
		// An aborted or timed-out call is a benign outcome, not an error.
		c.stats.Completed++
		c.logInfo("request aborted", map[string]interface{}{"sentence_id": e.sentenceId})

	case e.err != nil:
		c.stats.Failed++
		c.logError("suggestion request failed", map[string]interface{}{
			"sentence_id": e.sentenceId,
			"error":       e.err.Error(),
		})

	case og.topicVersion != c.topicVersion:
		c.stats.Completed++
		c.discard(e.sentenceId, "stale_topic_version")

	case e.result == nil || e.result.SuggestionText == "":
		if e.force {
			// Forced with nothing to show: silent discard.
			c.stats.Completed++
			c.discard(e.sentenceId, "empty_forced")
			return
		}
		c.stats.Failed++
		c.logError("provider returned empty suggestion text", map[string]interface{}{
			"sentence_id": e.sentenceId,
		})

	case !e.force && e.result.Confidence < c.cfg.ConfidenceThreshold:
		c.stats.Completed++
		c.discard(e.sentenceId, "low_confidence")

	default:
		c.stats.Completed++
		c.accept(e.sentenceId, e.sourceText, e.result.SuggestionText)
	}
}

func (c *Coordinator) discard(sentenceId, reason string) {
	c.logInfo("response discarded", map[string]interface{}{
		"sentence_id": sentenceId,
		"reason":      reason,
	})
	if c.notifier != nil {
		c.notifier.SuggestionDiscarded(sentenceId, reason)
	}
}

// accept constructs a Suggestion, marks the display guard, and inserts it
// into the store, superseding the previous ephemeral suggestion.
func (c *Coordinator) accept(sentenceId, sourceText, text string) {
	sg := store.Suggestion{
		Id:         uuid.New(),
		Text:       text,
		SentenceId: sentenceId,
		SourceText: sourceText,
		CreatedAt:  time.Now(),
	}
	c.guards.MarkDisplayed(sourceText)
	c.sgStore.Insert(sg)
	c.logInfo("suggestion accepted", map[string]interface{}{
		"suggestion_id": sg.Id.String(),
		"sentence_id":   sentenceId,
	})
	if c.notifier != nil {
		c.notifier.SuggestionAccepted(sg)
	}
}

func (c *Coordinator) logInfo(msg string, details map[string]interface{}) {
	if c.log != nil {
		c.log.Info("Coordinator", msg, details)
	}
}

func (c *Coordinator) logError(msg string, details map[string]interface{}) {
	if c.log != nil {
		c.log.Error("Coordinator", msg, details)
	}
}
