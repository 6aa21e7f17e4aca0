package suggest

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-writing-be/pkg/llm"
	"ai-writing-be/pkg/segment"
	"ai-writing-be/pkg/suggest/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider is a controllable stand-in for the suggestion service. Results
// are keyed by sentence text; a gate channel makes calls hang until released
// so cancellation paths can be exercised.
type fakeProvider struct {
	mu      sync.Mutex
	results map[string]*llm.SuggestionResult
	err     error
	gate    chan struct{}
	started chan string
	calls   []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{results: make(map[string]*llm.SuggestionResult)}
}

func (f *fakeProvider) respond(sentenceText, suggestion string, confidence float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[sentenceText] = &llm.SuggestionResult{SuggestionText: suggestion, Confidence: confidence}
}

func (f *fakeProvider) setGate(gate chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = gate
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeProvider) Suggest(ctx context.Context, req *llm.SuggestionRequest, _ ...llm.Option) (*llm.SuggestionResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.SentenceText)
	gate := f.gate
	res, ok := f.results[req.SentenceText]
	err := f.err
	started := f.started
	f.mu.Unlock()

	if started != nil {
		started <- req.SentenceText
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return &llm.SuggestionResult{SuggestionText: "What else comes to mind?", Confidence: 0.9}, nil
	}
	return res, nil
}

func testConfig() Config {
	return Config{
		RateLimitSpacing:    0,
		RequestTimeout:      2 * time.Second,
		MaxQueueSize:        3,
		MaxConcurrent:       1,
		EnqueueGuardTTL:     time.Minute,
		DisplayGuardTTL:     time.Minute,
		ConfidenceThreshold: 0.5,
	}
}

func newTestCoordinator(t *testing.T, cfg Config, provider llm.SuggestionProvider) *Coordinator {
	t.Helper()
	c := NewCoordinator(cfg, provider, nil, nil)
	t.Cleanup(c.Close)
	return c
}

// ownSentence builds a sentence whose fullText is exactly its own text, so
// identity re-resolution is a clean offset match.
func ownSentence(id, text string) (string, segment.Sentence) {
	return text, segment.Sentence{Id: id, Text: text, StartIndex: 0, EndIndex: len([]rune(text))}
}

func waitIdle(t *testing.T, c *Coordinator) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(c.QueueSnapshot()) == 0 && c.InFlight() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAcceptedSuggestionEndToEnd(t *testing.T) {
	f := newFakeProvider()
	f.respond("I feel anxious about the deadline.", "What's driving that anxiety?", 0.7)
	c := newTestCoordinator(t, testConfig(), f)

	fullText, s := ownSentence("sent-a", "I feel anxious about the deadline.")
	verdict := c.Enqueue(fullText, s, false)
	assert.Equal(t, guard.Admitted, verdict)

	waitIdle(t, c)

	list := c.Suggestions()
	require.Len(t, list, 1)
	assert.Equal(t, "What's driving that anxiety?", list[0].Text)
	assert.Equal(t, "I feel anxious about the deadline.", list[0].SourceText)
	assert.Equal(t, "sent-a", list[0].SentenceId)
	assert.Equal(t, Stats{Completed: 1, Failed: 0}, c.Stats())
}

func TestLowConfidenceSilentlyDiscarded(t *testing.T) {
	f := newFakeProvider()
	f.respond("Maybe this sentence is fine.", "a nudge", 0.1)
	c := newTestCoordinator(t, testConfig(), f)

	fullText, s := ownSentence("sent-b", "Maybe this sentence is fine.")
	c.Enqueue(fullText, s, false)

	waitIdle(t, c)

	assert.Empty(t, c.Suggestions())
	assert.Equal(t, Stats{Completed: 1, Failed: 0}, c.Stats())
}

func TestEnqueueIdempotentForUnchangedText(t *testing.T) {
	f := newFakeProvider()
	gate := make(chan struct{})
	f.setGate(gate)
	c := newTestCoordinator(t, testConfig(), f)

	fullText, s := ownSentence("sent-c", "I keep retyping this thought.")
	assert.Equal(t, guard.Admitted, c.Enqueue(fullText, s, false))
	assert.Equal(t, guard.RejectedRecentlyQueued, c.Enqueue(fullText, s, false))

	// One work item total: in flight or pending, never two.
	assert.LessOrEqual(t, len(c.QueueSnapshot()), 1)

	close(gate)
	waitIdle(t, c)
	assert.Equal(t, 1, f.callCount())
}

func TestDisplayGuardSurvivesIdChurn(t *testing.T) {
	f := newFakeProvider()
	f.respond("Hello world, nice day.", "Keep going.", 0.8)
	c := newTestCoordinator(t, testConfig(), f)

	fullText, s := ownSentence("id-one", "Hello world, nice day.")
	c.Enqueue(fullText, s, false)
	waitIdle(t, c)
	require.Len(t, c.Suggestions(), 1)

	// Same text under a fresh id, as after a re-segmentation.
	fullText2, s2 := ownSentence("id-two", "hello   WORLD, nice day.")
	verdict := c.Enqueue(fullText2, s2, false)
	assert.Equal(t, guard.RejectedDisplayed, verdict)
	assert.Equal(t, 1, f.callCount())
}

func TestQueueBoundKeepsMostRecent(t *testing.T) {
	f := newFakeProvider()
	gate := make(chan struct{})
	f.setGate(gate)
	cfg := testConfig()
	cfg.MaxQueueSize = 2
	c := newTestCoordinator(t, cfg, f)

	texts := []string{
		"The very first sentence written.",
		"A second thought arrives now.",
		"Then a third idea shows up.",
		"The fourth one replaces older work.",
		"Finally the fifth and freshest.",
	}
	for i, text := range texts {
		fullText, s := ownSentence("sent-"+string(rune('0'+i)), text)
		c.Enqueue(fullText, s, false)
	}

	snap := c.QueueSnapshot()
	// One item went in flight; of the rest, only the 2 most recent survive.
	require.Len(t, snap, 3)
	assert.Equal(t, "processing", string(snap[0].Status))
	assert.Equal(t, texts[3], snap[1].Sentence.Text)
	assert.Equal(t, texts[4], snap[2].Sentence.Text)

	close(gate)
	waitIdle(t, c)
}

func TestTopicShiftCancelsWorkKeepsSuggestions(t *testing.T) {
	f := newFakeProvider()
	f.respond("Something I already finished.", "Nice thought.", 0.9)
	c := newTestCoordinator(t, testConfig(), f)

	// One accepted suggestion before the shift.
	fullText, s := ownSentence("done-1", "Something I already finished.")
	c.Enqueue(fullText, s, false)
	waitIdle(t, c)
	require.Len(t, c.Suggestions(), 1)

	// Now hang the provider and pile up work.
	gate := make(chan struct{})
	defer close(gate)
	f.setGate(gate)
	for i, text := range []string{
		"A fresh sentence in flight now.",
		"A pending sentence number one.",
		"A pending sentence number two.",
	} {
		ft, sn := ownSentence("shift-"+string(rune('0'+i)), text)
		c.Enqueue(ft, sn, false)
	}
	require.Equal(t, 1, c.InFlight())

	c.OnTopicShift()

	assert.Empty(t, c.QueueSnapshot())
	assert.Equal(t, 0, c.InFlight())
	assert.Len(t, c.Suggestions(), 1)

	// The late response from the cancelled call never becomes a failure.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, c.Stats().Failed)
}

func TestTimedOutRequestIsBenign(t *testing.T) {
	f := newFakeProvider()
	f.setGate(make(chan struct{})) // never released; only the deadline ends the call
	cfg := testConfig()
	cfg.RequestTimeout = 50 * time.Millisecond
	c := newTestCoordinator(t, cfg, f)

	fullText, s := ownSentence("slow-1", "This one will take forever.")
	c.Enqueue(fullText, s, false)

	waitIdle(t, c)

	assert.Empty(t, c.Suggestions())
	assert.Equal(t, Stats{Completed: 1, Failed: 0}, c.Stats())
}

func TestReEditSupersedesInFlightRequest(t *testing.T) {
	f := newFakeProvider()
	f.started = make(chan string, 4)
	gate := make(chan struct{})
	f.setGate(gate)
	f.respond("I feel anxious about the deadline.", "What's underneath that?", 0.8)
	c := newTestCoordinator(t, testConfig(), f)

	fullText, s := ownSentence("grow-1", "I feel anxious about the dead")
	require.Equal(t, guard.Admitted, c.Enqueue(fullText, s, false))
	<-f.started

	// Same id, grown text: genuine re-edit cancels the outstanding call.
	fullText2, s2 := ownSentence("grow-1", "I feel anxious about the deadline.")
	require.Equal(t, guard.Admitted, c.Enqueue(fullText2, s2, false))
	<-f.started

	close(gate)
	waitIdle(t, c)

	assert.Equal(t, 2, f.callCount())
	list := c.Suggestions()
	require.Len(t, list, 1)
	assert.Equal(t, "I feel anxious about the deadline.", list[0].SourceText)
	assert.Equal(t, 0, c.Stats().Failed)
}

func TestForceBypassesPreFilterAndConfidence(t *testing.T) {
	f := newFakeProvider()
	f.respond("Go on.", "Say more about that.", 0.1)
	c := newTestCoordinator(t, testConfig(), f)

	// Too short for the pre-filter and far under the threshold.
	fullText, s := ownSentence("force-1", "Go on.")
	assert.Equal(t, guard.RejectedPreFilter, c.Enqueue(fullText, s, false))
	assert.Equal(t, guard.Admitted, c.Enqueue(fullText, s, true))

	waitIdle(t, c)
	require.Len(t, c.Suggestions(), 1)
	assert.Equal(t, "Say more about that.", c.Suggestions()[0].Text)
}

func TestTransportFailureCountsAsFailed(t *testing.T) {
	f := newFakeProvider()
	f.err = assert.AnError
	c := newTestCoordinator(t, testConfig(), f)

	fullText, s := ownSentence("fail-1", "This request will blow up.")
	c.Enqueue(fullText, s, false)

	waitIdle(t, c)

	assert.Empty(t, c.Suggestions())
	assert.Equal(t, Stats{Completed: 0, Failed: 1}, c.Stats())
}

func TestInjectBypassesProviderButNotDisplayGuard(t *testing.T) {
	f := newFakeProvider()
	c := newTestCoordinator(t, testConfig(), f)

	fullText, s := ownSentence("inj-1", "A sentence worth nudging on.")
	assert.True(t, c.InjectSuggestion(fullText, s, "Here is a planted nudge."))
	assert.False(t, c.InjectSuggestion(fullText, s, "A second planted nudge."))

	require.Len(t, c.Suggestions(), 1)
	assert.Equal(t, "Here is a planted nudge.", c.Suggestions()[0].Text)
	assert.Equal(t, 0, f.callCount())
}

func TestClearAllVersusTopicShift(t *testing.T) {
	f := newFakeProvider()
	f.respond("The first accepted thought.", "Nudge one.", 0.9)
	f.respond("The second accepted thought.", "Nudge two.", 0.9)
	c := newTestCoordinator(t, testConfig(), f)

	ft1, s1 := ownSentence("keep-1", "The first accepted thought.")
	c.Enqueue(ft1, s1, false)
	waitIdle(t, c)
	require.Len(t, c.Suggestions(), 1)
	require.True(t, c.Pin(c.Suggestions()[0].Id))

	ft2, s2 := ownSentence("keep-2", "The second accepted thought.")
	c.Enqueue(ft2, s2, false)
	waitIdle(t, c)
	require.Len(t, c.Suggestions(), 2)

	// Topic shift keeps everything already shown, pinned or not.
	c.OnTopicShift()
	assert.Len(t, c.Suggestions(), 2)

	// ClearAll drops everything, pinned included.
	c.ClearAll()
	assert.Empty(t, c.Suggestions())
	assert.Empty(t, c.PinnedIds())
}

func TestClearCachedSentencesReopensGuards(t *testing.T) {
	f := newFakeProvider()
	f.respond("A sentence seen just once.", "First nudge.", 0.9)
	c := newTestCoordinator(t, testConfig(), f)

	fullText, s := ownSentence("cc-1", "A sentence seen just once.")
	c.Enqueue(fullText, s, false)
	waitIdle(t, c)
	require.Len(t, c.Suggestions(), 1)

	assert.Equal(t, guard.RejectedDisplayed, c.Enqueue(fullText, s, false))

	c.ClearCachedSentences()
	assert.Equal(t, guard.Admitted, c.Enqueue(fullText, s, false))
	waitIdle(t, c)
}

func TestSetTopicVersionOnlyMovesForward(t *testing.T) {
	f := newFakeProvider()
	gate := make(chan struct{})
	f.setGate(gate)
	c := newTestCoordinator(t, testConfig(), f)

	c.SetTopicVersion(5)

	fullText, s := ownSentence("tv-1", "Written under topic version five.")
	c.Enqueue(fullText, s, false)
	require.Equal(t, 1, c.InFlight())

	// Moving the version forward while the call is out makes it stale.
	c.SetTopicVersion(9)
	c.SetTopicVersion(3) // ignored, version never goes back
	close(gate)
	waitIdle(t, c)

	assert.Empty(t, c.Suggestions())
	assert.Equal(t, Stats{Completed: 1, Failed: 0}, c.Stats())
}

func TestCloseIsIdempotentAndStopsWork(t *testing.T) {
	f := newFakeProvider()
	c := newTestCoordinator(t, testConfig(), f)

	c.Close()
	c.Close()

	fullText, s := ownSentence("closed-1", "Typed after the session ended.")
	assert.Equal(t, guard.RejectedPreFilter, c.Enqueue(fullText, s, false))
	assert.Empty(t, c.Suggestions())
}
