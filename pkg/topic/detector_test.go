package topic

import (
	"context"
	"testing"

	"ai-writing-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return embedding.Normalize(f.vectors[text]), nil
}

func TestFirstObservationSeedsWithoutShift(t *testing.T) {
	f := &fakeEmbedder{vectors: map[string][]float32{
		"money worries": {1, 0, 0},
	}}
	d := NewDetector(f, 0.5)

	shifted, err := d.Observe(context.Background(), "money worries")
	require.NoError(t, err)
	assert.False(t, shifted)
}

func TestDriftBelowThresholdSignalsShift(t *testing.T) {
	f := &fakeEmbedder{vectors: map[string][]float32{
		"rent is due soon":        {1, 0, 0},
		"the budget looks tight":  {0.95, 0.3, 0},
		"my cat sleeps all day":   {0, 0, 1},
		"the vet visit went well": {0.1, 0, 0.9},
	}}
	d := NewDetector(f, 0.5)
	ctx := context.Background()

	shifted, err := d.Observe(ctx, "rent is due soon")
	require.NoError(t, err)
	assert.False(t, shifted)

	shifted, err = d.Observe(ctx, "the budget looks tight")
	require.NoError(t, err)
	assert.False(t, shifted)

	// Orthogonal to the money topic: a shift, and the new topic seeds.
	shifted, err = d.Observe(ctx, "my cat sleeps all day")
	require.NoError(t, err)
	assert.True(t, shifted)

	// Close to the cat topic: no second shift.
	shifted, err = d.Observe(ctx, "the vet visit went well")
	require.NoError(t, err)
	assert.False(t, shifted)
}

func TestResetForgetsTopic(t *testing.T) {
	f := &fakeEmbedder{vectors: map[string][]float32{
		"one topic":     {1, 0, 0},
		"another topic": {0, 1, 0},
	}}
	d := NewDetector(f, 0.5)
	ctx := context.Background()

	_, err := d.Observe(ctx, "one topic")
	require.NoError(t, err)
	d.Reset()

	// After reset the orthogonal sentence seeds instead of shifting.
	shifted, err := d.Observe(ctx, "another topic")
	require.NoError(t, err)
	assert.False(t, shifted)
}

func TestEmbeddingErrorIsNotAShift(t *testing.T) {
	f := &fakeEmbedder{err: assert.AnError}
	d := NewDetector(f, 0.5)

	shifted, err := d.Observe(context.Background(), "anything at all")
	assert.Error(t, err)
	assert.False(t, shifted)
}
