package topic

import (
	"context"
	"sync"

	"ai-writing-be/pkg/embedding"
)

// Detector watches the semantic drift of a writing session. Each observed
// sentence is embedded and compared against a rolling centroid of the current
// topic; a similarity below the threshold signals a topic shift and restarts
// the centroid from the new sentence.
//
// Safe for concurrent use. Embedding failures are reported but never fatal:
// the caller treats an errored observation as "no shift".
type Detector struct {
	mu        sync.Mutex
	provider  embedding.Provider
	threshold float64
	centroid  []float32
	observed  int
}

func NewDetector(provider embedding.Provider, threshold float64) *Detector {
	return &Detector{
		provider:  provider,
		threshold: threshold,
	}
}

// Observe embeds one sentence and reports whether it drifted away from the
// running topic. The first observation only seeds the centroid.
func (d *Detector) Observe(ctx context.Context, text string) (bool, error) {
	vec, err := d.provider.Embed(ctx, text)
	if err != nil {
		return false, err
	}
	if len(vec) == 0 {
		return false, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.centroid == nil {
		d.centroid = vec
		d.observed = 1
		return false, nil
	}

	if embedding.Cosine(d.centroid, vec) < d.threshold {
		d.centroid = vec
		d.observed = 1
		return true, nil
	}

	// Fold the sentence into the running mean, weighted by how much of the
	// topic we have already seen, then re-normalize back to unit length.
	merged := make([]float32, len(d.centroid))
	n := float32(d.observed)
	for i := range merged {
		merged[i] = (d.centroid[i]*n + vec[i]) / (n + 1)
	}
	d.centroid = embedding.Normalize(merged)
	d.observed++
	return false, nil
}

// Reset forgets the current topic; the next observation seeds a fresh one.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.centroid = nil
	d.observed = 0
}
