package llm

import (
	"context"
)

// SuggestionRequest carries everything the external service needs to produce
// one writing suggestion for one sentence.
type SuggestionRequest struct {
	SentenceText      string
	DocumentContext   string
	RecentSuggestions []string
	TopicKeywords     []string
}

// SuggestionResult is the provider's answer. An empty SuggestionText with a
// nil error means the model declined to suggest; Confidence is the model's
// own estimate of relevance in [0,1].
type SuggestionResult struct {
	SuggestionText string  `json:"suggestion_text"`
	Confidence     float64 `json:"confidence"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// SuggestionProvider defines the contract for any suggestion backend.
// Implementations must honor ctx cancellation and deadlines: an aborted call
// returns (nil, ctx.Err()), which callers treat as a benign no-result rather
// than a transport failure.
type SuggestionProvider interface {
	Suggest(ctx context.Context, req *SuggestionRequest, options ...Option) (*SuggestionResult, error)
}
