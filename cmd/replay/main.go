package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"ai-writing-be/internal/config"
	"ai-writing-be/pkg/llm/factory"
	"ai-writing-be/pkg/segment"
	"ai-writing-be/pkg/suggest"
)

// Replays a document through the coordinator in demo mode, sentence by
// sentence, printing whatever the provider comes back with. Useful for
// exercising a local model without the full server.
func main() {
	file := flag.String("file", "", "text file to replay")
	pause := flag.Duration("pause", 2*time.Second, "pause between sentences")
	flag.Parse()

	if *file == "" {
		log.Fatal("usage: replay -file <document.txt>")
	}
	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}

	cfg := config.Load()
	provider, err := factory.NewSuggestionProvider(cfg.Ai.Provider, cfg.Ai.Model, cfg.Ai.OllamaBaseURL, cfg.Ai.GeminiApiKey)
	if err != nil {
		log.Fatalf("provider: %v", err)
	}

	t := cfg.Tuning.Demo
	coord := suggest.NewCoordinator(suggest.Config{
		RateLimitSpacing:    t.RateLimitSpacing,
		RequestTimeout:      t.RequestTimeout,
		MaxQueueSize:        t.MaxQueueSize,
		MaxConcurrent:       t.MaxConcurrent,
		EnqueueGuardTTL:     t.EnqueueGuardTTL,
		DisplayGuardTTL:     t.DisplayGuardTTL,
		ConfidenceThreshold: t.ConfidenceThreshold,
	}, provider, nil, nil)
	defer coord.Close()

	fmt.Println("=== Suggestion Replay ===")

	text := string(raw)
	sentences := segment.Split(text)
	seen := 0
	for i, s := range sentences {
		// Grow the document one sentence at a time, like live typing.
		grown := string([]rune(text)[:s.EndIndex])
		verdict := coord.Enqueue(grown, s, false)
		fmt.Printf("\n[%d/%d] %q -> %s\n", i+1, len(sentences), s.Text, verdict)

		time.Sleep(*pause)

		for _, sg := range coord.Suggestions() {
			if seen == 0 || sg.CreatedAt.After(time.Now().Add(-*pause)) {
				fmt.Printf("  💡 %s\n", sg.Text)
			}
		}
		seen = coord.Stats().Completed
	}

	stats := coord.Stats()
	fmt.Printf("\nDone. completed=%d failed=%d\n", stats.Completed, stats.Failed)
}
