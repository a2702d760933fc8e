// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/affectme/metrics"
)

// NoUpdateSentinel is the exact completion text meaning "keep memory as is"
const NoUpdateSentinel = "NO_UPDATE"

const summarizerSystemPrompt = `You manage a user's memory for a ballot impact app. You receive the current memory and a new Q&A exchange. Decide if the memory should be updated with new info (preferences, concerns, clarifications, inferred facts about the user). If yes, output the full updated memory. If no new info worth saving, output exactly "NO_UPDATE". Keep the memory concise: bullet points, max 15 lines. Never remove existing useful info, only add or refine.`

// Completer runs a one-shot completion. llm.Provider satisfies it.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Decision is the outcome of a summarization: keep memory or replace it.
// The zero value keeps memory.
type Decision struct {
	replace bool
	text    string
}

// NoUpdate keeps the stored memory unchanged
func NoUpdate() Decision { return Decision{} }

// Replace swaps the stored memory for text
func Replace(text string) Decision { return Decision{replace: true, text: text} }

// Replacement returns the new memory text and whether a write is due
func (d Decision) Replacement() (string, bool) { return d.text, d.replace }

func (d Decision) String() string {
	if d.replace {
		return "replace"
	}
	return "no_update"
}

// ParseDecision maps raw completion output to a Decision. The sentinel and
// blank output keep memory; anything else is the full replacement text.
func ParseDecision(raw string) Decision {
	text := strings.TrimSpace(raw)
	if text == "" || text == NoUpdateSentinel {
		return NoUpdate()
	}
	return Replace(text)
}

// UpdatePrompt renders the user prompt for a summarization call
func UpdatePrompt(current, question, answer string) string {
	if current == "" {
		current = "(empty)"
	}
	return fmt.Sprintf("CURRENT MEMORY:\n%s\n\nNEW Q&A:\nQ: %s\nA: %s", current, question, answer)
}

// DecideUpdate asks the completer whether the exchange adds durable
// information about the user.
func DecideUpdate(ctx context.Context, c Completer, current, question, answer string) (Decision, error) {
	out, err := c.Complete(ctx, summarizerSystemPrompt, UpdatePrompt(current, question, answer))
	if err != nil {
		return NoUpdate(), fmt.Errorf("summarize memory: %w", err)
	}
	return ParseDecision(out), nil
}

// Summarizer applies the update policy after each chat exchange.
type Summarizer struct {
	completer Completer
	memories  Provider
	metrics   *metrics.Collector
	timeout   time.Duration
	now       func() time.Time
}

// NewSummarizer creates a Summarizer. m may be nil.
func NewSummarizer(c Completer, memories Provider, m *metrics.Collector, timeout time.Duration) *Summarizer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Summarizer{
		completer: c,
		memories:  memories,
		metrics:   m,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Apply decides and, on Replace, writes the new memory text. Failures are
// logged and never returned; the returned Decision is what was decided.
func (s *Summarizer) Apply(ctx context.Context, userID, current, question, answer string) Decision {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	decision, err := DecideUpdate(ctx, s.completer, current, question, answer)
	if err != nil {
		slog.Warn("memory summarization failed", "user_id", userID, "error", err)
		s.metrics.ProviderFailure("llm", "complete")
		s.metrics.MemoryDecision("error")
		return NoUpdate()
	}
	s.metrics.MemoryDecision(decision.String())

	text, ok := decision.Replacement()
	if !ok {
		return decision
	}

	meta := map[string]any{"lastUpdated": s.now().UTC().Format(time.RFC3339)}
	if err := s.memories.Update(ctx, userID, text, meta); err != nil {
		slog.Warn("memory update failed", "user_id", userID, "error", err)
		return decision
	}

	slog.Info("memory updated", "user_id", userID, "lines", strings.Count(text, "\n")+1)
	return decision
}
