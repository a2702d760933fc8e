// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package llm wraps the language model used for chat and memory summarization.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDisabled is returned by NewProvider when no provider is configured.
var ErrDisabled = errors.New("language model provider not configured")

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the conversation history
type Message struct {
	Role    string
	Content string
}

// Stream yields text chunks until Recv returns io.EOF.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Provider is the language model behind chat and memory summarization.
type Provider interface {
	// Stream starts a streamed chat completion
	Stream(ctx context.Context, system string, history []Message) (Stream, error)

	// Complete runs a one-shot completion and returns the full text
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Config holds language model configuration
type Config struct {
	// Provider name: "openai" or "" (disabled)
	Provider string

	APIKey  string
	BaseURL string
	Model   string

	// Timeout bounds one-shot completions
	Timeout time.Duration

	MaxTokens int
}

// NewProvider creates the configured provider
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "":
		return nil, ErrDisabled
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", cfg.Provider)
	}
}
