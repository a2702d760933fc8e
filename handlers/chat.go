// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/affectme/cliparse"
	"github.com/danielhkuo/affectme/db"
	"github.com/danielhkuo/affectme/llm"
	"github.com/danielhkuo/affectme/memory"
	"github.com/danielhkuo/affectme/metrics"
	"github.com/danielhkuo/affectme/middleware"
	"github.com/danielhkuo/affectme/models"
	"github.com/danielhkuo/affectme/profile"
)

type ChatHandler struct {
	store      *db.Store
	provider   llm.Provider
	memories   memory.Provider
	summarizer *memory.Summarizer
	metrics    *metrics.Collector
	cfg        cliparse.Config

	// background tracks post-response memory work
	background sync.WaitGroup
	now        func() time.Time
}

// NewChatHandler creates the chat handler. A nil provider disables chat.
func NewChatHandler(store *db.Store, provider llm.Provider, memories memory.Provider, m *metrics.Collector, cfg cliparse.Config) *ChatHandler {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 30 * time.Second
	}
	h := &ChatHandler{
		store:    store,
		provider: provider,
		memories: memories,
		metrics:  m,
		cfg:      cfg,
		now:      time.Now,
	}
	if provider != nil {
		h.summarizer = memory.NewSummarizer(provider, memories, m, cfg.ProviderTimeout)
	}
	return h
}

// Chat handles POST /chat and streams the reply as plain text
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if h.provider == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Chat is not configured")
		return
	}

	var req models.ChatRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := middleware.ValidateStruct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	history := chatHistory(req.Messages)
	if len(history) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "messages must contain text")
		return
	}
	question := lastUserText(req.Messages)

	cc := h.gatherContext(r.Context(), userID, question, req)
	system := buildSystemPrompt(cc)

	stream, err := h.provider.Stream(r.Context(), system, history)
	if err != nil {
		slog.Error("chat stream failed to start", "user_id", userID, "error", err)
		h.metrics.ProviderFailure("llm", "stream")
		middleware.ErrorResponse(w, http.StatusBadGateway, "Chat provider unavailable")
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	var answer strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn("chat stream interrupted", "user_id", userID, "error", err)
			h.metrics.ProviderFailure("llm", "stream")
			break
		}
		answer.WriteString(chunk)
		if _, err := io.WriteString(w, chunk); err != nil {
			slog.Debug("chat client went away", "user_id", userID, "error", err)
			break
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	if answer.Len() == 0 {
		return
	}

	// memory work must not hold up or alter the response
	ctx := context.WithoutCancel(r.Context())
	h.background.Add(1)
	go func() {
		defer h.background.Done()
		h.remember(ctx, userID, question, answer.String(), req.MeasureID, cc.Memory)
	}()
}

// Wait blocks until background memory work has finished
func (h *ChatHandler) Wait() {
	h.background.Wait()
}

// gatherContext collects prompt sections. Every failure here is absorbed.
func (h *ChatHandler) gatherContext(ctx context.Context, userID, question string, req models.ChatRequest) chatContext {
	cc := chatContext{MeasureID: req.MeasureID}

	if req.Profile != nil {
		cc.Profile = profile.PromptContext(profile.Normalize(*req.Profile))
	}

	ballot, err := h.store.GetBallot(ctx, h.cfg.DefaultState, h.cfg.DefaultCounty)
	if err == nil {
		measures, err := h.store.ListMeasures(ctx, ballot.ID)
		if err == nil {
			cc.Ballot = &ballot
			cc.Measures = measures
		} else {
			slog.Warn("chat measures context unavailable", "ballot_id", ballot.ID, "error", err)
		}
	} else if !errors.Is(err, db.ErrNotFound) {
		slog.Warn("chat ballot context unavailable", "error", err)
	}

	mctx, cancel := context.WithTimeout(ctx, h.cfg.ProviderTimeout)
	defer cancel()

	if rec, err := h.memories.Get(mctx, userID); err == nil && rec != nil {
		cc.Memory = strings.TrimSpace(rec.Text)
	} else if err != nil && !errors.Is(err, memory.ErrNotFound) {
		slog.Debug("chat memory unavailable", "user_id", userID, "error", err)
	}

	if question != "" {
		related, err := h.memories.Query(mctx, userID, memory.Query{
			Text:       question,
			Sources:    []string{memory.CollectionProfiles, memory.CollectionQA},
			MaxResults: memory.DefaultMaxResults,
		})
		if err != nil {
			slog.Debug("chat related memories unavailable", "user_id", userID, "error", err)
		}
		cc.Related = related
	}

	return cc
}

// remember stores the exchange and lets the summarizer fold it into memory
func (h *ChatHandler) remember(ctx context.Context, userID, question, answer, measureID, current string) {
	ctx, cancel := context.WithTimeout(ctx, 2*h.cfg.ProviderTimeout)
	defer cancel()

	doc := memory.QADocument(userID, question, answer, measureID, h.now())
	if err := h.memories.Add(ctx, doc); err != nil {
		slog.Warn("failed to store chat exchange", "user_id", userID, "error", err)
	}

	if h.summarizer != nil && question != "" {
		h.summarizer.Apply(ctx, userID, current, question, answer)
	}
}

// chatHistory keeps user and assistant turns that carry text
func chatHistory(messages []models.ChatMessage) []llm.Message {
	history := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			continue
		}
		text := m.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		history = append(history, llm.Message{Role: m.Role, Content: text})
	}
	return history
}

func lastUserText(messages []models.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return messages[i].Text()
		}
	}
	return ""
}
