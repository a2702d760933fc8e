// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/danielhkuo/affectme/llm"
	"github.com/danielhkuo/affectme/memory"
)

// MemoryUpdate is one recorded FakeMemory.Update call
type MemoryUpdate struct {
	UserID   string
	Text     string
	Metadata map[string]any
}

// FakeMemory is an in-process memory.Provider. Set Err to make every call fail.
type FakeMemory struct {
	mu      sync.Mutex
	Err     error
	records map[string]*memory.Record
	adds    []memory.Document
	updates []MemoryUpdate
	Matches []memory.Match
}

func NewFakeMemory() *FakeMemory {
	return &FakeMemory{records: make(map[string]*memory.Record)}
}

func (f *FakeMemory) Add(ctx context.Context, doc memory.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.adds = append(f.adds, doc)
	if doc.ResourceID == memory.ResourceID(doc.UserID) {
		f.records[doc.UserID] = record(doc.ResourceID, doc.Text, doc.Metadata)
	}
	return nil
}

func (f *FakeMemory) Get(ctx context.Context, userID string) (*memory.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	rec, ok := f.records[userID]
	if !ok {
		return nil, memory.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (f *FakeMemory) Update(ctx context.Context, userID, text string, metadata map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.updates = append(f.updates, MemoryUpdate{UserID: userID, Text: text, Metadata: metadata})
	f.records[userID] = record(memory.ResourceID(userID), text, metadata)
	return nil
}

func (f *FakeMemory) Query(ctx context.Context, userID string, q memory.Query) ([]memory.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Matches, nil
}

// SetRecord stores rec as the user's consolidated memory
func (f *FakeMemory) SetRecord(userID string, rec memory.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[userID] = &rec
}

// Adds returns every document added so far
func (f *FakeMemory) Adds() []memory.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]memory.Document(nil), f.adds...)
}

// Updates returns every Update call so far
func (f *FakeMemory) Updates() []MemoryUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]MemoryUpdate(nil), f.updates...)
}

func record(id, text string, metadata map[string]any) *memory.Record {
	raw, _ := json.Marshal(map[string]any{"id": id, "text": text, "metadata": metadata})
	return &memory.Record{ID: id, Text: text, Metadata: metadata, Raw: raw}
}

// FakeLLM is an llm.Provider that streams Chunks and completes with Completion.
type FakeLLM struct {
	mu          sync.Mutex
	Chunks      []string
	Completion  string
	StreamErr   error
	CompleteErr error

	systems []string
	prompts []string
	history [][]llm.Message
}

func (f *FakeLLM) Stream(ctx context.Context, system string, history []llm.Message) (llm.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.systems = append(f.systems, system)
	f.history = append(f.history, history)
	if f.StreamErr != nil {
		return nil, f.StreamErr
	}
	return &fakeStream{chunks: append([]string(nil), f.Chunks...)}, nil
}

func (f *FakeLLM) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.Completion, f.CompleteErr
}

// SystemPrompts returns the system prompt of every Stream call
func (f *FakeLLM) SystemPrompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.systems...)
}

// Histories returns the message history of every Stream call
func (f *FakeLLM) Histories() [][]llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]llm.Message(nil), f.history...)
}

// CompletePrompts returns the user prompt of every Complete call
func (f *FakeLLM) CompletePrompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

type fakeStream struct {
	chunks []string
}

func (s *fakeStream) Recv() (string, error) {
	if len(s.chunks) == 0 {
		return "", io.EOF
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	return chunk, nil
}

func (s *fakeStream) Close() error { return nil }
