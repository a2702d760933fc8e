// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Errors
var (
	ErrNotFound    = errors.New("memory not found")
	ErrUnavailable = errors.New("memory provider unavailable")
)

// Collections used by the app
const (
	CollectionProfiles = "civic-profiles"
	CollectionQA       = "ballot-qa"
)

// DefaultMaxResults caps related-memory queries
const DefaultMaxResults = 5

// Record is a stored memory as returned by the provider.
type Record struct {
	ID       string
	Text     string
	Title    string
	Metadata map[string]any

	// Raw is the provider response body, untouched
	Raw json.RawMessage
}

// Document is a memory to add.
type Document struct {
	UserID     string
	ResourceID string
	Collection string
	Title      string
	Text       string
	Metadata   map[string]any
}

// Query is a similarity search over a user's memories.
type Query struct {
	Text       string
	Sources    []string
	MaxResults int
}

// Match is one query hit.
type Match struct {
	ID       string
	Text     string
	Title    string
	Score    float64
	Metadata map[string]any
}

// Provider is the external semantic-memory service.
//
// Get and Update address the user's consolidated memory, which shares its
// resource id with the civic profile document.
type Provider interface {
	Add(ctx context.Context, doc Document) error
	Get(ctx context.Context, userID string) (*Record, error)
	Update(ctx context.Context, userID, text string, metadata map[string]any) error
	Query(ctx context.Context, userID string, q Query) ([]Match, error)
}

// ResourceID is the provider key of a user's consolidated memory
func ResourceID(userID string) string {
	return "civic-profile-" + userID
}

// ProfileDocument wraps a projected civic profile for the profiles collection
func ProfileDocument(userID, text string, metadata map[string]any) Document {
	return Document{
		UserID:     userID,
		ResourceID: ResourceID(userID),
		Collection: CollectionProfiles,
		Title:      "Civic Profile",
		Text:       text,
		Metadata:   metadata,
	}
}

// QADocument records one chat exchange in the Q&A collection
func QADocument(userID, question, answer, measureID string, now time.Time) Document {
	title := "Ballot Q&A"
	meta := map[string]any{
		"type":      "qa",
		"timestamp": now.UTC().Format(time.RFC3339),
	}
	if measureID != "" {
		title = fmt.Sprintf("Q&A about %s", measureID)
		meta["measureId"] = measureID
	}

	return Document{
		UserID:     userID,
		ResourceID: "qa-" + uuid.NewString(),
		Collection: CollectionQA,
		Title:      title,
		Text:       fmt.Sprintf("Q: %s\nA: %s", question, answer),
		Metadata:   meta,
	}
}

// Disabled is used when no memory provider is configured. Every call
// reports ErrUnavailable so callers take their fallback path.
type Disabled struct{}

func (Disabled) Add(context.Context, Document) error { return ErrUnavailable }

func (Disabled) Get(context.Context, string) (*Record, error) { return nil, ErrUnavailable }

func (Disabled) Update(context.Context, string, string, map[string]any) error {
	return ErrUnavailable
}

func (Disabled) Query(context.Context, string, Query) ([]Match, error) {
	return nil, ErrUnavailable
}
