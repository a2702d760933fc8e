// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielhkuo/affectme/metrics"
	"github.com/sony/gobreaker"
)

// DefaultBaseURL is the hosted memory API
const DefaultBaseURL = "https://api.hyperspell.com"

// storage source for get and update paths
const vaultSource = "vault"

// ClientConfig configures the memory REST client
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens the breaker
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again
	OpenTimeout time.Duration
}

// Client talks to the memory provider over its REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	metrics    *metrics.Collector
}

// NewClient creates a memory client. m may be nil.
func NewClient(cfg ClientConfig, m *metrics.Collector) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("memory API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout == 0 {
		openTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "memory",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// a missing record is an answer, not an outage
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		metrics:    m,
	}, nil
}

type addRequest struct {
	Text       string         `json:"text"`
	ResourceID string         `json:"resource_id"`
	Collection string         `json:"collection"`
	Title      string         `json:"title,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type updateRequest struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type queryRequest struct {
	Query      string   `json:"query"`
	Sources    []string `json:"sources"`
	MaxResults int      `json:"max_results"`
	Answer     bool     `json:"answer"`
}

type wireDocument struct {
	ID         any            `json:"id"`
	ResourceID string         `json:"resource_id"`
	Text       string         `json:"text"`
	Title      string         `json:"title"`
	Score      float64        `json:"score"`
	Metadata   map[string]any `json:"metadata"`
}

type queryResponse struct {
	Documents []wireDocument `json:"documents"`
	Errors    []string       `json:"errors"`
}

// Add stores a new memory document
func (c *Client) Add(ctx context.Context, doc Document) error {
	_, err := c.do(ctx, "add", http.MethodPost, "/memories/add", doc.UserID, addRequest{
		Text:       doc.Text,
		ResourceID: doc.ResourceID,
		Collection: doc.Collection,
		Title:      doc.Title,
		Metadata:   doc.Metadata,
	})
	return err
}

// Get fetches the user's consolidated memory
func (c *Client) Get(ctx context.Context, userID string) (*Record, error) {
	path := fmt.Sprintf("/memories/get/%s/%s", vaultSource, url.PathEscape(ResourceID(userID)))
	body, err := c.do(ctx, "get", http.MethodGet, path, userID, nil)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrNotFound
	}

	var doc wireDocument
	if err := decodeNumbers(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode record: %w", ErrUnavailable, err)
	}

	return &Record{
		ID:       documentID(doc),
		Text:     doc.Text,
		Title:    doc.Title,
		Metadata: doc.Metadata,
		Raw:      json.RawMessage(trimmed),
	}, nil
}

// Update replaces the text of the user's consolidated memory
func (c *Client) Update(ctx context.Context, userID, text string, metadata map[string]any) error {
	path := fmt.Sprintf("/memories/update/%s/%s", vaultSource, url.PathEscape(ResourceID(userID)))
	_, err := c.do(ctx, "update", http.MethodPost, path, userID, updateRequest{Text: text, Metadata: metadata})
	return err
}

// Query runs a similarity search over the given collections
func (c *Client) Query(ctx context.Context, userID string, q Query) ([]Match, error) {
	limit := q.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	sources := q.Sources
	if len(sources) == 0 {
		sources = []string{CollectionProfiles, CollectionQA}
	}

	body, err := c.do(ctx, "query", http.MethodPost, "/memories/query", userID, queryRequest{
		Query:      q.Text,
		Sources:    sources,
		MaxResults: limit,
	})
	if err != nil {
		return nil, err
	}

	var resp queryResponse
	if err := decodeNumbers(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode query response: %w", ErrUnavailable, err)
	}
	if len(resp.Errors) > 0 {
		slog.Warn("memory query reported errors", "errors", resp.Errors)
	}

	matches := make([]Match, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		matches = append(matches, Match{
			ID:       documentID(d),
			Text:     d.Text,
			Title:    d.Title,
			Score:    d.Score,
			Metadata: d.Metadata,
		})
	}
	return matches, nil
}

// do runs one request through the circuit breaker and returns the response body
func (c *Client) do(ctx context.Context, op, method, path, userID string, payload any) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.roundTrip(ctx, method, path, userID, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		if !errors.Is(err, ErrNotFound) {
			c.metrics.ProviderFailure("memory", op)
		}
		return nil, err
	}

	body, _ := result.([]byte)
	return body, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path, userID string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-As-User", userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// decodeNumbers keeps numeric metadata exact as json.Number
func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func documentID(d wireDocument) string {
	switch id := d.ID.(type) {
	case string:
		if id != "" {
			return id
		}
	case json.Number:
		return id.String()
	}
	return d.ResourceID
}
