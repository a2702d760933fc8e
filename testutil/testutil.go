// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/affectme/auth"
	"github.com/danielhkuo/affectme/cliparse"
	"github.com/danielhkuo/affectme/db"
)

// TestSessionSecret signs session tokens in tests
const TestSessionSecret = "test-session-secret"

// SetupTestDB creates a fresh SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), "affectme.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// SetupSeededStore returns a store over a fresh database holding the default ballot
func SetupSeededStore(t *testing.T) *db.Store {
	t.Helper()

	store := db.NewStore(SetupTestDB(t))
	if err := db.Seed(context.Background(), store); err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}
	return store
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     "file::memory:",
		DatabaseType:    db.TypeSQLite,
		SessionSecret:   TestSessionSecret,
		ProviderTimeout: time.Second,
		DefaultState:    "CA",
		DefaultCounty:   "Los Angeles",
		Features:        cliparse.Features{SeedData: true},
	}
}

// TestSessions returns the session provider matching GetTestConfig
func TestSessions(t *testing.T) *auth.JWTSessions {
	t.Helper()

	sessions, err := auth.NewJWTSessions(TestSessionSecret, "")
	if err != nil {
		t.Fatalf("Failed to create sessions: %v", err)
	}
	return sessions
}

// AuthHeader returns an Authorization header for a session of userID
func AuthHeader(t *testing.T, userID string) map[string]string {
	t.Helper()

	token, err := TestSessions(t).Issue(userID, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue session token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
