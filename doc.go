// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the affectme API server.

"How Does This Affect Me?" tells a voter what each measure on their ballot
would cost or save them in dollars per year, and answers questions about the
ballot through a chat advisor that remembers past conversations.

# Starting the Server

The server reads CLI flags, environment variables and an optional .env file:

	DATABASE_URL=affectme.db SESSION_SECRET=... go run .

Or against PostgreSQL with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - SESSION_SECRET (-session-secret): HMAC secret for session tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - OPENAI_API_KEY (-openai-key): enables chat and memory summarization
  - HYPERSPELL_API_KEY (-memory-key): enables the memory provider

Without provider keys the server still serves ballots, impacts and profiles;
chat answers 503 and profiles live in the database only.

# Architecture

  - formula: arithmetic formula evaluation with named bindings
  - impact: per-measure impact calculation and the ballot report
  - profile: civic profile projection and dual-write persistence
  - memory: memory provider client, cache and summarization policy
  - llm: language model provider (OpenAI)
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: sessions, rate limiting, validation, logging, JSON helpers
  - metrics: Prometheus collectors
  - models: Request/response and domain types
  - auth: Session tokens
  - db: Schema, record store and seed data
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
