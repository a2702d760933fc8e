// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the affectme API.

# Route Registration

NewRouter wires handlers from their dependencies and returns a Router,
which embeds the http.ServeMux:

	mux := router.NewRouter(router.Deps{DB: conn, Config: cfg, Sessions: sessions})

LLM and Memory are optional. Every route is wrapped with request logging and,
when a collector is set, request metrics.

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Ballots (public):

	GET /ballots?state=&county= - Ballot lookup
	GET /ballots/{id}/measures  - Measures in ballot order
	GET /measures/{id}          - Measure with impact formulas

Impacts (public):

	POST /calculate-impact - Impact of one measure
	POST /impacts          - Impact report for a ballot

Profile and memory (session):

	POST /memory/profile - Save profile
	GET  /memory/profile - Load profile
	GET  /memory/debug   - Raw memory record

Chat (session, rate limited per client IP):

	POST /chat

# Shutdown

Chat leaves memory writes running after the response. Call Wait after the
server has shut down and before closing the database.
*/
package router
