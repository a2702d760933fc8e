// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/affectme/auth"
	"github.com/danielhkuo/affectme/cliparse"
	"github.com/danielhkuo/affectme/db"
	"github.com/danielhkuo/affectme/handlers"
	"github.com/danielhkuo/affectme/impact"
	"github.com/danielhkuo/affectme/llm"
	"github.com/danielhkuo/affectme/memory"
	"github.com/danielhkuo/affectme/metrics"
	"github.com/danielhkuo/affectme/middleware"
	"github.com/danielhkuo/affectme/profile"
)

// reportConcurrency bounds concurrent measure calculations per report
const reportConcurrency = 4

// Deps are the collaborators the router wires into handlers. LLM may be
// nil; Memory defaults to memory.Disabled.
type Deps struct {
	DB       *sql.DB
	Config   cliparse.Config
	Sessions auth.SessionProvider
	LLM      llm.Provider
	Memory   memory.Provider
	Metrics  *metrics.Collector
}

// Router is the API mux plus the handlers that run background work
type Router struct {
	*http.ServeMux
	chat *handlers.ChatHandler
}

func NewRouter(deps Deps) *Router {
	mux := http.NewServeMux()
	cfg := deps.Config

	memories := deps.Memory
	if memories == nil {
		memories = memory.Disabled{}
	}

	// Initialize handlers
	store := db.NewStore(deps.DB)
	reporter := impact.NewReporter(store, deps.Metrics, reportConcurrency)
	ballotHandler := handlers.NewBallotHandler(store)
	impactHandler := handlers.NewImpactHandler(store, reporter)
	profileHandler := handlers.NewProfileHandler(profile.NewService(store, memories, cfg.ProviderTimeout), memories)
	chatHandler := handlers.NewChatHandler(store, deps.LLM, memories, deps.Metrics, cfg)

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(middleware.WithMetrics(deps.Metrics, pattern, h)))
	}
	session := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireSession(deps.Sessions, h)
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	// Ballots and measures (public)
	handle("GET /ballots", ballotHandler.GetBallot)
	handle("GET /ballots/{id}/measures", ballotHandler.ListMeasures)
	handle("GET /measures/{id}", ballotHandler.GetMeasure)

	// Impact calculation (public)
	handle("POST /calculate-impact", impactHandler.CalculateImpact)
	handle("POST /impacts", impactHandler.ImpactReport)

	// Profile and memory (session)
	handle("POST /memory/profile", session(profileHandler.SaveProfile))
	handle("GET /memory/profile", session(profileHandler.GetProfile))
	handle("GET /memory/debug", session(profileHandler.MemoryDebug))

	// Chat (session, rate limited per client)
	chat := session(chatHandler.Chat)
	if cfg.ChatRateLimit > 0 {
		chat = middleware.NewRateLimiter(cfg.ChatRateLimit, 0, cfg.TrustProxy).Limit(chat)
	}
	handle("POST /chat", chat)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("affectme API v1"))
	})

	return &Router{ServeMux: mux, chat: chatHandler}
}

// Wait blocks until background work started by requests has finished
func (r *Router) Wait() {
	r.chat.Wait()
}
