package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/affectme/auth"
	"github.com/danielhkuo/affectme/cliparse"
	"github.com/danielhkuo/affectme/db"
	"github.com/danielhkuo/affectme/llm"
	"github.com/danielhkuo/affectme/memory"
	"github.com/danielhkuo/affectme/metrics"
	"github.com/danielhkuo/affectme/middleware"
	"github.com/danielhkuo/affectme/router"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	if cfg.Features.SeedData {
		if err := db.Seed(context.Background(), db.NewStore(dbConn)); err != nil {
			slog.Error("seeding failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Seed data loaded")
	}

	sessions, err := auth.NewJWTSessions(cfg.SessionSecret, cfg.SessionIssuer)
	if err != nil {
		slog.Error("session setup failed", "error", err)
		os.Exit(1)
	}

	collector := metrics.NewCollector("affectme")

	// Language model, optional
	var provider llm.Provider
	if cfg.OpenAIKey != "" {
		provider, err = llm.NewProvider(llm.Config{
			Provider: "openai",
			APIKey:   cfg.OpenAIKey,
			BaseURL:  cfg.OpenAIBaseURL,
			Model:    cfg.OpenAIModel,
			Timeout:  cfg.ProviderTimeout,
		})
		if err != nil {
			slog.Error("language model setup failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Language model ready", "model", cfg.OpenAIModel)
	} else {
		slog.Warn("OPENAI_API_KEY not set, chat disabled")
	}

	// Memory provider, optional
	var memories memory.Provider = memory.Disabled{}
	if cfg.MemoryAPIKey != "" {
		client, err := memory.NewClient(memory.ClientConfig{
			APIKey:  cfg.MemoryAPIKey,
			BaseURL: cfg.MemoryBaseURL,
			Timeout: cfg.ProviderTimeout,
		}, collector)
		if err != nil {
			slog.Error("memory provider setup failed", "error", err)
			os.Exit(1)
		}
		memories = client
		if cfg.Features.MemoryCache {
			memories = memory.NewCachedProvider(client, time.Minute)
		}
		slog.Info("Memory provider ready", "cache", cfg.Features.MemoryCache)
	} else {
		slog.Warn("HYPERSPELL_API_KEY not set, profiles use the database only")
	}

	// Create router
	mux := router.NewRouter(router.Deps{
		DB:       dbConn,
		Config:   cfg,
		Sessions: sessions,
		LLM:      provider,
		Memory:   memories,
		Metrics:  collector,
	})

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		// Wait for Ctrl-C signal
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Warn("shutdown incomplete", "error", err)
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
		return
	}
	slog.Info("Server closed", "error", err)

	// let in-flight memory writes finish before the database closes
	<-stopped
	mux.Wait()
}
