package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Features are startup switches injected into the server
type Features struct {
	// SeedData loads the embedded default ballot at startup
	SeedData bool
	// MemoryCache caches memory provider reads in process
	MemoryCache bool
}

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	SessionSecret string
	SessionIssuer string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	MemoryAPIKey  string
	MemoryBaseURL string

	// ProviderTimeout bounds every memory and language model call
	ProviderTimeout time.Duration

	// Ballot used for chat measure context
	DefaultState  string
	DefaultCounty string

	// ChatRateLimit is chat requests per minute per client IP; 0 disables it
	ChatRateLimit float64

	// TrustProxy keys rate limits on X-Forwarded-For instead of the peer
	// address. Only safe behind a proxy that overwrites the header.
	TrustProxy bool

	Features Features
}

// ParseFlags reads flags, falling back to env variables and defaults
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var noSeed, memoryCache bool

	fs := flag.NewFlagSet("affectme", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (prefer env)")
	fs.StringVar(&cfg.OpenAIKey, "openai-key", "", "OpenAI API key (prefer env)")
	fs.StringVar(&cfg.MemoryAPIKey, "memory-key", "", "Memory provider API key (prefer env)")

	fs.StringVar(&cfg.OpenAIModel, "model", "", "Chat model name")
	fs.DurationVar(&cfg.ProviderTimeout, "provider-timeout", 0, "Timeout for memory and language model calls")
	fs.Float64Var(&cfg.ChatRateLimit, "chat-rate", -1, "Chat requests per minute per client (0 disables)")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", false, "Trust X-Forwarded-For for client IPs")
	fs.BoolVar(&noSeed, "no-seed", false, "Skip loading the default ballot")
	fs.BoolVar(&memoryCache, "memory-cache", false, "Cache memory provider reads")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envOr("DATABASE_TYPE", "sqlite")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q (sqlite or postgres)", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}
	cfg.SessionIssuer = os.Getenv("SESSION_ISSUER")

	// Providers are optional; without keys the server degrades
	if cfg.OpenAIKey == "" {
		cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = envOr("OPENAI_MODEL", "gpt-4o-mini")
	}
	cfg.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")

	if cfg.MemoryAPIKey == "" {
		cfg.MemoryAPIKey = os.Getenv("HYPERSPELL_API_KEY")
	}
	cfg.MemoryBaseURL = os.Getenv("HYPERSPELL_BASE_URL")

	if cfg.ProviderTimeout == 0 {
		d, err := envDuration("PROVIDER_TIMEOUT", 30*time.Second)
		if err != nil {
			return Config{}, err
		}
		cfg.ProviderTimeout = d
	}

	cfg.DefaultState = envOr("DEFAULT_STATE", "CA")
	cfg.DefaultCounty = envOr("DEFAULT_COUNTY", "Los Angeles")

	if cfg.ChatRateLimit < 0 {
		rate := 20.0
		if s := os.Getenv("CHAT_RATE_LIMIT"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil || v < 0 {
				return Config{}, errors.New("invalid CHAT_RATE_LIMIT env variable")
			}
			rate = v
		}
		cfg.ChatRateLimit = rate
	}

	cfg.TrustProxy = cfg.TrustProxy || os.Getenv("TRUST_PROXY") == "true"

	cfg.Features = Features{
		SeedData:    !noSeed && os.Getenv("SEED_DATA") != "false",
		MemoryCache: memoryCache || os.Getenv("MEMORY_CACHE") == "true",
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}
