// cliparse/cliparse_test.go
package cliparse

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("SESSION_SECRET", "test-secret")
	for _, k := range []string{"PORT", "DATABASE_TYPE", "PROVIDER_TIMEOUT", "CHAT_RATE_LIMIT", "TRUST_PROXY", "SEED_DATA", "MEMORY_CACHE", "DEFAULT_STATE", "DEFAULT_COUNTY", "OPENAI_MODEL"} {
		t.Setenv(k, "")
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("CHAT_RATE_LIMIT", "6")
	t.Setenv("SEED_DATA", "false")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.ProviderTimeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", cfg.ProviderTimeout)
	}
	if cfg.ChatRateLimit != 6 {
		t.Errorf("expected chat rate 6, got %v", cfg.ChatRateLimit)
	}
	if cfg.Features.SeedData {
		t.Error("SEED_DATA=false should disable seeding")
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.DefaultState != "CA" || cfg.DefaultCounty != "Los Angeles" {
		t.Errorf("unexpected default ballot %s/%s", cfg.DefaultState, cfg.DefaultCounty)
	}
	if cfg.ProviderTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.ProviderTimeout)
	}
	if cfg.ChatRateLimit != 20 {
		t.Errorf("expected chat rate 20, got %v", cfg.ChatRateLimit)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("expected gpt-4o-mini, got %s", cfg.OpenAIModel)
	}
	if !cfg.Features.SeedData || cfg.Features.MemoryCache {
		t.Errorf("unexpected features %+v", cfg.Features)
	}
	if cfg.TrustProxy {
		t.Error("forwarded headers should not be trusted by default")
	}
}

func TestParseFlags_TrustProxy(t *testing.T) {
	setBaseEnv(t)

	cfg, err := ParseFlags([]string{"-trust-proxy"})
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.TrustProxy {
		t.Error("-trust-proxy should enable TrustProxy")
	}

	t.Setenv("TRUST_PROXY", "true")
	cfg, err = ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.TrustProxy {
		t.Error("TRUST_PROXY=true should enable TrustProxy")
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:other.db", "-session-secret", "s1", "-no-seed", "-memory-cache", "-chat-rate", "0", "-provider-timeout", "2s"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "file:other.db" || cfg.SessionSecret != "s1" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Features.SeedData || !cfg.Features.MemoryCache {
		t.Errorf("unexpected features %+v", cfg.Features)
	}
	if cfg.ChatRateLimit != 0 {
		t.Errorf("expected chat rate limiting disabled, got %v", cfg.ChatRateLimit)
	}
	if cfg.ProviderTimeout != 2*time.Second {
		t.Errorf("expected 2s, got %s", cfg.ProviderTimeout)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing database", map[string]string{"DATABASE_URL": ""}, nil},
		{"missing secret", map[string]string{"SESSION_SECRET": ""}, nil},
		{"bad port", map[string]string{"PORT": "abc"}, nil},
		{"bad db type", map[string]string{"DATABASE_TYPE": "mysql"}, nil},
		{"bad timeout", map[string]string{"PROVIDER_TIMEOUT": "soon"}, nil},
		{"bad chat rate", map[string]string{"CHAT_RATE_LIMIT": "-3"}, nil},
		{"unknown flag", nil, []string{"-admin-salt", "x"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tc.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}
