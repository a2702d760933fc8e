// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type (sqlite or postgres)
	-session-secret   Session signing secret
	-openai-key       OpenAI API key
	-memory-key       Memory provider API key
	-model            Chat model name
	-provider-timeout Timeout for provider calls
	-chat-rate        Chat requests per minute per client (0 disables)
	-trust-proxy      Trust X-Forwarded-For for client IPs
	-no-seed          Skip loading the default ballot
	-memory-cache     Cache memory provider reads

# Environment Variables

Flags fall back to environment variables:

	PORT, DATABASE_URL, DATABASE_TYPE, SESSION_SECRET, SESSION_ISSUER,
	OPENAI_API_KEY, OPENAI_MODEL, OPENAI_BASE_URL,
	HYPERSPELL_API_KEY, HYPERSPELL_BASE_URL, PROVIDER_TIMEOUT,
	DEFAULT_STATE, DEFAULT_COUNTY, CHAT_RATE_LIMIT,
	SEED_DATA=false, MEMORY_CACHE=true, TRUST_PROXY=true

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error when DATABASE_URL or SESSION_SECRET is missing,
or when a numeric or duration value does not parse.
*/
package cliparse
