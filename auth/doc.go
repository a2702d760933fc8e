// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package auth resolves the session user for a request. JWTSessions accepts
// HS256 tokens from the Authorization header or the session cookie.
package auth
