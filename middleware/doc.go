// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging and Metrics

	mux.HandleFunc(pattern, middleware.WithLogging(middleware.WithMetrics(m, pattern, handler)))

Both wrappers keep http.Flusher working so streamed responses still flush.

# Sessions

RequireSession resolves the user through an auth.SessionProvider and stores
the id in the request context:

	userID, ok := middleware.UserIDFromContext(r.Context())

# Rate Limiting

	limiter := middleware.NewRateLimiter(20, 5, cfg.TrustProxy)
	mux.HandleFunc("POST /chat", limiter.Limit(handler))

Limits are kept per peer address, or per GetClientIP when proxy headers are
trusted. Idle buckets expire.

# JSON and Validation

	var req models.CalculateImpactRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := middleware.ValidateStruct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

Bodies are capped at 1 MiB. Validation messages use JSON field names.
*/
package middleware
