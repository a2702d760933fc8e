// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package memory talks to the long-term memory provider and decides how a
user's consolidated memory evolves.

# Provider

Client is the REST client for the hosted provider. Calls go through a circuit
breaker; once it opens, calls fail fast with ErrUnavailable until the open
timeout passes. ErrNotFound does not count as a failure.

CachedProvider caches Get per user and drops the entry on every write.
Disabled stands in when no provider is configured.

# Records

Each user has one consolidated record (ResourceID) holding their profile
text and, after chats, the summarized memory. Every chat exchange is also
stored on its own in the CollectionQA collection for retrieval.

# Summarization

DecideUpdate asks the language model whether a Q&A exchange adds anything
worth remembering. The model answers with the full replacement text or the
NO_UPDATE sentinel, which ParseDecision turns into a Decision. Summarizer
applies a Replace decision and never returns an error to the caller.
*/
package memory
