// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the affectme API.

# Handler Types

Each handler is a struct holding the collaborators it needs:

  - BallotHandler: ballot lookup, measure listing and measure detail
  - ImpactHandler: single-measure impacts and the ballot impact report
  - ProfileHandler: civic profile save/load and the memory debug view
  - ChatHandler: the streaming chat advisor

	impactHandler := handlers.NewImpactHandler(store, reporter)

# Impacts

	POST /calculate-impact → CalculateImpact (one measure)
	POST /impacts          → ImpactReport (every measure on a ballot)

Measures that cannot be evaluated for a profile come back neutral rather
than failing the request.

# Sessions

Profile, memory and chat handlers read the user from the request context
set by middleware.RequireSession and answer 401 when it is missing.

# Chat

Chat streams the reply as text/plain chunks. The system prompt is built from
the request profile, the default ballot's measures, the user's consolidated
memory and related past Q&A. Context that cannot be fetched is left out.

After the reply has been written the exchange is stored as a Q&A memory and
the summarizer decides whether to rewrite the user's memory. That work runs
in the background on a context detached from the request; Wait blocks until
it has finished.
*/
package handlers
