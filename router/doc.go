// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the poll ledger API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(registry, hub, cfg)

Every API route is wrapped in request logging and bearer token resolution.
Identity-dependent operations need "Authorization: Bearer <token>".

# Endpoints

Health:

	GET /health

Polls:

	POST /polls              - Create poll
	GET  /polls              - List polls (?status=, ?creator=)
	GET  /polls/{id}         - Poll definition, tally and phase
	PUT  /polls/{id}         - Redefine or extend (creator)
	POST /polls/{id}/close   - Close voting (creator)

Voting:

	POST /polls/{id}/votes    - Cast or change a vote
	GET  /polls/{id}/votes/me - Whether the caller has voted

Results:

	GET /polls/{id}/results       - Per-option counts and percentages
	GET /polls/{id}/participation - Ledger size and whitelist turnout

Other:

	POST /tokens - Issue a development token (when enabled)
	GET  /events - Websocket stream of vote events
*/
package router
