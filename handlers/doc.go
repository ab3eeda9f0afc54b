// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the poll ledger API.

# Handler Types

Each handler is a struct holding its dependencies:

  - PollHandler: Poll lifecycle (create, get, list, modify, close)
  - VotingHandler: Vote casting and ledger membership lookup
  - ResultsHandler: Tallies and participation statistics
  - TokenHandler: Development bearer tokens

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(registry)

# Poll Lifecycle

A poll's phase is derived from the clock: not_started → ongoing → ended.
Closing is a separate flag that stops voting in any phase.

	POST /polls              → CreatePoll (returns poll_id)
	GET  /polls/{id}         → GetPoll
	GET  /polls              → ListPolls (?status=ongoing&creator=alice)
	PUT  /polls/{id}         → ModifyPoll (creator only)
	POST /polls/{id}/close   → ClosePoll (creator only)

# Voting

	POST /polls/{id}/votes    → CastVote {"option_index": 1}
	GET  /polls/{id}/votes/me → HasVoted

Polls created with can_change_vote accept repeat votes that move the
caller's vote; others reject a second vote with 409.

# Results

	GET /polls/{id}/results       → GetResults
	GET /polls/{id}/participation → GetParticipation

Percentages are integers rounded down.

# Errors

Engine errors map to statuses by kind:

	validation, index        → 400
	unauthenticated          → 401
	authorization, eligibility → 403
	not_found                → 404
	state                    → 409

The body carries the kind: {"error":"Conflict","message":"...","kind":"state"}
*/
package handlers
