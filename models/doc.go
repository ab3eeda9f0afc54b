// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Poll: question, ordered options, voting window, creator, flags, whitelist
  - PollOption: option name and running vote count
  - OptionResult: name, vote count and floor percentage of the total
  - ParticipationStats: ledger size and optional whitelist turnout
  - VoteCastEvent: broadcast after a committed vote

Identity is an opaque, comparable caller reference.

# Request Types

  - CreatePollRequest: question, options, start_time, end_time, can_change_vote, whitelist
  - ModifyPollRequest: question, options, start_time, end_time
  - CastVoteRequest: option_index
  - IssueTokenRequest: identity

# Response Types

  - CreatePollResponse: poll_id
  - PollResponse: poll, phase
  - ListPollsResponse: polls
  - ClosePollResponse: poll_id, is_closed
  - CastVoteResponse: poll_id, option_index, message
  - HasVotedResponse: voted, option_index
  - PollResultsResponse: poll_id, results
  - ParticipationResponse: poll_id, participant_count, percentage
  - ErrorResponse: error, message, kind

# Constants

Phases:

	PhaseNotStarted = "not_started"
	PhaseOngoing    = "ongoing"
	PhaseEnded      = "ended"

Ledger strategies:

	LedgerImmutable = "immutable"
	LedgerMutable   = "mutable"
*/
package models
