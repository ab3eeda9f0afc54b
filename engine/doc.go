// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine implements the poll state and vote ledger rules.

# Registry

Registry is the single entry point for every call:

	reg := engine.NewRegistry(store, engine.SystemClock{}, auth.ContextIdentity{},
		engine.WithEvents(hub))

	id, err := reg.CreatePoll(ctx, req)
	err = reg.CastVote(ctx, id, 1)
	results, err := reg.PollResults(ctx, id)

Each mutating call runs inside one Store.Update. All preconditions are
checked before anything is staged, and the poll (with its tally) is written
on the same transaction as the ledger entry, so the two never diverge.

# Phases

A poll's phase is derived from the clock on every call:

	now < start          not_started
	start <= now <= end  ongoing
	now > end            ended

Votes are accepted only while ongoing and not closed. Before the start a
poll can be fully redefined; while ongoing only its end time can be pushed
forward.

# Ledgers

can_change_vote picks the ledger strategy at creation:

  - immutable: membership set, a second ballot fails with ErrAlreadyVoted
  - mutable: voter to option index, a second ballot moves the vote

Both keep sum(vote_count) equal to the number of ledger entries.

# Errors

Every failure is an *Error with a Kind:

	KindValidation      bad options or times
	KindAuthorization   caller is not the creator
	KindState           closed, not active, already voted, ended
	KindNotFound        unknown poll id
	KindIndex           option index out of range
	KindEligibility     caller not on the whitelist
	KindUnauthenticated no caller identity

Use errors.Is against the sentinels or KindOf to classify.
*/
package engine
