// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "errors"

// Kind classifies a failed precondition.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindState
	KindNotFound
	KindIndex
	KindEligibility
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindState:
		return "state"
	case KindNotFound:
		return "not_found"
	case KindIndex:
		return "index"
	case KindEligibility:
		return "eligibility"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Error is a domain error. Sentinels below are compared with errors.Is.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

var (
	ErrTooFewOptions     = &Error{KindValidation, "poll needs at least two options"}
	ErrEndBeforeStart    = &Error{KindValidation, "end time must be after start time"}
	ErrEndNotInFuture    = &Error{KindValidation, "end time must be in the future"}
	ErrEmptyWhitelist    = &Error{KindValidation, "whitelist must not be empty when supplied"}
	ErrTimeOutOfRange    = &Error{KindValidation, "start and end times must not exceed the signed 64-bit range"}
	ErrExtendNotInFuture = &Error{KindValidation, "new end time must be in the future to extend an ongoing poll"}

	ErrNotCreator       = &Error{KindAuthorization, "only the poll creator may do this"}
	ErrUnauthenticated  = &Error{KindUnauthenticated, "caller identity required"}
	ErrOngoingImmutable = &Error{KindState, "only the end time of an ongoing poll may change"}
	ErrCannotShorten    = &Error{KindValidation, "end time of an ongoing poll can only move forward"}

	ErrPollClosed     = &Error{KindState, "poll is closed"}
	ErrPollNotActive  = &Error{KindState, "poll is not active"}
	ErrPollEnded      = &Error{KindState, "poll has already ended"}
	ErrAlreadyVoted   = &Error{KindState, "already voted and vote changes are not allowed"}
	ErrPollNotFound   = &Error{KindNotFound, "poll not found"}
	ErrOptionIndex    = &Error{KindIndex, "option index out of range"}
	ErrNotWhitelisted = &Error{KindEligibility, "caller is not on the poll whitelist"}

	// ErrTallyUnderflow means the tally and the ledger disagree. It is never
	// caused by caller input.
	ErrTallyUnderflow = &Error{KindInternal, "vote count underflow"}
)

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
