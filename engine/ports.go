// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"time"

	"github.com/danielhkuo/pollbook/models"
)

// IdentityProvider resolves the authenticated caller of the current call.
type IdentityProvider interface {
	Caller(ctx context.Context) (models.Identity, error)
}

// Clock supplies non-decreasing Unix timestamps.
type Clock interface {
	Now() uint64
}

// SystemClock reads the wall clock in whole seconds.
type SystemClock struct{}

func (SystemClock) Now() uint64 { return uint64(time.Now().Unix()) }

// EventSink receives vote notifications after commit. Emit must not block.
type EventSink interface {
	Emit(ctx context.Context, event models.VoteCastEvent)
}

// Store runs units of work against the persistent poll table and ledgers.
// Writes staged on a Tx inside Update are committed only when fn returns nil.
// Implementations serialize Update calls.
type Store interface {
	Update(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the view of the store inside one unit of work. Reads observe the
// writes already staged on the same Tx.
type Tx interface {
	// NextPollID returns the counter value the next created poll will get.
	NextPollID() (uint64, error)
	SetNextPollID(id uint64) error

	GetPoll(id uint64) (models.Poll, bool, error)
	PutPoll(poll models.Poll) error
	// ListPolls returns every poll in ascending id order.
	ListPolls() ([]models.Poll, error)

	// HasVoter reports ledger membership regardless of strategy.
	HasVoter(pollID uint64, voter models.Identity) (bool, error)
	// AddVoter records membership without a choice (immutable ledgers).
	AddVoter(pollID uint64, voter models.Identity) error
	// GetChoice returns the stored choice of a mutable ledger entry.
	GetChoice(pollID uint64, voter models.Identity) (int, bool, error)
	// SetChoice creates or overwrites a mutable ledger entry.
	SetChoice(pollID uint64, voter models.Identity, optionIndex int) error
	LedgerSize(pollID uint64) (uint64, error)
	ClearLedger(pollID uint64) error
}
