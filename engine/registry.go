// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"log/slog"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/danielhkuo/pollbook/models"
)

// Registry owns the poll table and the id counter. Every mutating call runs
// as one store transaction: read, validate everything, then write.
type Registry struct {
	store    Store
	clock    Clock
	identity IdentityProvider
	events   EventSink
	logger   *slog.Logger
}

// Option configures optional Registry collaborators.
type Option func(*Registry)

// WithEvents sets the sink notified after each committed vote.
func WithEvents(sink EventSink) Option {
	return func(r *Registry) { r.events = sink }
}

// WithLogger overrides slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

func NewRegistry(store Store, clock Clock, identity IdentityProvider, opts ...Option) *Registry {
	r := &Registry{
		store:    store,
		clock:    clock,
		identity: identity,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.clock == nil {
		r.clock = SystemClock{}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Now exposes the registry clock so adapters compute phases consistently.
func (r *Registry) Now() uint64 {
	return r.clock.Now()
}

func (r *Registry) caller(ctx context.Context) (models.Identity, error) {
	if r.identity == nil {
		return "", ErrUnauthenticated
	}
	return r.identity.Caller(ctx)
}

// maxTimestamp is the largest time every store can persist.
const maxTimestamp = math.MaxInt64

// validateDefinition applies the rules shared by creation and full redefinition.
func validateDefinition(options []string, start, end, now uint64) error {
	if len(options) <= 1 {
		return ErrTooFewOptions
	}
	if start > maxTimestamp || end > maxTimestamp {
		return ErrTimeOutOfRange
	}
	if end <= start {
		return ErrEndBeforeStart
	}
	if end <= now {
		return ErrEndNotInFuture
	}
	return nil
}

// CreatePoll stores a new poll under the next counter value and returns its id.
// A nil whitelist opens the poll to everyone; a non-nil empty one is rejected.
func (r *Registry) CreatePoll(ctx context.Context, req models.CreatePollRequest) (uint64, error) {
	creator, err := r.caller(ctx)
	if err != nil {
		return 0, err
	}

	now := r.clock.Now()
	if err := validateDefinition(req.Options, req.StartTime, req.EndTime, now); err != nil {
		return 0, err
	}
	if req.Whitelist != nil && len(req.Whitelist) == 0 {
		return 0, ErrEmptyWhitelist
	}

	var pollID uint64
	err = r.store.Update(ctx, func(tx Tx) error {
		id, err := tx.NextPollID()
		if err != nil {
			return err
		}

		poll := models.Poll{
			ID:            id,
			Question:      req.Question,
			Options:       newOptions(req.Options),
			StartTime:     req.StartTime,
			EndTime:       req.EndTime,
			Creator:       creator,
			CanChangeVote: req.CanChangeVote,
			Whitelist:     normalizeWhitelist(req.Whitelist),
		}
		if err := tx.PutPoll(poll); err != nil {
			return err
		}
		if err := tx.SetNextPollID(id + 1); err != nil {
			return err
		}
		pollID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info("poll created",
		"poll_id", pollID,
		"creator", creator,
		"options", len(req.Options),
		"ledger", models.Poll{CanChangeVote: req.CanChangeVote}.Ledger(),
		"whitelisted", len(req.Whitelist) > 0,
	)
	return pollID, nil
}

// GetPoll returns a copy of the stored poll.
func (r *Registry) GetPoll(ctx context.Context, id uint64) (models.Poll, error) {
	var poll models.Poll
	err := r.store.View(ctx, func(tx Tx) error {
		var err error
		poll, err = loadPoll(tx, id)
		return err
	})
	return poll, err
}

func loadPoll(tx Tx, id uint64) (models.Poll, error) {
	poll, found, err := tx.GetPoll(id)
	if err != nil {
		return models.Poll{}, err
	}
	if !found {
		return models.Poll{}, ErrPollNotFound
	}
	return poll, nil
}

// ModifyPoll redefines a poll that has not started, or extends the end time
// of an ongoing one. Only the creator may call it.
//
// While ongoing, question, options and start time are not modifiable. Zero
// values or values equal to the stored ones are ignored; anything else is
// rejected with ErrOngoingImmutable. The end time must move strictly later.
func (r *Registry) ModifyPoll(ctx context.Context, id uint64, req models.ModifyPollRequest) error {
	caller, err := r.caller(ctx)
	if err != nil {
		return err
	}

	var phase models.Phase
	err = r.store.Update(ctx, func(tx Tx) error {
		poll, err := loadPoll(tx, id)
		if err != nil {
			return err
		}
		if poll.Creator != caller {
			return ErrNotCreator
		}
		if poll.IsClosed {
			return ErrPollClosed
		}

		now := r.clock.Now()
		phase = PollPhase(poll, now)
		switch phase {
		case models.PhaseNotStarted:
			if err := validateDefinition(req.Options, req.StartTime, req.EndTime, now); err != nil {
				return err
			}
			poll.Question = req.Question
			poll.Options = newOptions(req.Options)
			poll.StartTime = req.StartTime
			poll.EndTime = req.EndTime
			// No ballot can exist before the window opens; clearing keeps the
			// tally and the ledger in step regardless.
			if err := tx.ClearLedger(poll.ID); err != nil {
				return err
			}

		case models.PhaseOngoing:
			if touchesFrozenFields(poll, req) {
				return ErrOngoingImmutable
			}
			if req.EndTime > maxTimestamp {
				return ErrTimeOutOfRange
			}
			if req.EndTime <= now {
				return ErrExtendNotInFuture
			}
			if req.EndTime <= poll.EndTime {
				return ErrCannotShorten
			}
			poll.EndTime = req.EndTime

		default:
			return ErrPollEnded
		}

		return tx.PutPoll(poll)
	})
	if err != nil {
		return err
	}

	r.logger.Info("poll modified", "poll_id", id, "phase", phase, "end_time", req.EndTime)
	return nil
}

func touchesFrozenFields(poll models.Poll, req models.ModifyPollRequest) bool {
	if req.Question != "" && req.Question != poll.Question {
		return true
	}
	if req.StartTime != 0 && req.StartTime != poll.StartTime {
		return true
	}
	if req.Options == nil {
		return false
	}
	names := make([]string, len(poll.Options))
	for i, opt := range poll.Options {
		names[i] = opt.Name
	}
	return !slices.Equal(names, req.Options)
}

// ClosePoll marks the poll closed. Closing a closed poll succeeds and writes
// nothing.
func (r *Registry) ClosePoll(ctx context.Context, id uint64) error {
	caller, err := r.caller(ctx)
	if err != nil {
		return err
	}

	alreadyClosed := false
	err = r.store.Update(ctx, func(tx Tx) error {
		poll, err := loadPoll(tx, id)
		if err != nil {
			return err
		}
		if poll.Creator != caller {
			return ErrNotCreator
		}
		if poll.IsClosed {
			alreadyClosed = true
			return nil
		}
		poll.IsClosed = true
		return tx.PutPoll(poll)
	})
	if err != nil {
		return err
	}

	r.logger.Info("poll closed", "poll_id", id, "already_closed", alreadyClosed)
	return nil
}

// CastVote records the caller's ballot for optionIndex. Preconditions are
// checked in order: existence, closed flag, phase, index range, whitelist.
// The tally and the ledger entry are committed together.
func (r *Registry) CastVote(ctx context.Context, id uint64, optionIndex int) error {
	voter, err := r.caller(ctx)
	if err != nil {
		return err
	}

	var (
		now        uint64
		optionName string
		changed    bool
	)
	err = r.store.Update(ctx, func(tx Tx) error {
		poll, err := loadPoll(tx, id)
		if err != nil {
			return err
		}
		if poll.IsClosed {
			return ErrPollClosed
		}
		now = r.clock.Now()
		if PollPhase(poll, now) != models.PhaseOngoing {
			return ErrPollNotActive
		}
		if optionIndex < 0 || optionIndex >= len(poll.Options) {
			return ErrOptionIndex
		}
		if !IsEligible(poll, voter) {
			return ErrNotWhitelisted
		}

		before := poll.TotalVotes()
		if err := ledgerFor(poll.Ledger()).record(tx, &poll, voter, optionIndex); err != nil {
			return err
		}
		changed = poll.TotalVotes() == before
		optionName = poll.Options[optionIndex].Name
		return tx.PutPoll(poll)
	})
	if err != nil {
		if KindOf(err) == KindInternal {
			r.logger.Error("vote failed", "poll_id", id, "voter", voter, "error", err)
		}
		return err
	}

	r.logger.Info("vote cast", "poll_id", id, "voter", voter, "option_index", optionIndex, "is_change", changed)

	if r.events != nil {
		r.events.Emit(ctx, models.VoteCastEvent{
			ID:          uuid.NewString(),
			PollID:      id,
			Voter:       voter,
			OptionIndex: optionIndex,
			OptionName:  optionName,
			CastAt:      now,
		})
	}
	return nil
}

// HasVoted reports whether identity holds a ledger entry for the poll. The
// current choice is only returned for mutable ledgers.
func (r *Registry) HasVoted(ctx context.Context, id uint64, identity models.Identity) (bool, *int, error) {
	var (
		voted  bool
		choice *int
	)
	err := r.store.View(ctx, func(tx Tx) error {
		poll, err := loadPoll(tx, id)
		if err != nil {
			return err
		}
		if poll.Ledger() == models.LedgerMutable {
			idx, found, err := tx.GetChoice(id, identity)
			if err != nil {
				return err
			}
			if found {
				voted, choice = true, &idx
			}
			return nil
		}
		voted, err = tx.HasVoter(id, identity)
		return err
	})
	return voted, choice, err
}
