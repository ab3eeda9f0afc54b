// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "github.com/danielhkuo/pollbook/models"

// ledger records a ballot for one strategy. record mutates poll's tally in
// memory and stages the ledger write on tx; the caller persists poll on the
// same tx so both land together.
type ledger interface {
	record(tx Tx, poll *models.Poll, voter models.Identity, optionIndex int) error
}

func ledgerFor(kind models.LedgerKind) ledger {
	if kind == models.LedgerMutable {
		return mutableLedger{}
	}
	return immutableLedger{}
}

// immutableLedger keeps membership only. A second ballot is rejected.
type immutableLedger struct{}

func (immutableLedger) record(tx Tx, poll *models.Poll, voter models.Identity, optionIndex int) error {
	voted, err := tx.HasVoter(poll.ID, voter)
	if err != nil {
		return err
	}
	if voted {
		return ErrAlreadyVoted
	}

	addVote(poll, optionIndex)
	return tx.AddVoter(poll.ID, voter)
}

// mutableLedger maps each voter to the current choice and moves the unit on
// change.
type mutableLedger struct{}

func (mutableLedger) record(tx Tx, poll *models.Poll, voter models.Identity, optionIndex int) error {
	previous, found, err := tx.GetChoice(poll.ID, voter)
	if err != nil {
		return err
	}
	if found {
		if err := removeVote(poll, previous); err != nil {
			return err
		}
	}

	addVote(poll, optionIndex)
	return tx.SetChoice(poll.ID, voter, optionIndex)
}
