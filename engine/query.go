// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"

	"github.com/danielhkuo/pollbook/models"
)

// PollFilter selects polls for ListPolls. Nil fields match everything.
// At fixes the time Status is evaluated against; zero means the clock's now.
type PollFilter struct {
	Status  *models.Phase
	Creator *models.Identity
	At      uint64
}

func (f PollFilter) match(poll models.Poll, now uint64) bool {
	if f.Status != nil && PollPhase(poll, now) != *f.Status {
		return false
	}
	if f.Creator != nil && poll.Creator != *f.Creator {
		return false
	}
	return true
}

// ListPolls returns matching polls in creation order. Phases are evaluated
// against a single clock reading.
func (r *Registry) ListPolls(ctx context.Context, filter PollFilter) ([]models.Poll, error) {
	now := filter.At
	if now == 0 {
		now = r.clock.Now()
	}
	polls := []models.Poll{}
	err := r.store.View(ctx, func(tx Tx) error {
		all, err := tx.ListPolls()
		if err != nil {
			return err
		}
		for _, poll := range all {
			if filter.match(poll, now) {
				polls = append(polls, poll)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return polls, nil
}

// PollResults returns one entry per option in option order. Percentages are
// floored and are all 0 when nobody has voted.
func (r *Registry) PollResults(ctx context.Context, id uint64) ([]models.OptionResult, error) {
	poll, err := r.GetPoll(ctx, id)
	if err != nil {
		return nil, err
	}
	return Results(poll), nil
}
