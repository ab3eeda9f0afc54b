// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"fmt"

	"github.com/danielhkuo/pollbook/models"
)

// newOptions builds a zero-count option list from names.
func newOptions(names []string) []models.PollOption {
	options := make([]models.PollOption, len(names))
	for i, name := range names {
		options[i] = models.PollOption{Name: name}
	}
	return options
}

func addVote(poll *models.Poll, optionIndex int) {
	poll.Options[optionIndex].VoteCount++
}

func removeVote(poll *models.Poll, optionIndex int) error {
	if optionIndex < 0 || optionIndex >= len(poll.Options) {
		return fmt.Errorf("poll %d: stored choice %d: %w", poll.ID, optionIndex, ErrTallyUnderflow)
	}
	if poll.Options[optionIndex].VoteCount == 0 {
		return fmt.Errorf("poll %d option %d: %w", poll.ID, optionIndex, ErrTallyUnderflow)
	}
	poll.Options[optionIndex].VoteCount--
	return nil
}

// percentOf is floor(part*100/whole), or 0 when whole is 0.
func percentOf(part, whole uint64) uint64 {
	if whole == 0 {
		return 0
	}
	return part * 100 / whole
}

// Results derives per-option counts and percentages in option order.
func Results(poll models.Poll) []models.OptionResult {
	total := poll.TotalVotes()
	results := make([]models.OptionResult, len(poll.Options))
	for i, opt := range poll.Options {
		results[i] = models.OptionResult{
			Name:       opt.Name,
			VoteCount:  opt.VoteCount,
			Percentage: percentOf(opt.VoteCount, total),
		}
	}
	return results
}
