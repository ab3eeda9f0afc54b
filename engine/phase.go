// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"fmt"

	"github.com/danielhkuo/pollbook/models"
)

// PhaseAt maps a timestamp onto the poll window. Both bounds are inclusive
// for Ongoing.
func PhaseAt(now, start, end uint64) models.Phase {
	switch {
	case now < start:
		return models.PhaseNotStarted
	case now <= end:
		return models.PhaseOngoing
	default:
		return models.PhaseEnded
	}
}

// PollPhase is PhaseAt over the poll's own window.
func PollPhase(poll models.Poll, now uint64) models.Phase {
	return PhaseAt(now, poll.StartTime, poll.EndTime)
}

// ParsePhase accepts the wire names of the three phases.
func ParsePhase(s string) (models.Phase, error) {
	switch p := models.Phase(s); p {
	case models.PhaseNotStarted, models.PhaseOngoing, models.PhaseEnded:
		return p, nil
	}
	return "", &Error{KindValidation, fmt.Sprintf("unknown poll status %q", s)}
}
