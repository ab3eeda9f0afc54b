// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"

	"github.com/danielhkuo/pollbook/models"
)

// ParticipationStats counts ledger entries and, for whitelisted polls, the
// floored share of the whitelist that has voted.
func (r *Registry) ParticipationStats(ctx context.Context, id uint64) (models.ParticipationStats, error) {
	var stats models.ParticipationStats
	err := r.store.View(ctx, func(tx Tx) error {
		poll, err := loadPoll(tx, id)
		if err != nil {
			return err
		}
		count, err := tx.LedgerSize(id)
		if err != nil {
			return err
		}
		stats.ParticipantCount = count
		if poll.HasWhitelist() {
			pct := percentOf(count, uint64(len(poll.Whitelist)))
			stats.Percentage = &pct
		}
		return nil
	})
	return stats, err
}
