// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "github.com/danielhkuo/pollbook/models"

// IsEligible reports whether identity may vote in poll.
func IsEligible(poll models.Poll, identity models.Identity) bool {
	if !poll.HasWhitelist() {
		return true
	}
	for _, member := range poll.Whitelist {
		if member == identity {
			return true
		}
	}
	return false
}

// normalizeWhitelist drops duplicate identities, keeping first appearance.
// A nil input stays nil (no whitelist).
func normalizeWhitelist(in []models.Identity) []models.Identity {
	if in == nil {
		return nil
	}
	seen := make(map[models.Identity]struct{}, len(in))
	out := make([]models.Identity, 0, len(in))
	for _, id := range in {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
