// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/danielhkuo/pollbook/auth"
	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/models"
)

// RunStoreConformance drives a registry over the store returned by newStore
// and checks the behaviour every engine.Store must share.
func RunStoreConformance(t *testing.T, newStore func(t *testing.T) engine.Store) {
	t.Run("counter and round trip", func(t *testing.T) {
		clock := NewFakeClock(BaseTime)
		reg := engine.NewRegistry(newStore(t), clock, auth.ContextIdentity{})

		first := CreateTestPoll(t, reg, "alice", false, nil, "A", "B", "C")
		second := CreateTestPoll(t, reg, "bob", true, []models.Identity{"v1", "v2"}, "X", "Y")
		if first != 0 || second != 1 {
			t.Fatalf("Expected ids 0 and 1, got %d and %d", first, second)
		}

		poll, err := reg.GetPoll(context.Background(), second)
		if err != nil {
			t.Fatalf("GetPoll: %v", err)
		}
		if poll.Creator != "bob" || !poll.CanChangeVote || len(poll.Whitelist) != 2 || poll.Whitelist[0] != "v1" {
			t.Errorf("Unexpected poll after round trip: %+v", poll)
		}

		polls, err := reg.ListPolls(context.Background(), engine.PollFilter{})
		if err != nil {
			t.Fatalf("ListPolls: %v", err)
		}
		if len(polls) != 2 || polls[0].ID != first || polls[1].ID != second {
			t.Errorf("Unexpected poll order: %+v", polls)
		}
	})

	t.Run("immutable ledger", func(t *testing.T) {
		clock := NewFakeClock(BaseTime)
		reg := engine.NewRegistry(newStore(t), clock, auth.ContextIdentity{})
		id := CreateTestPoll(t, reg, "alice", false, nil, "A", "B", "C")

		CastTestVote(t, reg, id, "v1", 1)
		CastTestVote(t, reg, id, "v2", 1)
		if err := reg.CastVote(As("v1"), id, 0); !errors.Is(err, engine.ErrAlreadyVoted) {
			t.Fatalf("Expected ErrAlreadyVoted, got %v", err)
		}

		assertCounts(t, reg, id, 0, 2, 0)
		assertParticipants(t, reg, id, 2)
	})

	t.Run("mutable ledger", func(t *testing.T) {
		clock := NewFakeClock(BaseTime)
		reg := engine.NewRegistry(newStore(t), clock, auth.ContextIdentity{})
		id := CreateTestPoll(t, reg, "alice", true, []models.Identity{"v1", "v2", "v3", "v4"}, "A", "B")

		CastTestVote(t, reg, id, "v1", 0)
		CastTestVote(t, reg, id, "v1", 1)
		CastTestVote(t, reg, id, "v2", 1)

		assertCounts(t, reg, id, 0, 2)
		stats := assertParticipants(t, reg, id, 2)
		if stats.Percentage == nil || *stats.Percentage != 50 {
			t.Errorf("Expected 50%% participation, got %v", stats.Percentage)
		}

		voted, choice, err := reg.HasVoted(context.Background(), id, "v1")
		if err != nil || !voted || choice == nil || *choice != 1 {
			t.Errorf("HasVoted(v1) = %v, %v, %v", voted, choice, err)
		}
	})

	t.Run("failed vote leaves no trace", func(t *testing.T) {
		clock := NewFakeClock(BaseTime)
		reg := engine.NewRegistry(newStore(t), clock, auth.ContextIdentity{})
		id := CreateTestPoll(t, reg, "alice", false, []models.Identity{"v1"}, "A", "B")

		if err := reg.CastVote(As("v2"), id, 0); !errors.Is(err, engine.ErrNotWhitelisted) {
			t.Fatalf("Expected ErrNotWhitelisted, got %v", err)
		}
		if err := reg.CastVote(As("v1"), id, 5); !errors.Is(err, engine.ErrOptionIndex) {
			t.Fatalf("Expected ErrOptionIndex, got %v", err)
		}

		assertCounts(t, reg, id, 0, 0)
		assertParticipants(t, reg, id, 0)
	})

	t.Run("timestamps at the storage limit", func(t *testing.T) {
		clock := NewFakeClock(BaseTime)
		reg := engine.NewRegistry(newStore(t), clock, auth.ContextIdentity{})

		_, err := reg.CreatePoll(As("alice"), models.CreatePollRequest{
			Question: "Forever?", Options: []string{"A", "B"}, StartTime: BaseTime, EndTime: math.MaxUint64,
		})
		if !errors.Is(err, engine.ErrTimeOutOfRange) || engine.KindOf(err) != engine.KindValidation {
			t.Fatalf("Expected validation ErrTimeOutOfRange, got %v", err)
		}

		id, err := reg.CreatePoll(As("alice"), models.CreatePollRequest{
			Question: "Forever?", Options: []string{"A", "B"}, StartTime: BaseTime, EndTime: math.MaxInt64,
		})
		if err != nil {
			t.Fatalf("CreatePoll at the limit: %v", err)
		}
		if id != 0 {
			t.Errorf("Rejected poll consumed an id: got %d", id)
		}

		CastTestVote(t, reg, id, "v1", 0)
		poll, err := reg.GetPoll(context.Background(), id)
		if err != nil {
			t.Fatalf("GetPoll: %v", err)
		}
		if poll.EndTime != math.MaxInt64 || poll.StartTime != BaseTime {
			t.Errorf("Unexpected window after round trip: %d..%d", poll.StartTime, poll.EndTime)
		}
		assertCounts(t, reg, id, 1, 0)
	})

	t.Run("close and modify persist", func(t *testing.T) {
		clock := NewFakeClock(BaseTime)
		reg := engine.NewRegistry(newStore(t), clock, auth.ContextIdentity{})

		id, err := reg.CreatePoll(As("alice"), models.CreatePollRequest{
			Question: "Q", Options: []string{"A", "B"}, StartTime: BaseTime + 10, EndTime: BaseTime + 20,
			Whitelist: []models.Identity{"v1"},
		})
		if err != nil {
			t.Fatalf("CreatePoll: %v", err)
		}

		err = reg.ModifyPoll(As("alice"), id, models.ModifyPollRequest{
			Question: "Q2", Options: []string{"C", "D", "E"}, StartTime: BaseTime + 5, EndTime: BaseTime + 50,
		})
		if err != nil {
			t.Fatalf("ModifyPoll: %v", err)
		}
		if err := reg.ClosePoll(As("alice"), id); err != nil {
			t.Fatalf("ClosePoll: %v", err)
		}

		poll, err := reg.GetPoll(context.Background(), id)
		if err != nil {
			t.Fatalf("GetPoll: %v", err)
		}
		if poll.Question != "Q2" || len(poll.Options) != 3 || poll.Options[2].Name != "E" || !poll.IsClosed {
			t.Errorf("Unexpected poll after modify/close: %+v", poll)
		}
		if len(poll.Whitelist) != 1 || poll.Whitelist[0] != "v1" {
			t.Errorf("Whitelist changed by modify: %v", poll.Whitelist)
		}
	})
}

func assertCounts(t *testing.T, reg *engine.Registry, id uint64, want ...uint64) {
	t.Helper()
	poll, err := reg.GetPoll(context.Background(), id)
	if err != nil {
		t.Fatalf("GetPoll: %v", err)
	}
	if len(poll.Options) != len(want) {
		t.Fatalf("Expected %d options, got %d", len(want), len(poll.Options))
	}
	for i, opt := range poll.Options {
		if opt.VoteCount != want[i] {
			t.Errorf("Option %d (%s): expected %d votes, got %d", i, opt.Name, want[i], opt.VoteCount)
		}
	}
}

func assertParticipants(t *testing.T, reg *engine.Registry, id uint64, want uint64) models.ParticipationStats {
	t.Helper()
	stats, err := reg.ParticipationStats(context.Background(), id)
	if err != nil {
		t.Fatalf("ParticipationStats: %v", err)
	}
	if stats.ParticipantCount != want {
		t.Errorf("Expected %d participants, got %d", want, stats.ParticipantCount)
	}
	return stats
}
