// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/pollbook/models"
	"github.com/danielhkuo/pollbook/testutil"
)

// TestConcurrentVotes verifies that simultaneous votes from different voters
// are all counted and the tally matches the ledger
func TestConcurrentVotes(t *testing.T) {
	reg, _, sink := testutil.SetupTestRegistry(t)
	cfg := testutil.GetTestConfig()
	votingHandler := NewVotingHandler(reg)

	pollID := testutil.CreateTestPoll(t, reg, "alice", false, nil, "A", "B", "C")

	numVoters := 30
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			voter := models.Identity(fmt.Sprintf("voter-%d", voterIdx))
			body := models.CastVoteRequest{OptionIndex: intPtr(voterIdx % 3)}
			w := serve(cfg, votingHandler.CastVote, pollRequest(cfg, "POST", pollID, "/votes", body, voter))

			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful votes, got %d", numVoters, successCount.Load())
	}

	poll, err := reg.GetPoll(testutil.As("alice"), pollID)
	if err != nil {
		t.Fatal(err)
	}
	for i, opt := range poll.Options {
		if opt.VoteCount != uint64(numVoters/3) {
			t.Errorf("Option %d: expected %d votes, got %d", i, numVoters/3, opt.VoteCount)
		}
	}
	if len(sink.Events()) != numVoters {
		t.Errorf("Expected %d events, got %d", numVoters, len(sink.Events()))
	}
}

// TestConcurrentDuplicateVotes verifies only one of many simultaneous votes
// from the same voter is accepted when vote changes are not allowed
func TestConcurrentDuplicateVotes(t *testing.T) {
	reg, _, _ := testutil.SetupTestRegistry(t)
	cfg := testutil.GetTestConfig()
	votingHandler := NewVotingHandler(reg)

	pollID := testutil.CreateTestPoll(t, reg, "alice", false, nil, "A", "B")

	attempts := 20
	var okCount, conflictCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			body := models.CastVoteRequest{OptionIndex: intPtr(idx % 2)}
			w := serve(cfg, votingHandler.CastVote, pollRequest(cfg, "POST", pollID, "/votes", body, "same-voter"))

			switch w.Code {
			case http.StatusOK:
				okCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if okCount.Load() != 1 || int(conflictCount.Load()) != attempts-1 {
		t.Errorf("Expected 1 success and %d conflicts, got %d and %d", attempts-1, okCount.Load(), conflictCount.Load())
	}

	poll, err := reg.GetPoll(testutil.As("alice"), pollID)
	if err != nil {
		t.Fatal(err)
	}
	if poll.TotalVotes() != 1 {
		t.Errorf("Expected 1 vote in the tally, got %d", poll.TotalVotes())
	}
}
