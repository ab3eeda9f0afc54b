// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/danielhkuo/pollbook/models"
	"github.com/danielhkuo/pollbook/testutil"
)

func TestCastVote(t *testing.T) {
	reg, _, sink := testutil.SetupTestRegistry(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(reg)

	pollID := testutil.CreateTestPoll(t, reg, "alice", false, []models.Identity{"v1", "v2"})

	testCases := []struct {
		name           string
		pollID         uint64
		caller         models.Identity
		body           interface{}
		expectedStatus int
		expectedKind   string
	}{
		{"valid vote", pollID, "v1", models.CastVoteRequest{OptionIndex: intPtr(1)}, http.StatusOK, ""},
		{"second vote", pollID, "v1", models.CastVoteRequest{OptionIndex: intPtr(2)}, http.StatusConflict, "state"},
		{"not whitelisted", pollID, "v3", models.CastVoteRequest{OptionIndex: intPtr(0)}, http.StatusForbidden, "eligibility"},
		{"index out of range", pollID, "v2", models.CastVoteRequest{OptionIndex: intPtr(3)}, http.StatusBadRequest, "index"},
		{"negative index", pollID, "v2", models.CastVoteRequest{OptionIndex: intPtr(-1)}, http.StatusBadRequest, "index"},
		{"missing index", pollID, "v2", map[string]string{}, http.StatusBadRequest, "validation"},
		{"anonymous", pollID, "", models.CastVoteRequest{OptionIndex: intPtr(0)}, http.StatusUnauthorized, "unauthenticated"},
		{"unknown poll", 77, "v2", models.CastVoteRequest{OptionIndex: intPtr(0)}, http.StatusNotFound, "not_found"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(cfg, handler.CastVote, pollRequest(cfg, "POST", tc.pollID, "/votes", tc.body, tc.caller))
			testutil.AssertStatus(t, w, tc.expectedStatus)

			if tc.expectedKind != "" {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Kind != tc.expectedKind {
					t.Errorf("Expected kind '%s', got '%s'", tc.expectedKind, resp.Kind)
				}
			}
		})
	}

	// Only the successful vote reached the event sink
	events := sink.Events()
	if len(events) != 1 || events[0].Voter != "v1" || events[0].OptionIndex != 1 {
		t.Errorf("Unexpected events: %+v", events)
	}

	results, err := reg.PollResults(testutil.As("anyone"), pollID)
	if err != nil {
		t.Fatal(err)
	}
	if results[1].VoteCount != 1 || results[0].VoteCount != 0 || results[2].VoteCount != 0 {
		t.Errorf("Rejected votes changed the tally: %+v", results)
	}
}

func TestCastVote_ClosedAndEnded(t *testing.T) {
	reg, clock, _ := testutil.SetupTestRegistry(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(reg)

	closed := testutil.CreateTestPoll(t, reg, "alice", false, nil)
	if err := reg.ClosePoll(testutil.As("alice"), closed); err != nil {
		t.Fatal(err)
	}
	ended := testutil.CreateTestPoll(t, reg, "alice", false, nil)

	w := serve(cfg, handler.CastVote, pollRequest(cfg, "POST", closed, "/votes", models.CastVoteRequest{OptionIndex: intPtr(0)}, "v1"))
	testutil.AssertStatus(t, w, http.StatusConflict)

	clock.Advance(3601)
	w = serve(cfg, handler.CastVote, pollRequest(cfg, "POST", ended, "/votes", models.CastVoteRequest{OptionIndex: intPtr(0)}, "v1"))
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestCastVote_ChangeVote(t *testing.T) {
	reg, _, _ := testutil.SetupTestRegistry(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(reg)

	pollID := testutil.CreateTestPoll(t, reg, "alice", true, nil, "A", "B")

	for _, idx := range []int{0, 1, 1} {
		w := serve(cfg, handler.CastVote, pollRequest(cfg, "POST", pollID, "/votes", models.CastVoteRequest{OptionIndex: intPtr(idx)}, "v1"))
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	poll, err := reg.GetPoll(testutil.As("v1"), pollID)
	if err != nil {
		t.Fatal(err)
	}
	if poll.Options[0].VoteCount != 0 || poll.Options[1].VoteCount != 1 {
		t.Errorf("Expected [0 1], got [%d %d]", poll.Options[0].VoteCount, poll.Options[1].VoteCount)
	}
}

func TestHasVoted(t *testing.T) {
	reg, _, _ := testutil.SetupTestRegistry(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(reg)

	mutable := testutil.CreateTestPoll(t, reg, "alice", true, nil)
	immutable := testutil.CreateTestPoll(t, reg, "alice", false, nil)
	testutil.CastTestVote(t, reg, mutable, "v1", 2)
	testutil.CastTestVote(t, reg, immutable, "v1", 2)

	testCases := []struct {
		name           string
		pollID         uint64
		caller         models.Identity
		expectedStatus int
		expectedVoted  bool
		expectedChoice *int
	}{
		{"mutable ledger reports choice", mutable, "v1", http.StatusOK, true, intPtr(2)},
		{"immutable ledger hides choice", immutable, "v1", http.StatusOK, true, nil},
		{"not voted", mutable, "v2", http.StatusOK, false, nil},
		{"anonymous", mutable, "", http.StatusUnauthorized, false, nil},
		{"unknown poll", 9, "v1", http.StatusNotFound, false, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(cfg, handler.HasVoted, pollRequest(cfg, "GET", tc.pollID, "/votes/me", nil, tc.caller))
			testutil.AssertStatus(t, w, tc.expectedStatus)
			if tc.expectedStatus != http.StatusOK {
				return
			}

			var resp models.HasVotedResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Voted != tc.expectedVoted {
				t.Errorf("Expected voted=%v, got %v", tc.expectedVoted, resp.Voted)
			}
			switch {
			case tc.expectedChoice == nil && resp.OptionIndex != nil:
				t.Errorf("Expected no choice, got %d", *resp.OptionIndex)
			case tc.expectedChoice != nil && (resp.OptionIndex == nil || *resp.OptionIndex != *tc.expectedChoice):
				t.Errorf("Expected choice %d, got %v", *tc.expectedChoice, resp.OptionIndex)
			}
		})
	}
}
