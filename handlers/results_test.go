// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/danielhkuo/pollbook/models"
	"github.com/danielhkuo/pollbook/testutil"
)

func TestGetResults(t *testing.T) {
	reg, _, _ := testutil.SetupTestRegistry(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(reg)

	pollID := testutil.CreateTestPoll(t, reg, "alice", false, nil, "A", "B", "C")

	t.Run("no votes", func(t *testing.T) {
		w := serve(cfg, handler.GetResults, pollRequest(cfg, "GET", pollID, "/results", nil, ""))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.PollResultsResponse
		testutil.AssertJSON(t, w, &resp)
		if len(resp.Results) != 3 {
			t.Fatalf("Expected 3 results, got %d", len(resp.Results))
		}
		for _, r := range resp.Results {
			if r.VoteCount != 0 || r.Percentage != 0 {
				t.Errorf("Expected zero result, got %+v", r)
			}
		}
	})

	t.Run("floored percentages", func(t *testing.T) {
		testutil.CastTestVote(t, reg, pollID, "v1", 0)
		testutil.CastTestVote(t, reg, pollID, "v2", 1)
		testutil.CastTestVote(t, reg, pollID, "v3", 1)

		w := serve(cfg, handler.GetResults, pollRequest(cfg, "GET", pollID, "/results", nil, ""))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.PollResultsResponse
		testutil.AssertJSON(t, w, &resp)

		expected := []models.OptionResult{
			{Name: "A", VoteCount: 1, Percentage: 33},
			{Name: "B", VoteCount: 2, Percentage: 66},
			{Name: "C", VoteCount: 0, Percentage: 0},
		}
		for i, want := range expected {
			if resp.Results[i] != want {
				t.Errorf("Result %d: expected %+v, got %+v", i, want, resp.Results[i])
			}
		}
	})

	t.Run("unknown poll", func(t *testing.T) {
		w := serve(cfg, handler.GetResults, pollRequest(cfg, "GET", 50, "/results", nil, ""))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestGetParticipation(t *testing.T) {
	reg, _, _ := testutil.SetupTestRegistry(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(reg)

	open := testutil.CreateTestPoll(t, reg, "alice", false, nil)
	restricted := testutil.CreateTestPoll(t, reg, "alice", true, []models.Identity{"v1", "v2", "v3"})
	testutil.CastTestVote(t, reg, open, "v1", 0)
	testutil.CastTestVote(t, reg, restricted, "v1", 0)
	testutil.CastTestVote(t, reg, restricted, "v1", 1)

	t.Run("open poll has no percentage", func(t *testing.T) {
		w := serve(cfg, handler.GetParticipation, pollRequest(cfg, "GET", open, "/participation", nil, ""))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ParticipationResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.ParticipantCount != 1 || resp.Percentage != nil {
			t.Errorf("Unexpected participation: %+v", resp)
		}
	})

	t.Run("whitelisted poll", func(t *testing.T) {
		w := serve(cfg, handler.GetParticipation, pollRequest(cfg, "GET", restricted, "/participation", nil, ""))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ParticipationResponse
		testutil.AssertJSON(t, w, &resp)
		// A changed vote still counts as one participant
		if resp.ParticipantCount != 1 || resp.Percentage == nil || *resp.Percentage != 33 {
			t.Errorf("Unexpected participation: %+v", resp)
		}
	})
}
