// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/models"
	"github.com/danielhkuo/pollbook/testutil"
)

func ids(polls []models.Poll) []uint64 {
	out := make([]uint64, 0, len(polls))
	for _, p := range polls {
		out = append(out, p.ID)
	}
	return out
}

func TestListPolls(t *testing.T) {
	reg, clock, _ := testutil.SetupTestRegistry(t)
	ctx := context.Background()
	now := clock.Now()

	create := func(creator models.Identity, start, end uint64) uint64 {
		id, err := reg.CreatePoll(testutil.As(creator), models.CreatePollRequest{
			Question: "Q", Options: []string{"A", "B"}, StartTime: start, EndTime: end,
		})
		require.NoError(t, err)
		return id
	}

	short := create("alice", now, now+10)
	later := create("bob", now+50, now+100)
	long := create("alice", now, now+1000)
	clock.Set(now + 20)

	phase := func(p models.Phase) *models.Phase { return &p }
	identity := func(i models.Identity) *models.Identity { return &i }

	testCases := []struct {
		name     string
		filter   engine.PollFilter
		expected []uint64
	}{
		{"no filter", engine.PollFilter{}, []uint64{short, later, long}},
		{"ended", engine.PollFilter{Status: phase(models.PhaseEnded)}, []uint64{short}},
		{"not started", engine.PollFilter{Status: phase(models.PhaseNotStarted)}, []uint64{later}},
		{"ongoing", engine.PollFilter{Status: phase(models.PhaseOngoing)}, []uint64{long}},
		{"creator", engine.PollFilter{Creator: identity("alice")}, []uint64{short, long}},
		{"creator and status", engine.PollFilter{Creator: identity("alice"), Status: phase(models.PhaseOngoing)}, []uint64{long}},
		{"unknown creator", engine.PollFilter{Creator: identity("zed")}, []uint64{}},
		{"fixed time", engine.PollFilter{Status: phase(models.PhaseOngoing), At: now + 5}, []uint64{short, long}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			polls, err := reg.ListPolls(ctx, tc.filter)
			require.NoError(t, err)
			require.NotNil(t, polls)
			require.Equal(t, tc.expected, ids(polls))
		})
	}
}

func TestPollResultsNotFound(t *testing.T) {
	reg, _, _ := testutil.SetupTestRegistry(t)

	_, err := reg.PollResults(context.Background(), 3)
	require.ErrorIs(t, err, engine.ErrPollNotFound)
	require.Equal(t, engine.KindNotFound, engine.KindOf(err))

	_, err = reg.ParticipationStats(context.Background(), 3)
	require.ErrorIs(t, err, engine.ErrPollNotFound)
}
