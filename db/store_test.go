// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/models"
	"github.com/danielhkuo/pollbook/testutil"
)

// setupTestStore opens a fresh in-memory SQLite database with the full schema
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreConformance(t *testing.T) {
	testutil.RunStoreConformance(t, func(t *testing.T) engine.Store {
		return setupTestStore(t)
	})
}

func TestCreateSchemaIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, CreateSchema(s.DB()))
	require.NoError(t, CreateSchema(s.DB()))
}

func TestUpdateRollsBackOnError(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Update(ctx, func(tx engine.Tx) error {
		require.NoError(t, tx.PutPoll(models.Poll{
			ID: 0, Question: "Q", StartTime: 1, EndTime: 2, Creator: "alice",
			Options: []models.PollOption{{Name: "A"}, {Name: "B"}},
		}))
		require.NoError(t, tx.SetNextPollID(1))
		require.NoError(t, tx.AddVoter(0, "v1"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.View(ctx, func(tx engine.Tx) error {
		_, found, err := tx.GetPoll(0)
		require.NoError(t, err)
		require.False(t, found)

		next, err := tx.NextPollID()
		require.NoError(t, err)
		require.Zero(t, next)

		size, err := tx.LedgerSize(0)
		require.NoError(t, err)
		require.Zero(t, size)
		return nil
	}))
}

func TestViewIsReadOnly(t *testing.T) {
	s := setupTestStore(t)
	err := s.View(context.Background(), func(tx engine.Tx) error {
		return tx.SetNextPollID(5)
	})
	require.ErrorIs(t, err, errReadOnly)
}

func TestPutPollKeepsWhitelist(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	poll := models.Poll{
		ID: 7, Question: "Q", StartTime: 1, EndTime: 2, Creator: "alice",
		Options:   []models.PollOption{{Name: "A"}, {Name: "B"}},
		Whitelist: []models.Identity{"v1", "v2"},
	}
	require.NoError(t, s.Update(ctx, func(tx engine.Tx) error { return tx.PutPoll(poll) }))

	// A later write with a different whitelist must not change the stored one
	poll.Whitelist = []models.Identity{"mallory"}
	poll.Options[1].VoteCount = 3
	poll.IsClosed = true
	require.NoError(t, s.Update(ctx, func(tx engine.Tx) error { return tx.PutPoll(poll) }))

	require.NoError(t, s.View(ctx, func(tx engine.Tx) error {
		got, found, err := tx.GetPoll(7)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, []models.Identity{"v1", "v2"}, got.Whitelist)
		require.Equal(t, uint64(3), got.Options[1].VoteCount)
		require.True(t, got.IsClosed)
		return nil
	}))
}

func TestLedgerEntries(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, func(tx engine.Tx) error {
		require.NoError(t, tx.PutPoll(models.Poll{
			ID: 0, Question: "Q", StartTime: 1, EndTime: 2, Creator: "alice",
			Options: []models.PollOption{{Name: "A"}, {Name: "B"}},
		}))
		require.NoError(t, tx.AddVoter(0, "member"))
		require.NoError(t, tx.SetChoice(0, "chooser", 0))
		return tx.SetChoice(0, "chooser", 1)
	}))

	require.NoError(t, s.View(ctx, func(tx engine.Tx) error {
		// Membership-only entries have no choice
		_, found, err := tx.GetChoice(0, "member")
		require.NoError(t, err)
		require.False(t, found)

		voted, err := tx.HasVoter(0, "member")
		require.NoError(t, err)
		require.True(t, voted)

		choice, found, err := tx.GetChoice(0, "chooser")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, 1, choice)

		size, err := tx.LedgerSize(0)
		require.NoError(t, err)
		require.Equal(t, uint64(2), size)
		return nil
	}))

	require.NoError(t, s.Update(ctx, func(tx engine.Tx) error { return tx.ClearLedger(0) }))
	require.NoError(t, s.View(ctx, func(tx engine.Tx) error {
		size, err := tx.LedgerSize(0)
		require.NoError(t, err)
		require.Zero(t, size)
		return nil
	}))
}
