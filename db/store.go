// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/models"
)

// Driver names accepted by Open
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var errReadOnly = errors.New("db: write in read-only transaction")

// Store is an engine.Store over database/sql. Update calls are serialized
// in-process so read-modify-write of the tally never interleaves.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open connects with the given driver, verifies the connection and creates
// the schema.
func Open(driver, dsn string) (*Store, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// One connection keeps :memory: databases shared and avoids SQLITE_BUSY.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	if err := CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &Store{db: conn}, nil
}

// New wraps an existing connection. The schema must already exist.
func New(conn *sql.DB) *Store {
	return &Store{db: conn}
}

// DB exposes the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Update(ctx context.Context, fn func(tx engine.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(ctx, true, fn)
}

func (s *Store) View(ctx context.Context, fn func(tx engine.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.run(ctx, false, fn)
}

func (s *Store) run(ctx context.Context, writable bool, fn func(tx engine.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&tx{ctx: ctx, tx: sqlTx, writable: writable}); err != nil {
		return err
	}
	if !writable {
		return nil
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type tx struct {
	ctx      context.Context
	tx       *sql.Tx
	writable bool
}

func (t *tx) exec(query string, args ...any) error {
	if !t.writable {
		return errReadOnly
	}
	_, err := t.tx.ExecContext(t.ctx, query, args...)
	return err
}

func (t *tx) NextPollID() (uint64, error) {
	var next uint64
	err := t.tx.QueryRowContext(t.ctx, `SELECT next_poll_id FROM poll_counter WHERE id = 1`).Scan(&next)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query poll counter: %w", err)
	}
	return next, nil
}

func (t *tx) SetNextPollID(id uint64) error {
	err := t.exec(`
		INSERT INTO poll_counter (id, next_poll_id) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET next_poll_id = excluded.next_poll_id
	`, id)
	if err != nil {
		return fmt.Errorf("update poll counter: %w", err)
	}
	return nil
}

func (t *tx) GetPoll(id uint64) (models.Poll, bool, error) {
	var poll models.Poll
	err := t.tx.QueryRowContext(t.ctx, `
		SELECT id, question, start_time, end_time, creator, is_closed, can_change_vote
		FROM poll
		WHERE id = $1
	`, id).Scan(
		&poll.ID, &poll.Question, &poll.StartTime, &poll.EndTime,
		&poll.Creator, &poll.IsClosed, &poll.CanChangeVote,
	)
	if err == sql.ErrNoRows {
		return models.Poll{}, false, nil
	}
	if err != nil {
		return models.Poll{}, false, fmt.Errorf("query poll: %w", err)
	}

	options, err := t.loadOptions(`WHERE poll_id = $1`, id)
	if err != nil {
		return models.Poll{}, false, err
	}
	poll.Options = options[id]

	whitelists, err := t.loadWhitelists(`WHERE poll_id = $1`, id)
	if err != nil {
		return models.Poll{}, false, err
	}
	poll.Whitelist = whitelists[id]

	return poll, true, nil
}

func (t *tx) ListPolls() ([]models.Poll, error) {
	rows, err := t.tx.QueryContext(t.ctx, `
		SELECT id, question, start_time, end_time, creator, is_closed, can_change_vote
		FROM poll
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query polls: %w", err)
	}
	defer rows.Close()

	polls := []models.Poll{}
	for rows.Next() {
		var poll models.Poll
		if err := rows.Scan(
			&poll.ID, &poll.Question, &poll.StartTime, &poll.EndTime,
			&poll.Creator, &poll.IsClosed, &poll.CanChangeVote,
		); err != nil {
			return nil, fmt.Errorf("scan poll: %w", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate polls: %w", err)
	}
	rows.Close()

	options, err := t.loadOptions("")
	if err != nil {
		return nil, err
	}
	whitelists, err := t.loadWhitelists("")
	if err != nil {
		return nil, err
	}
	for i := range polls {
		polls[i].Options = options[polls[i].ID]
		polls[i].Whitelist = whitelists[polls[i].ID]
	}
	return polls, nil
}

func (t *tx) loadOptions(where string, args ...any) (map[uint64][]models.PollOption, error) {
	rows, err := t.tx.QueryContext(t.ctx, `
		SELECT poll_id, name, vote_count
		FROM poll_option `+where+`
		ORDER BY poll_id, position
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	defer rows.Close()

	options := make(map[uint64][]models.PollOption)
	for rows.Next() {
		var pollID uint64
		var opt models.PollOption
		if err := rows.Scan(&pollID, &opt.Name, &opt.VoteCount); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		options[pollID] = append(options[pollID], opt)
	}
	return options, rows.Err()
}

func (t *tx) loadWhitelists(where string, args ...any) (map[uint64][]models.Identity, error) {
	rows, err := t.tx.QueryContext(t.ctx, `
		SELECT poll_id, identity
		FROM poll_whitelist `+where+`
		ORDER BY poll_id, position
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query whitelist: %w", err)
	}
	defer rows.Close()

	whitelists := make(map[uint64][]models.Identity)
	for rows.Next() {
		var pollID uint64
		var identity models.Identity
		if err := rows.Scan(&pollID, &identity); err != nil {
			return nil, fmt.Errorf("scan whitelist: %w", err)
		}
		whitelists[pollID] = append(whitelists[pollID], identity)
	}
	return whitelists, rows.Err()
}

// PutPoll upserts the poll row and rewrites its options. The whitelist is
// only written when the poll is first inserted.
func (t *tx) PutPoll(poll models.Poll) error {
	if !t.writable {
		return errReadOnly
	}

	var exists bool
	err := t.tx.QueryRowContext(t.ctx, `
		SELECT EXISTS(SELECT 1 FROM poll WHERE id = $1)
	`, poll.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check poll: %w", err)
	}

	err = t.exec(`
		INSERT INTO poll (id, question, start_time, end_time, creator, is_closed, can_change_vote)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			question = excluded.question,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			is_closed = excluded.is_closed
	`, poll.ID, poll.Question, poll.StartTime, poll.EndTime, string(poll.Creator), poll.IsClosed, poll.CanChangeVote)
	if err != nil {
		return fmt.Errorf("upsert poll: %w", err)
	}

	if err := t.exec(`DELETE FROM poll_option WHERE poll_id = $1`, poll.ID); err != nil {
		return fmt.Errorf("delete options: %w", err)
	}
	for i, opt := range poll.Options {
		err := t.exec(`
			INSERT INTO poll_option (poll_id, position, name, vote_count)
			VALUES ($1, $2, $3, $4)
		`, poll.ID, i, opt.Name, opt.VoteCount)
		if err != nil {
			return fmt.Errorf("insert option: %w", err)
		}
	}

	if exists {
		return nil
	}
	for i, identity := range poll.Whitelist {
		err := t.exec(`
			INSERT INTO poll_whitelist (poll_id, position, identity)
			VALUES ($1, $2, $3)
		`, poll.ID, i, string(identity))
		if err != nil {
			return fmt.Errorf("insert whitelist entry: %w", err)
		}
	}
	return nil
}

func (t *tx) HasVoter(pollID uint64, voter models.Identity) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(t.ctx, `
		SELECT EXISTS(
			SELECT 1 FROM ballot
			WHERE poll_id = $1 AND voter = $2
		)
	`, pollID, string(voter)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check ballot: %w", err)
	}
	return exists, nil
}

func (t *tx) AddVoter(pollID uint64, voter models.Identity) error {
	err := t.exec(`
		INSERT INTO ballot (poll_id, voter, option_index)
		VALUES ($1, $2, NULL)
	`, pollID, string(voter))
	if err != nil {
		return fmt.Errorf("insert ballot: %w", err)
	}
	return nil
}

func (t *tx) GetChoice(pollID uint64, voter models.Identity) (int, bool, error) {
	var choice sql.NullInt64
	err := t.tx.QueryRowContext(t.ctx, `
		SELECT option_index FROM ballot WHERE poll_id = $1 AND voter = $2
	`, pollID, string(voter)).Scan(&choice)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query ballot: %w", err)
	}
	if !choice.Valid {
		return 0, false, nil
	}
	return int(choice.Int64), true, nil
}

func (t *tx) SetChoice(pollID uint64, voter models.Identity, optionIndex int) error {
	err := t.exec(`
		INSERT INTO ballot (poll_id, voter, option_index)
		VALUES ($1, $2, $3)
		ON CONFLICT (poll_id, voter) DO UPDATE SET option_index = excluded.option_index
	`, pollID, string(voter), optionIndex)
	if err != nil {
		return fmt.Errorf("upsert ballot: %w", err)
	}
	return nil
}

func (t *tx) LedgerSize(pollID uint64) (uint64, error) {
	var count uint64
	err := t.tx.QueryRowContext(t.ctx, `
		SELECT COUNT(*) FROM ballot WHERE poll_id = $1
	`, pollID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count ballots: %w", err)
	}
	return count, nil
}

func (t *tx) ClearLedger(pollID uint64) error {
	if err := t.exec(`DELETE FROM ballot WHERE poll_id = $1`, pollID); err != nil {
		return fmt.Errorf("clear ballots: %w", err)
	}
	return nil
}
