// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package memstore is an in-memory engine.Store. Writes are staged per
// transaction and applied under the store lock only when the unit of work
// succeeds.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/models"
)

var errReadOnly = errors.New("memstore: write in read-only transaction")

type entry struct {
	choice    int
	hasChoice bool
}

type ledger map[models.Identity]entry

// Store keeps polls and ledgers in maps guarded by one RWMutex.
type Store struct {
	mu      sync.RWMutex
	nextID  uint64
	polls   map[uint64]models.Poll
	ledgers map[uint64]ledger
}

func New() *Store {
	return &Store{
		polls:   make(map[uint64]models.Poll),
		ledgers: make(map[uint64]ledger),
	}
}

// Update runs fn with exclusive access and commits staged writes if it
// returns nil.
func (s *Store) Update(ctx context.Context, fn func(tx engine.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{s: s, writable: true}
	if err := fn(t); err != nil {
		return err
	}
	t.commit()
	return nil
}

// View runs fn against a consistent snapshot.
func (s *Store) View(ctx context.Context, fn func(tx engine.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&tx{s: s})
}

type tx struct {
	s        *Store
	writable bool

	nextID  *uint64
	polls   map[uint64]models.Poll
	ledgers map[uint64]ledger
}

func (t *tx) commit() {
	if t.nextID != nil {
		t.s.nextID = *t.nextID
	}
	for id, poll := range t.polls {
		t.s.polls[id] = poll
	}
	for id, l := range t.ledgers {
		t.s.ledgers[id] = l
	}
}

func (t *tx) NextPollID() (uint64, error) {
	if t.nextID != nil {
		return *t.nextID, nil
	}
	return t.s.nextID, nil
}

func (t *tx) SetNextPollID(id uint64) error {
	if !t.writable {
		return errReadOnly
	}
	t.nextID = &id
	return nil
}

func (t *tx) GetPoll(id uint64) (models.Poll, bool, error) {
	if poll, ok := t.polls[id]; ok {
		return poll.Clone(), true, nil
	}
	poll, ok := t.s.polls[id]
	if !ok {
		return models.Poll{}, false, nil
	}
	return poll.Clone(), true, nil
}

func (t *tx) PutPoll(poll models.Poll) error {
	if !t.writable {
		return errReadOnly
	}
	if t.polls == nil {
		t.polls = make(map[uint64]models.Poll)
	}
	t.polls[poll.ID] = poll.Clone()
	return nil
}

func (t *tx) ListPolls() ([]models.Poll, error) {
	ids := make([]uint64, 0, len(t.s.polls)+len(t.polls))
	for id := range t.s.polls {
		ids = append(ids, id)
	}
	for id := range t.polls {
		if _, ok := t.s.polls[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	polls := make([]models.Poll, 0, len(ids))
	for _, id := range ids {
		poll, _, _ := t.GetPoll(id)
		polls = append(polls, poll)
	}
	return polls, nil
}

// readLedger returns the staged ledger if any, else the committed one.
func (t *tx) readLedger(pollID uint64) ledger {
	if l, ok := t.ledgers[pollID]; ok {
		return l
	}
	return t.s.ledgers[pollID]
}

// writeLedger copies the committed ledger on first write.
func (t *tx) writeLedger(pollID uint64) (ledger, error) {
	if !t.writable {
		return nil, errReadOnly
	}
	if l, ok := t.ledgers[pollID]; ok {
		return l, nil
	}
	base := t.s.ledgers[pollID]
	l := make(ledger, len(base)+1)
	for k, v := range base {
		l[k] = v
	}
	if t.ledgers == nil {
		t.ledgers = make(map[uint64]ledger)
	}
	t.ledgers[pollID] = l
	return l, nil
}

func (t *tx) HasVoter(pollID uint64, voter models.Identity) (bool, error) {
	_, ok := t.readLedger(pollID)[voter]
	return ok, nil
}

func (t *tx) AddVoter(pollID uint64, voter models.Identity) error {
	l, err := t.writeLedger(pollID)
	if err != nil {
		return err
	}
	l[voter] = entry{}
	return nil
}

func (t *tx) GetChoice(pollID uint64, voter models.Identity) (int, bool, error) {
	e, ok := t.readLedger(pollID)[voter]
	if !ok || !e.hasChoice {
		return 0, false, nil
	}
	return e.choice, true, nil
}

func (t *tx) SetChoice(pollID uint64, voter models.Identity, optionIndex int) error {
	l, err := t.writeLedger(pollID)
	if err != nil {
		return err
	}
	l[voter] = entry{choice: optionIndex, hasChoice: true}
	return nil
}

func (t *tx) LedgerSize(pollID uint64) (uint64, error) {
	return uint64(len(t.readLedger(pollID))), nil
}

func (t *tx) ClearLedger(pollID uint64) error {
	if !t.writable {
		return errReadOnly
	}
	if t.ledgers == nil {
		t.ledgers = make(map[uint64]ledger)
	}
	t.ledgers[pollID] = make(ledger)
	return nil
}
