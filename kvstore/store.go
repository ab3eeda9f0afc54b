// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kvstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/models"
)

// DefaultCacheSize is used when Open is given a non-positive cache size.
const DefaultCacheSize = 256

var (
	keyNextPollID = []byte("meta/next_poll_id")
	prefixPoll    = []byte("poll/")
	prefixLedger  = []byte("ledger/")
)

var errReadOnly = errors.New("kvstore: write in read-only transaction")

// ballot is the stored ledger entry. Immutable ledgers store membership only.
type ballot struct {
	Choice    int  `msgpack:"c"`
	HasChoice bool `msgpack:"h"`
}

// Store is an engine.Store backed by LevelDB. Polls are msgpack encoded and
// the most recently used ones are kept decoded in an LRU cache.
type Store struct {
	mu    sync.RWMutex
	db    *leveldb.DB
	cache *lru.Cache
}

// Open opens or creates a LevelDB database at path.
func Open(path string, cacheSize int) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		BlockCacheCapacity: 8 * opt.MiB,
		WriteBuffer:        4 * opt.MiB,
	})
	if _, corrupted := err.(*lerrors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return newStore(db, cacheSize)
}

// OpenMemory opens a store that lives only in memory.
func OpenMemory(cacheSize int) (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb memory storage: %w", err)
	}
	return newStore(db, cacheSize)
}

func newStore(db *leveldb.DB, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create poll cache: %w", err)
	}
	return &Store{db: db, cache: cache}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Update(ctx context.Context, fn func(tx engine.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{store: s, writable: true, batch: new(leveldb.Batch), staged: make(map[string][]byte), polls: make(map[uint64]models.Poll)}
	if err := fn(t); err != nil {
		return err
	}
	if t.batch.Len() == 0 {
		return nil
	}
	if err := s.db.Write(t.batch, nil); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}

	for id, poll := range t.polls {
		s.cache.Add(id, poll)
	}
	return nil
}

func (s *Store) View(ctx context.Context, fn func(tx engine.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&tx{store: s})
}

// tx reads through its staged writes to the database. A nil staged value
// marks a delete.
type tx struct {
	store    *Store
	writable bool
	batch    *leveldb.Batch
	staged   map[string][]byte
	polls    map[uint64]models.Poll
}

func (t *tx) get(key []byte) ([]byte, bool, error) {
	if value, ok := t.staged[string(key)]; ok {
		return value, value != nil, nil
	}
	value, err := t.store.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (t *tx) put(key, value []byte) error {
	if !t.writable {
		return errReadOnly
	}
	t.batch.Put(key, value)
	t.staged[string(key)] = value
	return nil
}

func (t *tx) delete(key []byte) error {
	if !t.writable {
		return errReadOnly
	}
	t.batch.Delete(key)
	t.staged[string(key)] = nil
	return nil
}

// keys lists live keys under prefix, merging staged writes, in key order.
func (t *tx) keys(prefix []byte) ([]string, error) {
	live := make(map[string]struct{})

	iter := t.store.db.NewIterator(util.BytesPrefix(prefix), nil)
	for iter.Next() {
		live[string(iter.Key())] = struct{}{}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, err
	}

	for key, value := range t.staged {
		if !bytes.HasPrefix([]byte(key), prefix) {
			continue
		}
		if value == nil {
			delete(live, key)
		} else {
			live[key] = struct{}{}
		}
	}

	keys := make([]string, 0, len(live))
	for key := range live {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (t *tx) NextPollID() (uint64, error) {
	value, found, err := t.get(keyNextPollID)
	if err != nil {
		return 0, fmt.Errorf("read poll counter: %w", err)
	}
	if !found {
		return 0, nil
	}
	return binary.BigEndian.Uint64(value), nil
}

func (t *tx) SetNextPollID(id uint64) error {
	return t.put(keyNextPollID, binary.BigEndian.AppendUint64(nil, id))
}

func (t *tx) GetPoll(id uint64) (models.Poll, bool, error) {
	if poll, ok := t.polls[id]; ok {
		return poll.Clone(), true, nil
	}
	if cached, ok := t.store.cache.Get(id); ok {
		return cached.(models.Poll).Clone(), true, nil
	}

	value, found, err := t.get(pollKey(id))
	if err != nil {
		return models.Poll{}, false, fmt.Errorf("read poll %d: %w", id, err)
	}
	if !found {
		return models.Poll{}, false, nil
	}

	poll, err := decodePoll(value)
	if err != nil {
		return models.Poll{}, false, err
	}
	t.store.cache.Add(id, poll)
	return poll.Clone(), true, nil
}

func (t *tx) PutPoll(poll models.Poll) error {
	value, err := msgpack.Marshal(&poll)
	if err != nil {
		return fmt.Errorf("encode poll %d: %w", poll.ID, err)
	}
	if err := t.put(pollKey(poll.ID), value); err != nil {
		return err
	}
	t.polls[poll.ID] = poll.Clone()
	return nil
}

func (t *tx) ListPolls() ([]models.Poll, error) {
	keys, err := t.keys(prefixPoll)
	if err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}

	// Big-endian ids make key order id order.
	polls := make([]models.Poll, 0, len(keys))
	for _, key := range keys {
		id := binary.BigEndian.Uint64([]byte(key)[len(prefixPoll):])
		poll, found, err := t.GetPoll(id)
		if err != nil {
			return nil, err
		}
		if found {
			polls = append(polls, poll)
		}
	}
	return polls, nil
}

func (t *tx) getBallot(pollID uint64, voter models.Identity) (ballot, bool, error) {
	value, found, err := t.get(ledgerKey(pollID, voter))
	if err != nil || !found {
		return ballot{}, false, err
	}
	var b ballot
	if err := msgpack.Unmarshal(value, &b); err != nil {
		return ballot{}, false, fmt.Errorf("decode ballot: %w", err)
	}
	return b, true, nil
}

func (t *tx) putBallot(pollID uint64, voter models.Identity, b ballot) error {
	value, err := msgpack.Marshal(&b)
	if err != nil {
		return fmt.Errorf("encode ballot: %w", err)
	}
	return t.put(ledgerKey(pollID, voter), value)
}

func (t *tx) HasVoter(pollID uint64, voter models.Identity) (bool, error) {
	_, found, err := t.getBallot(pollID, voter)
	return found, err
}

func (t *tx) AddVoter(pollID uint64, voter models.Identity) error {
	return t.putBallot(pollID, voter, ballot{})
}

func (t *tx) GetChoice(pollID uint64, voter models.Identity) (int, bool, error) {
	b, found, err := t.getBallot(pollID, voter)
	if err != nil || !found || !b.HasChoice {
		return 0, false, err
	}
	return b.Choice, true, nil
}

func (t *tx) SetChoice(pollID uint64, voter models.Identity, optionIndex int) error {
	return t.putBallot(pollID, voter, ballot{Choice: optionIndex, HasChoice: true})
}

func (t *tx) LedgerSize(pollID uint64) (uint64, error) {
	keys, err := t.keys(ledgerPrefix(pollID))
	if err != nil {
		return 0, fmt.Errorf("count ledger %d: %w", pollID, err)
	}
	return uint64(len(keys)), nil
}

func (t *tx) ClearLedger(pollID uint64) error {
	if !t.writable {
		return errReadOnly
	}
	keys, err := t.keys(ledgerPrefix(pollID))
	if err != nil {
		return fmt.Errorf("clear ledger %d: %w", pollID, err)
	}
	for _, key := range keys {
		if err := t.delete([]byte(key)); err != nil {
			return err
		}
	}
	return nil
}

func decodePoll(value []byte) (models.Poll, error) {
	var poll models.Poll
	if err := msgpack.Unmarshal(value, &poll); err != nil {
		return models.Poll{}, fmt.Errorf("decode poll: %w", err)
	}
	return poll, nil
}

func pollKey(id uint64) []byte {
	return binary.BigEndian.AppendUint64(append([]byte(nil), prefixPoll...), id)
}

func ledgerPrefix(pollID uint64) []byte {
	key := binary.BigEndian.AppendUint64(append([]byte(nil), prefixLedger...), pollID)
	return append(key, '/')
}

func ledgerKey(pollID uint64, voter models.Identity) []byte {
	return append(ledgerPrefix(pollID), string(voter)...)
}
