// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/pollbook/auth"
	"github.com/danielhkuo/pollbook/cliparse"
	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/memstore"
	"github.com/danielhkuo/pollbook/models"
)

// BaseTime is the fake clock's starting point (Unix seconds)
const BaseTime uint64 = 1_700_000_000

// FakeClock is a settable engine.Clock
type FakeClock struct {
	now atomic.Uint64
}

func NewFakeClock(start uint64) *FakeClock {
	c := &FakeClock{}
	c.now.Store(start)
	return c
}

func (c *FakeClock) Now() uint64 { return c.now.Load() }

func (c *FakeClock) Set(t uint64) { c.now.Store(t) }

func (c *FakeClock) Advance(d uint64) { c.now.Add(d) }

// RecordingSink collects emitted events
type RecordingSink struct {
	mu     sync.Mutex
	events []models.VoteCastEvent
}

func (s *RecordingSink) Emit(_ context.Context, event models.VoteCastEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *RecordingSink) Events() []models.VoteCastEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.VoteCastEvent(nil), s.events...)
}

// SetupTestRegistry returns a registry on a fresh memory store with a fake clock
func SetupTestRegistry(t *testing.T) (*engine.Registry, *FakeClock, *RecordingSink) {
	t.Helper()

	clock := NewFakeClock(BaseTime)
	sink := &RecordingSink{}
	reg := engine.NewRegistry(memstore.New(), clock, auth.ContextIdentity{}, engine.WithEvents(sink))
	return reg, clock, sink
}

// As returns a context authenticated as identity
func As(identity models.Identity) context.Context {
	return auth.WithCaller(context.Background(), identity)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:        3318,
		StoreType:   cliparse.StoreMemory,
		TokenSalt:   "test-token-salt",
		CacheSize:   16,
		IssueTokens: true,
	}
}

// CreateTestPoll creates an ongoing poll owned by creator and returns its ID
func CreateTestPoll(t *testing.T, reg *engine.Registry, creator models.Identity, canChange bool, whitelist []models.Identity, options ...string) uint64 {
	t.Helper()

	if len(options) == 0 {
		options = []string{"A", "B", "C"}
	}
	now := reg.Now()
	id, err := reg.CreatePoll(As(creator), models.CreatePollRequest{
		Question:      "Test Poll",
		Options:       options,
		StartTime:     now,
		EndTime:       now + 3600,
		CanChangeVote: canChange,
		Whitelist:     whitelist,
	})
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return id
}

// CastTestVote votes as voter and fails the test on error
func CastTestVote(t *testing.T, reg *engine.Registry, pollID uint64, voter models.Identity, optionIndex int) {
	t.Helper()

	if err := reg.CastVote(As(voter), pollID, optionIndex); err != nil {
		t.Fatalf("Failed to cast test vote for %s: %v", voter, err)
	}
}

// AuthHeader returns the Authorization header map for identity
func AuthHeader(cfg cliparse.Config, identity models.Identity) map[string]string {
	return map[string]string{"Authorization": "Bearer " + auth.IssueToken(identity, cfg.TokenSalt)}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
