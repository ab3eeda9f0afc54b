// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollbook/models"
)

func dialHub(t *testing.T, hub *Hub, query string) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/events" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Subscribers() == n }, 2*time.Second, 10*time.Millisecond)
}

func readEvent(t *testing.T, conn *websocket.Conn) models.VoteCastEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event models.VoteCastEvent
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "")
	waitForSubscribers(t, hub, 1)

	hub.Emit(context.Background(), models.VoteCastEvent{ID: "e1", PollID: 3, Voter: "alice", OptionIndex: 1, OptionName: "B"})

	event := readEvent(t, conn)
	require.Equal(t, "e1", event.ID)
	require.Equal(t, uint64(3), event.PollID)
	require.Equal(t, models.Identity("alice"), event.Voter)
	require.Equal(t, "B", event.OptionName)
}

func TestHubPollFilter(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "?poll_id=2")
	waitForSubscribers(t, hub, 1)

	hub.Emit(context.Background(), models.VoteCastEvent{ID: "other", PollID: 1})
	hub.Emit(context.Background(), models.VoteCastEvent{ID: "mine", PollID: 2})

	require.Equal(t, "mine", readEvent(t, conn).ID)
}

func TestHubRejectsBadPollID(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/events?poll_id=abc"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, 400, resp.StatusCode)
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "")
	waitForSubscribers(t, hub, 1)

	conn.Close()
	waitForSubscribers(t, hub, 0)
}

func TestEmitDoesNotBlockOnSlowSubscriber(t *testing.T) {
	hub := NewHub()
	slow := &subscriber{send: make(chan []byte)}
	hub.register(slow)

	done := make(chan struct{})
	go func() {
		hub.Emit(context.Background(), models.VoteCastEvent{ID: "e1"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a subscriber that is not reading")
	}

	hub.Close()
	require.Zero(t, hub.Subscribers())
}

type recordingSink struct {
	events []models.VoteCastEvent
}

func (r *recordingSink) Emit(ctx context.Context, event models.VoteCastEvent) {
	r.events = append(r.events, event)
}

func TestMultiFansOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	sink := Multi{a, nil, b, LogSink{}}

	sink.Emit(context.Background(), models.VoteCastEvent{ID: "e1"})

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	require.Equal(t, "e1", b.events[0].ID)
}
