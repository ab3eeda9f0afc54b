// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package events delivers committed vote notifications.

Hub implements engine.EventSink and http.Handler. Clients connect with a
websocket to GET /events, optionally with ?poll_id=N, and receive each
models.VoteCastEvent as a JSON text message:

	{"id":"...","poll_id":0,"voter":"alice","option_index":1,"option_name":"B","cast_at":1700000000}

Emit never blocks; a subscriber whose buffer is full misses the event.

LogSink writes events to slog and Multi fans one event out to several sinks:

	sink := events.Multi{hub, events.LogSink{}}
*/
package events
