// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"log/slog"

	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/models"
)

// LogSink writes each vote event to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

func (l LogSink) Emit(ctx context.Context, event models.VoteCastEvent) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "vote event",
		"event_id", event.ID,
		"poll_id", event.PollID,
		"voter", event.Voter,
		"option_index", event.OptionIndex,
		"option_name", event.OptionName,
		"cast_at", event.CastAt,
	)
}

// Multi emits to every sink in order. Nil sinks are skipped.
type Multi []engine.EventSink

func (m Multi) Emit(ctx context.Context, event models.VoteCastEvent) {
	for _, sink := range m {
		if sink != nil {
			sink.Emit(ctx, event)
		}
	}
}
