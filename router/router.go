// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/pollbook/cliparse"
	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/handlers"
	"github.com/danielhkuo/pollbook/middleware"
)

// NewRouter registers every endpoint. events serves GET /events and may be nil.
func NewRouter(reg *engine.Registry, events http.Handler, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(reg)
	votingHandler := handlers.NewVotingHandler(reg)
	resultsHandler := handlers.NewResultsHandler(reg)
	tokenHandler := handlers.NewTokenHandler(cfg)

	// Logging and bearer token resolution on every API route
	api := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.WithAuth(cfg.TokenSalt, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Poll registry
	mux.HandleFunc("POST /polls", api(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls", api(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/{id}", api(pollHandler.GetPoll))
	mux.HandleFunc("PUT /polls/{id}", api(pollHandler.ModifyPoll))
	mux.HandleFunc("POST /polls/{id}/close", api(pollHandler.ClosePoll))

	// Voting
	mux.HandleFunc("POST /polls/{id}/votes", api(votingHandler.CastVote))
	mux.HandleFunc("GET /polls/{id}/votes/me", api(votingHandler.HasVoted))

	// Results (readable in every phase)
	mux.HandleFunc("GET /polls/{id}/results", api(resultsHandler.GetResults))
	mux.HandleFunc("GET /polls/{id}/participation", api(resultsHandler.GetParticipation))

	// Development tokens
	mux.HandleFunc("POST /tokens", api(tokenHandler.IssueToken))

	// Vote event stream
	if events != nil {
		mux.HandleFunc("GET /events", middleware.WithLogging(events.ServeHTTP))
	}

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollbook API v1"))
	})

	return mux
}
