// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/pollbook/auth"
	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/middleware"
	"github.com/danielhkuo/pollbook/models"
)

type VotingHandler struct {
	reg *engine.Registry
}

func NewVotingHandler(reg *engine.Registry) *VotingHandler {
	return &VotingHandler{reg: reg}
}

// CastVote handles POST /polls/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pollIDFromPath(w, r)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		invalidJSON(w)
		return
	}
	if req.OptionIndex == nil {
		middleware.ErrorResponseKind(w, http.StatusBadRequest, engine.KindValidation.String(), "option_index is required")
		return
	}

	if err := h.reg.CastVote(r.Context(), pollID, *req.OptionIndex); err != nil {
		engineError(w, err, "cast vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CastVoteResponse{
		PollID:      pollID,
		OptionIndex: *req.OptionIndex,
		Message:     "Vote recorded",
	})
}

// HasVoted handles GET /polls/{id}/votes/me
func (h *VotingHandler) HasVoted(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pollIDFromPath(w, r)
	if !ok {
		return
	}

	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		engineError(w, engine.ErrUnauthenticated, "check vote")
		return
	}

	voted, choice, err := h.reg.HasVoted(r.Context(), pollID, caller)
	if err != nil {
		engineError(w, err, "check vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HasVotedResponse{
		Voted:       voted,
		OptionIndex: choice,
	})
}
