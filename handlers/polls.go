// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/middleware"
	"github.com/danielhkuo/pollbook/models"
)

type PollHandler struct {
	reg *engine.Registry
}

func NewPollHandler(reg *engine.Registry) *PollHandler {
	return &PollHandler{reg: reg}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	pollID, err := h.reg.CreatePoll(r.Context(), req)
	if err != nil {
		engineError(w, err, "create poll")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID: pollID,
	})
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pollIDFromPath(w, r)
	if !ok {
		return
	}

	poll, err := h.reg.GetPoll(r.Context(), pollID)
	if err != nil {
		engineError(w, err, "load poll")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollResponse{
		Poll:  poll,
		Phase: engine.PollPhase(poll, h.reg.Now()),
	})
}

// ListPolls handles GET /polls?status=&creator=
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	filter := engine.PollFilter{At: h.reg.Now()}

	query := r.URL.Query()
	if status := query.Get("status"); status != "" {
		phase, err := engine.ParsePhase(status)
		if err != nil {
			engineError(w, err, "list polls")
			return
		}
		filter.Status = &phase
	}
	if creator := query.Get("creator"); creator != "" {
		identity := models.Identity(creator)
		filter.Creator = &identity
	}

	polls, err := h.reg.ListPolls(r.Context(), filter)
	if err != nil {
		engineError(w, err, "list polls")
		return
	}

	resp := models.ListPollsResponse{Polls: make([]models.PollResponse, 0, len(polls))}
	for _, poll := range polls {
		resp.Polls = append(resp.Polls, models.PollResponse{
			Poll:  poll,
			Phase: engine.PollPhase(poll, filter.At),
		})
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// ModifyPoll handles PUT /polls/{id}
func (h *PollHandler) ModifyPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pollIDFromPath(w, r)
	if !ok {
		return
	}

	var req models.ModifyPollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	if err := h.reg.ModifyPoll(r.Context(), pollID, req); err != nil {
		engineError(w, err, "modify poll")
		return
	}

	poll, err := h.reg.GetPoll(r.Context(), pollID)
	if err != nil {
		engineError(w, err, "load poll")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollResponse{
		Poll:  poll,
		Phase: engine.PollPhase(poll, h.reg.Now()),
	})
}

// ClosePoll handles POST /polls/{id}/close
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pollIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.reg.ClosePoll(r.Context(), pollID); err != nil {
		engineError(w, err, "close poll")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ClosePollResponse{
		PollID:   pollID,
		IsClosed: true,
	})
}
