// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/middleware"
	"github.com/danielhkuo/pollbook/models"
)

type ResultsHandler struct {
	reg *engine.Registry
}

func NewResultsHandler(reg *engine.Registry) *ResultsHandler {
	return &ResultsHandler{reg: reg}
}

// GetResults handles GET /polls/{id}/results
// Results are readable in every phase.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pollIDFromPath(w, r)
	if !ok {
		return
	}

	results, err := h.reg.PollResults(r.Context(), pollID)
	if err != nil {
		engineError(w, err, "compute results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollResultsResponse{
		PollID:  pollID,
		Results: results,
	})
}

// GetParticipation handles GET /polls/{id}/participation
func (h *ResultsHandler) GetParticipation(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pollIDFromPath(w, r)
	if !ok {
		return
	}

	stats, err := h.reg.ParticipationStats(r.Context(), pollID)
	if err != nil {
		engineError(w, err, "compute participation")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ParticipationResponse{
		PollID:             pollID,
		ParticipationStats: stats,
	})
}
