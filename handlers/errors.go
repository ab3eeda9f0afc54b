// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/middleware"
)

// statusFor maps an engine error kind to its HTTP status
func statusFor(kind engine.Kind) int {
	switch kind {
	case engine.KindValidation, engine.KindIndex:
		return http.StatusBadRequest
	case engine.KindUnauthenticated:
		return http.StatusUnauthorized
	case engine.KindAuthorization, engine.KindEligibility:
		return http.StatusForbidden
	case engine.KindNotFound:
		return http.StatusNotFound
	case engine.KindState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// engineError writes err as a JSON error. Internal errors are logged and
// their detail is withheld from the client.
func engineError(w http.ResponseWriter, err error, action string) {
	kind := engine.KindOf(err)
	status := statusFor(kind)

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "action", action, "error", err)
		middleware.ErrorResponseKind(w, status, kind.String(), "Failed to "+action)
		return
	}

	middleware.ErrorResponseKind(w, status, kind.String(), err.Error())
}

// pollIDFromPath parses the {id} path value
func pollIDFromPath(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.PathValue("id")
	if raw == "" {
		middleware.ErrorResponseKind(w, http.StatusBadRequest, engine.KindValidation.String(), "poll id is required")
		return 0, false
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		middleware.ErrorResponseKind(w, http.StatusBadRequest, engine.KindValidation.String(), "poll id must be a non-negative integer")
		return 0, false
	}
	return id, true
}

func invalidJSON(w http.ResponseWriter) {
	middleware.ErrorResponseKind(w, http.StatusBadRequest, engine.KindValidation.String(), "Invalid JSON")
}
