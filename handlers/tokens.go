// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/pollbook/auth"
	"github.com/danielhkuo/pollbook/cliparse"
	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/middleware"
	"github.com/danielhkuo/pollbook/models"
)

// TokenHandler issues bearer tokens for development setups that have no
// external identity provider.
type TokenHandler struct {
	cfg cliparse.Config
}

func NewTokenHandler(cfg cliparse.Config) *TokenHandler {
	return &TokenHandler{cfg: cfg}
}

// IssueToken handles POST /tokens
func (h *TokenHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.IssueTokens {
		middleware.ErrorResponse(w, http.StatusNotFound, "Token issuing is disabled")
		return
	}

	var req models.IssueTokenRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		invalidJSON(w)
		return
	}
	if strings.TrimSpace(string(req.Identity)) == "" {
		middleware.ErrorResponseKind(w, http.StatusBadRequest, engine.KindValidation.String(), "identity is required")
		return
	}

	slog.Info("token issued", "identity", req.Identity, "remote", middleware.GetClientIP(r))

	middleware.JSONResponse(w, http.StatusCreated, models.IssueTokenResponse{
		Token: auth.IssueToken(req.Identity, h.cfg.TokenSalt),
	})
}
