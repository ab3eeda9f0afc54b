// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/danielhkuo/pollbook/auth"
	"github.com/danielhkuo/pollbook/models"
	"github.com/danielhkuo/pollbook/testutil"
)

func TestIssueToken(t *testing.T) {
	cfg := testutil.GetTestConfig()
	handler := NewTokenHandler(cfg)

	req := testutil.MakeRequest("POST", "/tokens", models.IssueTokenRequest{Identity: "alice"}, nil)
	w := serve(cfg, handler.IssueToken, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.IssueTokenResponse
	testutil.AssertJSON(t, w, &resp)

	identity, err := auth.ParseToken(resp.Token, cfg.TokenSalt)
	if err != nil {
		t.Fatalf("Issued token does not verify: %v", err)
	}
	if identity != "alice" {
		t.Errorf("Expected identity 'alice', got '%s'", identity)
	}
}

func TestIssueToken_Rejections(t *testing.T) {
	enabled := testutil.GetTestConfig()
	disabled := testutil.GetTestConfig()
	disabled.IssueTokens = false

	testCases := []struct {
		name           string
		handler        *TokenHandler
		body           interface{}
		expectedStatus int
	}{
		{"disabled", NewTokenHandler(disabled), models.IssueTokenRequest{Identity: "alice"}, http.StatusNotFound},
		{"empty identity", NewTokenHandler(enabled), models.IssueTokenRequest{Identity: "  "}, http.StatusBadRequest},
		{"no body", NewTokenHandler(enabled), nil, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/tokens", tc.body, nil)
			w := serve(enabled, tc.handler.IssueToken, req)
			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}
}
