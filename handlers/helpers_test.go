// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/danielhkuo/pollbook/cliparse"
	"github.com/danielhkuo/pollbook/middleware"
	"github.com/danielhkuo/pollbook/models"
	"github.com/danielhkuo/pollbook/testutil"
)

// serve runs handler behind the auth middleware, as the router does
func serve(cfg cliparse.Config, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	middleware.WithAuth(cfg.TokenSalt, handler)(w, req)
	return w
}

// pollRequest builds a request for a /polls/{id}... route, optionally authenticated
func pollRequest(cfg cliparse.Config, method string, pollID uint64, suffix string, body interface{}, caller models.Identity) *http.Request {
	id := strconv.FormatUint(pollID, 10)

	var headers map[string]string
	if caller != "" {
		headers = testutil.AuthHeader(cfg, caller)
	}

	req := testutil.MakeRequest(method, "/polls/"+id+suffix, body, headers)
	req.SetPathValue("id", id)
	return req
}

func intPtr(i int) *int { return &i }
