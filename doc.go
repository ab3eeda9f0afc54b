// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the pollbook API server.

pollbook keeps a registry of time-bounded single-choice polls. Each poll has
a fixed option list, an optional voter whitelist and a ledger of who voted.
Polls either lock a vote in or let voters move it; tallies and ledgers are
always updated together.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	TOKEN_SALT=... DATABASE_URL=polls.db go run .

Or with flags:

	go run . -p 3318 -t leveldb -d ./data -token-salt dev -issue-tokens

A .env file in the working directory is loaded if present.

# Configuration

Required settings:

  - TOKEN_SALT (-token-salt): Secret for bearer token HMAC
  - DATABASE_URL (-d): SQL connection string or LevelDB directory,
    unless STORE_TYPE is memory

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - STORE_TYPE (-t): memory, sqlite, postgres or leveldb (default: sqlite)
  - POLL_CACHE_SIZE (-cache): Decoded poll cache for leveldb (default: 256)
  - ISSUE_TOKENS (-issue-tokens): Enable POST /tokens

# Architecture

  - engine: Poll registry, vote ledgers, tallies and statistics
  - memstore, db, kvstore: engine.Store implementations
  - events: Websocket and log delivery of vote events
  - handlers: HTTP request handlers (polls, voting, results, tokens)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, bearer auth, JSON helpers
  - models: Domain, request and response types
  - auth: Caller tokens and context identity
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
