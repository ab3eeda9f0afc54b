// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - StoreType: memory, sqlite, postgres or leveldb (default: sqlite)
  - DatabaseURL: SQL connection string or LevelDB directory (required unless memory)
  - TokenSalt: Secret for bearer token HMAC (required)
  - CacheSize: Decoded poll cache size for leveldb (default: 256)
  - IssueTokens: Enables POST /tokens for development

# CLI Flags

	-p             Server port
	-t             Store type
	-d             Database URL
	-token-salt    Token salt
	-cache         Poll cache size
	-issue-tokens  Enable the token endpoint
	-env           Dotenv file (default: .env)

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	STORE_TYPE      → -t
	DATABASE_URL    → -d
	TOKEN_SALT      → -token-salt
	POLL_CACHE_SIZE → -cache
	ISSUE_TOKENS    → -issue-tokens

CLI flags take precedence over environment variables, and variables already
set take precedence over the dotenv file. A missing dotenv file is ignored.

# Validation

ParseFlags returns an error if:

  - TOKEN_SALT is missing
  - DATABASE_URL is missing for a persistent store
  - the store type is unknown or a numeric variable does not parse

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	store, err := db.Open(db.DriverSQLite, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(registry, hub, cfg)
*/
package cliparse
