// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db implements engine.Store over database/sql for SQLite and PostgreSQL.

# Opening a Store

Open connects, pings, and creates the schema:

	store, err := db.Open(db.DriverSQLite, "polls.db")
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

DriverPostgres accepts a lib/pq connection string. SQLite uses a single
connection, so ":memory:" databases work for tests.

# Schema Creation

CreateSchema is safe to call multiple times - uses IF NOT EXISTS for all
tables and indexes. The same statements run on both drivers.

# Tables

  - poll_counter: Single row holding the next poll id
  - poll: Poll definition and closed flag
  - poll_option: Options in position order with their vote counts
  - poll_whitelist: Eligible identities, written once at creation
  - ballot: One ledger entry per voter per poll; option_index is NULL
    when the poll does not allow vote changes

# Relationships

	poll 1──* poll_option
	poll 1──* poll_whitelist
	poll 1──* ballot

All foreign keys use ON DELETE CASCADE.

# Transactions

Update runs the callback in one SQL transaction and commits only when it
returns nil. Writers are serialized with a mutex so tally updates never
interleave.
*/
package db
