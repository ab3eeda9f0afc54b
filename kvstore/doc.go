// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package kvstore implements engine.Store on LevelDB.

# Layout

	meta/next_poll_id               8-byte big-endian counter
	poll/<id>                       msgpack-encoded models.Poll
	ledger/<id>/<identity>          msgpack-encoded ballot

Ids are big-endian so a prefix scan over poll/ returns polls in id order.

# Transactions

Update collects writes in a leveldb.Batch and reads its own staged writes.
The batch is written atomically when the callback returns nil and dropped
otherwise. Decoded polls are cached in an LRU sized by POLL_CACHE_SIZE;
the cache is refreshed only after a successful write.
*/
package kvstore
