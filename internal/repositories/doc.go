// Package repositories implements the persisted key/value storage behind the session store.
//
// Key Implementations:
//   - [SQLiteStorage] : local_storage table in the SQLite database, the default driver
//   - [RedisStorage] : keys under a prefix in Redis, shared between terminals
//
// Both satisfy session.Storage and can enumerate their keys with Entries.
package repositories
