// Package repositories implements SQLite persistence for the reference item store.
//
// Key Implementations:
//   - [ItemRepository] : todo items in insertion order, filtered by completion
//   - [RequestLogRepository] : audit trail of requests handled by `tdx serve`
//
// Both repositories expect a database migrated with [shared.RunMigrations].
package repositories
