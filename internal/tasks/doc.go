// Package tasks keeps a local task list consistent with the remote item store.
//
// # Synchronizer
//
// [Synchronizer] owns the list state (items, filter, draft text, load phase) and mediates every user
// intent against a [services.Store]:
//
//  1. [Synchronizer.Initialize] : one initial load per synchronizer, guarded before the request is issued
//  2. [Synchronizer.ChangeFilter] : server-side filtering; current items stay visible while the request runs
//  3. [Synchronizer.EditItem] : optimistic local edit followed by a coalesced full-record PUT
//  4. [Synchronizer.AddItem] : create on the store, append the returned record on success
//  5. [Synchronizer.DeleteItem] : delete on the store, remove locally only after success
//
// Every change publishes a new [State] snapshot. Published item slices are never mutated; edits copy the
// slice and replace the one changed element.
//
// List responses carry a sequence number, and only the most recently issued fetch may change state,
// so filter responses that arrive out of order are discarded.
//
// # Coalesced Writes
//
// [Scheduler] is a keyed debounce: each key (an item ID) has its own timer and latest payload, and a burst
// of edits to one item produces exactly one write carrying the final value once the quiet period passes.
// Keys never share timers, so editing one item cannot delay or replace another item's pending write.
//
// # Error Reporting
//
// Store failures are returned to the caller, logged, recorded on [State.Err], and sent as [EventError]
// on the optional events channel. This includes failed coalesced writes, which have no caller.
// Events use select with default so a slow consumer never blocks the synchronizer.
//
// # Teardown
//
// [Synchronizer.Close] flushes pending coalesced writes immediately and stops the scheduler. Results of
// those writes are only reported, never applied to state.
package tasks
