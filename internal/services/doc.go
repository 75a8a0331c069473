// Package services defines the [Store] interface for the remote item store and implements it over HTTP.
//
// # Store Interface
//
// The synchronizer talks to the store only through [Store], which has four operations against the
// /todos collection: list (optionally filtered by completion), create, update (full-record PUT), and delete.
//
// # HTTP Implementation
//
// [StoreClient] sends JSON requests to a base URL (default http://localhost:8000) using an [http.Client].
// Outgoing requests can be paced with a token bucket from golang.org/x/time/rate (see [WithRateLimit]).
//
// # Error Handling
//
// Every failure is wrapped with [shared.ErrStoreRequest], whatever the cause:
//   - the request could not be built
//   - the transport failed (connection refused, canceled context, timeout)
//   - the store answered with a non-2xx status (see [StatusError])
//   - a success body could not be decoded
//
// Callers treat all of these identically. [StatusError] is available through errors.As for callers that
// want the status code without changing that contract.
package services
