// Package server provides HTTP routing, middleware, and the reference item store handler.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Item Store
//
// [TodosHandler] serves the /todos collection that the synchronizer talks to. It is backed by a
// [models.Repository], normally the SQLite repository from internal/repositories, and is what
// `tdx serve` runs for local development.
//
// Errors are written as JSON objects with a single "detail" key.
//
// # Middleware
//
//   - [RequestID] assigns an X-Request-ID to every request
//   - [Logging] logs method, path, status and duration
//   - [CORS] allows browser clients on other origins
//   - [Audit] records mutating requests in the request log
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
