// package server contains middleware & handlers for the reference item store
package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/repositories"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the item store.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// StoreOpts configures [NewStoreRouter].
type StoreOpts struct {
	Items    models.Repository
	Requests *repositories.RequestLogRepository // Optional; enables the audit middleware
	Logger   *log.Logger
}

// NewStoreRouter builds the router served by `tdx serve`: the /todos handler, a health check,
// and the middleware stack.
func NewStoreRouter(opts StoreOpts) *BasicRouter {
	r := NewBasicRouter()
	r.Use(RequestID(), Logging(opts.Logger), CORS())
	if opts.Requests != nil {
		r.Use(Audit(opts.Requests, opts.Logger))
	}

	r.Handler(NewTodosHandler(opts.Items, opts.Logger))
	r.Handle(http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	return r
}
