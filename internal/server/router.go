package server

import (
	"net/http"
	"slices"
	"strings"
	"sync"
)

// BasicRouter dispatches on path through an [http.ServeMux] and on method through its own route table.
//
// Several methods may share a path. A request with an unregistered method gets 405 with an Allow header.
// Middleware wraps the whole dispatch, so rejected requests are logged and CORS preflights are answered.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware

	mu     sync.RWMutex
	routes map[string]map[string]http.Handler // path -> method -> handler
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:         http.NewServeMux(),
		middlewares: []Middleware{},
		routes:      make(map[string]map[string]http.Handler),
	}
}

// Use adds [Middleware] to the router's stack, applied in the order it's added.
// Only routes registered afterwards are wrapped.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers handler for method on path.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	method = strings.ToUpper(method)

	r.mu.Lock()
	methods, ok := r.routes[path]
	if !ok {
		methods = make(map[string]http.Handler)
		r.routes[path] = methods
	}
	methods[method] = handler
	r.mu.Unlock()

	if !ok {
		r.mux.Handle(path, r.Apply(r.dispatch(path)))
	}
}

// dispatch picks the handler registered for the request's method on path.
func (r *BasicRouter) dispatch(path string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.RLock()
		handler, ok := r.routes[path][req.Method]
		allowed := r.allowed(path)
		r.mu.RUnlock()

		if !ok {
			methodNotAllowed(w, allowed...)
			return
		}
		handler.ServeHTTP(w, req)
	})
}

// allowed lists the methods registered on path. Callers hold r.mu.
func (r *BasicRouter) allowed(path string) []string {
	methods := make([]string, 0, len(r.routes[path]))
	for m := range r.routes[path] {
		methods = append(methods, m)
	}
	slices.Sort(methods)
	return methods
}

// Handler registers a [Handler] for every path in its Routes. It handles method dispatch itself.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.Apply(handler)

	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware; the first added runs outermost.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}
