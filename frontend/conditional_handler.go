package frontend

import "net/http"

// ConditionalHandler is an interface for http.Handler instances that optionally
// intercept an incoming request before it is relayed.
type ConditionalHandler interface {
	http.Handler

	// CanHandle returns true if request can be served by this handler.
	CanHandle(*http.Request) bool
}

// PathHandler is a ConditionalHandler that serves a single URL path.
type PathHandler struct {
	Path    string
	Handler http.Handler
}

// CanHandle returns true if the request path matches exactly.
func (handler *PathHandler) CanHandle(request *http.Request) bool {
	return request.URL.Path == handler.Path
}

func (handler *PathHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	handler.Handler.ServeHTTP(writer, request)
}
