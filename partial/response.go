package partial

import "net/http"

// Response is an outgoing response that has not yet been written to the
// client.
type Response struct {
	StatusCode int
	Header     http.Header
	Content    Content
}
