package proxy

import (
	"net"
	"net/http"
	"strings"

	"github.com/golang/gddo/httputil/header"
)

// isHopByHopHeader checks if a given header name is a Hop-by-Hop header, and
// hence should not be forwarded between the client and the upstream server.
// The name must already be canonicalized with http.CanonicalHeaderKey().
func isHopByHopHeader(name string) bool {
	switch name {
	case
		"Connection",
		"Proxy-Connection",
		"Keep-Alive",
		"Proxy-Authenticate",
		"Proxy-Authorization",
		"Te",
		"Trailer",
		"Transfer-Encoding",
		"Upgrade",
		"Upgrade-Insecure-Requests":
		return true
	default:
		return false
	}
}

// connectionHeaders returns the canonical names of the additional hop-by-hop
// headers listed in the Connection header.
func connectionHeaders(headers http.Header) map[string]bool {
	names := map[string]bool{}
	for _, name := range header.ParseList(headers, "Connection") {
		names[http.CanonicalHeaderKey(name)] = true
	}

	return names
}

// isRangeHeader checks if a request header is consumed by the range layer
// rather than forwarded. The upstream server must always send the full
// content.
func isRangeHeader(name string) bool {
	return name == "Range" || name == "If-Range"
}

// buildUpstreamHeaders creates a set of headers that are to be forwarded to
// the upstream server for the given request. The X-Forwarded-For header is
// added.
//
// Accept-Encoding is not forwarded so that the transport negotiates (and
// decodes) compression itself.
func buildUpstreamHeaders(request *http.Request) http.Header {
	headers := http.Header{}
	listed := connectionHeaders(request.Header)
	var forwardedFor []string

	for name, values := range request.Header {
		switch {
		case name == "X-Forwarded-For":
			forwardedFor = values
		case isHopByHopHeader(name),
			listed[name],
			isRangeHeader(name),
			name == "Accept-Encoding":
			continue
		default:
			headers[name] = append([]string(nil), values...)
		}
	}

	if clientIP, _, err := net.SplitHostPort(request.RemoteAddr); err == nil {
		forwardedFor = append(forwardedFor, clientIP)
	}

	if len(forwardedFor) != 0 {
		headers.Set("X-Forwarded-For", strings.Join(forwardedFor, ", "))
	}

	return headers
}

// copyResponseHeaders copies the headers of an upstream response that are to
// be relayed to the client. Content-Length is omitted as it is recomputed once
// the range layer has produced the final body.
func copyResponseHeaders(target, source http.Header) {
	listed := connectionHeaders(source)

	for name, values := range source {
		if isHopByHopHeader(name) || listed[name] || name == "Content-Length" {
			continue
		}

		target[name] = append([]string(nil), values...)
	}
}
