package statuspage

import "net/http"

// StatusMessage returns a short, human-readable description of the given HTTP
// status code.
func StatusMessage(statusCode int) string {
	switch statusCode {
	// 4xx
	case http.StatusBadRequest:
		return "The address to relay must be an absolute http:// or https:// URL."
	case http.StatusNotFound:
		return "The page you've requested could not be found."
	case http.StatusMethodNotAllowed:
		return "Only HEAD, GET, POST, PUT and DELETE requests can be relayed."
	case http.StatusRequestedRangeNotSatisfiable:
		return "The requested range can not be served from this content."
	case http.StatusRequestHeaderFieldsTooLarge:
		return "Your browser has sent a request header that is too large to process."

	// 5xx
	case http.StatusInternalServerError:
		return "We're sorry, something went wrong!"
	case http.StatusBadGateway:
		return "The upstream server could not be contacted, please try again."
	case http.StatusServiceUnavailable:
		return "The relay is temporarily unavailable, please try again."
	case http.StatusGatewayTimeout:
		return "The upstream server did not respond in a timely manner, please try again."
	}

	if 400 <= statusCode && statusCode <= 599 {
		return "We're sorry, something went wrong!"
	}

	return "That's all we know."
}
