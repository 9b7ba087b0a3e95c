package stats

// Entry is a single record in the statistics log, describing one relayed
// response.
type Entry struct {
	// URL is the target URL that the request was relayed to.
	URL string `json:"url"`

	// StatusCode is the HTTP status code sent to the client.
	StatusCode int `json:"status_code"`

	// Size is the number of response body bytes sent to the client.
	Size int64 `json:"size"`

	// Multipart is true if the response was a multipart/byteranges body.
	Multipart bool `json:"multipart,omitempty"`
}
