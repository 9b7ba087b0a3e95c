package ranges

import (
	"net/http"
	"net/url"
	"strings"
)

// Key is the name of the request header and of the query parameter that carry
// a range specifier. The query parameter mirrors the header for clients that
// can not set arbitrary headers.
const Key = "range"

// ConflictError indicates that a request carries different range specifiers
// in its header and its query string.
type ConflictError struct {
	Values []string
}

func (err *ConflictError) Error() string {
	return "`" + Key + "` range specifiers differ: " + strings.Join(err.Values, " != ")
}

// Specifier returns the range specifier of a request, given its headers and
// query parameters. The header takes priority over the query parameter, but
// when both are present they must be identical. An empty string is returned
// if neither is present.
func Specifier(header http.Header, query url.Values) (string, error) {
	var present []string

	if values := header[http.CanonicalHeaderKey(Key)]; len(values) != 0 {
		present = append(present, values[0])
	}

	if values := query[Key]; len(values) != 0 {
		present = append(present, values[0])
	}

	if len(present) == 0 {
		return "", nil
	}

	for _, value := range present[1:] {
		if value != present[0] {
			return "", &ConflictError{Values: present}
		}
	}

	return present[0], nil
}
