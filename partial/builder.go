package partial

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/golang/gddo/httputil/header"
	"github.com/icecave/relay/byterange"
	"github.com/pkg/errors"
)

// newBoundary returns a random multipart boundary token.
var newBoundary = func() string {
	return multipart.NewWriter(io.Discard).Boundary()
}

// Apply carves the ranges named by specifier out of the response content.
//
// Responses that are already partial, or that carry an error status, are left
// untouched. Otherwise the content is materialized, the Accept-Ranges header
// is set, and the status and headers of res are updated to describe the
// partial content.
//
// A nil body and nil error mean the caller should send res.Content as-is.
// A non-nil body replaces the content. A *byterange.NotSatisfiableError means
// the specifier can not be honoured.
func Apply(res *Response, specifier string) ([]byte, error) {
	if res.StatusCode == http.StatusPartialContent ||
		res.StatusCode >= http.StatusBadRequest {
		return nil, nil
	}

	content, err := Materialize(res.Content)
	if errors.Is(err, ErrUnsupportedContent) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	// The stream has been consumed, so keep the buffered copy in its place.
	res.Content = Buffer(content)

	if res.Header == nil {
		res.Header = http.Header{}
	}
	res.Header.Set("Accept-Ranges", byterange.Unit)

	clen := int64(len(content))
	ranges, err := byterange.Parse(specifier, clen)
	if err != nil {
		return nil, err
	}

	switch len(ranges) {
	case 0:
		return nil, nil

	case 1:
		r := ranges[0]
		res.StatusCode = http.StatusPartialContent
		res.Header.Set("Content-Range", r.ContentRange(clen))
		res.Header.Set("Content-Length", strconv.FormatInt(r.Length(), 10))
		return content[r.Start:r.End], nil
	}

	boundary := uniqueBoundary(content)
	body := multipartBody(content, ranges, boundary, partContentType(res.Header))

	res.StatusCode = http.StatusPartialContent
	res.Header.Del("Content-Range")
	res.Header.Set("Content-Type", "multipart/byteranges; boundary="+boundary)
	res.Header.Set("Content-Length", strconv.Itoa(len(body)))

	return body, nil
}

// uniqueBoundary returns a boundary token that does not occur in content.
func uniqueBoundary(content []byte) string {
	for {
		boundary := newBoundary()
		if !bytes.Contains(content, []byte(boundary)) {
			return boundary
		}
	}
}

// multipartBody builds a multipart/byteranges body with one part per range.
func multipartBody(
	content []byte,
	ranges []byterange.Range,
	boundary string,
	contentType string,
) []byte {
	var buf bytes.Buffer
	clen := int64(len(content))

	for _, r := range ranges {
		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		if contentType != "" {
			fmt.Fprintf(&buf, "Content-Type: %s\r\n", contentType)
		}
		fmt.Fprintf(&buf, "Content-Range: %s\r\n", r.ContentRange(clen))
		buf.WriteString("\r\n")
		buf.Write(content[r.Start:r.End])
		buf.WriteString("\r\n")
	}

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	return buf.Bytes()
}

// partContentType returns the media type and charset of the original content,
// as they should appear in each part of a multipart response.
func partContentType(h http.Header) string {
	mediaType, params := header.ParseValueAndParams(h, "Content-Type")
	if mediaType == "" {
		return ""
	}

	if charset := params["charset"]; charset != "" {
		return mediaType + "; charset=" + charset
	}

	return mediaType
}
