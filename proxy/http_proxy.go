package proxy

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/icecave/relay/partial"
	"github.com/icecave/relay/ranges"
	"github.com/icecave/relay/statuspage"
	"github.com/icecave/relay/target"
	"github.com/pkg/errors"
)

// HTTPProxy is a ranges.Forwarder that relays a request to the absolute URL
// named by its path, and returns the upstream response without buffering it.
type HTTPProxy struct {
	// Transport performs the upstream round-trip. If it is nil,
	// http.DefaultTransport is used. Redirects are relayed to the client
	// rather than followed.
	Transport http.RoundTripper

	// Timeout bounds the entire upstream exchange, including reading the
	// response body. A zero value means no timeout.
	Timeout time.Duration
}

// Forward sends request to its target and returns the upstream response.
func (proxy *HTTPProxy) Forward(request *http.Request) (*partial.Response, error) {
	if !isRelayedMethod(request.Method) {
		return nil, statuspage.Error{
			Inner:      errors.Errorf("method %s can not be relayed", request.Method),
			StatusCode: http.StatusMethodNotAllowed,
		}
	}

	u, err := target.FromRequest(request, ranges.Key)
	if err != nil {
		return nil, statuspage.Error{
			Inner:      err,
			StatusCode: http.StatusBadRequest,
		}
	}

	var ctx context.Context
	var cancel context.CancelFunc
	if proxy.Timeout > 0 {
		ctx, cancel = context.WithTimeout(request.Context(), proxy.Timeout)
	} else {
		ctx, cancel = context.WithCancel(request.Context())
	}

	body := request.Body
	if request.ContentLength == 0 {
		body = http.NoBody
	}

	upstreamRequest, err := http.NewRequestWithContext(ctx, request.Method, u.String(), body)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "could not prepare upstream request")
	}
	upstreamRequest.ContentLength = request.ContentLength
	upstreamRequest.Header = buildUpstreamHeaders(request)

	transport := proxy.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	response, err := transport.RoundTrip(upstreamRequest)
	if err != nil {
		cancel()
		return nil, upstreamError(err, u.Host)
	}

	header := http.Header{}
	copyResponseHeaders(header, response.Header)

	if request.Method == http.MethodHead {
		if length := response.Header.Get("Content-Length"); length != "" {
			header.Set("Content-Length", length)
		}
	}

	return &partial.Response{
		StatusCode: response.StatusCode,
		Header:     header,
		Content: partial.Stream{
			ReadCloser: &upstreamBody{
				ReadCloser: response.Body,
				host:       u.Host,
				cancel:     cancel,
			},
		},
	}, nil
}

func isRelayedMethod(method string) bool {
	switch method {
	case http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete:
		return true
	default:
		return false
	}
}

// upstreamError maps a failure to communicate with the upstream server to the
// status code reported to the client.
func upstreamError(err error, host string) error {
	statusCode := http.StatusBadGateway
	if errors.Is(err, context.DeadlineExceeded) {
		statusCode = http.StatusGatewayTimeout
	}

	return statuspage.Error{
		Inner:      errors.Wrapf(err, "could not relay request to %s", host),
		StatusCode: statusCode,
	}
}

// upstreamBody is the body of an upstream response. Read errors are reported
// as upstream failures, and the request context is released on Close.
type upstreamBody struct {
	io.ReadCloser
	host   string
	cancel context.CancelFunc
}

func (body *upstreamBody) Read(data []byte) (int, error) {
	n, err := body.ReadCloser.Read(data)
	if err != nil && err != io.EOF {
		err = upstreamError(err, body.host)
	}

	return n, err
}

func (body *upstreamBody) Close() error {
	defer body.cancel()
	return body.ReadCloser.Close()
}
