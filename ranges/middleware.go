package ranges

import (
	"errors"
	"net/http"

	"github.com/icecave/relay/byterange"
	"github.com/icecave/relay/partial"
	"github.com/icecave/relay/statuspage"
)

// Forwarder produces the response to a request, typically by forwarding it to
// an upstream server.
type Forwarder interface {
	Forward(*http.Request) (*partial.Response, error)
}

// ForwarderFunc adapts a function to the Forwarder interface.
type ForwarderFunc func(*http.Request) (*partial.Response, error)

// Forward calls fn(req).
func (fn ForwarderFunc) Forward(req *http.Request) (*partial.Response, error) {
	return fn(req)
}

// Middleware is a Forwarder that serves the byte ranges requested by the
// client out of the full response produced by Next.
//
// Conflicting specifiers are rejected before Next is invoked. Specifiers that
// can not be satisfied by the content are rejected once it is known. In both
// cases the error is a statuspage.Error with a 416 status code.
type Middleware struct {
	Next Forwarder
}

// Forward produces the (possibly partial) response to req.
func (m *Middleware) Forward(req *http.Request) (*partial.Response, error) {
	specifier, err := Specifier(req.Header, req.URL.Query())
	if err != nil {
		return nil, notSatisfiable(err)
	}

	res, err := m.Next.Forward(req)
	if err != nil {
		return nil, err
	}

	body, err := partial.Apply(res, specifier)
	if err != nil {
		var target *byterange.NotSatisfiableError
		if errors.As(err, &target) {
			return nil, notSatisfiable(err)
		}

		return nil, err
	}

	if body != nil {
		res.Content = partial.Buffer(body)
	}

	return res, nil
}

func notSatisfiable(err error) error {
	return statuspage.Error{
		Inner:      err,
		StatusCode: http.StatusRequestedRangeNotSatisfiable,
		Message:    err.Error(),
	}
}
