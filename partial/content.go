package partial

import (
	"io"

	"github.com/pkg/errors"
)

// ErrUnsupportedContent is returned by Materialize when the content is not a
// usable Buffer, Stream or Deferred value.
var ErrUnsupportedContent = errors.New("content can not be materialized")

// Content is the body of a response. It is exactly one of Buffer, Stream or
// Deferred.
type Content interface {
	isContent()
}

// Buffer is content that is already held in memory.
type Buffer []byte

// Stream is content produced as a sequence of chunks read from an underlying
// reader. The reader is closed once the stream has been consumed.
type Stream struct {
	io.ReadCloser
}

// Deferred is content that is produced on demand.
type Deferred func() (Content, error)

func (Buffer) isContent()   {}
func (Stream) isContent()   {}
func (Deferred) isContent() {}

// Materialize returns the entire content as a single buffer, reading and
// closing streams and invoking deferred producers as necessary.
func Materialize(c Content) ([]byte, error) {
	switch c := c.(type) {
	case Buffer:
		return c, nil

	case Stream:
		if c.ReadCloser == nil {
			return nil, ErrUnsupportedContent
		}
		defer c.Close()

		data, err := io.ReadAll(c)
		if err != nil {
			return nil, errors.Wrap(err, "could not read content stream")
		}

		return data, nil

	case Deferred:
		if c == nil {
			return nil, ErrUnsupportedContent
		}

		inner, err := c()
		if err != nil {
			return nil, err
		}

		return Materialize(inner)
	}

	return nil, ErrUnsupportedContent
}

// Copy writes the content to w without buffering streams, and returns the
// number of bytes written.
func Copy(w io.Writer, c Content) (int64, error) {
	switch c := c.(type) {
	case Buffer:
		n, err := w.Write(c)
		return int64(n), err

	case Stream:
		if c.ReadCloser == nil {
			return 0, nil
		}
		defer c.Close()

		return io.Copy(w, c)

	case Deferred:
		if c == nil {
			return 0, nil
		}

		inner, err := c()
		if err != nil {
			return 0, err
		}

		return Copy(w, inner)
	}

	return 0, nil
}

// Discard releases any resources held by the content without writing it.
func Discard(c Content) error {
	if s, ok := c.(Stream); ok && s.ReadCloser != nil {
		return s.Close()
	}

	return nil
}

// Len returns the length of the content, if it is known without reading it.
func Len(c Content) (int64, bool) {
	if b, ok := c.(Buffer); ok {
		return int64(len(b)), true
	}

	return 0, c == nil
}
