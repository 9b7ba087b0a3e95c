package proxy

import (
	"context"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/icecave/relay/partial"
	"github.com/icecave/relay/ranges"
	"github.com/icecave/relay/stats"
	"github.com/icecave/relay/statuspage"
	"github.com/icecave/relay/target"
	"go.uber.org/atomic"
)

// Handler is an http.Handler that relays requests using a forwarder, writes
// the resulting response and records it in the statistics log.
type Handler struct {
	Forwarder        ranges.Forwarder
	Recorder         *stats.Recorder
	StatusPageWriter statuspage.Writer
	Logger           *log.Logger
}

// ServeHTTP relays the request and writes the response.
func (handler *Handler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	logContext := &LogContext{
		Logger:    handler.Logger,
		Request:   request,
		Specifier: requestedRange(request),
	}
	logContext.Metrics.Start()

	if u, err := target.FromRequest(request, ranges.Key); err == nil {
		logContext.Target = u
	}

	if request.Body != nil {
		request.Body = &countingReader{
			ReadCloser: request.Body,
			count:      &logContext.Metrics.BytesIn,
		}
	}

	err := handler.forward(writer, request, logContext)

	// If there was an error and no response has been sent, send an error page.
	if err != nil && logContext.StatusCode == 0 {
		handler.statusPage(writer, request, logContext, err)
	}

	handler.record(request, logContext)
	logContext.Log(err)
}

func (handler *Handler) forward(
	writer http.ResponseWriter,
	request *http.Request,
	logContext *LogContext,
) error {
	response, err := handler.Forwarder.Forward(request)
	if err != nil {
		return err
	}

	headers := writer.Header()
	for name, values := range response.Header {
		headers[name] = values
	}

	if request.Method == http.MethodHead {
		defer partial.Discard(response.Content)
	} else if n, ok := partial.Len(response.Content); ok {
		headers.Set("Content-Length", strconv.FormatInt(n, 10))
	}

	logContext.StatusCode = response.StatusCode
	logContext.Multipart = response.StatusCode == http.StatusPartialContent &&
		strings.HasPrefix(headers.Get("Content-Type"), "multipart/byteranges")
	logContext.Metrics.FirstByteSent()
	defer logContext.Metrics.LastByteSent()

	writer.WriteHeader(response.StatusCode)

	if request.Method == http.MethodHead {
		return nil
	}

	logContext.Metrics.BytesOut, err = partial.Copy(writer, response.Content)
	return err
}

func (handler *Handler) statusPage(
	writer http.ResponseWriter,
	request *http.Request,
	logContext *LogContext,
	err error,
) {
	statusWriter := handler.StatusPageWriter
	if statusWriter == nil {
		statusWriter = statuspage.DefaultWriter
	}

	logContext.Metrics.FirstByteSent()
	defer logContext.Metrics.LastByteSent()

	logContext.StatusCode, logContext.Metrics.BytesOut, _ = statusWriter.WriteError(
		writer,
		request,
		err,
	)
}

func (handler *Handler) record(request *http.Request, logContext *LogContext) {
	url := request.URL.Path
	if logContext.Target != nil {
		url = logContext.Target.String()
	}

	handler.Recorder.Record(
		context.WithoutCancel(request.Context()),
		stats.Entry{
			URL:        url,
			StatusCode: logContext.StatusCode,
			Size:       logContext.Metrics.BytesOut,
			Multipart:  logContext.Multipart,
		},
	)
}

// requestedRange returns the range specifier to show in the log. Conflicting
// specifiers are shown as they appear in the header.
func requestedRange(request *http.Request) string {
	specifier, err := ranges.Specifier(request.Header, request.URL.Query())
	if err != nil {
		return request.Header.Get(ranges.Key)
	}

	return specifier
}

// countingReader counts the bytes read from the request body.
type countingReader struct {
	io.ReadCloser
	count *atomic.Int64
}

func (reader *countingReader) Read(data []byte) (int, error) {
	n, err := reader.ReadCloser.Read(data)
	reader.count.Add(int64(n))
	return n, err
}
