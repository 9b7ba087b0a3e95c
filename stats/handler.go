package stats

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/icecave/relay/statuspage"
	"github.com/pkg/errors"
)

// Path is the URL path at which the statistics summary is served.
const Path = "/stats"

// EntryLister is implemented by stores that can list their most recent
// entries.
type EntryLister interface {
	// Entries returns up to n of the most recent log entries, newest first.
	Entries(ctx context.Context, n int64) ([]Entry, error)
}

// Summary is the body of the statistics summary response.
type Summary struct {
	// Uptime is the number of seconds since the server started.
	Uptime float64 `json:"uptime"`

	// TotalBytesTransferred is the sum of the sizes of all logged responses.
	TotalBytesTransferred int64 `json:"total_bytes_transferred"`

	// RecentEntries holds the most recent log entries, newest first. It is
	// only present for stores that implement EntryLister.
	RecentEntries []Entry `json:"recent_entries,omitempty"`
}

// Handler is a http.Handler/frontend.ConditionalHandler that serves a JSON
// summary of the statistics log.
type Handler struct {
	Store     Store
	StartedAt time.Time

	// Recent is the number of recent entries to include in the summary when
	// the store is an EntryLister.
	Recent int64

	StatusPageWriter statuspage.Writer
	Logger           *log.Logger
}

// CanHandle returns true if request can be served by this handler.
func (handler *Handler) CanHandle(request *http.Request) bool {
	return request.URL.Path == Path
}

func (handler *Handler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet && request.Method != http.MethodHead {
		writer.Header().Set("Allow", "GET, HEAD")
		handler.statusPage(writer, request, statuspage.Error{
			Inner:      errors.Errorf("method %s is not allowed", request.Method),
			StatusCode: http.StatusMethodNotAllowed,
			Message:    "Statistics can only be read with GET or HEAD requests.",
		})
		return
	}

	summary, err := handler.summarize(request.Context())
	if err != nil {
		if handler.Logger != nil {
			handler.Logger.Println(err)
		}

		handler.statusPage(writer, request, statuspage.Error{
			Inner:      err,
			StatusCode: http.StatusServiceUnavailable,
			Message:    "Statistics are temporarily unavailable.",
		})
		return
	}

	body, err := json.Marshal(summary)
	if err != nil {
		handler.statusPage(writer, request, err)
		return
	}

	headers := writer.Header()
	headers.Set("Content-Type", "application/json")
	headers.Set("Content-Length", strconv.Itoa(len(body)))
	writer.WriteHeader(http.StatusOK)

	if request.Method != http.MethodHead {
		writer.Write(body)
	}
}

func (handler *Handler) summarize(ctx context.Context) (Summary, error) {
	summary := Summary{
		Uptime: time.Since(handler.StartedAt).Seconds(),
	}

	if handler.Store == nil {
		return summary, nil
	}

	total, err := handler.Store.TotalBytes(ctx)
	if err != nil {
		return summary, err
	}
	summary.TotalBytesTransferred = total

	if lister, ok := handler.Store.(EntryLister); ok && handler.Recent > 0 {
		summary.RecentEntries, err = lister.Entries(ctx, handler.Recent)
	}

	return summary, err
}

func (handler *Handler) statusPage(
	writer http.ResponseWriter,
	request *http.Request,
	err error,
) {
	statusWriter := handler.StatusPageWriter
	if statusWriter == nil {
		statusWriter = statuspage.DefaultWriter
	}

	statusWriter.WriteError(writer, request, err)
}
