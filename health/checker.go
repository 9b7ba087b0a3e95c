package health

import (
	"context"
	"time"

	"github.com/icecave/relay/stats"
)

// Checker is an interface for querying the health of the server.
type Checker interface {
	// Check returns the health-check status.
	Check(ctx context.Context) Status
}

// DefaultStoreTimeout is the ping timeout used when StoreChecker.Timeout is
// zero.
const DefaultStoreTimeout = 5 * time.Second

// StoreChecker is a checker that reports the server as healthy when its
// statistics store can be reached.
type StoreChecker struct {
	Store   stats.Store
	Timeout time.Duration
}

// Check pings the store.
func (checker *StoreChecker) Check(ctx context.Context) Status {
	timeout := checker.Timeout
	if timeout == 0 {
		timeout = DefaultStoreTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := checker.Store.Ping(ctx); err != nil {
		return Status{false, "The statistics store is unreachable: " + err.Error()}
	}

	return Status{true, "The server is accepting requests."}
}
