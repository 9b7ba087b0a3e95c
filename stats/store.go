package stats

import "context"

// Store is a persistent statistics log.
type Store interface {
	// Record appends an entry to the log.
	Record(ctx context.Context, entry Entry) error

	// TotalBytes returns the sum of the sizes of all logged responses.
	TotalBytes(ctx context.Context) (int64, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the resources held by the store.
	Close() error
}
