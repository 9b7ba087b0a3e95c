package stats

import (
	"context"
	"log"
)

// Recorder records relayed responses in a store and in the in-memory
// counters.
type Recorder struct {
	Store    Store
	Counters *Counters
	Logger   *log.Logger
}

// Record counts entry and appends it to the store. Failure to write to the
// store is logged but does not otherwise affect the response.
func (recorder *Recorder) Record(ctx context.Context, entry Entry) {
	if recorder == nil {
		return
	}

	if recorder.Counters != nil {
		recorder.Counters.Add(entry)
	}

	if recorder.Store == nil {
		return
	}

	if err := recorder.Store.Record(ctx, entry); err != nil && recorder.Logger != nil {
		recorder.Logger.Printf("could not record statistics for %s: %s", entry.URL, err)
	}
}
