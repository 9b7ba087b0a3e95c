package stats

import (
	"net/http"
	"sync"

	"go.uber.org/atomic"
)

// Counters holds in-memory totals for the responses recorded since the
// process started. It is safe for concurrent use.
type Counters struct {
	mutex    sync.RWMutex
	requests map[int]*atomic.Uint64

	bytes          atomic.Int64
	single         atomic.Uint64
	multipart      atomic.Uint64
	notSatisfiable atomic.Uint64
}

// Add counts entry.
func (c *Counters) Add(entry Entry) {
	c.requestCounter(entry.StatusCode).Inc()

	if entry.Size > 0 {
		c.bytes.Add(entry.Size)
	}

	switch entry.StatusCode {
	case http.StatusPartialContent:
		if entry.Multipart {
			c.multipart.Inc()
		} else {
			c.single.Inc()
		}
	case http.StatusRequestedRangeNotSatisfiable:
		c.notSatisfiable.Inc()
	}
}

// Snapshot is a point-in-time copy of a Counters value.
type Snapshot struct {
	Requests       map[int]uint64
	Bytes          int64
	Single         uint64
	Multipart      uint64
	NotSatisfiable uint64
}

// Snapshot returns the current counter values.
func (c *Counters) Snapshot() Snapshot {
	c.mutex.RLock()
	requests := make(map[int]uint64, len(c.requests))
	for code, counter := range c.requests {
		requests[code] = counter.Load()
	}
	c.mutex.RUnlock()

	return Snapshot{
		Requests:       requests,
		Bytes:          c.bytes.Load(),
		Single:         c.single.Load(),
		Multipart:      c.multipart.Load(),
		NotSatisfiable: c.notSatisfiable.Load(),
	}
}

func (c *Counters) requestCounter(code int) *atomic.Uint64 {
	c.mutex.RLock()
	counter, ok := c.requests[code]
	c.mutex.RUnlock()

	if ok {
		return counter
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if counter, ok = c.requests[code]; ok {
		return counter
	}

	if c.requests == nil {
		c.requests = map[int]*atomic.Uint64{}
	}

	counter = atomic.NewUint64(0)
	c.requests[code] = counter

	return counter
}
