// Package metrics counts served requests by status code.
package metrics

import (
	"strconv"
	"sync"
)

// Sink receives one observation per completed request.
type Sink interface {
	Record(statusCode int)
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalRequests int64            `json:"total_requests"`
	StatusCodes   map[string]int64 `json:"status_codes"`
}

// Collector is an in-memory Sink. The zero value is ready to use.
type Collector struct {
	mu          sync.Mutex
	total       int64
	statusCodes map[int]int64
}

var _ Sink = (*Collector)(nil)

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record implements Sink.
func (c *Collector) Record(statusCode int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.statusCodes == nil {
		c.statusCodes = make(map[int]int64)
	}
	c.total++
	c.statusCodes[statusCode]++
}

// Snapshot copies the current counters. Status codes are keyed by their
// decimal string so the result encodes as a JSON object.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		TotalRequests: c.total,
		StatusCodes:   make(map[string]int64, len(c.statusCodes)),
	}
	for code, n := range c.statusCodes {
		s.StatusCodes[strconv.Itoa(code)] = n
	}
	return s
}

// Discard is a Sink that drops every observation.
type Discard struct{}

// Record implements Sink.
func (Discard) Record(int) {}
