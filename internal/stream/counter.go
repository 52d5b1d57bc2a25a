package stream

import "sync/atomic"

// Counter tallies data points delivered across all dispatchers. It feeds
// the data_points_sent figure in the stats broadcast.
type Counter struct {
	n atomic.Int64
}

// NewCounter creates a zeroed counter.
func NewCounter() *Counter { return &Counter{} }

// Inc adds one delivered data point.
func (c *Counter) Inc() { c.n.Add(1) }

// Total returns the number of data points delivered so far.
func (c *Counter) Total() int64 { return c.n.Load() }
