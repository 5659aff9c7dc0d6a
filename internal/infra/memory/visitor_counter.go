package memory

import (
	"context"
	"sync/atomic"
)

// VisitorCounter is a process-local app.VisitorCounter.
type VisitorCounter struct {
	visitors atomic.Int64
}

func NewVisitorCounter() *VisitorCounter {
	return &VisitorCounter{}
}

func (c *VisitorCounter) IncrementVisitors(context.Context) (int64, error) {
	return c.visitors.Add(1), nil
}

func (c *VisitorCounter) VisitorCount(context.Context) (int64, error) {
	return c.visitors.Load(), nil
}
