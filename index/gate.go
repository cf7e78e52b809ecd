package index

import (
	"context"
	"sync"
)

// Gate is a one-shot readiness signal. Scans wait on it so they never
// read project metadata before the initial indexing pass has settled.
type Gate struct {
	once  sync.Once
	ready chan struct{}
}

// NewGate creates a closed gate.
func NewGate() *Gate {
	return &Gate{ready: make(chan struct{})}
}

// Open marks the gate ready. Safe to call more than once.
func (g *Gate) Open() {
	g.once.Do(func() { close(g.ready) })
}

// Ready reports whether the gate has opened.
func (g *Gate) Ready() bool {
	select {
	case <-g.ready:
		return true
	default:
		return false
	}
}

// Wait blocks until the gate opens or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
