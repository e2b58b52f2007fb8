package booking

import (
	"context"
	"sync"
)

// Guard is a single-permit lock keyed by draft id. A submission holds it from
// loading the draft until the accepted booking is recorded; changes to the
// draft take it briefly so they cannot land while a submission is running.
type Guard interface {
	// TryAcquire takes the permit for key without waiting. When acquired is
	// true the caller must call release exactly once.
	TryAcquire(ctx context.Context, key string) (release func(), acquired bool, err error)

	// Held reports whether the permit for key is currently taken.
	Held(ctx context.Context, key string) (bool, error)
}

// LocalGuard keeps permits in process memory.
type LocalGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalGuard creates an empty in-process guard.
func NewLocalGuard() *LocalGuard {
	return &LocalGuard{held: make(map[string]struct{})}
}

// TryAcquire implements Guard.
func (g *LocalGuard) TryAcquire(_ context.Context, key string) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[key]; ok {
		return nil, false, nil
	}
	g.held[key] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}
	return release, true, nil
}

// Held implements Guard.
func (g *LocalGuard) Held(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[key]
	return ok, nil
}

var _ Guard = (*LocalGuard)(nil)
