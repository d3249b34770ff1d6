package poller

import (
	"context"
	"sync"
)

type runner interface {
	Run(ctx context.Context)
	Refresh()
}

// Scope owns a group of pollers. Closing it cancels all of them and waits
// until none can emit again.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	runners []runner
}

// NewScope creates a scope that ends when parent does or on Close.
func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context is cancelled when the scope closes.
func (s *Scope) Context() context.Context { return s.ctx }

// Start runs p until the scope closes. Starting on a closed scope is a no-op.
func Start[T any](s *Scope, p *Poller[T]) {
	s.start(p)
}

func (s *Scope) start(r runner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.runners = append(s.runners, r)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		r.Run(s.ctx)
	}()
}

// Refresh triggers an immediate fetch on every poller in the scope.
func (s *Scope) Refresh() {
	s.mu.Lock()
	runners := append([]runner(nil), s.runners...)
	s.mu.Unlock()
	for _, r := range runners {
		r.Refresh()
	}
}

// Close cancels every poller and blocks until they have all returned.
// It is safe to call more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

