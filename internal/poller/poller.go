// Package poller runs recurring fetches bound to the lifetime of a view.
//
// A Poller fetches once immediately and then on every tick of its interval.
// Each tick runs in its own goroutine, so a slow request never delays the
// next tick. Results are delivered in completion order (last write wins)
// unless DiscardStale is set, in which case a result older than one already
// delivered is dropped. Nothing is delivered once the context is cancelled.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ferroscope/ferro/internal/logger"
)

// Result is the outcome of one fetch.
type Result[T any] struct {
	// Seq increases with every fetch the poller starts.
	Seq   uint64
	Value T
	Err   error
	// At is when the fetch completed.
	At time.Time
}

// Poller fetches a value on a fixed interval.
type Poller[T any] struct {
	Name     string
	Interval time.Duration
	Fetch    func(ctx context.Context) (T, error)
	// Emit receives each result. It must return promptly once ctx is done.
	Emit func(ctx context.Context, r Result[T])
	// DiscardStale drops results that complete after a newer one.
	DiscardStale bool
	Logger       logger.Logger

	refresh chan struct{}
	once    sync.Once
	seq     atomic.Uint64

	// mu serializes delivery.
	mu      sync.Mutex
	emitted uint64
}

func (p *Poller[T]) init() {
	p.once.Do(func() {
		p.refresh = make(chan struct{}, 1)
		if p.Logger == nil {
			p.Logger = logger.Noop()
		}
	})
}

// Refresh asks for an immediate fetch. Requests made while one is already
// pending are merged.
func (p *Poller[T]) Refresh() {
	p.init()
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled, then waits for in-flight fetches to
// finish before returning.
func (p *Poller[T]) Run(ctx context.Context) {
	p.init()

	var inflight sync.WaitGroup
	defer inflight.Wait()

	tick := func() {
		seq := p.seq.Add(1)
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			p.fetch(ctx, seq)
		}()
	}

	tick()

	if p.Interval <= 0 {
		// Manual refresh only.
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.refresh:
				tick()
			}
		}
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		case <-p.refresh:
			tick()
		}
	}
}

func (p *Poller[T]) fetch(ctx context.Context, seq uint64) {
	value, err := p.Fetch(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if p.DiscardStale && seq < p.emitted {
		p.Logger.Debug("%s: dropping stale result #%d (have #%d)", p.Name, seq, p.emitted)
		return
	}
	if seq > p.emitted {
		p.emitted = seq
	}
	if err != nil {
		p.Logger.Warn("%s: %v", p.Name, err)
	}
	p.Emit(ctx, Result[T]{Seq: seq, Value: value, Err: err, At: time.Now()})
}
