package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/maintkeeper/internal/common"
	"github.com/dmitrijs2005/maintkeeper/internal/logging"
	"github.com/dmitrijs2005/maintkeeper/internal/metrics"
)

const defaultQueueSize = 64

type task struct {
	ctx  context.Context
	name string
	fn   func(ctx context.Context) error
}

// BestEffort runs secondary writes in the background. Their failures are
// logged and counted, never returned to the caller of the primary operation.
type BestEffort struct {
	tasks   chan task
	log     logging.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool

	workers sync.WaitGroup
	pending sync.WaitGroup
}

// NewBestEffort starts workers goroutines draining a bounded queue.
func NewBestEffort(workers int, log logging.Logger, m *metrics.Metrics) *BestEffort {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logging.Nop()
	}
	b := &BestEffort{
		tasks:   make(chan task, defaultQueueSize),
		log:     log,
		metrics: m,
	}
	b.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go b.work()
	}
	return b
}

// Go enqueues fn. It blocks only while the queue is full. fn runs with a
// context that keeps ctx's values but is never cancelled.
func (b *BestEffort) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.fail(ctx, name, fmt.Errorf("dispatcher closed"))
		return
	}
	b.pending.Add(1)
	b.tasks <- task{ctx: context.WithoutCancel(ctx), name: name, fn: fn}
}

// Flush waits until every enqueued write has finished.
func (b *BestEffort) Flush() {
	b.pending.Wait()
}

// Close stops accepting writes and waits for the queued ones.
func (b *BestEffort) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.tasks)
	b.mu.Unlock()
	b.workers.Wait()
}

func (b *BestEffort) work() {
	defer b.workers.Done()
	for t := range b.tasks {
		b.run(t)
	}
}

func (b *BestEffort) run(t task) {
	defer b.pending.Done()
	defer func() {
		if p := recover(); p != nil {
			b.fail(t.ctx, t.name, fmt.Errorf("panic: %v", p))
		}
	}()
	if err := t.fn(t.ctx); err != nil {
		b.fail(t.ctx, t.name, err)
		return
	}
	b.log.Debug(t.ctx, "secondary write done", "op", t.name)
}

func (b *BestEffort) fail(ctx context.Context, name string, err error) {
	err = fmt.Errorf("%s: %w: %w", name, common.ErrSecondaryWriteFailed, err)
	b.log.Warn(ctx, "secondary write failed", "op", name, "error", err)
	b.metrics.SecondaryWriteFailed(name)
}
