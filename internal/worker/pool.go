package worker

import (
	"context"
	"log/slog"
	"sync"

	"pigd/internal/dispatch"
)

// Pool owns a fixed set of workers sharing one dispatch channel.
// Exactly size workers are spawned; the pool size is a single explicit
// configuration value.
type Pool struct {
	workers  []*Worker
	requests chan dispatch.Envelope
	replies  chan dispatch.ReplyEnvelope
	logger   *slog.Logger
}

// NewPool creates size workers. The request channel is unbuffered: the
// handoff delivers each request to exactly one idle worker, and blocked
// senders form the queue when the whole pool is busy.
func NewPool(size int, logger *slog.Logger) *Pool {
	p := &Pool{
		requests: make(chan dispatch.Envelope),
		replies:  make(chan dispatch.ReplyEnvelope),
		logger:   logger.With("component", "pool"),
	}
	for i := 0; i < size; i++ {
		p.workers = append(p.workers, New(logger))
	}
	return p
}

// Requests is the send side of the dispatch channel.
func (p *Pool) Requests() chan<- dispatch.Envelope { return p.requests }

// Replies is the receive side of the reply channel.
func (p *Pool) Replies() <-chan dispatch.ReplyEnvelope { return p.replies }

// Size reports the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Run starts every worker and blocks until all have exited after ctx is
// cancelled. In-flight renders are not drained; the process is expected
// to be on its way down.
func (p *Pool) Run(ctx context.Context) {
	p.logger.Info("starting worker pool", "size", len(p.workers))
	var wg sync.WaitGroup
	for _, w := range p.workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.Run(ctx, p.requests, p.replies)
		}(w)
	}
	wg.Wait()
	p.logger.Info("worker pool stopped")
}
