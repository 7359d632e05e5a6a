// Package worker implements the rendering workers and the fixed-size
// pool that owns them.
//
// Each worker owns one Renderer and serves strictly one request at a
// time, so no locking exists anywhere on the hot path. The render call
// runs without a deadline: an input that makes the engine hang parks
// that one worker for good, shrinking effective pool capacity by one
// without affecting the broker or the remaining workers. Adding a
// timeout would change externally observable behavior, so the
// limitation stands (see DESIGN.md).
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pigd/internal/dispatch"
	"pigd/internal/grammar"
	"pigd/internal/metrics"
	"pigd/internal/render"
)

// engine is the rendering collaborator a worker invokes per request.
// *render.Renderer is the only production implementation.
type engine interface {
	Render(lexer chroma.Lexer, source string) (string, error)
}

// Worker renders requests received from the dispatch channel.
type Worker struct {
	id       string
	renderer engine
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New creates a worker with its own renderer. The renderer is expensive
// to construct and cheap to reuse, so it is built once here and serves
// every request for the worker's lifetime.
func New(logger *slog.Logger) *Worker {
	id := uuid.NewString()
	return &Worker{
		id:       id,
		renderer: render.New(),
		logger:   logger.With("component", "worker", "worker_id", id),
		tracer:   otel.Tracer("pigd-worker"),
	}
}

// Run serves requests until ctx is cancelled. Renderer failures are
// encoded into the reply payload; nothing that happens while serving a
// request terminates the loop.
func (w *Worker) Run(ctx context.Context, requests <-chan dispatch.Envelope, replies chan<- dispatch.ReplyEnvelope) {
	w.logger.Info("worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped")
			return
		case env := <-requests:
			reply := dispatch.ReplyEnvelope{
				Token: env.Token,
				Reply: dispatch.Reply{Payload: w.serve(ctx, env.Request)},
			}
			select {
			case replies <- reply:
			case <-ctx.Done():
				w.logger.Info("worker stopped")
				return
			}
		}
	}
}

// serve resolves the grammar and renders one request. It always returns
// a payload: engine failures come back as error text, not as failures.
func (w *Worker) serve(ctx context.Context, req dispatch.Request) string {
	_, span := w.tracer.Start(ctx, "worker.serve",
		trace.WithAttributes(attribute.String("request.language", req.Language)))
	defer span.End()

	metrics.BusyWorkers.Inc()
	defer metrics.BusyWorkers.Dec()

	lexer := grammar.Resolve(req.Language)

	start := time.Now()
	markup, err := w.renderer.Render(lexer, req.Source)
	metrics.RenderDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		w.logger.Warn("render failed", "language", req.Language, "error", err)
		span.RecordError(err)
		metrics.RequestsTotal.WithLabelValues("engine_error").Inc()
		return render.ErrorPayload(err)
	}

	metrics.RequestsTotal.WithLabelValues("rendered").Inc()
	return markup
}
