package telemetry

import (
	"context"
	"io"

	"github.com/debstrap/debstrap/internal/core/ports"
)

// NoOp is a telemetry implementation that records nothing. It keeps the
// pipeline testable without a rendered tape.
type NoOp struct{}

// NewNoOp creates a new NoOp recorder.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Record returns a vertex that swallows everything.
func (NoOp) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	v := &noopVertex{}
	return ports.ContextWithVertex(ctx, v), v
}

// Close does nothing.
func (NoOp) Close() error { return nil }

type noopVertex struct{}

func (*noopVertex) Stdout() io.Writer { return io.Discard }
func (*noopVertex) Stderr() io.Writer { return io.Discard }
func (*noopVertex) Complete(error)    {}
func (*noopVertex) Cached()           {}
