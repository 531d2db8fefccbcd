package ports

import (
	"context"
	"io"
)

// Telemetry records the progress of pipeline stages.
type Telemetry interface {
	// Record starts recording a new vertex and attaches it to the
	// returned context so nested work can report into it.
	Record(ctx context.Context, name string) (context.Context, Vertex)

	// Close flushes and closes the recording session.
	Close() error
}

// Vertex represents one recorded unit of work.
type Vertex interface {
	// Stdout returns a writer for progress output.
	Stdout() io.Writer

	// Stderr returns a writer for diagnostic output.
	Stderr() io.Writer

	// Complete marks the vertex as finished, successfully or with err.
	Complete(err error)

	// Cached marks the vertex as skipped because its result already
	// existed.
	Cached()
}

type vertexKey struct{}

// ContextWithVertex attaches a vertex to the context.
func ContextWithVertex(ctx context.Context, v Vertex) context.Context {
	return context.WithValue(ctx, vertexKey{}, v)
}

// VertexFromContext returns the vertex attached to the context, or false.
func VertexFromContext(ctx context.Context) (Vertex, bool) {
	v, ok := ctx.Value(vertexKey{}).(Vertex)
	return v, ok
}
