package archive

import (
	"context"
	"fmt"
	"io"

	"github.com/debstrap/debstrap/internal/core/ports"
)

// progressWriter counts raw (pre-compression) bytes against the estimated
// archive size and reports whole-percent steps into the telemetry vertex.
type progressWriter struct {
	out     io.Writer
	report  io.Writer
	total   uint64
	written uint64
	lastPct uint64
}

func newProgressWriter(ctx context.Context, out io.Writer, total uint64) *progressWriter {
	report := io.Writer(io.Discard)
	if v, ok := ports.VertexFromContext(ctx); ok {
		report = v.Stdout()
	}
	return &progressWriter{out: out, report: report, total: total}
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.out.Write(b)
	p.written += uint64(n) //nolint:gosec // n is never negative

	if p.total > 0 {
		pct := p.written * 100 / p.total
		if pct > 100 {
			pct = 100
		}
		if pct != p.lastPct {
			p.lastPct = pct
			fmt.Fprintf(p.report, "%d%%\n", pct) //nolint:errcheck // progress output is best effort
		}
	}
	return n, err
}
