// Package pkgfetch downloads resolved package artifacts with checksum
// verification and whole-batch retry.
package pkgfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"github.com/debstrap/debstrap/internal/core/domain"
	"github.com/debstrap/debstrap/internal/core/ports"
	"github.com/debstrap/debstrap/internal/sums"
)

const (
	// maxAttempts bounds the whole-batch retry loop.
	maxAttempts = 3

	userAgent = "debstrap/1"
)

// retryDelay is the pause between batch attempts. Variable so tests can
// shrink it.
var retryDelay = 2 * time.Second

var _ ports.PackageFetcher = (*Fetcher)(nil)

// Fetcher implements ports.PackageFetcher over HTTP.
type Fetcher struct {
	client *http.Client
	logger ports.Logger
}

// New creates a Fetcher with a shared HTTP client.
func New(logger ports.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Minute},
		logger: logger,
	}
}

// FetchAll downloads every package into dest. Artifacts already present are
// trusted and skipped, which also makes re-running the whole batch after a
// partial failure cheap: completed downloads turn into skips on the next
// attempt.
func (f *Fetcher) FetchAll(ctx context.Context, pkgs []domain.PackageMeta, dest string, mirrors ports.MirrorSelector, jobs int) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return zerr.Wrap(err, "failed to create package cache directory")
	}

	prog := newProgress(ctx, 2*len(pkgs))

	for attempt := 1; ; attempt++ {
		errs := f.fetchBatch(ctx, pkgs, dest, mirrors, jobs, prog)
		if len(errs) == 0 {
			return nil
		}
		for _, err := range errs {
			f.logger.Error(err)
		}

		if attempt == maxAttempts {
			names := make([]string, len(errs))
			for i, err := range errs {
				names[i] = err.Error()
			}
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrBatchDownload, "giving up on package downloads"),
				"attempts", attempt), "failures", names)
		}

		f.logger.Warn(fmt.Sprintf("%d packages failed to download, retrying the batch (attempt %d of %d)",
			len(errs), attempt+1, maxAttempts))
		prog.reset()

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return zerr.Wrap(ctx.Err(), "download aborted")
		}
	}
}

// fetchBatch runs one attempt over the full package list. Failures never
// cancel in-flight peers; they are collected and returned so the caller can
// decide whether to retry.
func (f *Fetcher) fetchBatch(ctx context.Context, pkgs []domain.PackageMeta, dest string, mirrors ports.MirrorSelector, jobs int, prog *progress) []error {
	var (
		mu   sync.Mutex
		errs []error
	)

	var g errgroup.Group
	g.SetLimit(jobs)

	for _, pkg := range pkgs {
		g.Go(func() error {
			if err := f.fetchOne(ctx, pkg, dest, mirrors, prog); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errs
}

func (f *Fetcher) fetchOne(ctx context.Context, pkg domain.PackageMeta, dest string, mirrors ports.MirrorSelector, prog *progress) error {
	name := pkg.FileName()
	path := filepath.Join(dest, name)

	if _, err := os.Stat(path); err == nil {
		// Present from an earlier run or attempt. Trusted without a
		// re-check: verification happened when it was written.
		prog.step(2, name+" (cached)")
		return nil
	}

	base, ok := mirrors.URL(pkg)
	if !ok {
		return zerr.With(zerr.With(domain.ErrMirrorNotFound, "package", pkg.Name), "version", pkg.Version)
	}
	rawURL := strings.TrimSuffix(base, "/") + "/" + pkg.Path

	if err := f.download(ctx, rawURL, path); err != nil {
		return err
	}
	prog.step(1, name)

	sum, err := sums.File(path)
	if err != nil {
		return err
	}
	if !strings.EqualFold(sum, pkg.SHA256) {
		// A corrupt artifact must not survive the batch.
		_ = os.Remove(path)
		return zerr.With(zerr.With(zerr.With(domain.ErrChecksumMismatch, "package", pkg.Name), "expected", pkg.SHA256), "actual", sum)
	}
	prog.step(1, name+" (verified)")

	return nil
}

func (f *Fetcher) download(ctx context.Context, rawURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return zerr.Wrap(err, "failed to build request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "download failed"), "url", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck // best effort close in defer

	if resp.StatusCode != http.StatusOK {
		return zerr.With(zerr.With(zerr.New("unexpected status"), "url", rawURL), "status", resp.Status)
	}

	out, err := os.Create(path) //nolint:gosec // path lives under the cache directory
	if err != nil {
		return zerr.Wrap(err, "failed to create package file")
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()         //nolint:errcheck,gosec // the copy error wins
		_ = os.Remove(path) // a truncated artifact must not look cached
		return zerr.With(zerr.Wrap(err, "download interrupted"), "url", rawURL)
	}
	return out.Close()
}

// progress counts two units per package (download, verify) into the active
// telemetry vertex, if any.
type progress struct {
	w     io.Writer
	total int
	done  atomic.Int64
}

func newProgress(ctx context.Context, total int) *progress {
	w := io.Writer(io.Discard)
	if v, ok := ports.VertexFromContext(ctx); ok {
		w = v.Stdout()
	}
	return &progress{w: w, total: total}
}

func (p *progress) step(n int, label string) {
	done := p.done.Add(int64(n))
	fmt.Fprintf(p.w, "[%d/%d] %s\n", done, p.total, label) //nolint:errcheck // progress output is best effort
}

func (p *progress) reset() {
	p.done.Store(0)
}
