// Package repofetch downloads package indices and overlay (topic) metadata.
package repofetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"github.com/debstrap/debstrap/internal/core/ports"
)

// DefaultMirror is the distribution's primary repository. Topic manifests and
// overlay suites are always served from here, independent of the branch
// mirror in use.
const DefaultMirror = "https://repo.ceruleanos.org/debs"

// listsDir is where fetched indices live inside the target, mirroring the
// package manager's own layout.
const listsDir = "var/lib/apt/lists"

const userAgent = "debstrap/1"

var _ ports.ManifestFetcher = (*Fetcher)(nil)

// Fetcher implements ports.ManifestFetcher over HTTP.
type Fetcher struct {
	client *http.Client
	logger ports.Logger

	// TopicMirror overrides the repository serving topic metadata.
	// Defaults to DefaultMirror.
	TopicMirror string
}

// New creates a Fetcher with a shared HTTP client.
func New(logger ports.Logger) *Fetcher {
	return &Fetcher{
		client:      &http.Client{Timeout: 5 * time.Minute},
		logger:      logger,
		TopicMirror: DefaultMirror,
	}
}

// manifestName derives the stable local name of an index from its source
// URL: host plus path with every separator flattened.
func manifestName(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "invalid manifest URL"), "url", rawURL)
	}
	return strings.ReplaceAll(parsed.Host+parsed.EscapedPath(), "/", "_"), nil
}

// fetchFile downloads url into path. The file is written once per run.
func (f *Fetcher) fetchFile(ctx context.Context, rawURL, path string) error {
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

	out, err := os.Create(path) //nolint:gosec // path is derived from the URL, under the target root
	if err != nil {
		return zerr.Wrap(err, "failed to create manifest file")
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close() //nolint:errcheck,gosec // the copy error wins
		return zerr.With(zerr.Wrap(err, "download interrupted"), "url", rawURL)
	}
	return out.Close()
}

// Fetch downloads every branch index named by the request plus the indices
// of every requested overlay. All downloads run concurrently with at most
// jobs in flight; any single failure fails the whole call, because a missing
// index would invalidate the dependency universe.
func (f *Fetcher) Fetch(ctx context.Context, req ports.ManifestRequest, root string, jobs int) (*ports.ManifestSet, error) {
	dir := filepath.Join(root, listsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, zerr.Wrap(err, "failed to create index directory")
	}

	topics, err := f.matchTopics(ctx, req.Topics)
	if err != nil {
		return nil, err
	}

	set := &ports.ManifestSet{Topics: topics}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, arch := range req.Arches {
		for _, comp := range req.Components {
			rawURL := fmt.Sprintf("%s/dists/%s/%s/binary-%s/Packages", req.Mirror, req.Branch, comp, arch)
			g.Go(func() error {
				path, err := f.fetchIndex(ctx, rawURL, dir)
				if err != nil {
					return err
				}
				mu.Lock()
				set.BranchPaths = append(set.BranchPaths, path)
				mu.Unlock()
				return nil
			})
		}
	}

	for _, topic := range topics {
		g.Go(func() error {
			paths, err := f.fetchTopicIndices(ctx, topic.Name, req.Arches, dir)
			if err != nil {
				return err
			}
			mu.Lock()
			set.TopicPaths = append(set.TopicPaths, paths...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}

func (f *Fetcher) fetchIndex(ctx context.Context, rawURL, dir string) (string, error) {
	name, err := manifestName(rawURL)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := f.fetchFile(ctx, rawURL, path); err != nil {
		return "", err
	}
	f.logger.Info("downloaded manifest " + name)
	return path, nil
}
