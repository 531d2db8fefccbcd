package repofetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"

	"github.com/debstrap/debstrap/internal/core/domain"
)

const (
	// topicStatePath persists the enabled overlays into the target so the
	// installed system keeps tracking them.
	topicStatePath = "var/lib/atm/state"

	// topicSourcesDir holds one source-list fragment per enabled overlay.
	topicSourcesDir = "etc/apt/sources.list.d"
)

// matchTopics fetches the central topic manifest and matches the requested
// names against it. Any absent name fails the call with the full list of
// valid names as detail.
func (f *Fetcher) matchTopics(ctx context.Context, requested []string) ([]domain.Topic, error) {
	if len(requested) == 0 {
		return nil, nil
	}

	all, err := f.fetchTopicManifest(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]domain.Topic, len(all))
	valid := make([]string, 0, len(all))
	for _, topic := range all {
		byName[topic.Name] = topic
		valid = append(valid, topic.Name)
	}

	matched := make([]domain.Topic, 0, len(requested))
	var missing []string
	for _, name := range requested {
		topic, ok := byName[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		matched = append(matched, topic)
	}

	if len(missing) > 0 {
		return nil, zerr.With(zerr.With(domain.ErrTopicNotFound, "missing", missing), "valid_topics", valid)
	}
	return matched, nil
}

func (f *Fetcher) fetchTopicManifest(ctx context.Context) ([]domain.Topic, error) {
	rawURL := f.TopicMirror + "/manifest/topics.json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to build request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to fetch topic manifest")
	}
	defer resp.Body.Close() //nolint:errcheck // best effort close in defer

	if resp.StatusCode != http.StatusOK {
		return nil, zerr.With(zerr.New("unexpected status for topic manifest"), "status", resp.Status)
	}

	var topics []domain.Topic
	if err := json.NewDecoder(resp.Body).Decode(&topics); err != nil {
		return nil, zerr.Wrap(err, "failed to parse topic manifest")
	}
	return topics, nil
}

// fetchTopicIndices validates the overlay's release metadata and downloads
// its architecture-filtered indices into dir.
func (f *Fetcher) fetchTopicIndices(ctx context.Context, topic string, arches []string, dir string) ([]string, error) {
	releaseURL := fmt.Sprintf("%s/dists/%s/InRelease", f.TopicMirror, topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releaseURL, nil)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to build request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to fetch release metadata"), "topic", topic)
	}
	defer resp.Body.Close() //nolint:errcheck // best effort close in defer

	if resp.StatusCode != http.StatusOK {
		return nil, zerr.With(zerr.With(zerr.New("unexpected status for release metadata"), "topic", topic), "status", resp.Status)
	}

	release, err := parseRelease(resp.Body)
	if err != nil {
		return nil, zerr.With(err, "topic", topic)
	}

	var paths []string
	for _, entry := range release.SHA256 {
		if !indexForArches(entry.Path, arches) {
			continue
		}
		rawURL := fmt.Sprintf("%s/dists/%s/%s", f.TopicMirror, topic, entry.Path)
		path, err := f.fetchIndex(ctx, rawURL, dir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// indexForArches reports whether a release entry names a binary package
// index for one of the requested architectures.
func indexForArches(path string, arches []string) bool {
	for _, arch := range arches {
		if strings.HasSuffix(path, fmt.Sprintf("binary-%s/Packages", arch)) {
			return true
		}
	}
	return false
}

// PersistTopics writes the overlay state file and one source-list fragment
// per enabled overlay into the target root.
func (f *Fetcher) PersistTopics(root string, topics []domain.Topic) error {
	if len(topics) == 0 {
		return nil
	}

	statePath := filepath.Join(root, topicStatePath)
	if err := os.MkdirAll(filepath.Dir(statePath), 0o755); err != nil {
		return zerr.Wrap(err, "failed to create topic state directory")
	}
	sourcesDir := filepath.Join(root, topicSourcesDir)
	if err := os.MkdirAll(sourcesDir, 0o755); err != nil {
		return zerr.Wrap(err, "failed to create sources fragment directory")
	}

	for _, topic := range topics {
		fragment := fmt.Sprintf("deb %s %s main\n", f.TopicMirror, topic.Name)
		path := filepath.Join(sourcesDir, topic.Name+".list")
		if err := writeDurable(path, []byte(fragment)); err != nil {
			return err
		}
	}

	// Architecture availability and draft status are manifest-side
	// attributes; the installed system only tracks identity and package
	// allow-lists.
	persisted := make([]domain.Topic, len(topics))
	copy(persisted, topics)
	for i := range persisted {
		persisted[i].Arch = nil
		persisted[i].Draft = false
	}

	state, err := json.Marshal(persisted)
	if err != nil {
		return zerr.Wrap(err, "failed to serialize topic state")
	}
	if err := writeDurable(statePath, state); err != nil {
		return err
	}

	f.logger.Info(fmt.Sprintf("saved %d topics into the target system", len(topics)))
	return nil
}

// writeDurable writes path and syncs it before closing, so overlay tracking
// survives a crash right after stage transitions.
func writeDurable(path string, data []byte) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644) //nolint:gosec // fragments are world-readable
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file"), "path", path)
	}
	if _, err := out.Write(data); err != nil {
		out.Close() //nolint:errcheck,gosec // the write error wins
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", path)
	}
	if err := out.Sync(); err != nil {
		out.Close() //nolint:errcheck,gosec // the sync error wins
		return zerr.With(zerr.Wrap(err, "failed to sync file"), "path", path)
	}
	return out.Close()
}
