package ports

import (
	"context"

	"github.com/debstrap/debstrap/internal/core/domain"
)

// ManifestRequest names the package indices one run depends on.
type ManifestRequest struct {
	// Mirror is the repository base URL the branch indices are fetched from.
	Mirror string

	// Branch is the distribution suite (e.g., "stable").
	Branch string

	// Arches are the CPU architectures to consider, including "all".
	Arches []string

	// Components are the repository components (e.g., "main").
	Components []string

	// Topics are the requested overlay repositories, possibly empty.
	Topics []string
}

// ManifestSet is the outcome of one manifest fetch: every downloaded index
// plus the overlay metadata that matched the request.
type ManifestSet struct {
	// BranchPaths are the absolute paths of the downloaded branch index
	// files. Each is written exactly once per run.
	BranchPaths []string

	// TopicPaths are the absolute paths of the downloaded overlay index
	// files, kept apart so overlay packages can be attributed.
	TopicPaths []string

	// Topics are the enabled overlays, to be persisted into target state.
	Topics []domain.Topic
}

// ManifestFetcher downloads package indices and overlay metadata.
//
// A fetch is all-or-nothing: any single failure fails the whole call, since a
// missing index would invalidate the dependency universe.
//
//go:generate go run go.uber.org/mock/mockgen -source=manifests.go -destination=mocks/mock_manifests.go -package=mocks
type ManifestFetcher interface {
	// Fetch downloads every index named by the request into the target's
	// index directory, running the individual downloads concurrently with
	// at most jobs in flight.
	Fetch(ctx context.Context, req ManifestRequest, root string, jobs int) (*ManifestSet, error)

	// PersistTopics writes the overlay state file and one source-list
	// fragment per enabled overlay into the target root.
	PersistTopics(root string, topics []domain.Topic) error
}
