// Package ports defines the core interfaces for the application.
package ports

import "github.com/debstrap/debstrap/internal/core/domain"

// Resolver loads package indices into a pool and resolves named root sets
// into ordered install transactions.
//
// The pool behind a Resolver is built once per run: Populate finalizes the
// reverse-lookup structure exactly once, after which the pool is read-only.
// Resolve is re-entrant and may be called any number of times against the
// populated pool without mutating it.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type Resolver interface {
	// Populate loads every index file into the underlying repository and
	// finalizes the lookup structure. Overlay indices are kept apart so
	// their packages can be attributed to their origin. It fails on
	// unreadable or malformed input.
	Populate(branch, overlay []string) error

	// Resolve expands each name to all packages satisfying it, marks the
	// selection for install and returns a topologically ordered
	// Transaction. On solver failure the full list of conflict
	// descriptions is attached to the returned error.
	Resolve(names []string) (*domain.Transaction, error)

	// Close releases the native solver handles. The Resolver must not be
	// used afterwards.
	Close() error
}
