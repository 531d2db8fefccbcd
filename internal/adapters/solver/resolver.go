package solver

import (
	"sync"

	"go.trai.ch/zerr"

	"github.com/debstrap/debstrap/internal/core/domain"
	"github.com/debstrap/debstrap/internal/core/ports"
)

var _ ports.Resolver = (*Resolver)(nil)

// Resolver implements ports.Resolver on a libsolv pool.
//
// The pool is populated exactly once per run and is read-only afterwards;
// Resolve can be called any number of times against it.
type Resolver struct {
	mu        sync.Mutex
	pool      *pool
	overlay   *repo
	populated bool
	closed    bool
}

// New creates an empty Resolver owning a fresh pool.
func New() *Resolver {
	return &Resolver{pool: newPool()}
}

// Populate loads the branch and overlay indices into the pool and finalizes
// the reverse-lookup structure.
func (r *Resolver) Populate(branch, overlay []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return zerr.New("resolver is closed")
	}
	if r.populated {
		return zerr.New("pool is already populated")
	}

	main := r.pool.newRepo("branch")
	for _, path := range branch {
		if err := main.addIndex(path); err != nil {
			return zerr.Wrap(err, "failed to load branch index")
		}
	}

	if len(overlay) > 0 {
		r.overlay = r.pool.newRepo("topics")
		for _, path := range overlay {
			if err := r.overlay.addIndex(path); err != nil {
				return zerr.Wrap(err, "failed to load overlay index")
			}
		}
	}

	r.pool.createWhatProvides()
	r.populated = true
	return nil
}

// Resolve expands the names into a flat selection, marks it for install and
// solves with the prefer-best-candidate policy. The result is a topologically
// ordered Transaction owned by the caller.
func (r *Resolver) Resolve(names []string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, zerr.New("resolver is closed")
	}
	if !r.populated {
		return nil, zerr.New("pool must be populated before resolving")
	}

	q := newQueue()
	defer q.free()

	for _, name := range names {
		if err := r.pool.selectName(q, name); err != nil {
			return nil, err
		}
	}
	q.markAllForInstall()

	s := newSolver(r.pool)
	defer s.free()

	if err := s.preferBestCandidates(); err != nil {
		return nil, err
	}

	if problems := s.solve(q); len(problems) > 0 {
		return nil, zerr.With(domain.ErrResolve, "problems", problems)
	}

	t, err := s.transaction()
	if err != nil {
		return nil, err
	}
	defer t.free()

	t.order()

	pkgs, err := t.packages(r.pool, r.overlay)
	if err != nil {
		return nil, err
	}

	return &domain.Transaction{
		Packages:  pkgs,
		SizeDelta: t.sizeChange(),
	}, nil
}

// Close frees the pool and every repo inside it.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.closed {
		r.pool.free()
		r.closed = true
	}
	return nil
}
