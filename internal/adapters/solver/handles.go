// Package solver implements ports.Resolver on top of libsolv, the SAT-style
// dependency solver used by the distribution's package manager.
//
// Every native handle (pool, repo, queue, solver, transaction) is wrapped as
// an owned opaque type whose raw pointer never leaves this package, with a
// release path on every exit.
package solver

/*
#cgo pkg-config: libsolv libsolvext
#include <stdlib.h>
#include <stdio.h>
#include <solv/pool.h>
#include <solv/repo.h>
#include <solv/repo_deb.h>
#include <solv/queue.h>
#include <solv/solver.h>
#include <solv/selection.h>
#include <solv/transaction.h>
*/
import "C"

import (
	"encoding/hex"
	"unsafe"

	"go.trai.ch/zerr"

	"github.com/debstrap/debstrap/internal/core/domain"
)

// pool owns a libsolv package pool.
type pool struct {
	p *C.Pool
}

func newPool() *pool {
	return &pool{p: C.pool_create()}
}

func (p *pool) free() {
	if p.p != nil {
		C.pool_free(p.p)
		p.p = nil
	}
}

// createWhatProvides finalizes the reverse-lookup structure. libsolv manages
// this state internally; it must be built after all repos are loaded and
// before any selection query.
func (p *pool) createWhatProvides() {
	C.pool_createwhatprovides(p.p)
}

func (p *pool) whatProvidesReady() bool {
	return p.p.whatprovides != nil
}

// selectName accumulates into q every package whose name satisfies name,
// using a flat, name-based selection.
func (p *pool) selectName(q *queue, name string) error {
	if !p.whatProvidesReady() {
		return zerr.New("internal error: pool lookup not finalized before query")
	}

	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	if matched := C.selection_make(p.p, &q.q, cname, C.SELECTION_NAME|C.SELECTION_FLAT|C.SELECTION_ADD); matched == 0 {
		return zerr.With(zerr.New("no package matches name"), "name", name)
	}
	return nil
}

func (p *pool) solvable(id C.Id) *C.Solvable {
	solvables := unsafe.Slice(p.p.solvables, int(p.p.nsolvables))
	return &solvables[id]
}

// repo owns a libsolv repository inside a pool. Repos are freed with their
// pool; they hold no separate release path.
type repo struct {
	r *C.Repo
}

func (p *pool) newRepo(name string) *repo {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	return &repo{r: C.repo_create(p.p, cname)}
}

// addIndex parses one downloaded package index into the repository.
func (r *repo) addIndex(path string) error {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	cmode := C.CString("rb")
	defer C.free(unsafe.Pointer(cmode))

	fp := C.fopen(cpath, cmode)
	if fp == nil {
		return zerr.With(zerr.New("failed to open index"), "path", path)
	}
	defer C.fclose(fp)

	if rc := C.repo_add_debpackages(r.r, fp, 0); rc != 0 {
		return zerr.With(zerr.New("failed to parse index"), "path", path)
	}
	return nil
}

// queue owns a libsolv job queue.
type queue struct {
	q C.Queue
}

func newQueue() *queue {
	q := &queue{}
	C.queue_init(&q.q)
	return q
}

func (q *queue) free() {
	C.queue_free(&q.q)
}

// markAllForInstall ORs the install action into every job in the queue.
// Selection results are (how, what) pairs, so only even elements carry the
// action word.
func (q *queue) markAllForInstall() {
	if q.q.count == 0 {
		return
	}
	elements := unsafe.Slice(q.q.elements, int(q.q.count))
	for i := 0; i < len(elements); i += 2 {
		elements[i] |= C.SOLVER_INSTALL
	}
}

// solverHandle owns a libsolv solver instance.
type solverHandle struct {
	s *C.Solver
}

func newSolver(p *pool) *solverHandle {
	return &solverHandle{s: C.solver_create(p.p)}
}

func (s *solverHandle) free() {
	if s.s != nil {
		C.solver_free(s.s)
		s.s = nil
	}
}

// preferBestCandidates makes the solver obey the distribution policy when
// picking among candidate versions.
func (s *solverHandle) preferBestCandidates() error {
	if rc := C.solver_set_flag(s.s, C.SOLVER_FLAG_BEST_OBEY_POLICY, 1); rc != 0 {
		return zerr.New("solver rejected best-candidate policy flag")
	}
	return nil
}

// solve runs the solver over the job queue. On failure it returns every
// generated conflict description, not a summary.
func (s *solverHandle) solve(q *queue) []string {
	count := C.solver_solve(s.s, &q.q)
	if count == 0 {
		return nil
	}

	problems := make([]string, 0, int(count))
	for i := C.Id(1); i <= C.Id(count); i++ {
		problems = append(problems, C.GoString(C.solver_problem2str(s.s, i)))
	}
	return problems
}

func (s *solverHandle) transaction() (*transaction, error) {
	t := C.solver_create_transaction(s.s)
	if t == nil {
		return nil, zerr.New("failed to create transaction")
	}
	return &transaction{t: t}, nil
}

// transaction owns a libsolv install transaction.
type transaction struct {
	t *C.Transaction
}

func (t *transaction) free() {
	if t.t != nil {
		C.transaction_free(t.t)
		t.t = nil
	}
}

// order sorts the transaction steps topologically so dependencies come
// before their dependents.
func (t *transaction) order() {
	C.transaction_order(t.t, 0)
}

// sizeChange returns the installed-size delta in bytes. libsolv reports the
// change in KiB.
func (t *transaction) sizeChange() int64 {
	return int64(C.transaction_calc_installsizechange(t.t)) * 1024
}

// packages extracts the metadata of every step, in transaction order.
// Solvables loaded from the overlay repo are flagged as topic packages.
func (t *transaction) packages(p *pool, overlay *repo) ([]domain.PackageMeta, error) {
	steps := unsafe.Slice(t.t.steps.elements, int(t.t.steps.count))

	pkgs := make([]domain.PackageMeta, 0, len(steps))
	for _, id := range steps {
		s := p.solvable(id)
		meta, err := solvableMeta(s)
		if err != nil {
			return nil, err
		}
		meta.FromTopic = overlay != nil && s.repo == overlay.r
		pkgs = append(pkgs, meta)
	}
	return pkgs, nil
}

func solvableMeta(s *C.Solvable) (domain.PackageMeta, error) {
	var sumType C.Id
	sum := C.solvable_lookup_bin_checksum(s, C.SOLVABLE_CHECKSUM, &sumType)
	if sumType != C.REPOKEY_TYPE_SHA256 {
		return domain.PackageMeta{}, zerr.With(zerr.New("unsupported checksum type"), "type", int(sumType))
	}
	checksum := C.GoBytes(unsafe.Pointer(sum), 32)

	dir := C.GoString(C.solvable_lookup_str(s, C.SOLVABLE_MEDIADIR))
	file := C.GoString(C.solvable_lookup_str(s, C.SOLVABLE_MEDIAFILE))

	return domain.PackageMeta{
		Name:    C.GoString(C.solvable_lookup_str(s, C.SOLVABLE_NAME)),
		Version: C.GoString(C.solvable_lookup_str(s, C.SOLVABLE_EVR)),
		Arch:    C.GoString(C.solvable_lookup_str(s, C.SOLVABLE_ARCH)),
		SHA256:  hex.EncodeToString(checksum),
		Path:    dir + "/" + file,
	}, nil
}
