// Package changeset records the file-system mutations of a run and applies
// them in one ordered commit.
//
// Nothing touches the disk before Apply. Until then Exists answers as if
// the pending operations had already happened, so later planning steps
// see earlier ones.
package changeset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// Phase orders writes within a commit.
type Phase int

const (
	PhaseFragment Phase = iota // extracted fragment files
	PhaseRoot                  // the root document
	PhaseMapping               // identifier mapping artifact
	PhaseReport                // run report
)

func (p Phase) String() string {
	switch p {
	case PhaseFragment:
		return "fragment"
	case PhaseRoot:
		return "root"
	case PhaseMapping:
		return "mapping"
	case PhaseReport:
		return "report"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Kind identifies an operation.
type Kind string

const (
	KindRename Kind = "rename"
	KindWrite  Kind = "write"
	KindRemove Kind = "remove"
)

// Op is one planned operation. Paths are relative to the course directory.
type Op struct {
	Kind   Kind
	Path   string
	Target string // rename destination
	Phase  Phase  // writes only
	Size   int    // bytes written
}

type write struct {
	path  string
	data  []byte
	phase Phase
	seq   int
}

type rename struct {
	from, to string
}

// Retrier re-runs a mutation that failed for a transient reason.
type Retrier interface {
	Execute(ctx context.Context, operation func(ctx context.Context) error) error
}

// Set is an ordered plan of mutations under one base directory.
// Set is not safe for concurrent use.
type Set struct {
	fs       filesystem.FileSystem
	base     string
	writes   map[string]*write
	renames  []rename
	removes  map[string]bool
	sequence int
	retrier  Retrier
}

// New creates an empty change set for the course directory base.
//
// Panics if fsys is nil.
func New(fsys filesystem.FileSystem, base string) *Set {
	if fsys == nil {
		panic("filesystem cannot be nil")
	}
	return &Set{
		fs:      fsys,
		base:    base,
		writes:  make(map[string]*write),
		removes: make(map[string]bool),
	}
}

// RetryWith makes Apply run every mutation through r.
func (s *Set) RetryWith(r Retrier) {
	s.retrier = r
}

// Base returns the course directory.
func (s *Set) Base() string { return s.base }

func (s *Set) abs(rel string) string {
	return path.Join(s.base, rel)
}

// Write schedules rel to be replaced with data. A later Write to the same
// path wins.
func (s *Set) Write(phase Phase, rel string, data []byte) {
	s.sequence++
	s.writes[rel] = &write{path: rel, data: data, phase: phase, seq: s.sequence}
}

// Rename schedules a move. The destination must be free in the overlay.
func (s *Set) Rename(from, to string) error {
	if !s.Exists(from) {
		return fmt.Errorf("rename source %s: %w", from, fs.ErrNotExist)
	}
	if s.Exists(to) {
		return fmt.Errorf("rename destination %s: %w", to, fs.ErrExist)
	}
	s.renames = append(s.renames, rename{from: from, to: to})
	return nil
}

// Remove schedules rel for deletion in the final phase. Paths that are
// also written, or are rename destinations, are kept.
func (s *Set) Remove(rel string) {
	s.removes[rel] = true
}

// Exists reports whether rel will exist once the set is applied, ignoring
// deletions, which run last and only for paths nothing else claims.
func (s *Set) Exists(rel string) bool {
	if _, ok := s.writes[rel]; ok {
		return true
	}
	exists := filesystem.Exists(s.fs, s.abs(rel))
	for _, r := range s.renames {
		switch rel {
		case r.from:
			exists = false
		case r.to:
			exists = true
		}
	}
	return exists
}

// Pending returns the content scheduled for rel, if any.
func (s *Set) Pending(rel string) ([]byte, bool) {
	w, ok := s.writes[rel]
	if !ok {
		return nil, false
	}
	return w.data, true
}

// Ops lists every operation in the order Apply performs them.
func (s *Set) Ops() []Op {
	ops := make([]Op, 0, len(s.renames)+len(s.writes)+len(s.removes))
	for _, r := range s.renames {
		ops = append(ops, Op{Kind: KindRename, Path: r.from, Target: r.to})
	}
	for _, w := range s.orderedWrites() {
		ops = append(ops, Op{Kind: KindWrite, Path: w.path, Phase: w.phase, Size: len(w.data)})
	}
	for _, rel := range s.Deletions() {
		ops = append(ops, Op{Kind: KindRemove, Path: rel})
	}
	return ops
}

func (s *Set) orderedWrites() []*write {
	out := make([]*write, 0, len(s.writes))
	for _, w := range s.writes {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].phase != out[j].phase {
			return out[i].phase < out[j].phase
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// Deletions returns the paths that will actually be removed, sorted.
func (s *Set) Deletions() []string {
	claimed := make(map[string]bool, len(s.writes)+len(s.renames))
	for rel := range s.writes {
		claimed[rel] = true
	}
	for _, r := range s.renames {
		claimed[r.to] = true
	}

	out := make([]string, 0, len(s.removes))
	for rel := range s.removes {
		if !claimed[rel] {
			out = append(out, rel)
		}
	}
	sort.Strings(out)
	return out
}

// Plan summarizes the set for approval.
func (s *Set) Plan() edxml.CommitPlan {
	return edxml.CommitPlan{
		CourseName: path.Base(s.base),
		Writes:     len(s.writes),
		Renames:    len(s.renames),
		Deletes:    len(s.Deletions()),
	}
}

// Empty reports whether there is nothing to apply.
func (s *Set) Empty() bool {
	return len(s.writes) == 0 && len(s.renames) == 0 && len(s.Deletions()) == 0
}

// Apply performs renames, then writes by phase, then deletions. An
// interrupted commit can leave stale fragments behind but never a root
// document that references missing ones. Errors wrap edxml.ErrCommitFailed.
func (s *Set) Apply(ctx context.Context) error {
	for _, r := range s.renames {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", edxml.ErrCommitFailed, err)
		}
		if err := s.do(ctx, func() error { return s.fs.Rename(s.abs(r.from), s.abs(r.to)) }); err != nil {
			return fmt.Errorf("%w: rename %s -> %s: %w", edxml.ErrCommitFailed, r.from, r.to, err)
		}
	}

	for _, w := range s.orderedWrites() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", edxml.ErrCommitFailed, err)
		}
		if err := s.do(ctx, func() error { return s.fs.WriteFile(s.abs(w.path), w.data) }); err != nil {
			return fmt.Errorf("%w: write %s: %w", edxml.ErrCommitFailed, w.path, err)
		}
	}

	// past this point the new layout is complete; deletions are cleanup
	for _, rel := range s.Deletions() {
		err := s.do(ctx, func() error { return s.fs.Remove(s.abs(rel)) })
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: remove %s: %w", edxml.ErrCommitFailed, rel, err)
		}
	}
	return nil
}

func (s *Set) do(ctx context.Context, op func() error) error {
	if s.retrier == nil {
		return op()
	}
	return s.retrier.Execute(ctx, func(context.Context) error { return op() })
}
