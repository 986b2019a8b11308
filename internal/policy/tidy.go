// Package policy re-serializes the JSON policy files of a course export
// into a stable layout: two-space indent, keys sorted. Stable files diff
// cleanly under version control.
package policy

import (
	"bytes"
	"fmt"
	"path"
	"sort"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"

	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// Directory holds one sub-directory of policy files per course run.
const Directory = "policies"

// DefaultFiles are tidied in every run directory under Directory.
var DefaultFiles = []string{"policy.json", "grading_policy.json"}

var jsonOptions = func() ojg.Options {
	opts := ojg.DefaultOptions
	opts.Indent = 2
	opts.Sort = true
	return opts
}()

// Format parses data and renders it with sorted keys and two-space
// indent. Parse failures are *edxml.ParseError.
func Format(name string, data []byte) ([]byte, error) {
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, &edxml.ParseError{Path: name, Err: err}
	}
	return []byte(oj.JSON(doc, &jsonOptions) + "\n"), nil
}

// Result lists what a tidy pass did, paths relative to the course
// directory.
type Result struct {
	Rewritten []string
	Unchanged []string
	Missing   []string
}

// Tidier rewrites policy files in place.
type Tidier struct {
	fs     filesystem.FileSystem
	logger edxml.Logger
}

// NewTidier creates a Tidier.
//
// Panics if fsys or logger is nil.
func NewTidier(fsys filesystem.FileSystem, logger edxml.Logger) *Tidier {
	if fsys == nil {
		panic("filesystem cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Tidier{fs: fsys, logger: logger}
}

// DefaultTargets lists DefaultFiles for every directory under
// <base>/policies. The files need not exist.
func (t *Tidier) DefaultTargets(base string) ([]string, error) {
	dir := path.Join(base, Directory)
	if !filesystem.IsDir(t.fs, dir) {
		return nil, nil
	}
	entries, err := t.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var targets []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		for _, name := range DefaultFiles {
			targets = append(targets, path.Join(Directory, e.Name(), name))
		}
	}
	sort.Strings(targets)
	return targets, nil
}

// Tidy formats each file under base. Missing files are skipped. With
// dryRun set nothing is written, but Rewritten still lists the files that
// would change.
func (t *Tidier) Tidy(base string, files []string, dryRun bool) (Result, error) {
	var res Result
	for _, rel := range files {
		full := path.Join(base, rel)
		if !filesystem.IsFile(t.fs, full) {
			t.logger.Verbose("Skipping %s: not found", rel)
			res.Missing = append(res.Missing, rel)
			continue
		}

		data, err := t.fs.ReadFile(full)
		if err != nil {
			return res, fmt.Errorf("failed to read %s: %w", rel, err)
		}
		tidy, err := Format(rel, data)
		if err != nil {
			return res, err
		}
		if bytes.Equal(data, tidy) {
			res.Unchanged = append(res.Unchanged, rel)
			continue
		}

		if !dryRun {
			if err := t.fs.WriteFile(full, tidy); err != nil {
				return res, fmt.Errorf("%w: write %s: %w", edxml.ErrCommitFailed, rel, err)
			}
		}
		t.logger.Verbose("Tidied %s", rel)
		res.Rewritten = append(res.Rewritten, rel)
	}
	return res, nil
}
