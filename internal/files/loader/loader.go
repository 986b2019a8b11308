package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/internal/xmltree"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// Resolution is an assembled tree plus the fragments merged into it.
type Resolution struct {
	Tree *xmltree.Tree

	// Consumed lists merged fragments relative to the course directory,
	// in the order they were read
	Consumed []string

	consumed map[string]bool
}

// IsConsumed reports whether the fragment at rel was merged.
func (r *Resolution) IsConsumed(rel string) bool {
	return r.consumed[rel]
}

// Loader reads a course directory into a Resolution.
type Loader struct {
	fs     filesystem.FileSystemProvider
	logger edxml.Logger
}

// NewLoader creates a loader over fsys.
//
// Panics if fsys or logger is nil.
func NewLoader(fsys filesystem.FileSystemProvider, logger edxml.Logger) *Loader {
	if fsys == nil {
		panic("filesystem provider cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Loader{fs: fsys, logger: logger}
}

// Load parses base/rootDocument and resolves every reference beneath it.
func (l *Loader) Load(ctx context.Context, base, rootDocument string) (*Resolution, error) {
	rootPath := path.Join(base, rootDocument)
	if !filesystem.IsFile(l.fs, rootPath) {
		return nil, fmt.Errorf("%s: %w", rootPath, edxml.ErrRootNotFound)
	}

	data, err := l.fs.ReadFile(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rootPath, err)
	}

	tree := xmltree.New()
	root, err := tree.ParseFragment(bytes.NewReader(data), rootDocument)
	if err != nil {
		return nil, err
	}
	tree.SetRoot(root)

	res := &Resolution{Tree: tree, consumed: make(map[string]bool)}
	if err := l.Resolve(ctx, base, res, root); err != nil {
		return nil, err
	}

	l.logger.Verbose("Loaded %s: %d nodes, %d fragments merged", rootDocument, tree.Count(), len(res.Consumed))
	return res, nil
}

// Resolve inlines the fragments referenced from the subtree at id. A
// fragment already consumed by res is never read again, so resolving an
// assembled tree a second time changes nothing.
func (l *Loader) Resolve(ctx context.Context, base string, res *Resolution, id xmltree.NodeID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if res.consumed == nil {
		res.consumed = make(map[string]bool)
	}

	tree := res.Tree
	existing := tree.Children(id)

	rel, ok := l.fragmentFor(base, res, tree, id)
	if ok {
		if err := l.merge(ctx, base, res, id, rel); err != nil {
			return err
		}
	}

	for _, child := range existing {
		if err := l.Resolve(ctx, base, res, child); err != nil {
			return err
		}
	}
	return nil
}

// fragmentFor returns the relative path of the unconsumed fragment id
// refers to, if there is one.
func (l *Loader) fragmentFor(base string, res *Resolution, tree *xmltree.Tree, id xmltree.NodeID) (string, bool) {
	urlName, ok := tree.Attr(id, edxml.AttrURLName)
	if !ok {
		return "", false
	}
	if !safeName(urlName) {
		l.logger.Verbose("Ignoring url_name %q on <%s>: not a plain file name", urlName, tree.Tag(id))
		return "", false
	}

	tag := tree.Tag(id)
	rel := path.Join(tag, urlName+edxml.FragmentExtension)
	if res.consumed[rel] {
		return "", false
	}
	if !filesystem.IsDir(l.fs, path.Join(base, tag)) {
		return "", false
	}
	if !filesystem.IsFile(l.fs, path.Join(base, rel)) {
		return "", false
	}
	return rel, true
}

func (l *Loader) merge(ctx context.Context, base string, res *Resolution, id xmltree.NodeID, rel string) error {
	tree := res.Tree

	data, err := l.fs.ReadFile(path.Join(base, rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", rel, edxml.ErrMissingFragment)
		}
		return fmt.Errorf("failed to read %s: %w", rel, err)
	}

	fragment, err := tree.ParseFragment(bytes.NewReader(data), rel)
	if err != nil {
		return err
	}
	res.consumed[rel] = true
	res.Consumed = append(res.Consumed, rel)

	if err := l.Resolve(ctx, base, res, fragment); err != nil {
		return err
	}

	if tree.Tag(fragment) == tree.Tag(id) {
		// placeholder and definition collapse into one node; the
		// referencing node keeps its position and tail
		tree.SetText(id, tree.Text(fragment))
		for _, a := range tree.Attrs(fragment) {
			tree.SetAttr(id, a.Name, a.Value)
		}
		tree.MoveChildren(fragment, id)
		l.logger.Verbose("Merged %s into <%s>", rel, tree.Tag(id))
		return nil
	}

	tree.SetTail(fragment, "")
	tree.AppendChild(id, fragment)
	l.logger.Verbose("Appended %s under <%s>", rel, tree.Tag(id))
	return nil
}

func safeName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
