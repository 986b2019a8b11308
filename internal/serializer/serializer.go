// Package serializer writes an assembled course tree back to its on-disk
// layout: selected subtrees become fragment files and the rest is
// pretty-printed into the root document.
//
// Serialization never touches the file system. Output is queued in a
// change set and written at commit.
package serializer

import (
	"path"
	"strings"

	"github.com/pmitros/edxml-tools/internal/changeset"
	"github.com/pmitros/edxml-tools/internal/xmltree"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// NewSelector returns the extraction selector of a run. An explicit XPath
// expression wins over categories; with neither, nothing is extracted and
// the selector is nil.
func NewSelector(categories []string, expr string) (*xmltree.Selector, error) {
	if expr == "" {
		if len(categories) == 0 {
			return nil, nil
		}
		expr = xmltree.CategorySelector(categories, edxml.AttrURLName)
	}
	return xmltree.CompileSelector(expr)
}

// Result describes the queued output.
type Result struct {
	// Extracted lists fragment files relative to the course directory,
	// innermost first
	Extracted []string
	Root      string
}

// Serializer renders trees into a change set.
type Serializer struct {
	selector *xmltree.Selector
	logger   edxml.Logger
}

// New creates a serializer. A nil selector disables extraction.
//
// Panics if logger is nil.
func New(selector *xmltree.Selector, logger edxml.Logger) *Serializer {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Serializer{selector: selector, logger: logger}
}

// Serialize extracts every selected node into <tag>/<url_name>.xml,
// stubbing it in the tree, then renders the root document. Children are
// extracted before their ancestors so a fragment holds stubs, not copies.
func (s *Serializer) Serialize(tree *xmltree.Tree, changes *changeset.Set, rootDocument string) Result {
	root := tree.Root()
	res := Result{Root: rootDocument}

	if s.selector != nil && root != xmltree.NoNode {
		selected := make(map[xmltree.NodeID]bool)
		for _, id := range s.selector.Select(tree, root) {
			selected[id] = true
		}

		written := make(map[string]bool)
		for _, id := range tree.PostOrder(root) {
			if !selected[id] || id == root {
				continue
			}
			urlName, ok := tree.Attr(id, edxml.AttrURLName)
			if !ok || !fileName(urlName) || !fileName(tree.Tag(id)) {
				s.logger.Warn("Not extracting <%s url_name=%q>: unusable as a file name", tree.Tag(id), urlName)
				continue
			}

			rel := path.Join(tree.Tag(id), urlName+edxml.FragmentExtension)
			if written[rel] {
				s.logger.Warn("Duplicate identifier: %s is written more than once, last one wins", rel)
			}
			written[rel] = true

			changes.Write(changeset.PhaseFragment, rel, tree.Format(id, xmltree.FormatOptions{}))
			stub(tree, id, urlName)
			res.Extracted = append(res.Extracted, rel)
		}
	}

	if root != xmltree.NoNode {
		changes.Write(changeset.PhaseRoot, rootDocument, tree.Format(root, xmltree.FormatOptions{Declaration: true}))
	}
	s.logger.Verbose("Serialized %s with %d extracted fragment(s)", rootDocument, len(res.Extracted))
	return res
}

// stub reduces id to a bare reference. Its tail stays with the parent.
func stub(tree *xmltree.Tree, id xmltree.NodeID, urlName string) {
	tree.RemoveChildren(id)
	tree.SetText(id, "")
	tree.ClearAttrs(id)
	tree.SetAttr(id, edxml.AttrURLName, urlName)
}

func fileName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
