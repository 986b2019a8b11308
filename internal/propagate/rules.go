package propagate

import (
	"context"
	"path"
	"strings"

	"github.com/pmitros/edxml-tools/internal/slug"
	"github.com/pmitros/edxml-tools/internal/xmltree"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// DisplayNameRule replaces machine-generated url_names with a slug of the
// node's display_name.
type DisplayNameRule struct{}

func (DisplayNameRule) Name() string { return "display-name" }

func (DisplayNameRule) Apply(_ context.Context, st *State) (int, error) {
	changed := 0
	st.Tree.Walk(st.Tree.Root(), func(id xmltree.NodeID) bool {
		urlName, ok := st.Tree.Attr(id, edxml.AttrURLName)
		if !ok || !slug.IsMachineGenerated(urlName) {
			return true
		}
		display := st.Tree.AttrValue(id, edxml.AttrDisplayName)
		if strings.TrimSpace(display) == "" {
			return true
		}
		renameNode(st, id, display)
		changed++
		return true
	})
	return changed, nil
}

// AssetFilenameRule renames machine-generated asset files after the
// owning node's url_name. The rename is planned in the change set.
type AssetFilenameRule struct {
	Directory string // asset directory relative to the course root
}

func (AssetFilenameRule) Name() string { return "asset-filename" }

func (r AssetFilenameRule) Apply(_ context.Context, st *State) (int, error) {
	if st.Changes == nil {
		return 0, nil
	}
	changed := 0
	st.Tree.Walk(st.Tree.Root(), func(id xmltree.NodeID) bool {
		filename, ok := st.Tree.Attr(id, edxml.AttrFilename)
		if !ok || !slug.IsMachineGenerated(filename) {
			return true
		}
		urlName, ok := st.Tree.Attr(id, edxml.AttrURLName)
		if !ok || urlName == filename || !plainName(urlName) {
			return true
		}

		src := path.Join(r.Directory, filename+edxml.AssetExtension)
		dst := path.Join(r.Directory, urlName+edxml.AssetExtension)
		if !st.Changes.Exists(src) {
			return true
		}
		if st.Changes.Exists(dst) {
			st.Logger.Verbose("Keeping %s: %s is taken", src, dst)
			return true
		}
		if err := st.Changes.Rename(src, dst); err != nil {
			st.Logger.Warn("Cannot rename %s: %v", src, err)
			return true
		}
		st.Tree.SetAttr(id, edxml.AttrFilename, urlName)
		changed++
		return true
	})
	return changed, nil
}

// DiscussionRule names discussion nodes after the sibling they follow and
// copies that sibling's display_name into discussion_target.
type DiscussionRule struct {
	Categories []string
}

func (DiscussionRule) Name() string { return "discussion" }

func (r DiscussionRule) Apply(_ context.Context, st *State) (int, error) {
	categories := make(map[string]bool, len(r.Categories))
	for _, c := range r.Categories {
		categories[c] = true
	}

	tree := st.Tree
	changed := 0
	tree.Walk(tree.Root(), func(id xmltree.NodeID) bool {
		if !categories[tree.Tag(id)] {
			return true
		}
		related := tree.PrecedingSibling(id)
		if related == xmltree.NoNode {
			return true
		}

		touched := false
		urlName, hasURLName := tree.Attr(id, edxml.AttrURLName)
		relatedURLName, relatedHasURLName := tree.Attr(related, edxml.AttrURLName)
		if hasURLName && slug.IsMachineGenerated(urlName) &&
			relatedHasURLName && !slug.IsMachineGenerated(relatedURLName) {
			renameNode(st, id, relatedURLName+"_"+tree.Tag(id))
			touched = true
		}

		target, hasTarget := tree.Attr(id, edxml.AttrDiscussionTarget)
		relatedDisplay, relatedHasDisplay := tree.Attr(related, edxml.AttrDisplayName)
		if (!hasTarget || slug.IsMachineGenerated(target)) &&
			relatedHasDisplay && !slug.IsMachineGenerated(relatedDisplay) {
			tree.SetAttr(id, edxml.AttrDiscussionTarget, relatedDisplay)
			touched = true
		}

		if touched {
			changed++
		}
		return true
	})
	return changed, nil
}

// plainName reports whether name can be used as a file name on its own.
func plainName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
