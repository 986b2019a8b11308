package xmltree

import (
	"fmt"
)

// NodeID addresses a node inside a Tree's arena.
type NodeID int

// NoNode is the parent of a root and of detached nodes.
const NoNode NodeID = -1

// Attr is a single attribute. Order of a node's attributes is kept for
// serialization only; names are unique per node.
type Attr struct {
	Name  string
	Value string
}

type node struct {
	tag      string
	attrs    []Attr
	text     string
	tail     string
	children []NodeID
	parent   NodeID
	source   string
	line     int
}

// Tree is an arena of XML element nodes. Every structural mutation goes
// through Tree methods so parent links always mirror children lists.
//
// Tree is not safe for concurrent use.
type Tree struct {
	nodes []node
	root  NodeID
}

// New creates an empty tree with no root.
func New() *Tree {
	return &Tree{root: NoNode}
}

// NewNode allocates a detached element.
func (t *Tree) NewNode(tag string) NodeID {
	t.nodes = append(t.nodes, node{tag: tag, parent: NoNode})
	return NodeID(len(t.nodes) - 1)
}

// Root returns the document element, or NoNode for an empty tree.
func (t *Tree) Root() NodeID {
	return t.root
}

// SetRoot makes id the document element. The node is detached first.
func (t *Tree) SetRoot(id NodeID) {
	t.mustExist(id)
	t.Detach(id)
	t.root = id
}

// Size returns the number of allocated nodes, reachable or not.
func (t *Tree) Size() int {
	return len(t.nodes)
}

func (t *Tree) mustExist(id NodeID) {
	if id < 0 || int(id) >= len(t.nodes) {
		panic(fmt.Sprintf("xmltree: node %d out of range", id))
	}
}

func (t *Tree) at(id NodeID) *node {
	t.mustExist(id)
	return &t.nodes[id]
}

// Tag returns the element name, including its prefix when present.
func (t *Tree) Tag(id NodeID) string { return t.at(id).tag }

// SetTag renames the element.
func (t *Tree) SetTag(id NodeID, tag string) { t.at(id).tag = tag }

// Text returns the character data before the first child.
func (t *Tree) Text(id NodeID) string { return t.at(id).text }

// SetText replaces the character data before the first child.
func (t *Tree) SetText(id NodeID, text string) { t.at(id).text = text }

// Tail returns the character data after the element's end tag.
func (t *Tree) Tail(id NodeID) string { return t.at(id).tail }

// SetTail replaces the character data after the element's end tag.
func (t *Tree) SetTail(id NodeID, tail string) { t.at(id).tail = tail }

// Source returns the file the node was parsed from and its line.
func (t *Tree) Source(id NodeID) (string, int) {
	n := t.at(id)
	return n.source, n.line
}

// SetSource records where the node came from.
func (t *Tree) SetSource(id NodeID, path string, line int) {
	n := t.at(id)
	n.source, n.line = path, line
}

// Attr returns the value of the named attribute.
func (t *Tree) Attr(id NodeID, name string) (string, bool) {
	for _, a := range t.at(id).attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrValue returns the named attribute or "" when absent.
func (t *Tree) AttrValue(id NodeID, name string) string {
	v, _ := t.Attr(id, name)
	return v
}

// SetAttr updates an attribute in place or appends it.
func (t *Tree) SetAttr(id NodeID, name, value string) {
	n := t.at(id)
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
}

// RemoveAttr deletes the named attribute if present.
func (t *Tree) RemoveAttr(id NodeID, name string) {
	n := t.at(id)
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// Attrs returns a copy of the node's attributes in document order.
func (t *Tree) Attrs(id NodeID) []Attr {
	return append([]Attr(nil), t.at(id).attrs...)
}

// ClearAttrs drops every attribute.
func (t *Tree) ClearAttrs(id NodeID) {
	t.at(id).attrs = nil
}

// Parent returns the owning node or NoNode.
func (t *Tree) Parent(id NodeID) NodeID { return t.at(id).parent }

// Children returns a copy of the ordered child list.
func (t *Tree) Children(id NodeID) []NodeID {
	return append([]NodeID(nil), t.at(id).children...)
}

// ChildCount returns the number of children.
func (t *Tree) ChildCount(id NodeID) int { return len(t.at(id).children) }

// AppendChild attaches child as the last child of parent, detaching it
// from any previous parent.
func (t *Tree) AppendChild(parent, child NodeID) {
	t.mustExist(parent)
	if parent == child {
		panic("xmltree: node cannot be its own child")
	}
	for p := parent; p != NoNode; p = t.nodes[p].parent {
		if p == child {
			panic("xmltree: appending an ancestor would create a cycle")
		}
	}
	t.Detach(child)
	if t.root == child {
		t.root = NoNode
	}
	t.nodes[parent].children = append(t.nodes[parent].children, child)
	t.nodes[child].parent = parent
}

// Detach removes id from its parent's child list. The subtree stays
// allocated and can be re-attached.
func (t *Tree) Detach(id NodeID) {
	n := t.at(id)
	if n.parent == NoNode {
		return
	}
	siblings := t.nodes[n.parent].children
	for i, c := range siblings {
		if c == id {
			t.nodes[n.parent].children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	n.parent = NoNode
}

// MoveChildren re-parents every child of from onto to, in order,
// after to's existing children.
func (t *Tree) MoveChildren(from, to NodeID) {
	for _, c := range t.Children(from) {
		t.AppendChild(to, c)
	}
}

// RemoveChildren detaches every child of id.
func (t *Tree) RemoveChildren(id NodeID) {
	for _, c := range t.Children(id) {
		t.Detach(c)
	}
}

// PrecedingSibling returns the child immediately before id under the same
// parent, or NoNode.
func (t *Tree) PrecedingSibling(id NodeID) NodeID {
	p := t.at(id).parent
	if p == NoNode {
		return NoNode
	}
	siblings := t.nodes[p].children
	for i, c := range siblings {
		if c == id {
			if i == 0 {
				return NoNode
			}
			return siblings[i-1]
		}
	}
	return NoNode
}

// Ancestors returns id's ancestors from the root down, excluding id.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var chain []NodeID
	for p := t.at(id).parent; p != NoNode; p = t.nodes[p].parent {
		chain = append(chain, p)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Walk visits the subtree rooted at id in document order. Returning false
// from fn skips the node's descendants.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	if id == NoNode {
		return
	}
	if !fn(id) {
		return
	}
	for _, c := range t.Children(id) {
		t.Walk(c, fn)
	}
}

// PostOrder lists the subtree rooted at id with every node after all of
// its descendants.
func (t *Tree) PostOrder(id NodeID) []NodeID {
	var out []NodeID
	var visit func(NodeID)
	visit = func(n NodeID) {
		for _, c := range t.nodes[n].children {
			visit(c)
		}
		out = append(out, n)
	}
	if id != NoNode {
		t.mustExist(id)
		visit(id)
	}
	return out
}

// Count returns the number of nodes reachable from the root.
func (t *Tree) Count() int {
	count := 0
	t.Walk(t.root, func(NodeID) bool {
		count++
		return true
	})
	return count
}

// Check verifies that parent links are the exact inverse of children
// lists and that no node is reachable twice.
func (t *Tree) Check() error {
	if t.root == NoNode {
		return nil
	}
	if p := t.nodes[t.root].parent; p != NoNode {
		return fmt.Errorf("root %d has parent %d", t.root, p)
	}
	seen := make(map[NodeID]bool)
	var visit func(NodeID) error
	visit = func(id NodeID) error {
		if seen[id] {
			return fmt.Errorf("node %d (%s) reachable twice", id, t.nodes[id].tag)
		}
		seen[id] = true
		for _, c := range t.nodes[id].children {
			if got := t.nodes[c].parent; got != id {
				return fmt.Errorf("node %d (%s) lists child %d whose parent is %d", id, t.nodes[id].tag, c, got)
			}
			if err := visit(c); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(t.root)
}
