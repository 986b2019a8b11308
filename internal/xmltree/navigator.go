package xmltree

import (
	"fmt"
	"strings"

	"github.com/antchfx/xpath"

	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// Navigator adapts a Tree to xpath.NodeNavigator. Elements and attributes
// are exposed; character data is reachable only through string values.
type Navigator struct {
	tree *Tree
	top  NodeID
	curr NodeID // NoNode is the document node above top
	attr int
}

var _ xpath.NodeNavigator = (*Navigator)(nil)

// NewNavigator positions a navigator on the document node of the subtree
// rooted at top.
func NewNavigator(t *Tree, top NodeID) *Navigator {
	return &Navigator{tree: t, top: top, curr: NoNode, attr: -1}
}

// Current returns the element under the navigator, or NoNode on the
// document node.
func (x *Navigator) Current() NodeID { return x.curr }

func (x *Navigator) NodeType() xpath.NodeType {
	switch {
	case x.curr == NoNode:
		return xpath.RootNode
	case x.attr != -1:
		return xpath.AttributeNode
	default:
		return xpath.ElementNode
	}
}

func (x *Navigator) name() string {
	if x.curr == NoNode {
		return ""
	}
	n := &x.tree.nodes[x.curr]
	if x.attr != -1 {
		return n.attrs[x.attr].Name
	}
	return n.tag
}

func (x *Navigator) LocalName() string {
	name := x.name()
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func (x *Navigator) Prefix() string {
	name := x.name()
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i]
	}
	return ""
}

func (x *Navigator) Value() string {
	switch {
	case x.curr == NoNode:
		if x.top == NoNode {
			return ""
		}
		return x.tree.InnerText(x.top)
	case x.attr != -1:
		return x.tree.nodes[x.curr].attrs[x.attr].Value
	default:
		return x.tree.InnerText(x.curr)
	}
}

func (x *Navigator) Copy() xpath.NodeNavigator {
	n := *x
	return &n
}

func (x *Navigator) MoveToRoot() {
	x.curr = NoNode
	x.attr = -1
}

func (x *Navigator) MoveToParent() bool {
	switch {
	case x.attr != -1:
		x.attr = -1
		return true
	case x.curr == NoNode:
		return false
	case x.curr == x.top:
		x.curr = NoNode
		return true
	default:
		x.curr = x.tree.nodes[x.curr].parent
		return true
	}
}

func (x *Navigator) MoveToNextAttribute() bool {
	if x.curr == NoNode || x.attr >= len(x.tree.nodes[x.curr].attrs)-1 {
		return false
	}
	x.attr++
	return true
}

func (x *Navigator) MoveToChild() bool {
	if x.attr != -1 {
		return false
	}
	if x.curr == NoNode {
		if x.top == NoNode {
			return false
		}
		x.curr = x.top
		return true
	}
	children := x.tree.nodes[x.curr].children
	if len(children) == 0 {
		return false
	}
	x.curr = children[0]
	return true
}

func (x *Navigator) siblings() ([]NodeID, int) {
	if x.curr == NoNode || x.curr == x.top {
		return nil, -1
	}
	siblings := x.tree.nodes[x.tree.nodes[x.curr].parent].children
	for i, c := range siblings {
		if c == x.curr {
			return siblings, i
		}
	}
	return nil, -1
}

func (x *Navigator) MoveToFirst() bool {
	if x.attr != -1 {
		return false
	}
	siblings, i := x.siblings()
	if i <= 0 {
		return false
	}
	x.curr = siblings[0]
	return true
}

func (x *Navigator) MoveToNext() bool {
	if x.attr != -1 {
		return false
	}
	siblings, i := x.siblings()
	if i < 0 || i+1 >= len(siblings) {
		return false
	}
	x.curr = siblings[i+1]
	return true
}

func (x *Navigator) MoveToPrevious() bool {
	if x.attr != -1 {
		return false
	}
	siblings, i := x.siblings()
	if i <= 0 {
		return false
	}
	x.curr = siblings[i-1]
	return true
}

func (x *Navigator) MoveTo(other xpath.NodeNavigator) bool {
	node, ok := other.(*Navigator)
	if !ok || node.tree != x.tree || node.top != x.top {
		return false
	}
	x.curr = node.curr
	x.attr = node.attr
	return true
}

// InnerText concatenates all character data inside id, excluding id's
// own tail.
func (t *Tree) InnerText(id NodeID) string {
	var sb strings.Builder
	var visit func(NodeID)
	visit = func(n NodeID) {
		sb.WriteString(t.nodes[n].text)
		for _, c := range t.nodes[n].children {
			visit(c)
			sb.WriteString(t.nodes[c].tail)
		}
	}
	visit(id)
	return sb.String()
}

// Selector is a compiled XPath expression over a Tree.
type Selector struct {
	expr *xpath.Expr
}

// CompileSelector compiles an XPath expression. Errors wrap
// edxml.ErrInvalidXPath.
func CompileSelector(expr string) (*Selector, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%q: %w: %w", expr, edxml.ErrInvalidXPath, err)
	}
	return &Selector{expr: compiled}, nil
}

// String returns the source expression.
func (s *Selector) String() string {
	return s.expr.String()
}

// Select returns the elements matched under top in document order.
// Attribute matches select their owning element.
func (s *Selector) Select(t *Tree, top NodeID) []NodeID {
	matched := make(map[NodeID]bool)
	it := s.expr.Select(NewNavigator(t, top))
	for it.MoveNext() {
		if nav, ok := it.Current().(*Navigator); ok && nav.curr != NoNode {
			matched[nav.curr] = true
		}
	}

	// unions are not guaranteed to come back in document order
	var out []NodeID
	t.Walk(top, func(id NodeID) bool {
		if matched[id] {
			out = append(out, id)
		}
		return true
	})
	return out
}

// CategorySelector builds the expression matching every element of the
// given tags that carries attr.
func CategorySelector(tags []string, attr string) string {
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		parts = append(parts, fmt.Sprintf("//%s[@%s]", tag, attr))
	}
	return strings.Join(parts, " | ")
}
