package xmltree

import (
	"bytes"
	"strings"
)

// Declaration is written before the document element of a root document.
const Declaration = `<?xml version="1.0" encoding="UTF-8"?>`

// FormatOptions controls pretty printing.
type FormatOptions struct {
	Indent      string // Indentation per level, two spaces when empty
	Declaration bool   // Emit the XML declaration first
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#10;", "\r", "&#13;", "\t", "&#9;",
	)
)

// Format pretty-prints the subtree rooted at id. Elements whose own
// character data is only whitespace are re-indented; elements with mixed
// content are written inline so their text survives byte-for-byte. The
// tail of id itself is not written.
func (t *Tree) Format(id NodeID, opts FormatOptions) []byte {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	var buf bytes.Buffer
	if opts.Declaration {
		buf.WriteString(Declaration)
		buf.WriteByte('\n')
	}
	t.formatNode(&buf, id, 0, opts.Indent)
	return buf.Bytes()
}

func (t *Tree) formatNode(w *bytes.Buffer, id NodeID, depth int, indent string) {
	writeIndent(w, depth, indent)
	if t.mixed(id) {
		t.writeInline(w, id)
		w.WriteByte('\n')
		return
	}

	n := &t.nodes[id]
	t.writeStartTag(w, id)
	if len(n.children) == 0 {
		w.WriteString("/>\n")
		return
	}
	w.WriteString(">\n")
	for _, c := range n.children {
		t.formatNode(w, c, depth+1, indent)
	}
	writeIndent(w, depth, indent)
	t.writeEndTag(w, id)
	w.WriteByte('\n')
}

// mixed reports whether the element carries significant character data
// of its own, either as leading text or as a child's tail.
func (t *Tree) mixed(id NodeID) bool {
	n := &t.nodes[id]
	if strings.TrimSpace(n.text) != "" {
		return true
	}
	for _, c := range n.children {
		if strings.TrimSpace(t.nodes[c].tail) != "" {
			return true
		}
	}
	return false
}

func (t *Tree) writeInline(w *bytes.Buffer, id NodeID) {
	n := &t.nodes[id]
	t.writeStartTag(w, id)
	if len(n.children) == 0 && n.text == "" {
		w.WriteString("/>")
		return
	}
	w.WriteByte('>')
	w.WriteString(textEscaper.Replace(n.text))
	for _, c := range n.children {
		t.writeInline(w, c)
		w.WriteString(textEscaper.Replace(t.nodes[c].tail))
	}
	t.writeEndTag(w, id)
}

func (t *Tree) writeStartTag(w *bytes.Buffer, id NodeID) {
	n := &t.nodes[id]
	w.WriteByte('<')
	w.WriteString(n.tag)
	for _, a := range n.attrs {
		w.WriteByte(' ')
		w.WriteString(a.Name)
		w.WriteString(`="`)
		w.WriteString(attrEscaper.Replace(a.Value))
		w.WriteByte('"')
	}
}

func (t *Tree) writeEndTag(w *bytes.Buffer, id NodeID) {
	w.WriteString("</")
	w.WriteString(t.nodes[id].tag)
	w.WriteByte('>')
}

func writeIndent(w *bytes.Buffer, depth int, indent string) {
	for i := 0; i < depth; i++ {
		w.WriteString(indent)
	}
}
