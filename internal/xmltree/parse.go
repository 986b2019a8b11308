package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/antchfx/xmlquery"

	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// ParseFragment parses one XML document into the arena and returns its
// document element, detached. source is recorded on every node and used
// in error messages.
//
// Comments and processing instructions are dropped. Whitespace is kept
// verbatim; the encoder decides what is layout.
func (t *Tree) ParseFragment(r io.Reader, source string) (NodeID, error) {
	doc, err := xmlquery.ParseWithOptions(r, xmlquery.ParserOptions{
		WithLineNumbers: true,
		Decoder: &xmlquery.DecoderOptions{
			Strict: true,
			Entity: xml.HTMLEntity,
		},
	})
	if err != nil {
		return NoNode, newParseError(source, err)
	}

	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return t.importElement(n, source), nil
		}
	}
	return NoNode, &edxml.ParseError{Path: source, Err: errors.New("document has no element")}
}

func newParseError(source string, err error) error {
	var syntax *xml.SyntaxError
	if errors.As(err, &syntax) {
		return &edxml.ParseError{Path: source, Line: syntax.Line, Err: errors.New(syntax.Msg)}
	}
	return &edxml.ParseError{Path: source, Err: err}
}

func (t *Tree) importElement(src *xmlquery.Node, source string) NodeID {
	id := t.NewNode(qualifiedName(src.Prefix, src.Data))
	t.nodes[id].source = source
	t.nodes[id].line = src.LineNumber

	for _, a := range src.Attr {
		t.SetAttr(id, qualifiedName(a.Name.Space, a.Name.Local), a.Value)
	}

	last := NoNode
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			child := t.importElement(c, source)
			t.AppendChild(id, child)
			last = child
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if last == NoNode {
				t.nodes[id].text += c.Data
			} else {
				t.nodes[last].tail += c.Data
			}
		}
	}
	return id
}

func qualifiedName(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return fmt.Sprintf("%s:%s", prefix, local)
}
