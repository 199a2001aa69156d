// Package xml wraps xmlquery with the small surface reports need:
// well-formedness validation, XPath queries, and pretty printing.
//
// Entity expansion is disabled during validation, so crafted documents
// cannot trigger XXE lookups.
package xml

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
)

// Document is a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node is one element of a parsed document.
type Node struct {
	node *xmlquery.Node
}

// Parse reads XML into a queryable document.
func Parse(data []byte) (*Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, tberrors.Wrap(err, "parsing xml")
	}
	return &Document{root: root}, nil
}

// Validate checks well-formedness. Entity expansion is off, so the
// check never follows external references.
func Validate(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return tberrors.Wrap(err, "invalid xml")
		}
	}
}

// XPath returns all nodes matching the expression.
func (d *Document) XPath(expr string) ([]*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, tberrors.Wrapf(err, "compiling xpath %q", expr)
	}
	nodes, err := xmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, tberrors.Wrapf(err, "querying xpath %q", expr)
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = &Node{node: n}
	}
	return out, nil
}

// XPathFirst returns the first match, or nil when nothing matches.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, tberrors.Wrapf(err, "compiling xpath %q", expr)
	}
	node, err := xmlquery.Query(d.root, expr)
	if err != nil {
		return nil, tberrors.Wrapf(err, "querying xpath %q", expr)
	}
	if node == nil {
		return nil, nil
	}
	return &Node{node: node}, nil
}

// Count returns the number of nodes matching the expression.
func (d *Document) Count(expr string) (int, error) {
	nodes, err := d.XPath(expr)
	if err != nil {
		return 0, err
	}
	return len(nodes), nil
}

// Root returns the document's root element.
func (d *Document) Root() *Node {
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// Serialize renders the document back to XML.
func (d *Document) Serialize() []byte {
	if d.root == nil {
		return nil
	}
	return []byte(d.root.OutputXML(true))
}

// Name returns the element name.
func (n *Node) Name() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.Data
}

// Text returns the concatenated text of the node and its descendants.
func (n *Node) Text() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// Attr returns an attribute value, empty when absent.
func (n *Node) Attr(name string) string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.SelectAttr(name)
}

// Attrs returns all attributes of the node.
func (n *Node) Attrs() map[string]string {
	if n == nil || n.node == nil {
		return nil
	}
	attrs := make(map[string]string, len(n.node.Attr))
	for _, a := range n.node.Attr {
		attrs[a.Name.Local] = a.Value
	}
	return attrs
}

// Children returns the element children of the node.
func (n *Node) Children() []*Node {
	if n == nil || n.node == nil {
		return nil
	}
	var out []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			out = append(out, &Node{node: child})
		}
	}
	return out
}

// FormatOptions controls pretty printing.
type FormatOptions struct {
	Indent string
}

// Format pretty-prints XML with one element per line.
func Format(data []byte, opts FormatOptions) ([]byte, error) {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	formatNode(&buf, doc.root, 0, opts.Indent)
	return buf.Bytes(), nil
}

func formatNode(w *bytes.Buffer, n *xmlquery.Node, depth int, indent string) {
	switch n.Type {
	case xmlquery.DocumentNode:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			formatNode(w, child, depth, indent)
		}

	case xmlquery.DeclarationNode:
		w.WriteString("<?xml")
		for _, attr := range n.Attr {
			w.WriteString(" ")
			w.WriteString(attr.Name.Local)
			w.WriteString(`="`)
			w.WriteString(escapeAttr(attr.Value))
			w.WriteString(`"`)
		}
		w.WriteString("?>\n")

	case xmlquery.ElementNode:
		writeIndent(w, depth, indent)
		w.WriteString("<")
		w.WriteString(qualifiedName(n))
		for _, attr := range n.Attr {
			w.WriteString(" ")
			w.WriteString(attr.Name.Local)
			w.WriteString(`="`)
			w.WriteString(escapeAttr(attr.Value))
			w.WriteString(`"`)
		}

		text, hasElements := elementContent(n)
		switch {
		case n.FirstChild == nil:
			w.WriteString("/>\n")
		case hasElements:
			w.WriteString(">\n")
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				if child.Type == xmlquery.ElementNode {
					formatNode(w, child, depth+1, indent)
				}
			}
			writeIndent(w, depth, indent)
			w.WriteString("</")
			w.WriteString(qualifiedName(n))
			w.WriteString(">\n")
		default:
			w.WriteString(">")
			w.WriteString(escapeText(text))
			w.WriteString("</")
			w.WriteString(qualifiedName(n))
			w.WriteString(">\n")
		}

	case xmlquery.CommentNode:
		writeIndent(w, depth, indent)
		w.WriteString("<!--")
		w.WriteString(n.Data)
		w.WriteString("-->\n")
	}
}

// elementContent reports whether an element has element children, and
// collects its text when it does not.
func elementContent(n *xmlquery.Node) (string, bool) {
	var text strings.Builder
	hasElements := false
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.ElementNode:
			hasElements = true
		case xmlquery.TextNode, xmlquery.CharDataNode:
			text.WriteString(child.Data)
		}
	}
	return strings.TrimSpace(text.String()), hasElements
}

func qualifiedName(n *xmlquery.Node) string {
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Data
	}
	return n.Data
}

func writeIndent(w *bytes.Buffer, depth int, indent string) {
	for i := 0; i < depth; i++ {
		w.WriteString(indent)
	}
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

func escapeAttr(s string) string { return attrEscaper.Replace(s) }

func escapeText(s string) string { return textEscaper.Replace(s) }
