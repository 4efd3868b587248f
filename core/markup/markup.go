// Package markup provides the in-memory markup tree used by every redline
// pipeline: parsing a content part, namespace-aware traversal, in-place
// mutation and serialization back to bytes.
//
// Nodes are backed by github.com/antchfx/xmlquery. Each node has exactly one
// parent; mutation helpers detach a node before attaching it elsewhere so the
// tree never aliases a child list.
//
// Security Notes:
//   - Input is checked for well-formedness with encoding/xml before the tree
//     is built. The decoder is given an empty entity map, so no entity other
//     than the five predefined ones is ever expanded.
package markup

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/redline/core/encoding"
	"github.com/FocuswithJustin/redline/core/errors"
)

// XMLNamespace is the namespace bound to the reserved "xml" prefix.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

// Name is a namespace-qualified element or attribute name. Space holds the
// namespace URI, not the prefix.
type Name struct {
	Space string
	Local string
}

func (n Name) String() string {
	if n.Space == "" {
		return n.Local
	}
	return "{" + n.Space + "}" + n.Local
}

// Document is a parsed content part.
type Document struct {
	root *xmlquery.Node
}

// Node is an element of a Document.
type Node struct {
	node *xmlquery.Node
}

// Parse parses markup and returns a Document. Any well-formedness failure is
// reported as a ParseError matching errors.ErrMalformedMarkup.
func Parse(data []byte) (*Document, error) {
	if err := checkWellFormed(data); err != nil {
		return nil, errors.NewMarkup("", err)
	}
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewMarkup("", err)
	}
	doc := &Document{root: root}
	if doc.Root() == nil {
		return nil, errors.NewMarkup("", fmt.Errorf("no root element"))
	}
	return doc, nil
}

func checkWellFormed(data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Entity = map[string]string{}
	for {
		_, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Root returns the document element.
func (d *Document) Root() *Node {
	if d == nil || d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// FindAll returns every descendant element of the document matching name.
func (d *Document) FindAll(name Name) []*Node {
	return FindAll(d.Root(), name)
}

// Query evaluates an XPath expression against the document. Prefixes used in
// expr are resolved through namespaces; only element results are returned.
func (d *Document) Query(expr string, namespaces map[string]string) ([]*Node, error) {
	compiled, err := xpath.CompileWithNS(expr, namespaces)
	if err != nil {
		return nil, errors.Wrap(err, "invalid xpath")
	}
	var result []*Node
	for _, n := range xmlquery.QuerySelectorAll(d.root, compiled) {
		if n.Type == xmlquery.ElementNode {
			result = append(result, &Node{node: n})
		}
	}
	return result, nil
}

// FindAll returns every descendant of n (not n itself) whose namespace URI
// and local name equal name, in document order.
func FindAll(n *Node, name Name) []*Node {
	if n == nil || n.node == nil {
		return nil
	}
	var out []*Node
	walk(n.node, func(x *xmlquery.Node) {
		if x.Type == xmlquery.ElementNode && x.NamespaceURI == name.Space && x.Data == name.Local {
			out = append(out, &Node{node: x})
		}
	})
	return out
}

// walk visits the descendants of n depth-first in document order.
func walk(n *xmlquery.Node, visit func(*xmlquery.Node)) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		visit(child)
		walk(child, visit)
	}
}

// TextOf concatenates the direct text of every descendant element of n whose
// name is one of leaves, in document order. It returns "" when none exist.
func TextOf(n *Node, leaves ...Name) string {
	var b strings.Builder
	for _, leaf := range Leaves(n, leaves...) {
		b.WriteString(leaf.Text())
	}
	return b.String()
}

// Leaves returns the descendants of n whose name is one of names.
func Leaves(n *Node, names ...Name) []*Node {
	if n == nil || n.node == nil {
		return nil
	}
	var out []*Node
	walk(n.node, func(x *xmlquery.Node) {
		if x.Type != xmlquery.ElementNode {
			return
		}
		for _, name := range names {
			if x.NamespaceURI == name.Space && x.Data == name.Local {
				out = append(out, &Node{node: x})
				return
			}
		}
	})
	return out
}

// NewElement returns a detached element in namespace space, written with prefix.
func NewElement(prefix, space, local string) *Node {
	return &Node{node: &xmlquery.Node{
		Type:         xmlquery.ElementNode,
		Data:         local,
		Prefix:       prefix,
		NamespaceURI: space,
	}}
}

// Name returns the element's qualified name.
func (n *Node) Name() Name {
	if n == nil || n.node == nil {
		return Name{}
	}
	return Name{Space: n.node.NamespaceURI, Local: n.node.Data}
}

// Is reports whether the element has the given name.
func (n *Node) Is(name Name) bool {
	return n.Name() == name
}

// Parent returns the parent element, or nil at the document element.
func (n *Node) Parent() *Node {
	if n == nil || n.node == nil || n.node.Parent == nil || n.node.Parent.Type != xmlquery.ElementNode {
		return nil
	}
	return &Node{node: n.node.Parent}
}

// Children returns the child elements.
func (n *Node) Children() []*Node {
	if n == nil || n.node == nil {
		return nil
	}
	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, &Node{node: child})
		}
	}
	return children
}

// Child returns the first child element named name.
func (n *Node) Child(name Name) *Node {
	for _, c := range n.Children() {
		if c.Is(name) {
			return c
		}
	}
	return nil
}

// LastChild returns the last child element, or nil.
func (n *Node) LastChild() *Node {
	children := n.Children()
	if len(children) == 0 {
		return nil
	}
	return children[len(children)-1]
}

// Attr returns the value of the attribute with the given namespace URI and
// local name.
func (n *Node) Attr(name Name) (string, bool) {
	if n == nil || n.node == nil {
		return "", false
	}
	for _, a := range n.node.Attr {
		if a.Name.Local == name.Local && attrSpace(a) == name.Space {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, replacing an existing one with the same name.
func (n *Node) SetAttr(prefix string, name Name, value string) {
	for i, a := range n.node.Attr {
		if a.Name.Local == name.Local && attrSpace(a) == name.Space {
			n.node.Attr[i].Value = value
			return
		}
	}
	n.node.Attr = append(n.node.Attr, xmlquery.Attr{
		Name:         xml.Name{Space: prefix, Local: name.Local},
		Value:        value,
		NamespaceURI: name.Space,
	})
}

func attrSpace(a xmlquery.Attr) string {
	if a.NamespaceURI != "" {
		return a.NamespaceURI
	}
	if a.Name.Space == "xml" || a.Name.Space == XMLNamespace {
		return XMLNamespace
	}
	return ""
}

// Text returns the element's direct character data.
func (n *Node) Text() string {
	if n == nil || n.node == nil {
		return ""
	}
	var b strings.Builder
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.TextNode || child.Type == xmlquery.CharDataNode {
			b.WriteString(child.Data)
		}
	}
	return b.String()
}

// SetText replaces the element's direct character data with s.
func (n *Node) SetText(s string) {
	var stale []*xmlquery.Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.TextNode || child.Type == xmlquery.CharDataNode {
			stale = append(stale, child)
		}
	}
	for _, c := range stale {
		xmlquery.RemoveFromTree(c)
	}
	if s != "" {
		xmlquery.AddChild(n.node, &xmlquery.Node{Type: xmlquery.TextNode, Data: s})
	}
}

// AppendChild attaches child as the last child of n, detaching it from any
// previous parent first.
func (n *Node) AppendChild(child *Node) *Node {
	if child.node.Parent != nil {
		xmlquery.RemoveFromTree(child.node)
	}
	xmlquery.AddChild(n.node, child.node)
	return child
}

// Remove detaches n from its parent. Its subtree goes with it.
func (n *Node) Remove() {
	if n == nil || n.node == nil || n.node.Parent == nil {
		return
	}
	xmlquery.RemoveFromTree(n.node)
}

// Serialize writes the document back to bytes. The result re-parses to an
// equivalent tree; attribute order and whitespace are kept as parsed.
func (d *Document) Serialize() []byte {
	if d == nil || d.root == nil {
		return nil
	}
	var buf bytes.Buffer
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		writeNode(&buf, child)
	}
	return buf.Bytes()
}

func writeNode(w *bytes.Buffer, n *xmlquery.Node) {
	switch n.Type {
	case xmlquery.DeclarationNode:
		w.WriteString("<?")
		w.WriteString(n.Data)
		for _, attr := range n.Attr {
			w.WriteString(" ")
			w.WriteString(attr.Name.Local)
			w.WriteString("=\"")
			w.WriteString(encoding.EscapeXMLAttr(attr.Value))
			w.WriteString("\"")
		}
		w.WriteString("?>")

	case xmlquery.ElementNode:
		w.WriteString("<")
		writeElementName(w, n)
		for _, attr := range n.Attr {
			w.WriteString(" ")
			w.WriteString(attrName(n, attr))
			w.WriteString("=\"")
			w.WriteString(encoding.EscapeXMLAttr(attr.Value))
			w.WriteString("\"")
		}
		if n.FirstChild == nil {
			w.WriteString("/>")
			return
		}
		w.WriteString(">")
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			writeNode(w, child)
		}
		w.WriteString("</")
		writeElementName(w, n)
		w.WriteString(">")

	case xmlquery.TextNode:
		w.WriteString(encoding.EscapeXMLText(n.Data))

	case xmlquery.CharDataNode:
		w.WriteString("<![CDATA[")
		w.WriteString(encoding.EscapeCDATA(n.Data))
		w.WriteString("]]>")

	case xmlquery.CommentNode:
		w.WriteString("<!--")
		w.WriteString(encoding.EscapeComment(n.Data))
		w.WriteString("-->")

	case xmlquery.ProcessingInstruction:
		if n.ProcInst == nil {
			return
		}
		w.WriteString("<?")
		w.WriteString(n.ProcInst.Target)
		if n.ProcInst.Inst != "" {
			w.WriteString(" ")
			w.WriteString(n.ProcInst.Inst)
		}
		w.WriteString("?>")

	case xmlquery.NotationNode:
		w.WriteString("<!")
		w.WriteString(n.Data)
		w.WriteString(">")
	}
}

func writeElementName(w *bytes.Buffer, n *xmlquery.Node) {
	if n.Prefix != "" {
		w.WriteString(n.Prefix)
		w.WriteString(":")
	}
	w.WriteString(n.Data)
}

// attrName returns the written form of an attribute. xmlquery stores the
// prefix in Name.Space when it could resolve the namespace, and the raw URI
// when it could not (the reserved xml namespace is never declared).
func attrName(owner *xmlquery.Node, a xmlquery.Attr) string {
	switch {
	case a.Name.Space == "":
		return a.Name.Local
	case a.Name.Space == "xmlns":
		return "xmlns:" + a.Name.Local
	case a.Name.Space == "xml" || a.Name.Space == XMLNamespace:
		return "xml:" + a.Name.Local
	case prefixDeclared(owner, a.Name.Space):
		return a.Name.Space + ":" + a.Name.Local
	}
	if p, ok := prefixFor(owner, a.Name.Space); ok {
		return p + ":" + a.Name.Local
	}
	return a.Name.Space + ":" + a.Name.Local
}

func prefixDeclared(n *xmlquery.Node, prefix string) bool {
	for x := n; x != nil; x = x.Parent {
		for _, a := range x.Attr {
			if a.Name.Space == "xmlns" && a.Name.Local == prefix {
				return true
			}
		}
	}
	return false
}

func prefixFor(n *xmlquery.Node, uri string) (string, bool) {
	for x := n; x != nil; x = x.Parent {
		for _, a := range x.Attr {
			if a.Name.Space == "xmlns" && a.Value == uri {
				return a.Name.Local, true
			}
		}
	}
	return "", false
}
