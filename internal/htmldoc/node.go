// Package htmldoc defines the parsed-HTML-tree shape that Template Lowering
// (internal/lower) consumes. spec.md §1 treats the HTML lexer/parser as an
// opaque external collaborator; this package is the data contract for its
// output (a linked-list parse tree with byte-offset source locations) plus a
// minimal reference tokenizer sufficient to drive the compiler end-to-end in
// tests and the CLI adapter, grounded on the withastro/compiler parse-tree
// shape (Node with Parent/FirstChild/NextSibling, DataAtom-less Data tag
// name, Attr slice, Loc positions) seen in other_examples' astro-compiler
// transform/printer files.
package htmldoc

import "github.com/opmodel/tscompiler/internal/span"

// NodeType discriminates the parse tree's node kinds.
type NodeType int

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
)

// Attr is one attribute on an ElementNode, with separate name/value spans
// recovered by slicing the element's start-tag source range (spec.md §4.2
// "Span precision").
type Attr struct {
	Name      string
	Value     string
	NameSpan  span.TextSpan
	ValueSpan span.TextSpan
}

// Node is one node of the parsed HTML tree. Traversal is via the linked
// fields, not a Children slice, matching the teacher-adjacent astro-compiler
// idiom and keeping reparenting (projection adoption, controller
// splitting) a pointer-relinking operation instead of a slice splice.
type Node struct {
	Type NodeType
	Data string // tag name (Element), text content (Text/Comment)
	Attr []Attr

	Parent, FirstChild, LastChild, PrevSibling, NextSibling *Node

	SelfClosed bool

	// Loc is the whole node's source span; TagLoc/CloseTagLoc are the
	// start-tag and end-tag spans of an ElementNode (spec.md §3 DomNode).
	Loc         span.TextSpan
	TagLoc      span.TextSpan
	CloseTagLoc span.TextSpan
	// StartTagSource is the raw text of the opening tag, sliced from the
	// document; attribute name/value spans are recovered against it.
	StartTagSource string
}

// AppendChild relinks child under n, detaching it from any previous parent
// first.
func (n *Node) AppendChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	child.PrevSibling = n.LastChild
	child.NextSibling = nil
	if n.LastChild != nil {
		n.LastChild.NextSibling = child
	} else {
		n.FirstChild = child
	}
	n.LastChild = child
}

// RemoveChild unlinks child from n's child list.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		return
	}
	if child.PrevSibling != nil {
		child.PrevSibling.NextSibling = child.NextSibling
	} else {
		n.FirstChild = child.NextSibling
	}
	if child.NextSibling != nil {
		child.NextSibling.PrevSibling = child.PrevSibling
	} else {
		n.LastChild = child.PrevSibling
	}
	child.Parent, child.PrevSibling, child.NextSibling = nil, nil, nil
}

// Children returns the child list as a slice, for callers that want
// positional indexing (e.g. NodeId assignment) rather than pointer-walking.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Attribute looks up an attribute by name, case-sensitively (HTML attribute
// name casing is preserved by the lexer; callers that want
// case-insensitivity fold before calling).
func (n *Node) Attribute(name string) (Attr, bool) {
	for _, a := range n.Attr {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}
