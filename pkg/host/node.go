// Package host is a small in-memory document tree that rendered output is
// spliced into. It follows DOM semantics where they matter to the core:
// inserting a node moves it out of its previous parent, and when the same
// node is inserted twice in one call its last position wins.
package host

import (
	"slices"
	"strings"
)

type Kind uint8

const (
	ElementNode Kind = iota + 1
	TextNode
	CommentNode
)

func (k Kind) String() string {
	switch k {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

type Attr struct {
	Name  string
	Value string
}

type Node struct {
	kind     Kind
	tag      string
	data     string
	attrs    []Attr
	parent   *Node
	children []*Node
	retained []any
}

func NewElement(tag string, children ...*Node) *Node {
	n := &Node{kind: ElementNode, tag: strings.ToLower(tag)}
	n.Append(children...)
	return n
}

func NewText(data string) *Node {
	return &Node{kind: TextNode, data: data}
}

func NewComment(data string) *Node {
	return &Node{kind: CommentNode, data: data}
}

func (n *Node) Kind() Kind    { return n.kind }
func (n *Node) Tag() string   { return n.tag }
func (n *Node) Data() string  { return n.data }
func (n *Node) Parent() *Node { return n.parent }

// SetData replaces the content of a text or comment node.
func (n *Node) SetData(data string) {
	if n.kind == ElementNode {
		return
	}
	n.data = data
}

// ChildNodes returns a copy of the child list.
func (n *Node) ChildNodes() []*Node {
	return slices.Clone(n.children)
}

func (n *Node) Len() int {
	return len(n.children)
}

// IndexOf returns the position of child, or -1.
func (n *Node) IndexOf(child *Node) int {
	return slices.Index(n.children, child)
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *Node) Attrs() []Attr {
	return slices.Clone(n.attrs)
}

// SetAttr sets or overwrites name, keeping first-set order.
func (n *Node) SetAttr(name, value string) *Node {
	if n.kind != ElementNode {
		return n
	}
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return n
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
	return n
}

func (n *Node) RemoveAttr(name string) {
	n.attrs = slices.DeleteFunc(n.attrs, func(a Attr) bool {
		return a.Name == name
	})
}

// Append adds nodes after the existing children.
func (n *Node) Append(nodes ...*Node) {
	if len(nodes) == 0 {
		return
	}
	n.ReplaceChildren(append(n.ChildNodes(), nodes...)...)
}

// ReplaceChildren makes nodes the complete child list of n. Nodes are moved
// out of their previous parents, nil entries and nodes that would create a
// cycle are skipped, and a node listed twice ends up at its last position.
func (n *Node) ReplaceChildren(nodes ...*Node) {
	if n.kind != ElementNode {
		return
	}

	last := make(map[*Node]int, len(nodes))
	for i, c := range nodes {
		if c != nil {
			last[c] = i
		}
	}

	next := make([]*Node, 0, len(last))
	for i, c := range nodes {
		if c == nil || last[c] != i || c.Contains(n) {
			continue
		}
		next = append(next, c)
	}

	for _, old := range n.children {
		if _, kept := last[old]; !kept {
			old.parent = nil
		}
	}
	for _, c := range next {
		if c.parent != nil && c.parent != n {
			c.parent.removeChild(c)
		}
		c.parent = n
	}
	n.children = next
}

// ReplaceWith puts r where n is. It reports false when n has no parent.
func (n *Node) ReplaceWith(r *Node) bool {
	p := n.parent
	if p == nil {
		return false
	}
	if r == n {
		return true
	}
	if r.Contains(p) {
		return false
	}
	if r.parent != nil {
		r.parent.removeChild(r)
	}
	i := p.IndexOf(n)
	p.children[i] = r
	r.parent = p
	n.parent = nil
	return true
}

// Retain keeps v reachable for as long as n is. Components whose
// subscriptions only hold them weakly pin themselves to the nodes they own.
func (n *Node) Retain(v any) {
	n.retained = append(n.retained, v)
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.removeChild(n)
	}
}

func (n *Node) removeChild(c *Node) {
	if i := n.IndexOf(c); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
	c.parent = nil
}

// TextContent concatenates the data of every descendant text node.
func (n *Node) TextContent() string {
	if n.kind != ElementNode {
		return n.data
	}
	var sb strings.Builder
	n.walkText(&sb)
	return sb.String()
}

func (n *Node) walkText(sb *strings.Builder) {
	for _, c := range n.children {
		switch c.kind {
		case TextNode:
			sb.WriteString(c.data)
		case ElementNode:
			c.walkText(sb)
		}
	}
}
