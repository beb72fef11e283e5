// Package render turns the values a component can return into host nodes.
//
// Renderable is a closed variant: nothing, a plain value, a host node, a
// reactive text value, a keyed range, a branch selector, or a sequence of
// those. Flatten is the single operation that walks it into primitive nodes.
package render

import (
	"iter"
	"slices"
	"weak"

	"github.com/delaneyj/signaldom/pkg/bind"
	"github.com/delaneyj/signaldom/pkg/cell"
	"github.com/delaneyj/signaldom/pkg/host"
)

type Kind uint8

const (
	KindNil Kind = iota
	KindValue
	KindNode
	KindText
	KindRange
	KindSwitch
	KindSeq
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindValue:
		return "value"
	case KindNode:
		return "node"
	case KindText:
		return "text"
	case KindRange:
		return "range"
	case KindSwitch:
		return "switch"
	case KindSeq:
		return "sequence"
	default:
		return "unknown"
	}
}

// Ranger manages a run of sibling nodes inside parent, such as a keyed list.
type Ranger interface {
	// Render yields the initial nodes and starts tracking updates.
	Render(parent weak.Pointer[host.Node]) iter.Seq[*host.Node]
	// Nodes yields the nodes currently owned by the range.
	Nodes() iter.Seq[*host.Node]
	Dispose()
}

// Switcher manages a single node that is swapped in place.
type Switcher interface {
	Render() *host.Node
	// Current is the node on display right now.
	Current() *host.Node
	Dispose()
}

type Renderable struct {
	kind  Kind
	value string
	node  *host.Node
	text  func() (*host.Node, cell.Disposer)
	rng   Ranger
	sw    Switcher
	seq   []Renderable
}

func (r Renderable) Kind() Kind {
	return r.kind
}

func Nil() Renderable {
	return Renderable{}
}

// Value renders v once as static text. A nil v renders nothing.
func Value(v any) Renderable {
	if v == nil {
		return Nil()
	}
	return Renderable{kind: KindValue, value: bind.Format(v)}
}

func Node(n *host.Node) Renderable {
	if n == nil {
		return Nil()
	}
	return Renderable{kind: KindNode, node: n}
}

// Text renders a text node bound to src.
func Text[T any](src cell.Readable[T]) Renderable {
	return Renderable{kind: KindText, text: func() (*host.Node, cell.Disposer) {
		return bind.Text(src)
	}}
}

func Range(r Ranger) Renderable {
	return Renderable{kind: KindRange, rng: r}
}

func Switch(s Switcher) Renderable {
	return Renderable{kind: KindSwitch, sw: s}
}

func Seq(items ...Renderable) Renderable {
	return Renderable{kind: KindSeq, seq: items}
}

// Switcher returns the selector of a KindSwitch renderable.
func (r Renderable) Switcher() Switcher {
	return r.sw
}

// Flatten lazily yields the primitive nodes of items, rendering ranges and
// selectors as it reaches them.
func Flatten(parent weak.Pointer[host.Node], items ...Renderable) iter.Seq[*host.Node] {
	return func(yield func(*host.Node) bool) {
		for _, r := range items {
			for n := range mountNodes(parent, r, nil) {
				if !yield(n) {
					return
				}
			}
		}
	}
}

// Append flattens items into parent.
func Append(parent *host.Node, items ...Renderable) {
	parent.Append(slices.Collect(Flatten(weak.Make(parent), items...))...)
}

func mountNodes(parent weak.Pointer[host.Node], r Renderable, m *Mounted) iter.Seq[*host.Node] {
	return func(yield func(*host.Node) bool) {
		switch r.kind {
		case KindNil:
		case KindValue:
			n := host.NewText(r.value)
			m.add(part{node: n})
			yield(n)
		case KindNode:
			m.add(part{node: r.node})
			yield(r.node)
		case KindText:
			n, dispose := r.text()
			m.add(part{node: n, dispose: dispose})
			yield(n)
		case KindRange:
			m.add(part{rng: r.rng})
			for n := range r.rng.Render(parent) {
				if !yield(n) {
					return
				}
			}
		case KindSwitch:
			m.add(part{sw: r.sw})
			yield(r.sw.Render())
		case KindSeq:
			for _, child := range r.seq {
				for n := range mountNodes(parent, child, m) {
					if !yield(n) {
						return
					}
				}
			}
		}
	}
}
