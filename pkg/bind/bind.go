// Package bind couples cells to host nodes without keeping the nodes alive.
//
// Every binding holds its node through a weak reference. When a notification
// arrives after the node has been collected the binding disposes itself, so
// nodes dropped outside the library never leak their subscriptions. The cost
// is that one notification may still reach a dead binding before it goes.
package bind

import (
	"fmt"
	"weak"

	"github.com/delaneyj/signaldom/pkg/cell"
	"github.com/delaneyj/signaldom/pkg/host"
)

// Ref resolves to the bound resource, or nil once it is gone.
// weak.Pointer satisfies it.
type Ref[N any] interface {
	Value() *N
}

// Guard subscribes apply to src for as long as ref resolves.
func Guard[T, N any](src cell.Readable[T], ref Ref[N], apply func(n *N, v T)) cell.Disposer {
	return src.Subscribe(func(v T, dispose cell.Disposer) {
		n := ref.Value()
		if n == nil {
			dispose()
			return
		}
		apply(n, v)
	})
}

// Format renders a value as text content.
func Format[T any](v T) string {
	switch x := any(v).(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// Text creates a text node that follows src.
func Text[T any](src cell.Readable[T]) (*host.Node, cell.Disposer) {
	n := host.NewText(Format(src.Value()))
	return n, Guard(src, weak.Make(n), func(n *host.Node, v T) {
		n.SetData(Format(v))
	})
}

// Attr keeps the attribute name of n in sync with src. Booleans follow HTML
// rules: true sets an empty attribute, false removes it.
func Attr[T any](n *host.Node, name string, src cell.Readable[T]) cell.Disposer {
	setAttr(n, name, src.Value())
	return Guard(src, weak.Make(n), func(n *host.Node, v T) {
		setAttr(n, name, v)
	})
}

func setAttr[T any](n *host.Node, name string, v T) {
	if b, ok := any(v).(bool); ok {
		if b {
			n.SetAttr(name, "")
		} else {
			n.RemoveAttr(name)
		}
		return
	}
	n.SetAttr(name, Format(v))
}
