// Package each renders a collection-valued cell as a keyed run of sibling
// nodes and keeps it in sync without re-rendering items whose key persists.
package each

import (
	"fmt"
	"iter"
	"reflect"
	"weak"

	"github.com/delaneyj/signaldom/pkg/cell"
	"github.com/delaneyj/signaldom/pkg/diag"
	"github.com/delaneyj/signaldom/pkg/host"
	"github.com/delaneyj/signaldom/pkg/render"
)

// Factory renders one item. It runs once per key; afterwards the value and
// index cells are updated in place.
type Factory[T any] func(value *cell.Cell[T], index *cell.Cell[int], source cell.Readable[[]T]) render.Renderable

type KeyFunc[T any, K comparable] func(T) K

type item[T any] struct {
	index *cell.Cell[int]
	value *cell.Cell[T]
	mount *render.Mounted
	pos   int
}

// Each is the keyed reconciler. It owns two comment sentinels and replaces
// everything between them on every emission of its source.
type Each[T any, K comparable] struct {
	source  cell.Readable[[]T]
	key     KeyFunc[T, K]
	factory Factory[T]
	// dynamic keys hold interfaces whose values may not be hashable.
	dynamic bool

	// previous holds the live generation between passes, current is only
	// populated during a pass. They swap after every pass.
	previous, current map[K]*item[T]
	order, next       []*item[T]

	parent     weak.Pointer[host.Node]
	start, end *host.Node
	stop       cell.Disposer
	rendered   bool
	disposed   bool
}

func New[T any, K comparable](source cell.Readable[[]T], key KeyFunc[T, K], factory Factory[T]) *Each[T, K] {
	return &Each[T, K]{
		source:   source,
		key:      key,
		factory:  factory,
		dynamic:  holdsInterface(reflect.TypeFor[K]()),
		previous: map[K]*item[T]{},
		current:  map[K]*item[T]{},
	}
}

// Identity keys every element by itself.
func Identity[T comparable](source cell.Readable[[]T], factory Factory[T]) *Each[T, T] {
	return New(source, func(v T) T { return v }, factory)
}

// ByField keys every element by its exported field called name.
func ByField[T any, K comparable](source cell.Readable[[]T], name string, factory Factory[T]) (*Each[T, K], error) {
	key, err := cell.FieldFunc[T, K](name)
	if err != nil {
		return nil, fmt.Errorf("keyed range: %w", err)
	}
	return New(source, KeyFunc[T, K](key), factory), nil
}

// Render yields the start sentinel, the nodes of every item and the end
// sentinel, then keeps that range in sync with the source. The subscription
// holds the reconciler weakly; the start sentinel pins it, so dropping the
// host tree lets the subscription dispose itself.
func (e *Each[T, K]) Render(parent weak.Pointer[host.Node]) iter.Seq[*host.Node] {
	return func(yield func(*host.Node) bool) {
		if e.rendered {
			diag.Reportf("%w: keyed range", diag.ErrRerender)
			return
		}
		e.rendered = true
		e.parent = parent
		e.start, e.end = host.NewComment(""), host.NewComment("")
		e.start.Retain(e)

		self := weak.Make(e)
		e.stop = e.source.Subscribe(func(values []T, dispose cell.Disposer) {
			live := self.Value()
			if live == nil || live.disposed {
				dispose()
				return
			}
			p := live.parent.Value()
			if p == nil {
				dispose()
				return
			}
			live.replace(p, values)
		})

		if !yield(e.start) {
			return
		}
		for n := range e.pass(e.source.Value()) {
			if !yield(n) {
				return
			}
		}
		yield(e.end)
	}
}

// Nodes yields the sentinels and every node currently between them.
func (e *Each[T, K]) Nodes() iter.Seq[*host.Node] {
	return func(yield func(*host.Node) bool) {
		if !e.rendered {
			return
		}
		if !yield(e.start) {
			return
		}
		for n := range e.items() {
			if !yield(n) {
				return
			}
		}
		yield(e.end)
	}
}

// Len is the number of live items.
func (e *Each[T, K]) Len() int {
	return len(e.previous)
}

// Dispose stops tracking the source and tears down every item.
func (e *Each[T, K]) Dispose() {
	if e.disposed {
		diag.Reportf("%w: keyed range", diag.ErrDoubleDispose)
		return
	}
	e.disposed = true
	if e.stop != nil {
		e.stop()
	}
	for _, it := range e.previous {
		it.mount.Dispose()
	}
	clear(e.previous)
	clear(e.current)
	e.order = nil
}

func (e *Each[T, K]) replace(parent *host.Node, values []T) {
	if e.start.Parent() != parent || e.end.Parent() != parent {
		diag.Reportf("%w: keyed range", diag.ErrDetached)
		e.Dispose()
		return
	}

	children := parent.ChildNodes()
	startAt := parent.IndexOf(e.start)
	endAt := parent.IndexOf(e.end)
	if endAt < startAt {
		diag.Reportf("%w: keyed range sentinels out of order", diag.ErrDetached)
		e.Dispose()
		return
	}

	nodes := make([]*host.Node, 0, len(children)+len(values))
	nodes = append(nodes, children[:startAt+1]...)
	for n := range e.pass(values) {
		nodes = append(nodes, n)
	}
	nodes = append(nodes, children[endAt:]...)
	parent.ReplaceChildren(nodes...)
}

// pass reconciles values against the previous generation when first pulled
// and then yields the nodes of the new generation in order.
func (e *Each[T, K]) pass(values []T) iter.Seq[*host.Node] {
	return func(yield func(*host.Node) bool) {
		e.reconcile(values)
		for n := range e.items() {
			if !yield(n) {
				return
			}
		}
	}
}

func (e *Each[T, K]) items() iter.Seq[*host.Node] {
	return func(yield func(*host.Node) bool) {
		for _, it := range e.order {
			if it == nil {
				continue
			}
			for n := range it.mount.Nodes() {
				if !yield(n) {
					return
				}
			}
		}
	}
}

func (e *Each[T, K]) reconcile(values []T) {
	e.next = e.next[:0]

	for i, v := range values {
		k := e.key(v)
		if e.dynamic && !hashable(k) {
			diag.Reportf("%w: %T at index %d", diag.ErrUnhashableKey, k, i)
			continue
		}

		if dup, ok := e.current[k]; ok {
			diag.Reportf("%w: %v at index %d replaces index %d", diag.ErrDuplicateKey, k, i, dup.pos)
			e.next[dup.pos] = nil
			if _, carried := e.previous[k]; !carried {
				dup.mount.Dispose()
			}
		}

		it, ok := e.previous[k]
		if ok {
			it.index.SetValue(i)
			it.value.SetValue(v)
		} else {
			it = e.newItem(i, v)
		}
		it.pos = len(e.next)
		e.current[k] = it
		e.next = append(e.next, it)
	}

	for k, it := range e.previous {
		if _, kept := e.current[k]; !kept {
			it.mount.Dispose()
		}
	}

	e.previous, e.current = e.current, e.previous
	clear(e.current)
	e.order, e.next = e.next, e.order
}

func holdsInterface(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface:
		return true
	case reflect.Array:
		return holdsInterface(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if holdsInterface(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}

func hashable(k any) bool {
	return k == nil || reflect.ValueOf(k).Comparable()
}

func (e *Each[T, K]) newItem(i int, v T) *item[T] {
	it := &item[T]{
		index: cell.New(i),
		value: cell.New(v),
	}
	it.mount = render.Mount(e.parent, e.factory(it.value, it.index, e.source))
	return it
}
