// Package branch shows one of several alternative nodes depending on the key
// derived from a cell. Each key's branch is rendered the first time it is
// selected and then kept for the lifetime of the selector, so switching back
// to a key restores the exact same node, state included.
package branch

import (
	"fmt"
	"weak"

	"github.com/delaneyj/signaldom/pkg/cell"
	"github.com/delaneyj/signaldom/pkg/diag"
	"github.com/delaneyj/signaldom/pkg/host"
	"github.com/delaneyj/signaldom/pkg/render"
)

// Factory renders the branch for the value that selected it. A branch must
// be nothing, a value, a node, reactive text or another selector.
type Factory[T any] func(value T) render.Renderable

type Switch[T any, K comparable] struct {
	source    cell.Readable[T]
	key       func(T) K
	factories map[K]Factory[T]
	fallback  Factory[T]

	branches    map[K]*render.Mounted
	shown       *render.Mounted
	placeholder *host.Node

	// owners are enclosing selectors kept alive while s is displayed.
	owners []any

	stop     cell.Disposer
	rendered bool
	disposed bool
}

var _ render.Switcher = (*Switch[int, int])(nil)

// Keyed selects branches by key(value).
func Keyed[T any, K comparable](source cell.Readable[T], key func(T) K) *Switch[T, K] {
	s := &Switch[T, K]{
		source:      source,
		key:         key,
		factories:   map[K]Factory[T]{},
		branches:    map[K]*render.Mounted{},
		placeholder: host.NewComment(""),
	}
	s.placeholder.Retain(s)
	return s
}

// New selects branches by the value itself.
func New[T comparable](source cell.Readable[T]) *Switch[T, T] {
	return Keyed(source, func(v T) T { return v })
}

// ByField selects branches by the exported field called name.
func ByField[T any, K comparable](source cell.Readable[T], name string) (*Switch[T, K], error) {
	key, err := cell.FieldFunc[T, K](name)
	if err != nil {
		return nil, fmt.Errorf("branch: %w", err)
	}
	return Keyed(source, key), nil
}

// When is the two-way selector over pred(value). Either factory may be nil.
func When[T any](source cell.Readable[T], pred func(T) bool, then, otherwise Factory[T]) *Switch[T, bool] {
	s := Keyed(source, pred)
	if then != nil {
		s.Case(true, then)
	}
	if otherwise != nil {
		s.Case(false, otherwise)
	}
	return s
}

// If shows then while cond holds and otherwise while it does not.
func If(cond cell.Readable[bool], then, otherwise Factory[bool]) *Switch[bool, bool] {
	return When(cond, func(b bool) bool { return b }, then, otherwise)
}

func (s *Switch[T, K]) Case(key K, f Factory[T]) *Switch[T, K] {
	s.factories[key] = f
	return s
}

// Default handles every key without a case of its own.
func (s *Switch[T, K]) Default(f Factory[T]) *Switch[T, K] {
	s.fallback = f
	return s
}

func (s *Switch[T, K]) From(factories map[K]Factory[T]) *Switch[T, K] {
	for k, f := range factories {
		s.factories[k] = f
	}
	return s
}

// Renderable wraps s for use as a child.
func (s *Switch[T, K]) Renderable() render.Renderable {
	return render.Switch(s)
}

// Retain keeps v reachable for as long as s is.
func (s *Switch[T, K]) Retain(v any) {
	s.owners = append(s.owners, v)
}

// Render selects the first branch and swaps it in place on every later
// emission of the source. The subscription holds the selector weakly; the
// placeholder and every branch node pin it, so dropping the host tree lets
// the subscription dispose itself.
func (s *Switch[T, K]) Render() *host.Node {
	if s.rendered {
		diag.Reportf("%w: branch", diag.ErrRerender)
		return s.Current()
	}
	s.rendered = true
	s.shown = s.branch(s.source.Value())

	self := weak.Make(s)
	s.stop = s.source.Subscribe(func(v T, dispose cell.Disposer) {
		live := self.Value()
		if live == nil || live.disposed {
			dispose()
			return
		}
		live.show(v)
	})
	return s.Current()
}

// Current is the node on display: the active branch, or a placeholder
// comment when the active key has nothing to show.
func (s *Switch[T, K]) Current() *host.Node {
	if !s.rendered {
		return nil
	}
	if s.shown == nil {
		return s.placeholder
	}
	for n := range s.shown.Nodes() {
		return n
	}
	return s.placeholder
}

// Len is the number of cached branches.
func (s *Switch[T, K]) Len() int {
	return len(s.branches)
}

func (s *Switch[T, K]) Dispose() {
	if s.disposed {
		diag.Reportf("%w: branch", diag.ErrDoubleDispose)
		return
	}
	s.disposed = true
	if s.stop != nil {
		s.stop()
	}
	for _, m := range s.branches {
		m.Dispose()
	}
	clear(s.branches)
	s.shown = nil
}

func (s *Switch[T, K]) show(v T) {
	old := s.Current()
	s.shown = s.branch(v)
	next := s.Current()
	if next == old || old.Parent() == nil {
		return
	}
	if !old.ReplaceWith(next) {
		diag.Reportf("%w: branch cannot replace its node", diag.ErrDetached)
	}
}

// branch returns the cached branch for v's key, rendering it on first use.
// Empty and unsupported branches are not cached.
func (s *Switch[T, K]) branch(v T) *render.Mounted {
	k := s.key(v)
	if m, ok := s.branches[k]; ok {
		return m
	}

	f, ok := s.factories[k]
	if !ok {
		f = s.fallback
	}
	if f == nil {
		return nil
	}

	r := f(v)
	switch r.Kind() {
	case render.KindNil:
		return nil
	case render.KindSeq, render.KindRange:
		diag.Reportf("%w: %s for key %v", diag.ErrUnsupportedBranch, r.Kind(), k)
		return nil
	}

	m := render.Mount(weak.Pointer[host.Node]{}, r)
	if r.Kind() == render.KindSwitch {
		if nested, ok := r.Switcher().(retainer); ok {
			nested.Retain(s)
		}
	} else {
		for n := range m.Nodes() {
			n.Retain(s)
		}
	}
	s.branches[k] = m
	return m
}

// retainer is a nested selector that can keep its owner alive.
type retainer interface {
	Retain(v any)
}
