// Package cell implements the push-based reactive value holder and the
// combinators that derive new cells from existing ones.
//
// Propagation is synchronous: every dependent subscriber has run by the time
// SetValue returns. Cells are not safe for concurrent use.
package cell

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/signaldom/pkg/diag"
)

// Disposer permanently severs one subscription. Calling it again is a no-op.
type Disposer func()

// Callback receives every new value together with the disposer of its own
// subscription.
type Callback[T any] func(value T, dispose Disposer)

// Readable is the contract consumed by bindings, the reconciler and the
// branch selector.
type Readable[T any] interface {
	Value() T
	Subscribe(fn Callback[T]) Disposer
}

// MaxReentrancy bounds how deep a cell may be re-entered from its own
// subscribers before further writes are dropped and reported as a cycle.
// Raise it for re-entrant chains that are bounded but deeper than this.
var MaxReentrancy = 100

type subscription[T any] struct {
	fn      Callback[T]
	dispose Disposer
}

type Cell[T any] struct {
	name    string
	value   T
	defined bool
	equal   EqualFunc[T]
	subs    mapset.Set[*subscription[T]]
	depth   int
}

type Option[T any] func(*Cell[T])

// WithName turns on trace logging of every write.
func WithName[T any](name string) Option[T] {
	return func(c *Cell[T]) {
		c.name = name
	}
}

// WithEqual replaces the identity comparator.
func WithEqual[T any](fn EqualFunc[T]) Option[T] {
	return func(c *Cell[T]) {
		if fn != nil {
			c.equal = fn
		}
	}
}

func newCell[T any](opts []Option[T]) *Cell[T] {
	c := &Cell[T]{
		equal: Identical[T](),
		subs:  mapset.NewThreadUnsafeSet[*subscription[T]](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New creates a cell holding initial.
func New[T any](initial T, opts ...Option[T]) *Cell[T] {
	c := newCell(opts)
	c.value = initial
	c.defined = true
	return c
}

// Empty creates a cell with no value yet. Value returns the zero value until
// the first write, which always notifies.
func Empty[T any](opts ...Option[T]) *Cell[T] {
	return newCell(opts)
}

func (c *Cell[T]) Value() T {
	return c.value
}

func (c *Cell[T]) Defined() bool {
	return c.defined
}

func (c *Cell[T]) Name() string {
	return c.name
}

func (c *Cell[T]) SubscriberCount() int {
	return c.subs.Cardinality()
}

func (c *Cell[T]) String() string {
	if c.name != "" {
		return c.name
	}
	return fmt.Sprintf("cell(%v)", c.value)
}

// SetValue stores v and notifies every current subscriber, unless the
// comparator reports v equal to the current value.
//
// Subscribers are snapshotted before delivery, so registrations and removals
// made by a subscriber do not change who receives this emission. Every
// subscriber in the snapshot receives v exactly once. When a subscriber
// writes to the cell again, the nested emission is delivered first, so
// subscribers later in the snapshot may see v after the newer value.
//
// A write made while the cell is already MaxReentrancy notifications deep
// is dropped and reported as diag.ErrCycle. Panics from subscribers or
// comparators are not recovered.
func (c *Cell[T]) SetValue(v T) {
	if c.defined && c.equal(v, c.value) {
		return
	}
	if c.depth >= MaxReentrancy {
		diag.Reportf("%w: %s re-entered %d times", diag.ErrCycle, c, c.depth)
		return
	}

	c.value = v
	c.defined = true

	if c.name != "" {
		diag.Tracef("%s(%d) set to %v", c.name, c.subs.Cardinality(), v)
	}
	if c.subs.Cardinality() == 0 {
		return
	}

	c.depth++
	defer func() { c.depth-- }()
	for _, sub := range c.subs.ToSlice() {
		sub.fn(v, sub.dispose)
	}
}

// Update is SetValue(fn(Value())).
func (c *Cell[T]) Update(fn func(T) T) {
	c.SetValue(fn(c.value))
}

// Subscribe registers fn and returns its disposer. Every call creates a new
// registration; the returned disposer removes exactly that one.
func (c *Cell[T]) Subscribe(fn Callback[T]) Disposer {
	sub := &subscription[T]{fn: fn}
	sub.dispose = func() {
		c.subs.Remove(sub)
	}
	c.subs.Add(sub)
	return sub.dispose
}
