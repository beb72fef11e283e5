package cell

import "slices"

// Derived is a cell fed by subscriptions to one or more upstream cells.
// Dispose detaches it from all of them at once.
type Derived[T any] struct {
	*Cell[T]
	group *Group
}

func derive[T any](c *Cell[T], upstream ...Disposer) *Derived[T] {
	return &Derived[T]{Cell: c, group: NewGroup(upstream...)}
}

func (d *Derived[T]) Dispose() {
	d.group.Dispose()
}

func (d *Derived[T]) Disposed() bool {
	return d.group.Disposed()
}

// Map re-derives fn(v) on every emission of src.
func Map[T, U any](src Readable[T], fn func(T) U, opts ...Option[U]) *Derived[U] {
	out := New(fn(src.Value()), opts...)
	return derive(out, src.Subscribe(func(v T, _ Disposer) {
		out.SetValue(fn(v))
	}))
}

// Project is Map with a fixed accessor, typically a struct field.
func Project[T, U any](src Readable[T], field func(T) U) *Derived[U] {
	return Map(src, field)
}

// At projects the exported struct field called name.
func At[T, U any](src Readable[T], name string) (*Derived[U], error) {
	field, err := FieldFunc[T, U](name)
	if err != nil {
		return nil, err
	}
	return Map(src, field), nil
}

// Filter forwards only the values satisfying pred. When the current value of
// src already matches it becomes the initial value, otherwise the result
// starts empty.
func Filter[T any](src Readable[T], pred func(T) bool, opts ...Option[T]) *Derived[T] {
	out := Empty(opts...)
	if v := src.Value(); pred(v) {
		out.SetValue(v)
	}
	return derive(out, src.Subscribe(func(v T, _ Disposer) {
		if pred(v) {
			out.SetValue(v)
		}
	}))
}

// Merge forwards whichever source emits, verbatim. It stays empty until the
// first emission.
func Merge[T any](sources ...Readable[T]) *Derived[T] {
	return MergeWith(nil, sources...)
}

// MergeWith is Merge with options for the merged cell.
func MergeWith[T any](opts []Option[T], sources ...Readable[T]) *Derived[T] {
	out := Empty(opts...)
	upstream := make([]Disposer, len(sources))
	for i, src := range sources {
		upstream[i] = src.Subscribe(func(v T, _ Disposer) {
			out.SetValue(v)
		})
	}
	return derive(out, upstream...)
}

// Combine recomputes fn over the latest value of every source whenever any
// single source emits. fn receives a copy of the snapshot.
func Combine[T, U any](fn func(values []T) U, sources ...Readable[T]) *Derived[U] {
	return CombineWith(fn, nil, sources...)
}

// CombineWith is Combine with options for the combined cell.
func CombineWith[T, U any](fn func(values []T) U, opts []Option[U], sources ...Readable[T]) *Derived[U] {
	values := make([]T, len(sources))
	for i, src := range sources {
		values[i] = src.Value()
	}
	out := New(fn(slices.Clone(values)), opts...)

	upstream := make([]Disposer, len(sources))
	for i, src := range sources {
		upstream[i] = src.Subscribe(func(v T, _ Disposer) {
			values[i] = v
			out.SetValue(fn(slices.Clone(values)))
		})
	}
	return derive(out, upstream...)
}

func Combine2[A, B, U any](a Readable[A], b Readable[B], fn func(A, B) U, opts ...Option[U]) *Derived[U] {
	va, vb := a.Value(), b.Value()
	out := New(fn(va, vb), opts...)
	return derive(out,
		a.Subscribe(func(v A, _ Disposer) {
			va = v
			out.SetValue(fn(va, vb))
		}),
		b.Subscribe(func(v B, _ Disposer) {
			vb = v
			out.SetValue(fn(va, vb))
		}),
	)
}

func Combine3[A, B, C, U any](a Readable[A], b Readable[B], c Readable[C], fn func(A, B, C) U, opts ...Option[U]) *Derived[U] {
	va, vb, vc := a.Value(), b.Value(), c.Value()
	out := New(fn(va, vb, vc), opts...)
	return derive(out,
		a.Subscribe(func(v A, _ Disposer) {
			va = v
			out.SetValue(fn(va, vb, vc))
		}),
		b.Subscribe(func(v B, _ Disposer) {
			vb = v
			out.SetValue(fn(va, vb, vc))
		}),
		c.Subscribe(func(v C, _ Disposer) {
			vc = v
			out.SetValue(fn(va, vb, vc))
		}),
	)
}
