package cell

import "reflect"

// EqualFunc reports whether a write of next over current is a no-op.
type EqualFunc[T any] func(next, current T) bool

// Identical returns the default identity comparator for T.
//
// Comparable values compare with ==. Slices are identical when they share
// backing array and length, maps when they are the same map. Funcs and
// non-comparable structs or arrays are never identical, so every write
// notifies.
func Identical[T any]() EqualFunc[T] {
	t := reflect.TypeFor[T]()
	switch t.Kind() {
	case reflect.Slice:
		return func(a, b T) bool {
			va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
			return va.IsNil() == vb.IsNil() &&
				va.Len() == vb.Len() &&
				va.Pointer() == vb.Pointer()
		}
	case reflect.Map:
		return func(a, b T) bool {
			return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
		}
	case reflect.Func:
		return never[T]
	case reflect.Interface:
		return func(a, b T) bool {
			return dynamicEqual(any(a), any(b))
		}
	case reflect.Struct, reflect.Array:
		if !t.Comparable() {
			return never[T]
		}
		// may still hold interface fields with non-comparable dynamic values
		return func(a, b T) bool {
			return dynamicEqual(any(a), any(b))
		}
	default:
		return func(a, b T) bool {
			return any(a) == any(b)
		}
	}
}

func never[T any](T, T) bool {
	return false
}

func dynamicEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	}
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}

// DeepEqual compares with reflect.DeepEqual; use it with WithEqual when
// structural equality is wanted instead of identity.
func DeepEqual[T any](a, b T) bool {
	return reflect.DeepEqual(a, b)
}
