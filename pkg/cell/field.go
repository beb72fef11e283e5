package cell

import (
	"fmt"
	"reflect"

	"github.com/delaneyj/signaldom/pkg/diag"
)

// FieldFunc builds an accessor for the exported field called name of the
// struct T (or *T). A nil pointer yields the zero U.
func FieldFunc[T, U any](name string) (func(T) U, error) {
	t := reflect.TypeFor[T]()
	isPtr := t.Kind() == reflect.Pointer
	if isPtr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", diag.ErrUnknownField, t)
	}

	sf, ok := t.FieldByName(name)
	if !ok || !sf.IsExported() {
		return nil, fmt.Errorf("%w: %s has no exported field %q", diag.ErrUnknownField, t, name)
	}
	want := reflect.TypeFor[U]()
	if !sf.Type.AssignableTo(want) {
		return nil, fmt.Errorf("%w: %s.%s is %s, not %s", diag.ErrUnknownField, t, name, sf.Type, want)
	}

	index := sf.Index
	return func(v T) U {
		var zero U
		rv := reflect.ValueOf(&v).Elem()
		if isPtr {
			if rv.IsNil() {
				return zero
			}
			rv = rv.Elem()
		}
		fv, err := rv.FieldByIndexErr(index)
		if err != nil {
			return zero
		}
		u, ok := fv.Interface().(U)
		if !ok {
			return zero
		}
		return u
	}, nil
}
