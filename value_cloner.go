package sweepcache

import (
	"bytes"
	"reflect"
)

// ValueCloner is an interface for cloning values.
// It is used to clone values when they are stored in or returned from a store.
// The CloneValue method should return a deep copy of the input value.
type ValueCloner[V ValueConstraint] interface {
	CloneValue(V) V
}

// ValueClonerFunc is a function type that implements the ValueCloner interface.
type ValueClonerFunc[V ValueConstraint] func(v V) V

// CloneValue calls the function.
func (f ValueClonerFunc[V]) CloneValue(v V) V {
	return f(v)
}

// NopValueCloner is a value cloner that does not clone values.
// It is used when values are immutable, such as strings.
type NopValueCloner[V ValueConstraint] struct{}

// CloneValue returns the input value.
func (NopValueCloner[V]) CloneValue(v V) V {
	return v
}

// DefaultValueCloner returns a default cloner for the given value type.
// Types with a Clone method use it; byte slices are copied; other primitive kinds are not cloned.
// It panics for any other type, which must be given an explicit cloner.
func DefaultValueCloner[V ValueConstraint]() ValueCloner[V] {
	var zero V
	if _, ok := any(zero).(interface{ Clone() V }); ok {
		return ValueClonerFunc[V](func(v V) V {
			return any(v).(interface{ Clone() V }).Clone()
		})
	}

	typ := reflect.TypeOf((*V)(nil)).Elem()
	switch typ.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return NopValueCloner[V]{}
	case reflect.Slice:
		if typ.Elem().Kind() == reflect.Uint8 {
			return ValueClonerFunc[V](func(v V) V {
				rv := reflect.ValueOf(v)
				if rv.IsNil() {
					return v
				}
				return reflect.ValueOf(bytes.Clone(rv.Bytes())).Convert(typ).Interface().(V)
			})
		}
	}
	panic("value type " + typ.String() + " does not have a Clone method")
}
