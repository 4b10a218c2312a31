package record

import "reflect"

// strictEqual compares two raw values without looking inside them.
//
// Comparable values compare with ==. Maps, slices, pointers and channels
// are equal only when they are the same reference. Functions never compare
// equal. Two structurally equal but distinct collections are different,
// with one exception: empty slices carry no storage of their own, so two
// distinct empty slices of the same type may share a data pointer and
// compare equal, as do two nil slices.
func strictEqual(a, b any) (eq bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Func:
		return false
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Slice:
		return va.Len() == vb.Len() && va.UnsafePointer() == vb.UnsafePointer()
	}

	if !va.Type().Comparable() {
		return false
	}

	// Structs and arrays holding interfaces may still panic on ==.
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
