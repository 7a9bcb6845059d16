package util

import "reflect"

// IsZero reports whether i is nil or zero value of its type.
func IsZero(i interface{}) bool {
	if i == nil {
		return true
	}
	return IsZeroVal(reflect.ValueOf(i))
}

// IsZeroVal works for non comparable types too: structs with slices, maps and so on.
func IsZeroVal(v reflect.Value) bool {
	return !v.IsValid() || v.IsZero()
}
