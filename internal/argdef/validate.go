package argdef

import (
	"reflect"

	"github.com/vk/stencil/internal/ctyval"
	"github.com/zclconf/go-cty/cty"
)

// Validate checks every bound value against its argument's declared type.
// It runs once per invocation, after binding and before rendering, and is
// identical for interpreted and compiled renders.
//
// Arguments declared mixed are never checked. A binding that equals the
// argument's declared default is also exempt: defaults were vetted when the
// definition was built, and handlers may deliberately default an argument to
// a sentinel outside its declared type.
func Validate(defs *Definitions, bound map[string]cty.Value) error {
	for _, def := range defs.All() {
		v, ok := bound[def.Name]
		if !ok {
			continue
		}
		if def.Type.IsMixed() {
			continue
		}
		if def.HasDefault && v.RawEquals(def.Default) {
			continue
		}
		if err := checkValue(def, v); err != nil {
			return err
		}
	}
	return nil
}

// checkValue tests one bound value against one declared type. The rules are
// capability-based, not structural equality: an "array" argument accepts
// anything the engine can iterate or index, a "string" argument accepts
// anything with a textual conversion.
func checkValue(def Definition, v cty.Value) error {
	mismatch := func() error {
		return &ArgumentTypeError{
			Name:     def.Name,
			Declared: def.Type.FriendlyName(),
			Actual:   actualName(v),
		}
	}

	if v == cty.NilVal {
		v = cty.NullVal(cty.DynamicPseudoType)
	}

	switch def.Type.kind {
	case kindObject:
		// Any runtime object qualifies, whatever its concrete kind.
		if isObjectLike(v) {
			return nil
		}
		return mismatch()

	case kindArray:
		if isArrayLike(v) {
			return nil
		}
		return mismatch()

	case kindString:
		if !v.IsNull() && v.Type() == cty.String {
			return nil
		}
		if native, ok := ctyval.Unwrap(v); ok {
			if _, ok := ctyval.StringerOf(native); ok {
				return nil
			}
		}
		return mismatch()

	case kindBoolean:
		if !v.IsNull() && v.Type() == cty.Bool {
			return nil
		}
		return mismatch()

	case kindInteger:
		if !v.IsNull() && v.Type() == cty.Number && v.AsBigFloat().IsInt() {
			return nil
		}
		return mismatch()

	case kindFloat:
		if !v.IsNull() && v.Type() == cty.Number {
			return nil
		}
		return mismatch()

	case kindNamed:
		// Null is always an acceptable instance of a named type.
		if v.IsNull() {
			return nil
		}
		if native, ok := ctyval.Unwrap(v); ok && instanceOf(native, def.Type.named) {
			return nil
		}
		return mismatch()
	}
	return nil
}

// isObjectLike reports whether the value is a runtime object: a capsule over
// any Go value, or a structural cty object.
func isObjectLike(v cty.Value) bool {
	if v.IsNull() {
		return false
	}
	t := v.Type()
	return t.IsCapsuleType() || t.IsObjectType()
}

// isArrayLike defines the closed set of containers an "array" argument
// accepts: cty collections and structural types, plus capsules over Go
// slices, arrays, and maps. Capsules over anything else are rejected even if
// iterable by other means; the set is deliberately explicit.
func isArrayLike(v cty.Value) bool {
	if v.IsNull() {
		return false
	}
	t := v.Type()
	if t.IsListType() || t.IsSetType() || t.IsTupleType() || t.IsMapType() || t.IsObjectType() {
		return true
	}
	native, ok := ctyval.Unwrap(v)
	if !ok {
		return false
	}
	rv := reflect.ValueOf(native)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

// instanceOf reports whether the native value (always a pointer, per
// ctyval.Wrap) is an instance of the named type, checking both the pointer
// type and its pointee.
func instanceOf(native any, named reflect.Type) bool {
	nt := reflect.TypeOf(native)
	if nt == nil {
		return false
	}
	if nt.AssignableTo(named) {
		return true
	}
	if nt.Kind() == reflect.Pointer && nt.Elem().AssignableTo(named) {
		return true
	}
	return false
}

// actualName names the runtime type of a bound value for error messages.
func actualName(v cty.Value) string {
	if v == cty.NilVal || v.IsNull() {
		return "null"
	}
	if native, ok := ctyval.Unwrap(v); ok {
		return reflect.TypeOf(native).String()
	}
	return v.Type().FriendlyName()
}
