// Package ctyval bridges native Go values and the cty value system the
// rendering core operates on. Scalars and plain containers are converted
// structurally; everything else (handler-defined objects, parsed nodes)
// crosses the boundary as a cty capsule value so it keeps its Go identity.
package ctyval

import (
	"fmt"
	"math/big"
	"reflect"
	"sync"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// capsuleTypes caches one capsule type per native Go type. Capsule types
// compare by identity, so handing out a fresh one per Wrap call would make
// equal wrappers unequal. Entries are fully built before being published.
var capsuleTypes = struct {
	mu    sync.RWMutex
	types map[reflect.Type]cty.Type
}{types: make(map[reflect.Type]cty.Type)}

// CapsuleFor returns the canonical capsule type for the given native Go type.
func CapsuleFor(t reflect.Type) cty.Type {
	capsuleTypes.mu.RLock()
	ct, ok := capsuleTypes.types[t]
	capsuleTypes.mu.RUnlock()
	if ok {
		return ct
	}

	ct = cty.Capsule(t.String(), t)

	capsuleTypes.mu.Lock()
	// Another wrapper may have raced us here; keep the published one so the
	// canonical-type guarantee holds.
	if existing, ok := capsuleTypes.types[t]; ok {
		ct = existing
	} else {
		capsuleTypes.types[t] = ct
	}
	capsuleTypes.mu.Unlock()
	return ct
}

// Wrap encapsulates an arbitrary Go value as a cty capsule value. Pointer
// values are encapsulated as-is; non-pointer values are copied onto the heap
// because cty capsules always carry a pointer to their native type.
func Wrap(v any) cty.Value {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return cty.NullVal(CapsuleFor(rv.Type().Elem()))
		}
		return cty.CapsuleVal(CapsuleFor(rv.Type().Elem()), v)
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return cty.CapsuleVal(CapsuleFor(rv.Type()), p.Interface())
}

// Unwrap returns the native pointer held by a capsule value, or false when
// the value is not a non-null capsule.
func Unwrap(v cty.Value) (any, bool) {
	if v == cty.NilVal || v.IsNull() || !v.Type().IsCapsuleType() {
		return nil, false
	}
	return v.EncapsulatedValue(), true
}

// ToCty converts a native Go value into its corresponding cty.Value.
// Values gocty cannot express structurally become capsules instead of errors,
// so handler outputs of any shape stay representable.
func ToCty(v any) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	if cv, ok := v.(cty.Value); ok {
		return cv, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return Wrap(v), nil
	}
	cv, err := gocty.ToCtyValue(v, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to convert %T to cty.Value: %w", v, err)
	}
	return cv, nil
}

// Native projects a cty.Value back onto plain Go data: strings, bools,
// int64/float64, []any, map[string]any. Capsule values yield their native
// pointer. Used when scope contents are handed to native evaluators.
func Native(v cty.Value) any {
	if v == cty.NilVal || v.IsNull() {
		return nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Bool:
		return v.True()
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
		f, _ := bf.Float64()
		return f
	case ty.IsCapsuleType():
		return v.EncapsulatedValue()
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, Native(ev))
		}
		return out
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			out[kv.AsString()] = Native(ev)
		}
		return out
	default:
		return nil
	}
}

// NativeMap applies Native to every entry of a scope snapshot.
func NativeMap(vars map[string]cty.Value) map[string]any {
	out := make(map[string]any, len(vars))
	for name, v := range vars {
		out[name] = Native(v)
	}
	return out
}

// Stringify converts a value to its textual form for output concatenation.
// Null becomes the empty string; scalars convert through cty; capsules must
// implement fmt.Stringer. Containers have no textual form and fail.
func Stringify(v cty.Value) (string, error) {
	if v == cty.NilVal || v.IsNull() {
		return "", nil
	}
	if v.Type().IsCapsuleType() {
		if s, ok := StringerOf(v.EncapsulatedValue()); ok {
			return s.String(), nil
		}
		return "", fmt.Errorf("value of type %s has no textual conversion", v.Type().FriendlyName())
	}
	sv, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("value of type %s has no textual conversion: %w", v.Type().FriendlyName(), err)
	}
	return sv.AsString(), nil
}

// StringerOf checks the native pointer and its pointee for fmt.Stringer.
func StringerOf(v any) (fmt.Stringer, bool) {
	if s, ok := v.(fmt.Stringer); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		if s, ok := rv.Elem().Interface().(fmt.Stringer); ok {
			return s, true
		}
	}
	return nil, false
}
