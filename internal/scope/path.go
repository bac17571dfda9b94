package scope

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/vk/stencil/internal/ctyval"
	"github.com/zclconf/go-cty/cty"
)

// pathSeparator splits a dotted lookup path into its segments.
const pathSeparator = "."

// GetByPath resolves a dotted path one segment at a time, descending through
// maps, objects, lists (numeric segments), and capsule-wrapped Go values of
// arbitrary depth. The first segment that cannot be resolved ends the walk
// with (cty.NilVal, false): absence is a normal, representable outcome, not
// an error.
func (p *Provider) GetByPath(path string) (cty.Value, bool) {
	segments := strings.Split(path, pathSeparator)
	for _, seg := range segments {
		if seg == "" {
			return cty.NilVal, false
		}
	}

	current, ok := p.Get(segments[0])
	if !ok {
		return cty.NilVal, false
	}
	for _, seg := range segments[1:] {
		current, ok = descend(current, seg)
		if !ok {
			return cty.NilVal, false
		}
	}
	return current, true
}

// descend resolves one path segment against the current value.
func descend(v cty.Value, seg string) (cty.Value, bool) {
	if v == cty.NilVal || v.IsNull() {
		return cty.NilVal, false
	}
	t := v.Type()
	switch {
	case t.IsObjectType():
		if t.HasAttribute(seg) {
			return v.GetAttr(seg), true
		}
		return cty.NilVal, false

	case t.IsMapType():
		key := cty.StringVal(seg)
		if v.HasIndex(key).True() {
			return v.Index(key), true
		}
		return cty.NilVal, false

	case t.IsListType() || t.IsTupleType():
		idx, err := strconv.Atoi(seg)
		if err != nil {
			return cty.NilVal, false
		}
		key := cty.NumberIntVal(int64(idx))
		if v.HasIndex(key).True() {
			return v.Index(key), true
		}
		return cty.NilVal, false

	case t.IsCapsuleType():
		return descendNative(v.EncapsulatedValue(), seg)

	default:
		return cty.NilVal, false
	}
}

// descendNative resolves a segment against a capsule's Go value: map keys,
// slice indices, or exported struct fields.
func descendNative(native any, seg string) (cty.Value, bool) {
	rv := reflect.ValueOf(native)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return cty.NilVal, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return cty.NilVal, false
		}
		ev := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !ev.IsValid() {
			return cty.NilVal, false
		}
		return toCty(ev.Interface())

	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return cty.NilVal, false
		}
		return toCty(rv.Index(idx).Interface())

	case reflect.Struct:
		field := rv.FieldByName(seg)
		if !field.IsValid() && seg != "" {
			// Template paths are conventionally lowerCamel; try the
			// exported spelling before giving up.
			field = rv.FieldByName(strings.ToUpper(seg[:1]) + seg[1:])
		}
		if !field.IsValid() || !field.CanInterface() {
			return cty.NilVal, false
		}
		return toCty(field.Interface())

	default:
		return cty.NilVal, false
	}
}

// toCty lifts a native descent result back into the value universe so the
// walk can keep going regardless of where the data came from.
func toCty(v any) (cty.Value, bool) {
	cv, err := ctyval.ToCty(v)
	if err != nil {
		return cty.NilVal, false
	}
	return cv, true
}
