package argdef

import (
	"fmt"
	"reflect"
)

// typeKind enumerates the closed set of declarable argument types.
type typeKind int

const (
	kindMixed typeKind = iota
	kindString
	kindBoolean
	kindInteger
	kindFloat
	kindArray
	kindObject
	kindNamed
)

// DeclaredType is the type an argument definition declares for its values.
// The set is closed: the seven keyword types below, plus named Go types for
// handlers that require a specific struct or interface.
type DeclaredType struct {
	kind  typeKind
	named reflect.Type
}

var (
	// TypeMixed accepts any value; validation skips mixed arguments entirely.
	TypeMixed = DeclaredType{kind: kindMixed}
	// TypeString accepts strings and objects with a textual conversion.
	TypeString = DeclaredType{kind: kindString}
	// TypeBoolean accepts booleans only.
	TypeBoolean = DeclaredType{kind: kindBoolean}
	// TypeInteger accepts whole numbers.
	TypeInteger = DeclaredType{kind: kindInteger}
	// TypeFloat accepts any number.
	TypeFloat = DeclaredType{kind: kindFloat}
	// TypeArray accepts array-like containers; see checkValue for the exact set.
	TypeArray = DeclaredType{kind: kindArray}
	// TypeObject accepts any runtime object.
	TypeObject = DeclaredType{kind: kindObject}
)

// TypeNamed declares that values must be instances of the given Go type
// (or satisfy it, for interfaces). Null is always acceptable.
func TypeNamed(t reflect.Type) DeclaredType {
	return DeclaredType{kind: kindNamed, named: t}
}

// ParseType resolves a manifest type keyword into its DeclaredType.
func ParseType(keyword string) (DeclaredType, error) {
	switch keyword {
	case "mixed", "any":
		return TypeMixed, nil
	case "string":
		return TypeString, nil
	case "boolean", "bool":
		return TypeBoolean, nil
	case "integer", "int":
		return TypeInteger, nil
	case "float", "number":
		return TypeFloat, nil
	case "array":
		return TypeArray, nil
	case "object":
		return TypeObject, nil
	default:
		return TypeMixed, fmt.Errorf("unknown argument type keyword %q", keyword)
	}
}

// IsMixed reports whether the type accepts any value.
func (t DeclaredType) IsMixed() bool {
	return t.kind == kindMixed
}

// Equals reports whether two declared types are the same. Named types
// compare by Go type identity.
func (t DeclaredType) Equals(o DeclaredType) bool {
	return t.kind == o.kind && t.named == o.named
}

// FriendlyName returns the type's name for error messages.
func (t DeclaredType) FriendlyName() string {
	switch t.kind {
	case kindMixed:
		return "mixed"
	case kindString:
		return "string"
	case kindBoolean:
		return "boolean"
	case kindInteger:
		return "integer"
	case kindFloat:
		return "float"
	case kindArray:
		return "array"
	case kindObject:
		return "object"
	case kindNamed:
		return t.named.String()
	default:
		return "unknown"
	}
}
