package argdef

import "fmt"

// DuplicateArgumentError reports a second declaration of an argument name for
// the same handler kind.
type DuplicateArgumentError struct {
	Name string
}

func (e *DuplicateArgumentError) Error() string {
	return fmt.Sprintf("argument %q is already declared", e.Name)
}

// UndeclaredArgumentError reports an attempt to override an argument that was
// never declared.
type UndeclaredArgumentError struct {
	Name string
}

func (e *UndeclaredArgumentError) Error() string {
	return fmt.Sprintf("argument %q cannot be overridden because it was never declared", e.Name)
}

// MissingRequiredArgumentError reports a required argument that was neither
// bound by the caller nor covered by a default.
type MissingRequiredArgumentError struct {
	Name string
}

func (e *MissingRequiredArgumentError) Error() string {
	return fmt.Sprintf("required argument %q was not provided", e.Name)
}

// ArgumentTypeError reports a bound value that is incompatible with the
// argument's declared type.
type ArgumentTypeError struct {
	Name     string
	Declared string
	Actual   string
}

func (e *ArgumentTypeError) Error() string {
	return fmt.Sprintf("argument %q expects %s, got %s", e.Name, e.Declared, e.Actual)
}
