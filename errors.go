package forge

import "fmt"

// ErrorKind identifies the failure class of a construction error.
type ErrorKind int

const (
	// KindCustom is a free form failure raised by construct logic.
	KindCustom ErrorKind = iota

	// KindMissingEntity wraps a failed entity lookup.
	KindMissingEntity

	// KindMissingResource signals that a required resource is absent from
	// the world.
	KindMissingResource

	// KindInvalidProps signals that the supplied props failed validation.
	KindInvalidProps
)

// Error is the error type raised by construction. It is terminal for the
// construction call that produced it: there is no retry and no partial
// instance. Failures of nested construction cross the outer construct
// logic unchanged, so the top level caller sees the innermost error.
type Error struct {
	Kind ErrorKind

	// Message carries the custom or validation message.
	Message string

	// TypeName names the missing resource type.
	TypeName string

	// Err is the wrapped entity lookup failure.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingEntity:
		return e.Err.Error()

	case KindMissingResource:
		return fmt.Sprintf("Resource %s does not exist", e.TypeName)

	case KindInvalidProps:
		return fmt.Sprintf("Props were invalid: %s", e.Message)

	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Custom returns a construction error with a free form message.
func Custom(message string) *Error {
	return &Error{Kind: KindCustom, Message: message}
}

// MissingEntity returns a construction error wrapping a failed entity
// lookup, usually a world.EntityNotFoundError.
func MissingEntity(err error) *Error {
	return &Error{Kind: KindMissingEntity, Err: err}
}

// MissingResource reports that no resource of the named type exists.
func MissingResource(typeName string) *Error {
	return &Error{Kind: KindMissingResource, TypeName: typeName}
}

// InvalidProps reports that the supplied props failed validation.
func InvalidProps(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidProps, Message: fmt.Sprintf(format, args...)}
}
