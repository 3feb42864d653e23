package assert

import (
	"fmt"
	"reflect"
)

// IsNonPointerType panics if t is a pointer type. Components and resources
// are always handled as plain values; a pointer indicates caller error.
func IsNonPointerType(t reflect.Type) {
	if t.Kind() == reflect.Pointer {
		panic(fmt.Sprintf("expected non pointer type, got %s", t))
	}
}
