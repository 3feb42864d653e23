package forge

import "github.com/forgecs/forge/world"

// Prop is the deferred field wrapper used inside generated props types. It
// holds either nested props that construct a C during resolution, or an
// already finished value that skips construction entirely.
//
// The zero value is the nested variant with default props: a props struct
// left untouched constructs its whole field tree from defaults.
//
// A Prop is a transient resolution token. It is copied freely, consumed by
// Resolve and has no meaningful identity afterwards.
type Prop[C any] struct {
	value *C
	props any
}

// Value returns a Prop holding an already constructed value. Resolving it
// yields the value unchanged without invoking C's construct logic.
func Value[C any](value C) Prop[C] {
	return Prop[C]{value: &value}
}

// Props returns a Prop holding nested props for C. The props value must be
// of C's props type; nil selects the default props.
func Props[C any](props any) Prop[C] {
	return Prop[C]{props: props}
}

// Resolve produces the final C, recursing into C's construct logic for the
// nested variant. Failures of nested construction propagate unchanged.
func (p Prop[C]) Resolve(entity *world.EntityWorldMut) (C, error) {
	if p.value != nil {
		return *p.value, nil
	}

	return New[C](entity, p.props)
}
