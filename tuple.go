package forge

import "github.com/forgecs/forge/world"

// Entry names one element of a Tuple together with the boxed props used to
// construct it.
type Entry struct {
	ctype *Type
	props any
}

// Of returns a tuple entry constructing a C from its default props.
func Of[C any]() Entry {
	return Entry{ctype: TypeOf[C]()}
}

// OfProps returns a tuple entry constructing a C from the given boxed props
// value. Nil selects the default props.
func OfProps[C any](props any) Entry {
	return Entry{ctype: TypeOf[C](), props: props}
}

// Tuple constructs a heterogeneous group of values as one unit. All
// elements are constructed against the same entity handle, left to right,
// stopping at the first failure. The constructed group inserts exactly like
// the same components built by hand: bundle flattening, overwrite rules and
// required component registration all come from the world.
type Tuple []Entry

// Construct builds every entry of the tuple and returns the group as a
// bundle. The zero arity tuple trivially succeeds with an empty bundle and
// no world mutation.
func (t Tuple) Construct(entity *world.EntityWorldMut) (world.AnyComponent, error) {
	components := make([]world.AnyComponent, 0, len(t))

	for _, entry := range t {
		value, err := entry.ctype.New(entity, entry.props)
		if err != nil {
			return nil, err
		}

		components = append(components, value)
	}

	return world.Bundle(components...), nil
}
