package forge

import (
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"sync/atomic"
	"unsafe"

	"github.com/forgecs/forge/world"
)

// Constructor builds a value of type C from its props against a live
// entity. Construction may mutate the world through the entity handle,
// e.g. to spawn child entities or look up resources. It runs to completion
// synchronously and either returns the instance or the first error raised.
type Constructor[C, P any] func(entity *world.EntityWorldMut, props P) (C, error)

// Type describes one constructible type. It doubles as the type erased
// dispatch record: DefaultProps and Construct operate on boxed values, so
// dynamic tooling holding nothing but a type name can build instances
// through it.
type Type struct {
	// Type is the constructed type.
	Type reflect.Type

	// PropsType is the props type consumed by Construct. For sum types this
	// is the props interface and the boxed props hold a variant of it.
	PropsType reflect.Type

	// Name is the registry key used by TypeByName.
	Name string

	// DefaultProps returns a boxed default props value.
	DefaultProps func() any

	// Construct builds a boxed instance from a boxed props value.
	//
	// The props value must match PropsType exactly as registered. The
	// registry guarantees this on its own dispatch paths; handing anything
	// else to Construct is a programming error and panics. Use New for a
	// validated entry point.
	Construct func(entity *world.EntityWorldMut, props any) (any, error)

	// blanket marks a descriptor derived for a plain data type rather than
	// registered explicitly.
	blanket bool
}

func (t *Type) String() string {
	return t.Name
}

// New constructs a boxed instance from the given boxed props value. A nil
// props value stands for the default props. Props of the wrong dynamic type
// fail with an invalid props error.
func (t *Type) New(entity *world.EntityWorldMut, props any) (any, error) {
	if props == nil {
		props = t.DefaultProps()
	} else if !t.propsTypeMatches(reflect.TypeOf(props)) {
		return nil, InvalidProps("expected props of type %s, got %T", t.PropsType, props)
	}

	return t.Construct(entity, props)
}

// propsTypeMatches checks a boxed props value against PropsType the way the
// Construct assertion will: a concrete props type must match exactly, a
// props interface accepts any variant implementing it. Assignability alone
// is not enough, an unnamed struct sharing the underlying type would pass
// assignment but fail the assertion.
func (t *Type) propsTypeMatches(propsType reflect.Type) bool {
	if t.PropsType.Kind() == reflect.Interface {
		return propsType.AssignableTo(t.PropsType)
	}

	return propsType == t.PropsType
}

type registry struct {
	byType map[unsafe.Pointer]*Type
	byName map[string]*Type
}

// constructTypes is initialized through a variable initializer rather than
// an init function so that package-level Register calls — the pattern
// generated code uses — find the lookup table already in place.
var constructTypes = func() *atomic.Pointer[registry] {
	types := new(atomic.Pointer[registry])
	types.Store(&registry{
		byType: map[unsafe.Pointer]*Type{},
		byName: map[string]*Type{},
	})
	return types
}()

func abiTypePointerTo(t reflect.Type) unsafe.Pointer {
	type eface struct {
		typ, val unsafe.Pointer
	}

	// a reflect.Type is backed by a *rtype. The value half of the interface
	// identifies the type uniquely and makes a cheap map key
	return (*eface)(unsafe.Pointer(&t)).val
}

// ensureType stores newType under ptrToType unless a descriptor already
// exists. With replaceBlanket set, an existing derived descriptor is
// replaced instead of returned.
func ensureType(ptrToType unsafe.Pointer, replaceBlanket bool, newType *Type) *Type {
	for {
		previousTypes := constructTypes.Load()
		if cached, ok := previousTypes.byType[ptrToType]; ok {
			if !replaceBlanket || !cached.blanket {
				return cached
			}
		}

		newTypes := &registry{
			byType: maps.Clone(previousTypes.byType),
			byName: maps.Clone(previousTypes.byName),
		}

		newTypes.byType[ptrToType] = newType
		newTypes.byName[newType.Name] = newType

		if constructTypes.CompareAndSwap(previousTypes, newTypes) {
			slog.Debug(
				"New construct type registered",
				slog.String("name", newType.Name),
				slog.String("props", newType.PropsType.String()),
			)

			return newType
		}
	}
}

// Register binds C to its props type P, a default props value and the
// construct logic turning props into an instance. It is normally called
// from generated code, once per type, during package initialization:
//
//	var _ = forge.Register(
//	    func() CameraProps { return CameraProps{} },
//	    func(entity *world.EntityWorldMut, props CameraProps) (Camera, error) {
//	        ...
//	    },
//	)
//
// Registering explicit construct logic for the same type twice panics. An
// explicit registration replaces a blanket descriptor previously derived by
// TypeOf.
func Register[C, P any](defaultProps func() P, construct Constructor[C, P]) *Type {
	reflectType := reflect.TypeFor[C]()
	ptrToType := abiTypePointerTo(reflectType)

	if cached, ok := constructTypes.Load().byType[ptrToType]; ok && !cached.blanket {
		panic(fmt.Sprintf("construct logic for %s is already registered", reflectType))
	}

	newType := &Type{
		Type:      reflectType,
		PropsType: reflect.TypeFor[P](),
		Name:      reflectType.String(),

		DefaultProps: func() any {
			return defaultProps()
		},

		Construct: func(entity *world.EntityWorldMut, props any) (any, error) {
			// the registry binds the boxed props to this descriptor,
			// a mismatch here is a programming error
			return construct(entity, props.(P))
		},
	}

	return ensureType(ptrToType, true, newType)
}

// TypeOf returns the descriptor of C, deriving and caching the plain data
// descriptor on first use for types without explicit construct logic: props
// type is C itself, default props is the zero value and construction
// returns the props unchanged. Plain data needs no ceremony.
//
// Interface types have no plain data rendition: a sum type without its
// generated registration is a programming error and panics.
func TypeOf[C any]() *Type {
	reflectType := reflect.TypeFor[C]()
	ptrToType := abiTypePointerTo(reflectType)

	if cached, ok := constructTypes.Load().byType[ptrToType]; ok {
		return cached
	}

	if reflectType.Kind() == reflect.Interface {
		panic(fmt.Sprintf("no construct logic registered for interface type %s", reflectType))
	}

	return ensureType(ptrToType, false, blanketTypeOf[C](reflectType))
}

func blanketTypeOf[C any](reflectType reflect.Type) *Type {
	return &Type{
		Type:      reflectType,
		PropsType: reflectType,
		Name:      reflectType.String(),

		DefaultProps: func() any {
			var zero C
			return zero
		},

		Construct: func(_ *world.EntityWorldMut, props any) (any, error) {
			return props.(C), nil
		},

		blanket: true,
	}
}

// TypeByName looks up a descriptor by its registered name. Only types that
// went through Register or TypeOf are found.
func TypeByName(name string) (*Type, bool) {
	ty, ok := constructTypes.Load().byName[name]
	return ty, ok
}

// Types returns a snapshot of all registered descriptors. Order is
// unspecified; the snapshot is meant for diagnostics.
func Types() []*Type {
	types := constructTypes.Load()

	snapshot := make([]*Type, 0, len(types.byName))
	for _, ty := range types.byName {
		snapshot = append(snapshot, ty)
	}

	return snapshot
}

// New constructs a value of type C from the given boxed props value.
// Passing nil constructs from C's default props.
//
// Construction may mutate the world through the entity handle. On error the
// first failure is returned and any mutation that already happened stays in
// place; there is no rollback.
func New[C any](entity *world.EntityWorldMut, props any) (C, error) {
	value, err := TypeOf[C]().New(entity, props)
	if err != nil {
		var zero C
		return zero, err
	}

	return value.(C), nil
}

// DefaultPropsOf returns the boxed default props value of C.
func DefaultPropsOf[C any]() any {
	return TypeOf[C]().DefaultProps()
}
