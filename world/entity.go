package world

import (
	"fmt"
	"reflect"

	"github.com/forgecs/forge/internal/assert"
)

// Entity is the component storage of a single live entity. Components are
// kept as heap allocated values keyed by their Go type.
type Entity struct {
	id         EntityId
	components map[reflect.Type]reflect.Value
}

// EntityWorldMut grants exclusive mutable access to one live entity and,
// through it, to the world the entity lives in. It is the context handle
// construction runs against: construct logic may insert components, spawn
// child entities or look up resources while an instance is being built.
//
// Only one EntityWorldMut may be used at a time. Nested construction reuses
// the same world, it never acquires a second handle concurrently.
type EntityWorldMut struct {
	world  *World
	entity *Entity
}

// Id returns the id of the entity.
func (e *EntityWorldMut) Id() EntityId {
	return e.entity.id
}

// World returns the world the entity lives in.
func (e *EntityWorldMut) World() *World {
	return e.world
}

// Insert adds the given components to the entity. Bundles are flattened
// recursively. A component that already exists on the entity is overwritten
// when specified directly; components pulled in via RequireComponents never
// overwrite an existing value.
func (e *EntityWorldMut) Insert(components ...AnyComponent) *EntityWorldMut {
	queue := flattenComponents(nil, components...)

	// components up to this index were specified directly
	direct := len(queue)

	for idx := 0; idx < len(queue); idx++ {
		component := queue[idx]
		if component == nil {
			panic(fmt.Sprintf("nil component inserted into entity %d", e.entity.id))
		}

		assert.IsNonPointerType(reflect.TypeOf(component))

		overwrite := idx < direct

		ty := reflect.TypeOf(component)
		if _, exists := e.entity.components[ty]; exists && !overwrite {
			continue
		}

		e.entity.components[ty] = copyToHeap(component)

		// enqueue all required components
		if required, ok := component.(RequireComponents); ok {
			queue = append(queue, flattenComponents(nil, required.RequireComponents()...)...)
		}
	}

	return e
}

// Remove removes the component of the given type from the entity.
func (e *EntityWorldMut) Remove(ty reflect.Type) {
	delete(e.entity.components, ty)
}

// Get returns a pointer to the entity's component of the given non-pointer
// type, if present.
func (e *EntityWorldMut) Get(ty reflect.Type) (AnyPtr, bool) {
	value, ok := e.entity.components[ty]
	if !ok {
		return nil, false
	}

	return value.Interface(), true
}

// ComponentOf is a typed version of EntityWorldMut.Get.
func ComponentOf[C any](e *EntityWorldMut) (*C, bool) {
	value, ok := e.Get(reflect.TypeFor[C]())
	if !ok {
		return nil, false
	}

	return value.(*C), true
}

// ComponentCount returns the number of components on the entity.
func (e *EntityWorldMut) ComponentCount() int {
	return len(e.entity.components)
}

// SpawnChild spawns a new entity carrying the given components plus a
// ChildOf pointing at this entity, and returns the child's id.
func (e *EntityWorldMut) SpawnChild(components ...AnyComponent) EntityId {
	components = append(components, ChildOf{Parent: e.entity.id})
	return e.world.Spawn(components...).Id()
}

// RequireComponents is implemented by components that pull in other
// components when inserted. Required components are inserted after the
// directly specified ones and never overwrite them.
type RequireComponents interface {
	RequireComponents() []AnyComponent
}

func copyToHeap(component AnyComponent) reflect.Value {
	// move the component onto the heap
	ptrToComponent := reflect.New(reflect.TypeOf(component))
	ptrToComponent.Elem().Set(reflect.ValueOf(component))
	return ptrToComponent
}
