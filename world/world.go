package world

import (
	"reflect"

	"github.com/forgecs/forge/internal/assert"
)

const NoEntityId = EntityId(0)

// EntityId identifies a live entity within a World.
type EntityId uint32

type AnyPtr = any

// AnyComponent is any non-pointer value inserted into an entity. An entity
// holds at most one component per Go type.
type AnyComponent = any

type resourceValue struct {
	// Value is of kind Pointer and points to the value of the resource.
	Value reflect.Value
}

// World holds all entities and resources. It is the mutable state that
// construction runs against. A World is not safe for concurrent use;
// exactly one caller may mutate it at a time.
type World struct {
	entityIdSeq EntityId
	entities    map[EntityId]*Entity
	resources   map[reflect.Type]resourceValue
}

// NewWorld creates a new empty world.
func NewWorld() *World {
	return &World{
		entities:  map[EntityId]*Entity{},
		resources: map[reflect.Type]resourceValue{},
	}
}

func (w *World) reserveEntityId() EntityId {
	w.entityIdSeq += 1
	return w.entityIdSeq
}

// Spawn creates a new entity with the given components and returns the
// mutable handle to it.
func (w *World) Spawn(components ...AnyComponent) *EntityWorldMut {
	entity := &Entity{
		id:         w.reserveEntityId(),
		components: map[reflect.Type]reflect.Value{},
	}

	w.entities[entity.id] = entity

	handle := &EntityWorldMut{world: w, entity: entity}
	handle.Insert(components...)
	return handle
}

// Entity returns the mutable handle to an existing entity. It fails with an
// EntityNotFoundError if no entity with the given id is alive.
func (w *World) Entity(entityId EntityId) (*EntityWorldMut, error) {
	entity, ok := w.entities[entityId]
	if !ok {
		return nil, EntityNotFoundError{Id: entityId}
	}

	return &EntityWorldMut{world: w, entity: entity}, nil
}

// Despawn removes the given entity and, recursively, all entities that are
// parented to it via ChildOf.
func (w *World) Despawn(entityId EntityId) {
	queue := []EntityId{entityId}

	for idx := 0; idx < len(queue); idx++ {
		entityId := queue[idx]

		if _, ok := w.entities[entityId]; !ok {
			continue
		}

		delete(w.entities, entityId)

		// collect children of the removed entity
		for childId, child := range w.entities {
			value, ok := child.components[childOfType]
			if !ok {
				continue
			}

			if value.Interface().(*ChildOf).Parent == entityId {
				queue = append(queue, childId)
			}
		}
	}
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return len(w.entities)
}

// InsertResource inserts a new resource into the world.
// The resource must be provided as a non-pointer value.
//
// If the resource does not yet exist, a new value of the resources type is
// allocated on the heap and the provided value is copied into it. If the
// world already contains a resource of the same type, the existing value is
// updated in place.
func (w *World) InsertResource(resource any) {
	assert.IsNonPointerType(reflect.TypeOf(resource))

	resType := reflect.PointerTo(reflect.TypeOf(resource))

	if existing, ok := w.resources[resType]; ok {
		// update existing value in place
		existing.Value.Elem().Set(reflect.ValueOf(resource))
		return
	}

	// allocate the resource on the heap and copy the provided value to it
	ptr := reflect.New(resType.Elem())
	ptr.Elem().Set(reflect.ValueOf(resource))

	w.resources[ptr.Type()] = resourceValue{
		Value: ptr,
	}
}

// RemoveResource removes a resource previously added with InsertResource.
func (w *World) RemoveResource(resourceType reflect.Type) {
	delete(w.resources, reflect.PointerTo(resourceType))
}

// Resource returns a pointer to the resource of the given reflect type.
// The type must be the non-pointer type of the resource, i.e. the type of
// the resource as it was passed to InsertResource.
func (w *World) Resource(ty reflect.Type) (AnyPtr, bool) {
	resValue, ok := w.resources[reflect.PointerTo(ty)]
	if !ok {
		return nil, false
	}

	return resValue.Value.Interface(), true
}

// ResourceOf is a typed version of World.Resource.
func ResourceOf[T any](w *World) (*T, bool) {
	value, ok := w.Resource(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}

	return value.(*T), true
}

var childOfType = reflect.TypeFor[ChildOf]()

// ChildOf parents the entity holding it to another entity. Despawning the
// parent despawns the child.
type ChildOf struct {
	Parent EntityId
}

// Name attaches a human readable name to an entity.
type Name string
