package forge

import (
	"reflect"

	"github.com/forgecs/forge/world"
)

// ResourceOf fetches the resource of type R from the entity's world,
// failing construction with a missing resource error when it is absent.
func ResourceOf[R any](entity *world.EntityWorldMut) (*R, error) {
	resource, ok := world.ResourceOf[R](entity.World())
	if !ok {
		return nil, MissingResource(reflect.TypeFor[R]().String())
	}

	return resource, nil
}

// FetchEntity resolves another live entity during construction, wrapping a
// failed lookup in a missing entity error.
func FetchEntity(entity *world.EntityWorldMut, id world.EntityId) (*world.EntityWorldMut, error) {
	other, err := entity.World().Entity(id)
	if err != nil {
		return nil, MissingEntity(err)
	}

	return other, nil
}
