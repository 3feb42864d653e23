// Package prefab spawns entities from declarative recipes that name their
// component types as strings. It is the canonical client of the type erased
// construct registry: nothing here knows any component type at compile
// time.
package prefab

import (
	"github.com/forgecs/forge"
	"github.com/forgecs/forge/world"
)

// ComponentDef names one constructible component type and the boxed props
// used to construct it. Nil props select the type's default props.
type ComponentDef struct {
	Type  string
	Props any
}

// Definition is an in memory prefab: a named recipe for a single entity.
type Definition struct {
	Name       string
	Components []ComponentDef
}

// Component is a shorthand for a ComponentDef with default props.
func Component(typeName string) ComponentDef {
	return ComponentDef{Type: typeName}
}

// Spawn builds every component of the definition through the construct
// registry and spawns one entity carrying the results.
//
// Components are constructed first and inserted only after all of them
// succeeded, so a failed definition never leaves a half populated entity
// behind: the shell entity (and any children construction spawned under it)
// is despawned again and the first error is returned. Other world mutations
// performed by construct logic are permanent, as always.
func Spawn(w *world.World, def Definition) (world.EntityId, error) {
	entity := w.Spawn()

	components := make([]world.AnyComponent, 0, len(def.Components)+1)
	if def.Name != "" {
		components = append(components, world.Name(def.Name))
	}

	for _, component := range def.Components {
		ctype, ok := forge.TypeByName(component.Type)
		if !ok {
			w.Despawn(entity.Id())
			return world.NoEntityId, forge.InvalidProps("unknown construct type %q", component.Type)
		}

		value, err := ctype.New(entity, component.Props)
		if err != nil {
			w.Despawn(entity.Id())
			return world.NoEntityId, err
		}

		components = append(components, value)
	}

	entity.Insert(components...)
	return entity.Id(), nil
}
