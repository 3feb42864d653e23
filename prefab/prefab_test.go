package prefab_test

import (
	"testing"

	"github.com/forgecs/forge"
	"github.com/forgecs/forge/prefab"
	"github.com/forgecs/forge/world"
	"github.com/stretchr/testify/require"
)

type Door struct {
	Material string
	Locked   bool
}

type DoorProps struct {
	Material string
	Locked   bool
}

var _ = forge.Register(
	func() DoorProps { return DoorProps{Material: "wood"} },
	func(entity *world.EntityWorldMut, props DoorProps) (Door, error) {
		return Door{Material: props.Material, Locked: props.Locked}, nil
	},
)

// Trap fails to construct, always.
type Trap struct{}

var _ = forge.Register(
	func() struct{} { return struct{}{} },
	func(entity *world.EntityWorldMut, _ struct{}) (Trap, error) {
		return Trap{}, forge.Custom("trap misfired")
	},
)

// Decal has no explicit registration and relies on the derived identity
// descriptor.
type Decal struct {
	Layer int
}

// Escort spawns a guard under the entity being built plus a camp entity
// outside of it, recording both ids for the tests.
type Escort struct {
	Guard world.EntityId
}

var lastCamp, lastGuard world.EntityId

var _ = forge.Register(
	func() struct{} { return struct{}{} },
	func(entity *world.EntityWorldMut, _ struct{}) (Escort, error) {
		lastCamp = entity.World().Spawn(world.Name("camp")).Id()
		lastGuard = entity.SpawnChild(world.Name("guard"))
		return Escort{Guard: lastGuard}, nil
	},
)

func TestSpawnDefinition(t *testing.T) {
	w := world.NewWorld()

	id, err := prefab.Spawn(w, prefab.Definition{
		Name: "cellar-door",
		Components: []prefab.ComponentDef{
			{Type: "prefab_test.Door", Props: DoorProps{Material: "steel", Locked: true}},
		},
	})
	require.NoError(t, err)

	entity, err := w.Entity(id)
	require.NoError(t, err)

	name, ok := world.ComponentOf[world.Name](entity)
	require.True(t, ok)
	require.Equal(t, world.Name("cellar-door"), *name)

	door, ok := world.ComponentOf[Door](entity)
	require.True(t, ok)
	require.Equal(t, Door{Material: "steel", Locked: true}, *door)
}

func TestSpawnUsesDefaultPropsWhenUnset(t *testing.T) {
	w := world.NewWorld()

	id, err := prefab.Spawn(w, prefab.Definition{
		Components: []prefab.ComponentDef{
			prefab.Component("prefab_test.Door"),
		},
	})
	require.NoError(t, err)

	entity, err := w.Entity(id)
	require.NoError(t, err)

	door, ok := world.ComponentOf[Door](entity)
	require.True(t, ok)
	require.Equal(t, Door{Material: "wood"}, *door)

	// an unnamed definition spawns without a Name component
	_, ok = world.ComponentOf[world.Name](entity)
	require.False(t, ok)
}

func TestSpawnUnknownTypeLeavesNoEntityBehind(t *testing.T) {
	w := world.NewWorld()

	id, err := prefab.Spawn(w, prefab.Definition{
		Components: []prefab.ComponentDef{
			prefab.Component("prefab_test.DoesNotExist"),
		},
	})

	require.Equal(t, world.NoEntityId, id)
	require.Equal(t, 0, w.EntityCount())

	var constructErr *forge.Error
	require.ErrorAs(t, err, &constructErr)
	require.Equal(t, forge.KindInvalidProps, constructErr.Kind)
}

func TestSpawnFailingComponentDespawnsShell(t *testing.T) {
	w := world.NewWorld()

	id, err := prefab.Spawn(w, prefab.Definition{
		Components: []prefab.ComponentDef{
			prefab.Component("prefab_test.Door"),
			prefab.Component("prefab_test.Trap"),
		},
	})

	require.Equal(t, world.NoEntityId, id)
	require.EqualError(t, err, "trap misfired")
	require.Equal(t, 0, w.EntityCount())
}

func TestSpawnFailureDespawnsShellSubtreeOnly(t *testing.T) {
	w := world.NewWorld()

	id, err := prefab.Spawn(w, prefab.Definition{
		Components: []prefab.ComponentDef{
			prefab.Component("prefab_test.Escort"),
			prefab.Component("prefab_test.Trap"),
		},
	})

	require.Equal(t, world.NoEntityId, id)
	require.EqualError(t, err, "trap misfired")

	// the shell and the guard parented under it are gone with it, the camp
	// spawned outside the shell's subtree is a permanent mutation
	_, err = w.Entity(lastGuard)
	require.Error(t, err)

	camp, err := w.Entity(lastCamp)
	require.NoError(t, err)

	name, ok := world.ComponentOf[world.Name](camp)
	require.True(t, ok)
	require.Equal(t, world.Name("camp"), *name)

	require.Equal(t, 1, w.EntityCount())
}

func TestSpawnDerivedTypeByName(t *testing.T) {
	// derive the identity descriptor so the name lookup can find it
	forge.TypeOf[Decal]()

	w := world.NewWorld()

	id, err := prefab.Spawn(w, prefab.Definition{
		Components: []prefab.ComponentDef{
			{Type: "prefab_test.Decal", Props: Decal{Layer: 2}},
		},
	})
	require.NoError(t, err)

	entity, err := w.Entity(id)
	require.NoError(t, err)

	decal, ok := world.ComponentOf[Decal](entity)
	require.True(t, ok)
	require.Equal(t, 2, decal.Layer)
}

func TestSpawnRejectsMismatchedProps(t *testing.T) {
	w := world.NewWorld()

	_, err := prefab.Spawn(w, prefab.Definition{
		Components: []prefab.ComponentDef{
			{Type: "prefab_test.Door", Props: 42},
		},
	})

	var constructErr *forge.Error
	require.ErrorAs(t, err, &constructErr)
	require.Equal(t, forge.KindInvalidProps, constructErr.Kind)
	require.Equal(t, 0, w.EntityCount())
}
