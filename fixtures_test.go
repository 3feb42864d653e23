package forge

import (
	"fmt"

	"github.com/forgecs/forge/world"
)

// The fixture types below follow the exact shape forgegen emits, with
// invocation counters added so tests can observe which construct logic ran.

var constructCalls = map[string]int{}

// Transform and Tint are plain data, constructed through the blanket rule.
type Transform struct {
	X, Y float64
}

type Tint struct {
	R, G, B uint8
}

// Sprite has registered construct logic that fills in a fallback path.
type Sprite struct {
	Path string
}

type SpriteProps struct {
	Path string
}

var _ = Register(
	func() SpriteProps { return SpriteProps{} },
	func(entity *world.EntityWorldMut, props SpriteProps) (Sprite, error) {
		constructCalls["Sprite"]++

		path := props.Path
		if path == "" {
			path = "sprites/missing.png"
		}

		return Sprite{Path: path}, nil
	},
)

// Camera defers its Sprite field.
type Camera struct {
	Sprite Sprite
	Zoom   float64
}

type CameraProps struct {
	Sprite Prop[Sprite]
	Zoom   float64
}

var _ = Register(
	func() CameraProps { return CameraProps{} },
	func(entity *world.EntityWorldMut, props CameraProps) (Camera, error) {
		sprite, err := props.Sprite.Resolve(entity)
		if err != nil {
			return Camera{}, err
		}

		constructCalls["Camera"]++

		return Camera{
			Sprite: sprite,
			Zoom:   props.Zoom,
		}, nil
	},
)

// Rig defers a Camera, giving two levels of nested construction.
type Rig struct {
	Camera Camera
	Label  string
}

type RigProps struct {
	Camera Prop[Camera]
	Label  string
}

var _ = Register(
	func() RigProps { return RigProps{} },
	func(entity *world.EntityWorldMut, props RigProps) (Rig, error) {
		camera, err := props.Camera.Resolve(entity)
		if err != nil {
			return Rig{}, err
		}

		return Rig{
			Camera: camera,
			Label:  props.Label,
		}, nil
	},
)

// brokenLens and brokenMount always fail, brokenPair resolves both in
// declaration order.
type brokenLens struct{}

type brokenMount struct{}

var _ = Register(
	func() struct{} { return struct{}{} },
	func(entity *world.EntityWorldMut, _ struct{}) (brokenLens, error) {
		constructCalls["brokenLens"]++
		return brokenLens{}, Custom("lens is broken")
	},
)

var _ = Register(
	func() struct{} { return struct{}{} },
	func(entity *world.EntityWorldMut, _ struct{}) (brokenMount, error) {
		constructCalls["brokenMount"]++
		return brokenMount{}, Custom("mount is broken")
	},
)

type brokenPair struct {
	lens  brokenLens
	mount brokenMount
}

type brokenPairProps struct {
	lens  Prop[brokenLens]
	mount Prop[brokenMount]
}

var _ = Register(
	func() brokenPairProps { return brokenPairProps{} },
	func(entity *world.EntityWorldMut, props brokenPairProps) (brokenPair, error) {
		lens, err := props.lens.Resolve(entity)
		if err != nil {
			return brokenPair{}, err
		}

		mount, err := props.mount.Resolve(entity)
		if err != nil {
			return brokenPair{}, err
		}

		return brokenPair{lens: lens, mount: mount}, nil
	},
)

// Light is a sum type fixture with three variants. PointLight is declared
// first and supplies the default.
type Light interface {
	isLight()
}

type PointLight struct {
	Intensity float64
	Sprite    Sprite
}

func (PointLight) isLight() {}

type SpotLight struct {
	Angle float64
}

func (SpotLight) isLight() {}

type AmbientLight struct{}

func (AmbientLight) isLight() {}

type LightProps interface {
	isLightProps()
}

type PointLightProps struct {
	Intensity float64
	Sprite    Prop[Sprite]
}

func (PointLightProps) isLightProps() {}

type SpotLightProps struct {
	Angle float64
}

func (SpotLightProps) isLightProps() {}

type AmbientLightProps struct{}

func (AmbientLightProps) isLightProps() {}

var _ = Register(
	func() LightProps { return PointLightProps{} },
	func(entity *world.EntityWorldMut, props LightProps) (Light, error) {
		switch props := props.(type) {
		case PointLightProps:
			sprite, err := props.Sprite.Resolve(entity)
			if err != nil {
				return nil, err
			}
			return PointLight{
				Intensity: props.Intensity,
				Sprite:    sprite,
			}, nil
		case SpotLightProps:
			return SpotLight{
				Angle: props.Angle,
			}, nil
		case AmbientLightProps:
			return AmbientLight{}, nil
		default:
			panic(fmt.Sprintf("unexpected props variant %T", props))
		}
	},
)

// AssetServer is a world resource consumed during construction of a Mesh.
type AssetServer struct {
	Root string
}

type Mesh struct {
	Source string
}

type MeshProps struct {
	Source string
}

var _ = Register(
	func() MeshProps { return MeshProps{} },
	func(entity *world.EntityWorldMut, props MeshProps) (Mesh, error) {
		server, err := ResourceOf[AssetServer](entity)
		if err != nil {
			return Mesh{}, err
		}

		return Mesh{Source: server.Root + "/" + props.Source}, nil
	},
)

// Follow references another entity and fails construction if it is gone.
type Follow struct {
	Target world.EntityId
}

type FollowProps struct {
	Target world.EntityId
}

var _ = Register(
	func() FollowProps { return FollowProps{} },
	func(entity *world.EntityWorldMut, props FollowProps) (Follow, error) {
		if props.Target != world.NoEntityId {
			if _, err := FetchEntity(entity, props.Target); err != nil {
				return Follow{}, err
			}
		}

		return Follow{Target: props.Target}, nil
	},
)

// Squad spawns child entities as a construction side effect.
type Squad struct {
	Members []world.EntityId
}

type SquadProps struct {
	Size int
}

var _ = Register(
	func() SquadProps { return SquadProps{} },
	func(entity *world.EntityWorldMut, props SquadProps) (Squad, error) {
		members := make([]world.EntityId, 0, props.Size)
		for idx := range props.Size {
			members = append(members, entity.SpawnChild(world.Name(fmt.Sprintf("member-%d", idx))))
		}

		return Squad{Members: members}, nil
	},
)
