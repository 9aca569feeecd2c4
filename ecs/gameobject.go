package ecs

import "fmt"

// GameObject is a handle to an entity together with the world that owns it.
type GameObject struct {
	world  *World
	entity Entity
}

// Spawn creates an entity and attaches each component value to it. Component
// types must be registered. If any attach fails the entity is destroyed and
// the error is returned.
func Spawn(w *World, components ...any) (GameObject, error) {
	e, err := w.CreateEntity()
	if err != nil {
		return GameObject{}, err
	}
	for _, c := range components {
		if err := w.AddAny(e, c); err != nil {
			_ = w.DestroyEntity(e)
			return GameObject{}, fmt.Errorf("spawn: %w", err)
		}
	}
	return GameObject{world: w, entity: e}, nil
}

// Wrap returns a handle for an existing entity.
func Wrap(w *World, e Entity) GameObject {
	return GameObject{world: w, entity: e}
}

func (o GameObject) Entity() Entity {
	return o.entity
}

func (o GameObject) World() *World {
	return o.world
}

// Valid reports whether the entity is still alive.
func (o GameObject) Valid() bool {
	return o.world != nil && o.world.IsAlive(o.entity)
}

// Add attaches another component value.
func (o GameObject) Add(component any) error {
	return o.world.AddAny(o.entity, component)
}

func (o GameObject) Destroy() error {
	return o.world.DestroyEntity(o.entity)
}

// Get returns o's T component.
func Get[T any](o GameObject) (*T, error) {
	return GetComponent[T](o.world, o.entity)
}
