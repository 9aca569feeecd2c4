package main

import (
	"math/rand/v2"

	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
)

const spinScript = `rotation = rotation + 45 * dt`

// Spawner creates entities with a random mix of the default components and
// remembers them so Churn can replace a few every frame.
type Spawner struct {
	World    *ecs.World
	Rand     *rand.Rand
	Scripted float64

	live []ecs.Entity
}

func (s *Spawner) Spawn() (ecs.Entity, error) {
	obj, err := ecs.Spawn(s.World, s.components()...)
	if err != nil {
		return 0, err
	}
	s.live = append(s.live, obj.Entity())
	return obj.Entity(), nil
}

func (s *Spawner) components() []any {
	r := s.Rand
	if r.Float64() < 0.1 {
		return []any{components.Tile{X: r.IntN(200) - 100, Y: r.IntN(200) - 100, ID: r.IntN(8), Solid: r.IntN(2) == 0}}
	}

	out := []any{components.NewTransform(r.Float64()*4000-2000, r.Float64()*4000-2000)}
	if r.Float64() < 0.6 {
		body := components.RigidBody{Velocity: components.Vec2{X: r.Float64()*200 - 100, Y: r.Float64()*200 - 100}}
		body.SetDefaults()
		out = append(out, body)
	}
	if r.Float64() < 0.4 {
		size := components.Vec2{X: 4 + r.Float64()*28, Y: 4 + r.Float64()*28}
		out = append(out, components.Collider2D{Size: size})
	}
	if r.Float64() < 0.5 {
		sh := components.Shape{Size: components.Vec2{X: 8, Y: 8}, Filled: true}
		sh.SetDefaults()
		out = append(out, sh)
	}
	if r.Float64() < s.Scripted {
		out = append(out, components.Script{Source: spinScript})
	}
	return out
}

// Churn queues the destruction of n random live entities and the spawning of
// n replacements.
func (s *Spawner) Churn(c *ecs.Commands, n int) {
	for range min(n, len(s.live)) {
		i := s.Rand.IntN(len(s.live))
		c.Destroy(s.live[i])
		s.live[i] = s.live[len(s.live)-1]
		s.live = s.live[:len(s.live)-1]

		c.Spawn(func(obj ecs.GameObject) {
			s.live = append(s.live, obj.Entity())
		}, s.components()...)
	}
}

func (s *Spawner) Live() int { return len(s.live) }
