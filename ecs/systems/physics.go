// Package systems holds the engine's default, backend-independent systems.
package systems

import (
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
)

type body struct {
	*components.Transform2D
	*components.RigidBody
}

// PhysicsSystem integrates rigid bodies with semi-implicit Euler:
// v += (a + g*gravityScale)*dt, then p += v*dt. Static bodies never move and
// kinematic bodies ignore gravity.
type PhysicsSystem struct {
	ecs.SystemBase
	Bodies ecs.View[body] `ecs:"track"`

	Gravity components.Vec2
}

func NewPhysicsSystem(gravity components.Vec2) *PhysicsSystem {
	return &PhysicsSystem{Gravity: gravity}
}

func (s *PhysicsSystem) Name() string { return "PhysicsSystem" }

func (s *PhysicsSystem) OnUpdate(f *ecs.UpdateFrame) {
	dt := f.DeltaTime
	if dt <= 0 {
		return
	}
	for _, b := range s.Bodies.Iter(s.Entities().Slice()) {
		rb := b.RigidBody
		if rb.Type == components.Static {
			continue
		}

		accel := rb.Acceleration
		if rb.Type == components.Dynamic {
			accel = accel.Add(s.Gravity.Scale(rb.GravityScale))
		}
		rb.Velocity = rb.Velocity.Add(accel.Scale(dt))
		b.Transform2D.Position = b.Transform2D.Position.Add(rb.Velocity.Scale(dt))
		if !b.Transform2D.HasParent {
			b.Transform2D.WorldPosition = b.Transform2D.Position
		}
	}
}
