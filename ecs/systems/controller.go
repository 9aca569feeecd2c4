package systems

import (
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
)

var (
	KeysLeft  = []string{"ArrowLeft", "A"}
	KeysRight = []string{"ArrowRight", "D"}
	KeysUp    = []string{"ArrowUp", "W"}
	KeysDown  = []string{"ArrowDown", "S"}
	KeysJump  = []string{"Space", "ArrowUp", "W"}
)

// PlayerControllerSystem turns InputState into rigid body velocity. With a
// zero JumpSpeed the controller moves on both axes (top-down); otherwise it
// moves horizontally and jumps while grounded.
type PlayerControllerSystem struct {
	ecs.SystemBase
	Players ecs.View[struct {
		*components.Controller
		*components.RigidBody
	}] `ecs:"track"`
	Input ecs.Singleton[InputState]
}

func (s *PlayerControllerSystem) Name() string { return "PlayerControllerSystem" }

func (s *PlayerControllerSystem) OnUpdate(*ecs.UpdateFrame) {
	in := s.Input.Get()
	if in == nil {
		return
	}

	dx := in.Axis(KeysLeft, KeysRight)
	dy := in.Axis(KeysUp, KeysDown)
	jump := false
	for _, k := range KeysJump {
		jump = jump || in.JustPressed(k)
	}

	for _, p := range s.Players.Iter(s.Entities().Slice()) {
		c, rb := p.Controller, p.RigidBody
		if !c.Controllable {
			continue
		}
		rb.Velocity.X = dx * c.Speed
		if c.JumpSpeed == 0 {
			rb.Velocity.Y = dy * c.Speed
			continue
		}
		if jump && rb.Grounded {
			rb.Velocity.Y = -c.JumpSpeed
			rb.Grounded = false
		}
	}
}
