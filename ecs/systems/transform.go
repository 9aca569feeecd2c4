package systems

import (
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
)

// TransformSystem resolves parent chains into world-space transforms. A
// child's world position is its local position scaled and rotated by the
// parent's world transform. Missing parents and cycles are treated as roots.
// Children of an entity that stops being tracked are detached, so a recycled
// id never inherits them.
type TransformSystem struct {
	ecs.SystemBase
	Transforms ecs.View[struct{ *components.Transform2D }] `ecs:"track"`

	state map[ecs.Entity]uint8
}

const (
	unvisited uint8 = iota
	visiting
	resolved
)

func (s *TransformSystem) Name() string { return "TransformSystem" }

func (s *TransformSystem) EntityAdded(ecs.Entity) {}

func (s *TransformSystem) EntityRemoved(e ecs.Entity) {
	for _, child := range s.Entities().Slice() {
		if v, ok := s.Transforms.Get(child); ok && v.HasParent && v.Parent == e {
			v.ClearParent()
		}
	}
}

func (s *TransformSystem) OnUpdate(*ecs.UpdateFrame) {
	s.Resolve()
}

// Resolve recomputes every tracked world transform.
func (s *TransformSystem) Resolve() {
	if s.state == nil {
		s.state = make(map[ecs.Entity]uint8)
	}
	clear(s.state)

	for _, e := range s.Entities().Slice() {
		s.resolve(e)
	}
}

func (s *TransformSystem) resolve(e ecs.Entity) *components.Transform2D {
	v, ok := s.Transforms.Get(e)
	if !ok {
		return nil
	}
	t := v.Transform2D

	switch s.state[e] {
	case resolved:
		return t
	case visiting:
		// Cycle: the entity closing the loop is treated as a root.
		setRoot(t)
		s.state[e] = resolved
		return t
	}
	s.state[e] = visiting

	var parent *components.Transform2D
	if t.HasParent && t.Parent != e {
		parent = s.resolve(t.Parent)
	}
	if s.state[e] == visiting {
		if parent == nil {
			setRoot(t)
		} else {
			t.WorldScale = t.Scale.Mul(parent.WorldScale)
			t.WorldRotation = t.Rotation + parent.WorldRotation
			offset := t.Position.Mul(parent.WorldScale).Rotate(parent.WorldRotation)
			t.WorldPosition = parent.WorldPosition.Add(offset)
		}
	}
	s.state[e] = resolved
	return t
}

func setRoot(t *components.Transform2D) {
	t.WorldPosition = t.Position
	t.WorldRotation = t.Rotation
	t.WorldScale = t.Scale
}
