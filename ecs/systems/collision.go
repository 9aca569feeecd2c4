package systems

import (
	"math"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/kamstrup/intmap"
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
)

// Contact is an overlapping pair of colliders with A < B.
type Contact struct {
	A, B    ecs.Entity
	Trigger bool
}

// Contacts is the world singleton listing collider pairs that started,
// continued or stopped overlapping during the last update.
type Contacts struct {
	Begin []Contact
	Stay  []Contact
	End   []Contact
}

// Touching reports whether e is part of any current contact.
func (c *Contacts) Touching(e ecs.Entity) bool {
	for _, list := range [][]Contact{c.Begin, c.Stay} {
		for _, ct := range list {
			if ct.A == e || ct.B == e {
				return true
			}
		}
	}
	return false
}

type collider struct {
	*components.Transform2D
	*components.Collider2D
	Body *components.RigidBody `ecs:"optional"`
}

type boxed struct {
	e  ecs.Entity
	bb cp.BB
	c  collider
}

// CollisionSystem finds overlapping colliders using cp bounding boxes,
// publishes them in the Contacts singleton and pushes dynamic bodies out of
// solid colliders along the axis of least penetration. Contacts of a collider
// that is removed or destroyed end on the next update.
type CollisionSystem struct {
	ecs.SystemBase
	Colliders ecs.View[collider] `ecs:"track"`
	Contacts  ecs.Singleton[Contacts]

	boxes   []boxed
	active  *intmap.Map[uint64, Contact]
	seen    *intmap.Map[uint64, bool]
	dropped []Contact
}

func (s *CollisionSystem) Name() string { return "CollisionSystem" }

func (s *CollisionSystem) OnInit(f *ecs.UpdateFrame) {
	ecs.NewSingleton[Contacts](f.World)
}

func (s *CollisionSystem) EntityAdded(ecs.Entity) {}

func (s *CollisionSystem) EntityRemoved(e ecs.Entity) {
	if s.active == nil {
		return
	}
	var keys []uint64
	s.active.ForEach(func(key uint64, ct Contact) bool {
		if ct.A == e || ct.B == e {
			s.dropped = append(s.dropped, ct)
			keys = append(keys, key)
		}
		return true
	})
	for _, key := range keys {
		s.active.Del(key)
	}
}

func pairKey(a, b ecs.Entity) uint64 {
	return uint64(a)<<32 | uint64(b)
}

func boundsOf(c collider) cp.BB {
	center := c.Transform2D.World().Add(c.Collider2D.Offset)
	scale := c.Transform2D.WorldScale
	if !c.Transform2D.HasParent || scale.IsZero() {
		scale = c.Transform2D.Scale
	}
	if scale.IsZero() {
		scale = components.Vec2{X: 1, Y: 1}
	}
	size := c.Collider2D.Size.Mul(scale)
	v := cp.Vector{X: center.X, Y: center.Y}
	if c.Collider2D.Shape == components.Circle {
		return cp.NewBBForCircle(v, math.Abs(size.X)/2)
	}
	return cp.NewBBForExtents(v, math.Abs(size.X)/2, math.Abs(size.Y)/2)
}

func (s *CollisionSystem) OnUpdate(*ecs.UpdateFrame) {
	if s.active == nil {
		s.active = intmap.New[uint64, Contact](64)
		s.seen = intmap.New[uint64, bool](64)
	}
	contacts := s.Contacts.Get()
	if contacts == nil {
		return
	}

	s.boxes = s.boxes[:0]
	for e, c := range s.Colliders.Iter(s.Entities().Slice()) {
		if c.Body != nil {
			c.Body.Grounded = false
		}
		s.boxes = append(s.boxes, boxed{e: e, bb: boundsOf(c), c: c})
	}
	// Sweep along x: only boxes whose x ranges overlap are tested.
	sort.Slice(s.boxes, func(i, j int) bool { return s.boxes[i].bb.L < s.boxes[j].bb.L })

	contacts.Begin = contacts.Begin[:0]
	contacts.Stay = contacts.Stay[:0]
	contacts.End = append(contacts.End[:0], s.dropped...)
	s.dropped = s.dropped[:0]
	s.seen.Clear()

	for i := range s.boxes {
		a := &s.boxes[i]
		for j := i + 1; j < len(s.boxes); j++ {
			b := &s.boxes[j]
			if b.bb.L > a.bb.R {
				break
			}
			if !a.bb.Intersects(b.bb) {
				continue
			}

			first, second := a, b
			if second.e < first.e {
				first, second = second, first
			}
			ct := Contact{A: first.e, B: second.e, Trigger: a.c.IsTrigger || b.c.IsTrigger}
			key := pairKey(ct.A, ct.B)
			s.seen.Put(key, true)
			if _, ok := s.active.Get(key); ok {
				contacts.Stay = append(contacts.Stay, ct)
			} else {
				contacts.Begin = append(contacts.Begin, ct)
			}
			s.active.Put(key, ct)

			if !ct.Trigger {
				resolve(first, second)
			}
		}
	}

	var ended []uint64
	s.active.ForEach(func(key uint64, ct Contact) bool {
		if _, ok := s.seen.Get(key); !ok {
			contacts.End = append(contacts.End, ct)
			ended = append(ended, key)
		}
		return true
	})
	for _, key := range ended {
		s.active.Del(key)
	}
}

func movable(c collider) bool {
	return c.Body != nil && c.Body.Type == components.Dynamic
}

// resolve separates a and b along the axis of least penetration. Only
// dynamic bodies move; two dynamic bodies split the correction.
func resolve(a, b *boxed) {
	moveA, moveB := movable(a.c), movable(b.c)
	if !moveA && !moveB {
		return
	}

	overlapX := math.Min(a.bb.R, b.bb.R) - math.Max(a.bb.L, b.bb.L)
	overlapY := math.Min(a.bb.T, b.bb.T) - math.Max(a.bb.B, b.bb.B)
	if overlapX <= 0 || overlapY <= 0 {
		return
	}

	ca, cb := a.bb.Center(), b.bb.Center()
	var push components.Vec2
	if overlapX < overlapY {
		push.X = overlapX
		if ca.X < cb.X {
			push.X = -overlapX
		}
	} else {
		push.Y = overlapY
		if ca.Y < cb.Y {
			push.Y = -overlapY
		}
	}

	share := 1.0
	if moveA && moveB {
		share = 0.5
	}
	if moveA {
		separate(a.c, push.Scale(share))
	}
	if moveB {
		separate(b.c, push.Scale(-share))
	}
}

// separate moves c by push and cancels velocity into the surface. A body
// pushed towards negative y (up on screen) is grounded.
func separate(c collider, push components.Vec2) {
	c.Transform2D.Position = c.Transform2D.Position.Add(push)
	if !c.Transform2D.HasParent {
		c.Transform2D.WorldPosition = c.Transform2D.Position
	}
	v := &c.Body.Velocity
	if push.X != 0 && v.X*push.X < 0 {
		v.X = 0
	}
	if push.Y != 0 && v.Y*push.Y < 0 {
		v.Y = 0
	}
	if push.Y < 0 {
		c.Body.Grounded = true
	}
}
