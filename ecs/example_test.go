package ecs_test

import (
	"fmt"

	"github.com/plus3/hotbean/ecs"
)

type Transform struct {
	X, Y float64
}

type Speed struct {
	DX, DY float64
}

type PhysicsSystem struct {
	ecs.SystemBase
	Bodies ecs.View[struct {
		*Transform
		*Speed
	}] `ecs:"track"`
}

func (s *PhysicsSystem) OnUpdate(f *ecs.UpdateFrame) {
	for _, body := range s.Bodies.Iter(s.Entities().Slice()) {
		body.Transform.X += body.Speed.DX * f.DeltaTime
		body.Transform.Y += body.Speed.DY * f.DeltaTime
	}
}

// ExampleGameLoop shows a system tracking entities by signature and moving
// them once per frame.
func ExampleGameLoop() {
	world := ecs.NewWorld()
	ecs.RegisterComponent[Transform](world)
	ecs.RegisterComponent[Speed](world)

	if _, err := ecs.RegisterSystem(world, &PhysicsSystem{}); err != nil {
		panic(err)
	}

	ship, _ := ecs.Spawn(world, Transform{}, Speed{DX: 2, DY: 1})
	rock, _ := ecs.Spawn(world, Transform{X: 5})

	loop := ecs.NewGameLoop(world)
	loop.Init()
	for range 3 {
		loop.Frame(0.5)
	}

	t, _ := ecs.Get[Transform](ship)
	fmt.Printf("ship: %.1f,%.1f\n", t.X, t.Y)
	t, _ = ecs.Get[Transform](rock)
	fmt.Printf("rock: %.1f,%.1f\n", t.X, t.Y)
	// Output:
	// ship: 3.0,1.5
	// rock: 5.0,0.0
}

// ExampleCommands shows structural changes requested mid-phase being applied
// when the phase ends.
func ExampleCommands() {
	world := ecs.NewWorld()
	ecs.RegisterComponent[Transform](world)

	obj, _ := ecs.Spawn(world, Transform{})
	world.Commands().Destroy(obj.Entity())
	fmt.Println("before flush:", obj.Valid())

	world.Commands().Flush(world)
	fmt.Println("after flush:", obj.Valid())
	// Output:
	// before flush: true
	// after flush: false
}

// ExampleSparseSet shows swap-with-last removal.
func ExampleSparseSet() {
	set := ecs.NewSparseSet[string](8)
	set.Insert(1, "a")
	set.Insert(2, "b")
	set.Insert(3, "c")
	set.Remove(1)

	for e, v := range set.All() {
		fmt.Println(e, *v)
	}
	// Output:
	// 3 c
	// 2 b
}
