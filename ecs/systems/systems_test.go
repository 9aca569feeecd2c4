package systems_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
	"github.com/plus3/hotbean/ecs/systems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorld(t *testing.T) *ecs.World {
	t.Helper()
	w := ecs.NewWorld()
	require.NoError(t, components.RegisterDefaults(w))
	return w
}

func spawn(t *testing.T, w *ecs.World, comps ...any) ecs.Entity {
	t.Helper()
	obj, err := ecs.Spawn(w, comps...)
	require.NoError(t, err)
	return obj.Entity()
}

func component[T any](t *testing.T, w *ecs.World, e ecs.Entity) *T {
	t.Helper()
	v, err := ecs.GetComponent[T](w, e)
	require.NoError(t, err)
	return v
}

func TestPhysicsSystem(t *testing.T) {
	t.Run("velocity integrates into position", func(t *testing.T) {
		w := newWorld(t)
		_, err := ecs.RegisterSystem(w, systems.NewPhysicsSystem(components.Vec2{}))
		require.NoError(t, err)

		e := spawn(t, w,
			components.NewTransform(0, 0),
			components.RigidBody{Velocity: components.Vec2{X: 1, Y: 0}},
		)

		ecs.NewGameLoop(w).Frame(1)

		pos := component[components.Transform2D](t, w, e).Position
		assert.Equal(t, components.Vec2{X: 1, Y: 0}, pos)
	})

	t.Run("gravity applies to dynamic bodies only", func(t *testing.T) {
		w := newWorld(t)
		_, err := ecs.RegisterSystem(w, systems.NewPhysicsSystem(components.Vec2{Y: 10}))
		require.NoError(t, err)

		dynamic := spawn(t, w, components.NewTransform(0, 0), components.RigidBody{GravityScale: 1})
		kinematic := spawn(t, w, components.NewTransform(0, 0),
			components.RigidBody{Type: components.Kinematic, GravityScale: 1, Velocity: components.Vec2{X: 2}})
		static := spawn(t, w, components.NewTransform(0, 0),
			components.RigidBody{Type: components.Static, GravityScale: 1, Velocity: components.Vec2{X: 5}})

		ecs.NewGameLoop(w).Frame(0.5)

		d := component[components.RigidBody](t, w, dynamic)
		assert.InDelta(t, 5, d.Velocity.Y, 1e-9)
		assert.InDelta(t, 2.5, component[components.Transform2D](t, w, dynamic).Position.Y, 1e-9)

		k := component[components.Transform2D](t, w, kinematic)
		assert.Equal(t, components.Vec2{X: 1}, k.Position)

		s := component[components.Transform2D](t, w, static)
		assert.True(t, s.Position.IsZero())
	})

	t.Run("zero delta is a no-op", func(t *testing.T) {
		w := newWorld(t)
		_, err := ecs.RegisterSystem(w, systems.NewPhysicsSystem(components.Vec2{Y: 10}))
		require.NoError(t, err)
		e := spawn(t, w, components.NewTransform(3, 4), components.RigidBody{Velocity: components.Vec2{X: 1}})

		ecs.NewGameLoop(w).Frame(0)

		assert.Equal(t, components.Vec2{X: 3, Y: 4}, component[components.Transform2D](t, w, e).Position)
	})
}

func TestTransformSystem(t *testing.T) {
	w := newWorld(t)
	ts, err := ecs.RegisterSystem(w, &systems.TransformSystem{})
	require.NoError(t, err)

	parentT := components.NewTransform(10, 0)
	parentT.Scale = components.Vec2{X: 2, Y: 2}
	parent := spawn(t, w, parentT)

	childT := components.NewTransform(1, 0)
	childT.SetParent(parent)
	child := spawn(t, w, childT)

	grandT := components.NewTransform(0, 1)
	grandT.SetParent(child)
	grand := spawn(t, w, grandT)

	ts.Resolve()

	c := component[components.Transform2D](t, w, child)
	assert.InDelta(t, 12, c.WorldPosition.X, 1e-9)
	assert.InDelta(t, 0, c.WorldPosition.Y, 1e-9)
	assert.Equal(t, components.Vec2{X: 2, Y: 2}, c.WorldScale)
	assert.Equal(t, c.WorldPosition, c.World())

	g := component[components.Transform2D](t, w, grand)
	assert.InDelta(t, 12, g.WorldPosition.X, 1e-9)
	assert.InDelta(t, 2, g.WorldPosition.Y, 1e-9)

	t.Run("rotation", func(t *testing.T) {
		p := component[components.Transform2D](t, w, parent)
		p.Rotation = 90
		ts.Resolve()

		c := component[components.Transform2D](t, w, child)
		assert.InDelta(t, 10, c.WorldPosition.X, 1e-9)
		assert.InDelta(t, 2, c.WorldPosition.Y, 1e-9)
		assert.InDelta(t, 90, c.WorldRotation, 1e-9)
	})

	t.Run("missing parent is a root", func(t *testing.T) {
		orphanT := components.NewTransform(7, 7)
		orphanT.SetParent(ecs.Entity(4000))
		orphan := spawn(t, w, orphanT)

		ts.Resolve()

		o := component[components.Transform2D](t, w, orphan)
		assert.Equal(t, components.Vec2{X: 7, Y: 7}, o.WorldPosition)
	})

	t.Run("cycle terminates", func(t *testing.T) {
		a := spawn(t, w, components.NewTransform(1, 0))
		bT := components.NewTransform(0, 5)
		bT.SetParent(a)
		b := spawn(t, w, bT)
		component[components.Transform2D](t, w, a).SetParent(b)

		ts.Resolve()

		at := component[components.Transform2D](t, w, a)
		bt := component[components.Transform2D](t, w, b)
		assert.Equal(t, at.Position, at.WorldPosition)
		assert.InDelta(t, 1, bt.WorldPosition.X, 1e-9)
		assert.InDelta(t, 5, bt.WorldPosition.Y, 1e-9)
	})
}

func TestTransformSystemDetachesChildrenOfDestroyedParent(t *testing.T) {
	w := ecs.NewWorld(ecs.WithMaxEntities(2))
	require.NoError(t, components.RegisterDefaults(w))
	ts, err := ecs.RegisterSystem(w, &systems.TransformSystem{})
	require.NoError(t, err)

	parent := spawn(t, w, components.NewTransform(10, 0))
	childT := components.NewTransform(1, 0)
	childT.SetParent(parent)
	child := spawn(t, w, childT)

	require.NoError(t, w.DestroyEntity(parent))
	assert.False(t, component[components.Transform2D](t, w, child).HasParent)

	recycled := spawn(t, w, components.NewTransform(100, 0))
	require.Equal(t, parent, recycled)

	ts.Resolve()
	assert.Equal(t, components.Vec2{X: 1, Y: 0}, component[components.Transform2D](t, w, child).WorldPosition)
}

func TestCollisionSystem(t *testing.T) {
	w := newWorld(t)
	_, err := ecs.RegisterSystem(w, &systems.CollisionSystem{})
	require.NoError(t, err)
	loop := ecs.NewGameLoop(w)

	player := spawn(t, w,
		components.NewTransform(0, 0),
		components.Collider2D{Size: components.Vec2{X: 10, Y: 10}},
		components.RigidBody{Velocity: components.Vec2{Y: 5}},
	)
	floor := spawn(t, w,
		components.NewTransform(0, 8),
		components.Collider2D{Size: components.Vec2{X: 100, Y: 10}},
		components.RigidBody{Type: components.Static},
	)
	trigger := spawn(t, w,
		components.NewTransform(500, 500),
		components.Collider2D{Size: components.Vec2{X: 4, Y: 4}, IsTrigger: true},
	)

	loop.Frame(0)

	contacts := ecs.NewSingleton[systems.Contacts](w).Get()
	require.NotNil(t, contacts)
	require.Len(t, contacts.Begin, 1)
	assert.Equal(t, systems.Contact{A: player, B: floor}, contacts.Begin[0])
	assert.True(t, contacts.Touching(player))
	assert.False(t, contacts.Touching(trigger))

	rb := component[components.RigidBody](t, w, player)
	assert.True(t, rb.Grounded)
	assert.Zero(t, rb.Velocity.Y)
	assert.InDelta(t, -2, component[components.Transform2D](t, w, player).Position.Y, 1e-9)
	assert.InDelta(t, 8, component[components.Transform2D](t, w, floor).Position.Y, 1e-9)

	t.Run("continuing contact", func(t *testing.T) {
		component[components.Transform2D](t, w, player).Position.Y = -1
		loop.Frame(0)
		assert.Empty(t, contacts.Begin)
		require.Len(t, contacts.Stay, 1)
	})

	t.Run("trigger overlaps without pushing", func(t *testing.T) {
		pt := component[components.Transform2D](t, w, player)
		pt.Position = components.Vec2{X: 500, Y: 500}
		loop.Frame(0)

		require.Len(t, contacts.Begin, 1)
		assert.True(t, contacts.Begin[0].Trigger)
		require.Len(t, contacts.End, 1)
		assert.Equal(t, systems.Contact{A: player, B: floor}, contacts.End[0])
		assert.Equal(t, components.Vec2{X: 500, Y: 500}, component[components.Transform2D](t, w, player).Position)
	})
}

func TestCollisionSystemEndsContactsOfDestroyedColliders(t *testing.T) {
	w := ecs.NewWorld(ecs.WithMaxEntities(2))
	require.NoError(t, components.RegisterDefaults(w))
	_, err := ecs.RegisterSystem(w, &systems.CollisionSystem{})
	require.NoError(t, err)
	loop := ecs.NewGameLoop(w)

	box := components.Collider2D{Size: components.Vec2{X: 10, Y: 10}}
	a := spawn(t, w, components.NewTransform(0, 0), box)
	b := spawn(t, w, components.NewTransform(5, 0), box)

	loop.Frame(0)
	contacts := ecs.NewSingleton[systems.Contacts](w).Get()
	require.Len(t, contacts.Begin, 1)

	require.NoError(t, w.DestroyEntity(b))
	recycled := spawn(t, w, components.NewTransform(3, 0), box)
	require.Equal(t, b, recycled)

	loop.Frame(0)
	assert.Empty(t, contacts.Stay)
	assert.Equal(t, []systems.Contact{{A: a, B: b}}, contacts.End)
	assert.Equal(t, []systems.Contact{{A: a, B: recycled}}, contacts.Begin)

	loop.Frame(0)
	assert.Empty(t, contacts.End)
	assert.Len(t, contacts.Stay, 1)
}

func TestPlayerControllerSystem(t *testing.T) {
	w := newWorld(t)
	_, err := ecs.RegisterSystem(w, &systems.PlayerControllerSystem{})
	require.NoError(t, err)
	input := ecs.SetSingleton(w, systems.InputState{})
	loop := ecs.NewGameLoop(w)

	topDown := spawn(t, w, components.Controller{Controllable: true, Speed: 100}, components.RigidBody{})
	platformer := spawn(t, w,
		components.Controller{Controllable: true, Speed: 50, JumpSpeed: 300},
		components.RigidBody{Grounded: true},
	)
	idle := spawn(t, w, components.Controller{Speed: 100}, components.RigidBody{})

	input.SetKey("D", true)
	input.SetKey("ArrowDown", true)
	input.SetKey("Space", true)
	loop.Frame(1.0 / 60)

	td := component[components.RigidBody](t, w, topDown)
	assert.Equal(t, components.Vec2{X: 100, Y: 100}, td.Velocity)

	pf := component[components.RigidBody](t, w, platformer)
	assert.Equal(t, components.Vec2{X: 50, Y: -300}, pf.Velocity)
	assert.False(t, pf.Grounded)

	assert.True(t, component[components.RigidBody](t, w, idle).Velocity.IsZero())

	t.Run("jump needs a fresh press", func(t *testing.T) {
		input.BeginFrame()
		pf.Grounded = true
		pf.Velocity.Y = 0
		loop.Frame(1.0 / 60)
		assert.Zero(t, component[components.RigidBody](t, w, platformer).Velocity.Y)
	})
}

func TestInputState(t *testing.T) {
	var in systems.InputState
	assert.False(t, in.Down("A"))

	in.SetKey("A", true)
	assert.True(t, in.Down("A"))
	assert.True(t, in.JustPressed("A"))
	assert.Equal(t, -1.0, in.Axis(systems.KeysLeft, systems.KeysRight))

	in.BeginFrame()
	in.SetKey("A", true)
	assert.False(t, in.JustPressed("A"))

	in.SetKey("D", true)
	assert.Equal(t, 0.0, in.Axis(systems.KeysLeft, systems.KeysRight))
	in.SetKey("A", false)
	assert.Equal(t, 1.0, in.Axis(systems.KeysLeft, systems.KeysRight))
}

func TestCameraSystem(t *testing.T) {
	w := newWorld(t)
	_, err := ecs.RegisterSystem(w, &systems.CameraSystem{DefaultViewport: components.Vec2{X: 640, Y: 480}})
	require.NoError(t, err)
	loop := ecs.NewGameLoop(w)

	primary := spawn(t, w, components.NewTransform(100, 50),
		components.Camera{ID: 1, Active: true, Zoom: 2, ViewportSize: components.Vec2{X: 800, Y: 600}})
	spawn(t, w, components.NewTransform(0, 0), components.Camera{ID: 2, Active: true})
	spawn(t, w, components.NewTransform(0, 0), components.Camera{ID: 0, Active: false})

	loop.Frame(0)

	view := ecs.NewSingleton[systems.CameraView](w).Get()
	require.NotNil(t, view)
	require.True(t, view.Valid)
	assert.Equal(t, primary, view.Entity)
	assert.Equal(t, components.Vec2{X: 400, Y: 300}, view.WorldToScreen(components.Vec2{X: 100, Y: 50}))
	assert.Equal(t, components.Vec2{X: 402, Y: 300}, view.WorldToScreen(components.Vec2{X: 101, Y: 50}))
	assert.Equal(t, components.Vec2{X: 101, Y: 50}, view.ScreenToWorld(components.Vec2{X: 402, Y: 300}))

	t.Run("falls back to next active camera", func(t *testing.T) {
		require.NoError(t, w.DestroyEntity(primary))
		loop.Frame(0)

		require.True(t, view.Valid)
		assert.Equal(t, components.Vec2{X: 640, Y: 480}, view.Viewport)
		assert.Equal(t, 1.0, view.Zoom)
	})
}

func TestTilemapSystem(t *testing.T) {
	w := newWorld(t)
	tm, err := ecs.RegisterSystem(w, systems.NewTilemapSystem(16))
	require.NoError(t, err)

	wall := spawn(t, w, components.Tile{X: 0, Y: 0, ID: 1, Solid: true})
	spawn(t, w, components.Tile{X: 1, Y: 0, ID: 2})
	spawn(t, w, components.Tile{X: -1, Y: -1, ID: 3, Solid: true})

	assert.Equal(t, 3, tm.Len())
	assert.True(t, tm.SolidAt(5, 5))
	assert.False(t, tm.SolidAt(20, 5))
	assert.True(t, tm.SolidAt(-1, -1))
	assert.False(t, tm.SolidAt(0, 100))

	e, ok := tm.TileAt(0, 0)
	require.True(t, ok)
	assert.Equal(t, wall, e)

	t.Run("moved tiles are re-indexed", func(t *testing.T) {
		component[components.Tile](t, w, wall).X = 5
		ecs.NewGameLoop(w).Frame(0)

		_, ok := tm.TileAt(0, 0)
		assert.False(t, ok)
		assert.True(t, tm.SolidAt(5*16+1, 1))
	})

	t.Run("destroyed tiles leave the index", func(t *testing.T) {
		require.NoError(t, w.DestroyEntity(wall))
		_, ok := tm.TileAt(5, 0)
		assert.False(t, ok)
		assert.Equal(t, 2, tm.Len())
	})
}

func TestScriptSystem(t *testing.T) {
	t.Run("inline source moves the entity", func(t *testing.T) {
		w := newWorld(t)
		_, err := ecs.RegisterSystem(w, &systems.ScriptSystem{})
		require.NoError(t, err)

		e := spawn(t, w,
			components.NewTransform(0, 0),
			components.Script{Source: `x = x + 10 * dt; vx = 3`},
			components.RigidBody{},
		)

		ecs.NewGameLoop(w).Frame(1)

		assert.InDelta(t, 10, component[components.Transform2D](t, w, e).Position.X, 1e-9)
		assert.Equal(t, 3.0, component[components.RigidBody](t, w, e).Velocity.X)
	})

	t.Run("state persists between runs", func(t *testing.T) {
		w := newWorld(t)
		_, err := ecs.RegisterSystem(w, &systems.ScriptSystem{})
		require.NoError(t, err)

		e := spawn(t, w,
			components.NewTransform(0, 0),
			components.Script{Source: `
if is_undefined(state.count) { state.count = 0 }
state.count += 1
y = state.count
`},
		)

		loop := ecs.NewGameLoop(w)
		loop.Frame(0.1)
		loop.Frame(0.1)

		assert.Equal(t, 2.0, component[components.Transform2D](t, w, e).Position.Y)
	})

	t.Run("script file relative to base dir", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "spin.tengo"), []byte(`
math := import("math")
rotation = math.floor(rotation + 45.5)
`), 0o644))

		w := newWorld(t)
		_, err := ecs.RegisterSystem(w, &systems.ScriptSystem{BaseDir: dir})
		require.NoError(t, err)
		e := spawn(t, w, components.NewTransform(0, 0), components.Script{Path: "spin.tengo"})

		ecs.NewGameLoop(w).Frame(0)

		assert.Equal(t, 45.0, component[components.Transform2D](t, w, e).Rotation)
	})

	t.Run("invalidate rereads the file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "pos.tengo")
		require.NoError(t, os.WriteFile(path, []byte(`x = 1`), 0o644))

		w := newWorld(t)
		scripts, err := ecs.RegisterSystem(w, &systems.ScriptSystem{BaseDir: dir})
		require.NoError(t, err)
		e := spawn(t, w, components.NewTransform(0, 0), components.Script{Path: "pos.tengo"})
		loop := ecs.NewGameLoop(w)

		loop.Frame(0)
		require.NoError(t, os.WriteFile(path, []byte(`x = 2`), 0o644))
		loop.Frame(0)
		assert.Equal(t, 1.0, component[components.Transform2D](t, w, e).Position.X)

		scripts.Invalidate(path)
		loop.Frame(0)
		assert.Equal(t, 2.0, component[components.Transform2D](t, w, e).Position.X)
	})

	t.Run("failing scripts are disabled", func(t *testing.T) {
		w := newWorld(t)
		_, err := ecs.RegisterSystem(w, &systems.ScriptSystem{})
		require.NoError(t, err)

		broken := spawn(t, w, components.NewTransform(0, 0), components.Script{Source: `x = `})
		crashing := spawn(t, w, components.NewTransform(0, 0), components.Script{Source: `x = x + 1; y = 1 / 0`})
		missing := spawn(t, w, components.NewTransform(0, 0), components.Script{Path: "nope.tengo"})

		loop := ecs.NewGameLoop(w)
		loop.Frame(1)
		loop.Frame(1)

		for _, e := range []ecs.Entity{broken, crashing, missing} {
			assert.True(t, component[components.Transform2D](t, w, e).Position.IsZero())
		}
	})

	t.Run("runtime panics disable the script", func(t *testing.T) {
		w := newWorld(t)
		_, err := ecs.RegisterSystem(w, &systems.ScriptSystem{})
		require.NoError(t, err)

		divide := spawn(t, w, components.NewTransform(0, 0), components.Script{Source: `y = 1 / 0`})
		healthy := spawn(t, w, components.NewTransform(0, 0), components.Script{Source: `x = x + 1`})

		loop := ecs.NewGameLoop(w)
		require.NotPanics(t, func() {
			loop.Frame(1)
			loop.Frame(1)
		})

		assert.True(t, component[components.Transform2D](t, w, divide).Position.IsZero())
		assert.Equal(t, 2.0, component[components.Transform2D](t, w, healthy).Position.X)
	})

	t.Run("runaway scripts are aborted", func(t *testing.T) {
		w := newWorld(t)
		_, err := ecs.RegisterSystem(w, &systems.ScriptSystem{Timeout: 10 * time.Millisecond})
		require.NoError(t, err)

		e := spawn(t, w, components.NewTransform(0, 0), components.Script{Source: `for { x = x + 1 }`})

		loop := ecs.NewGameLoop(w)
		start := time.Now()
		loop.Frame(1)
		loop.Frame(1)

		assert.Less(t, time.Since(start), 2*time.Second)
		assert.True(t, component[components.Transform2D](t, w, e).Position.IsZero())
	})
}

type fakePlayer struct {
	played  []ecs.Entity
	stopped []ecs.Entity
	fail    bool
}

func (p *fakePlayer) Play(e ecs.Entity, _ *components.AudioSource) error {
	if p.fail {
		return errors.New("no device")
	}
	p.played = append(p.played, e)
	return nil
}

func (p *fakePlayer) Stop(e ecs.Entity) {
	p.stopped = append(p.stopped, e)
}

func TestAudioSystem(t *testing.T) {
	w := newWorld(t)
	player := &fakePlayer{}
	audio, err := ecs.RegisterSystem(w, systems.NewAudioSystem(player))
	require.NoError(t, err)
	loop := ecs.NewGameLoop(w)

	music := spawn(t, w, components.AudioSource{Path: "music.ogg", PlayOnStart: true, Loop: true})
	sfx := spawn(t, w, components.AudioSource{Path: "jump.wav"})

	loop.Frame(0)
	assert.Equal(t, []ecs.Entity{music}, player.played)
	assert.True(t, component[components.AudioSource](t, w, music).Playing)
	assert.False(t, component[components.AudioSource](t, w, sfx).Playing)

	audio.Play(sfx)
	audio.Stop(music)
	loop.Frame(0)
	assert.Equal(t, []ecs.Entity{music, sfx}, player.played)
	assert.Equal(t, []ecs.Entity{music}, player.stopped)
	assert.False(t, component[components.AudioSource](t, w, music).Playing)

	t.Run("destroyed sources stop", func(t *testing.T) {
		require.NoError(t, w.DestroyEntity(sfx))
		assert.Contains(t, player.stopped, sfx)
	})

	t.Run("play errors are logged", func(t *testing.T) {
		player.fail = true
		audio.Play(music)
		loop.Frame(0)
		assert.False(t, component[components.AudioSource](t, w, music).Playing)
	})

	t.Run("shutdown stops everything", func(t *testing.T) {
		player.stopped = nil
		loop.Shutdown()
		assert.Contains(t, player.stopped, music)
	})
}

func TestRegisterDefaults(t *testing.T) {
	w := newWorld(t)
	require.NoError(t, systems.RegisterDefaults(w, systems.Defaults{ScriptDir: "scripts"}))

	scripts, ok := ecs.GetSystem[*systems.ScriptSystem](w)
	require.True(t, ok)
	assert.Equal(t, "scripts", scripts.BaseDir)

	tiles, ok := ecs.GetSystem[*systems.TilemapSystem](w)
	require.True(t, ok)
	assert.Equal(t, 32.0, tiles.TileSize)

	names := make([]string, 0)
	for _, s := range w.CollectStats().Systems {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"PlayerControllerSystem", "ScriptSystem", "PhysicsSystem", "CollisionSystem",
		"TilemapSystem", "TransformSystem", "CameraSystem", "AudioSystem",
	}, names)

	err := systems.RegisterDefaults(w, systems.Defaults{})
	assert.ErrorIs(t, err, ecs.ErrSystemExists)
}
