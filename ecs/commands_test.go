package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/hotbean/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsDeferUntilFlush(t *testing.T) {
	w := newTestWorld(t)
	e, _ := w.CreateEntity()
	cmds := w.Commands()

	cmds.AddComponent(e, Position{X: 5})
	assert.False(t, ecs.HasComponent[Position](w, e))
	assert.Equal(t, 1, cmds.Pending())

	cmds.Flush(w)
	assert.True(t, ecs.HasComponent[Position](w, e))
	assert.Equal(t, 0, cmds.Pending())

	cmds.RemoveComponent(e, reflect.TypeFor[Position]())
	cmds.Flush(w)
	assert.False(t, ecs.HasComponent[Position](w, e))
}

func TestCommandsSkipDestroyedEntities(t *testing.T) {
	w := newTestWorld(t)
	e, _ := w.CreateEntity()
	require.NoError(t, ecs.AddComponent(w, e, Health{}))
	cmds := w.Commands()

	cmds.AddComponent(e, Position{})
	ecs.Remove[Health](cmds, e)
	cmds.Destroy(e)
	cmds.Destroy(e)
	cmds.Flush(w)

	assert.False(t, w.IsAlive(e))
	posType, _ := ecs.ComponentTypeOf[Position](w)
	assert.Equal(t, 0, w.ComponentManager().Size(posType))
}

func TestCommandsOrder(t *testing.T) {
	w := newTestWorld(t)
	e, _ := w.CreateEntity()
	require.NoError(t, ecs.AddComponent(w, e, Health{Current: 1}))
	cmds := w.Commands()

	var spawned ecs.GameObject
	var deferredSawSpawn bool

	// Queued in reverse of the flush order.
	cmds.Defer(func() { deferredSawSpawn = spawned.Valid() })
	cmds.Spawn(func(o ecs.GameObject) { spawned = o }, Name{Value: "new"})
	cmds.AddComponent(e, Health{Current: 2})
	ecs.Remove[Health](cmds, e)
	cmds.Flush(w)

	h, err := ecs.GetComponent[Health](w, e)
	require.NoError(t, err, "remove runs before add")
	assert.Equal(t, 2, h.Current)

	require.True(t, spawned.Valid())
	n, err := ecs.Get[Name](spawned)
	require.NoError(t, err)
	assert.Equal(t, "new", n.Value)
	assert.True(t, deferredSawSpawn)
}

func TestCommandsErrorsAreNotFatal(t *testing.T) {
	w := newTestWorld(t)
	e, _ := w.CreateEntity()
	require.NoError(t, ecs.AddComponent(w, e, Position{X: 1}))
	cmds := w.Commands()

	cmds.AddComponent(e, Position{X: 2})
	cmds.AddComponent(e, Velocity{DX: 3})
	cmds.Destroy(999)
	cmds.Flush(w)

	p, _ := ecs.GetComponent[Position](w, e)
	assert.Equal(t, float32(1), p.X)
	assert.True(t, ecs.HasComponent[Velocity](w, e))
}

func TestCommandsQueuedDuringFlushRunNextFlush(t *testing.T) {
	w := newTestWorld(t)
	cmds := w.Commands()
	runs := 0

	cmds.Defer(func() {
		runs++
		cmds.Defer(func() { runs++ })
	})
	cmds.Flush(w)
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, cmds.Pending())

	cmds.Flush(w)
	assert.Equal(t, 2, runs)
}
