package ecs_test

import (
	"testing"

	"github.com/plus3/hotbean/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moverView struct {
	*Position
	*Velocity
	Name *Name `ecs:"optional"`
}

func TestViewGet(t *testing.T) {
	w := newTestWorld(t)
	view, err := ecs.NewView[moverView](w)
	require.NoError(t, err)

	e, _ := w.CreateEntity()
	require.NoError(t, ecs.AddComponent(w, e, Position{X: 1}))

	_, ok := view.Get(e)
	assert.False(t, ok, "missing required component")

	require.NoError(t, ecs.AddComponent(w, e, Velocity{DX: 2}))
	v, ok := view.Get(e)
	require.True(t, ok)
	assert.Equal(t, float32(1), v.Position.X)
	assert.Equal(t, float32(2), v.Velocity.DX)
	assert.Nil(t, v.Name)

	v.Position.X = 10
	p, _ := ecs.GetComponent[Position](w, e)
	assert.Equal(t, float32(10), p.X, "view fields point at stored components")

	require.NoError(t, ecs.AddComponent(w, e, Name{Value: "mover"}))
	v, ok = view.Get(e)
	require.True(t, ok)
	require.NotNil(t, v.Name)
	assert.Equal(t, "mover", v.Name.Value)
}

func TestViewSignature(t *testing.T) {
	w := newTestWorld(t)
	view, err := ecs.NewView[moverView](w)
	require.NoError(t, err)

	posType, _ := ecs.ComponentTypeOf[Position](w)
	velType, _ := ecs.ComponentTypeOf[Velocity](w)
	assert.Equal(t, ecs.NewSignature(posType, velType), view.Signature())
}

func TestViewUnregisteredComponent(t *testing.T) {
	w := ecs.NewWorld()
	_, err := ecs.NewView[struct{ *Position }](w)
	assert.ErrorIs(t, err, ecs.ErrComponentNotRegistered)
}

func TestViewEach(t *testing.T) {
	w := newTestWorld(t)
	view, err := ecs.NewView[moverView](w)
	require.NoError(t, err)

	for i := range 5 {
		e, _ := w.CreateEntity()
		require.NoError(t, ecs.AddComponent(w, e, Position{X: float32(i)}))
		if i%2 == 0 {
			require.NoError(t, ecs.AddComponent(w, e, Velocity{DX: 1}))
		}
	}

	var xs []float32
	for _, v := range view.Each() {
		xs = append(xs, v.Position.X)
	}
	assert.ElementsMatch(t, []float32{0, 2, 4}, xs)

	count := 0
	for range view.Values() {
		count++
	}
	assert.Equal(t, 3, count)
}

func TestViewIterSkipsDeadEntities(t *testing.T) {
	w := newTestWorld(t)
	view, err := ecs.NewView[struct{ *Health }](w)
	require.NoError(t, err)

	a, _ := w.CreateEntity()
	b, _ := w.CreateEntity()
	require.NoError(t, ecs.AddComponent(w, a, Health{Current: 1}))
	require.NoError(t, ecs.AddComponent(w, b, Health{Current: 2}))
	require.NoError(t, w.DestroyEntity(a))

	var seen []ecs.Entity
	for e := range view.Iter([]ecs.Entity{a, b}) {
		seen = append(seen, e)
	}
	assert.Equal(t, []ecs.Entity{b}, seen)
}

func TestViewSpawn(t *testing.T) {
	w := newTestWorld(t)
	view, err := ecs.NewView[moverView](w)
	require.NoError(t, err)

	e, err := view.Spawn(moverView{Position: &Position{X: 3}, Velocity: &Velocity{DY: 4}})
	require.NoError(t, err)

	v, ok := view.Get(e)
	require.True(t, ok)
	assert.Equal(t, float32(3), v.Position.X)
	assert.Equal(t, float32(4), v.Velocity.DY)
	assert.Nil(t, v.Name)

	_, err = view.Spawn(moverView{Position: &Position{}})
	assert.Error(t, err)
}

func TestViewInvalidTagPanics(t *testing.T) {
	w := newTestWorld(t)
	assert.Panics(t, func() {
		_, _ = ecs.NewView[struct {
			P *Position `ecs:"sometimes"`
		}](w)
	})
	assert.Panics(t, func() {
		_, _ = ecs.NewView[struct{ P Position }](w)
	})
}
