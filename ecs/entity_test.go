package ecs_test

import (
	"testing"

	"github.com/plus3/hotbean/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityManagerCreate(t *testing.T) {
	m := ecs.NewEntityManager(3)

	for want := range 3 {
		e, err := m.CreateEntity()
		require.NoError(t, err)
		assert.Equal(t, ecs.Entity(want), e)
	}
	assert.Equal(t, 3, m.LivingCount())

	_, err := m.CreateEntity()
	assert.ErrorIs(t, err, ecs.ErrCapacityExceeded)
	assert.Equal(t, 3, m.LivingCount())
}

func TestEntityManagerRecyclesFIFO(t *testing.T) {
	m := ecs.NewEntityManager(5)
	for range 5 {
		_, err := m.CreateEntity()
		require.NoError(t, err)
	}

	require.NoError(t, m.DestroyEntity(3))
	require.NoError(t, m.DestroyEntity(1))

	e, err := m.CreateEntity()
	require.NoError(t, err)
	assert.Equal(t, ecs.Entity(3), e)

	e, err = m.CreateEntity()
	require.NoError(t, err)
	assert.Equal(t, ecs.Entity(1), e)
}

func TestEntityManagerRecycleAfterPartialUse(t *testing.T) {
	m := ecs.NewEntityManager(3)
	for range 3 {
		_, _ = m.CreateEntity()
	}
	require.NoError(t, m.DestroyEntity(1))

	e, err := m.CreateEntity()
	require.NoError(t, err)
	assert.Equal(t, ecs.Entity(1), e)
}

func TestEntityManagerDestroyInvalid(t *testing.T) {
	m := ecs.NewEntityManager(3)
	e, _ := m.CreateEntity()

	require.NoError(t, m.DestroyEntity(e))
	assert.ErrorIs(t, m.DestroyEntity(e), ecs.ErrInvalidEntity)
	assert.ErrorIs(t, m.DestroyEntity(100), ecs.ErrInvalidEntity)
	assert.Equal(t, 0, m.LivingCount())
}

func TestEntityManagerSignature(t *testing.T) {
	m := ecs.NewEntityManager(3)
	e, _ := m.CreateEntity()

	sig := ecs.NewSignature(1, 4)
	require.NoError(t, m.SetSignature(e, sig))

	got, err := m.Signature(e)
	require.NoError(t, err)
	assert.Equal(t, sig, got)

	_, err = m.Signature(99)
	assert.ErrorIs(t, err, ecs.ErrInvalidEntity)
	assert.ErrorIs(t, m.SetSignature(99, sig), ecs.ErrInvalidEntity)

	require.NoError(t, m.DestroyEntity(e))
	_, err = m.Signature(e)
	assert.ErrorIs(t, err, ecs.ErrInvalidEntity)
}

func TestEntityManagerRecycledSignatureIsEmpty(t *testing.T) {
	m := ecs.NewEntityManager(1)
	e, _ := m.CreateEntity()
	require.NoError(t, m.SetSignature(e, ecs.NewSignature(2)))
	require.NoError(t, m.DestroyEntity(e))

	again, err := m.CreateEntity()
	require.NoError(t, err)
	assert.Equal(t, e, again)

	sig, err := m.Signature(again)
	require.NoError(t, err)
	assert.True(t, sig.Empty())
}

func TestEntityManagerLiving(t *testing.T) {
	m := ecs.NewEntityManager(10)
	for range 4 {
		_, _ = m.CreateEntity()
	}
	require.NoError(t, m.DestroyEntity(2))

	var living []ecs.Entity
	for e := range m.Living() {
		living = append(living, e)
	}
	assert.Equal(t, []ecs.Entity{0, 1, 3}, living)
}

func TestSignature(t *testing.T) {
	sig := ecs.NewSignature(0, 3)
	assert.True(t, sig.Has(0))
	assert.True(t, sig.Has(3))
	assert.False(t, sig.Has(1))
	assert.Equal(t, "1001", sig.String())
	assert.Equal(t, []ecs.ComponentType{0, 3}, sig.Types())

	assert.True(t, sig.Contains(ecs.NewSignature(3)))
	assert.False(t, sig.Contains(ecs.NewSignature(1, 3)))
	assert.True(t, sig.Intersects(ecs.NewSignature(1, 3)))

	sig.Clear(0)
	assert.False(t, sig.Has(0))

	var empty ecs.Signature
	assert.True(t, empty.Empty())
	assert.Equal(t, "0", empty.String())
	assert.True(t, sig.Contains(empty))
}
