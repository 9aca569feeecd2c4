package ecs_test

import (
	"testing"

	"github.com/plus3/hotbean/ecs"
	"github.com/stretchr/testify/require"
)

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type Tag string

func newTestWorld(t testing.TB, opts ...ecs.Option) *ecs.World {
	t.Helper()
	w := ecs.NewWorld(opts...)
	_, err := ecs.RegisterComponent[Position](w)
	require.NoError(t, err)
	_, err = ecs.RegisterComponent[Velocity](w)
	require.NoError(t, err)
	_, err = ecs.RegisterComponent[Name](w)
	require.NoError(t, err)
	_, err = ecs.RegisterComponent[Health](w)
	require.NoError(t, err)
	_, err = ecs.RegisterComponent[Tag](w)
	require.NoError(t, err)
	return w
}
