package main

import (
	"bytes"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
	"github.com/plus3/hotbean/ecs/systems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFinalize(t *testing.T) {
	var s Stats
	s.Finalize()
	assert.Zero(t, s.Avg)

	for i := 1; i <= 100; i++ {
		s.Samples = append(s.Samples, time.Duration(101-i)*time.Millisecond)
	}
	s.Finalize()
	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 100*time.Millisecond, s.Max)
	assert.Equal(t, 50500*time.Microsecond, s.Avg)
	assert.Equal(t, 99*time.Millisecond, s.P99)
	assert.Equal(t, 100*time.Millisecond, s.Samples[0], "samples keep their order")
}

func TestSpawnerChurn(t *testing.T) {
	w := ecs.NewWorld(ecs.WithMaxEntities(64))
	require.NoError(t, components.RegisterDefaults(w))
	require.NoError(t, systems.RegisterDefaults(w, systems.Defaults{}))
	loop := ecs.NewGameLoop(w)

	sp := &Spawner{World: w, Rand: rand.New(rand.NewPCG(7, 7)), Scripted: 0.5}
	for range 50 {
		_, err := sp.Spawn()
		require.NoError(t, err)
	}
	assert.Equal(t, 50, w.EntityCount())

	for range 5 {
		sp.Churn(w.Commands(), 8)
		loop.Frame(1.0 / 60)
	}
	assert.Equal(t, 50, w.EntityCount())
	assert.Equal(t, 50, sp.Live())
	for _, e := range sp.live {
		assert.True(t, w.IsAlive(e))
	}
}

func TestReportGenerate(t *testing.T) {
	w := ecs.NewWorld()
	require.NoError(t, components.RegisterDefaults(w))
	_, err := ecs.Spawn(w, components.NewTransform(0, 0))
	require.NoError(t, err)
	loop := ecs.NewGameLoop(w)
	loop.Frame(0)

	r := &Report{
		Duration:       time.Second,
		Entities:       1,
		GCPauseMetrics: true,
		World:          w.CollectStats(),
		Loop:           *loop.GetStats(),
	}
	r.UpdateTime.Samples = []time.Duration{time.Millisecond}
	r.UpdateTime.Finalize()

	var buf bytes.Buffer
	require.NoError(t, r.Generate(&buf))
	out := buf.String()
	assert.Contains(t, out, "# ECS Stress Test Report")
	assert.Contains(t, out, "- Transform2D: 1")
	assert.Contains(t, out, "**Live Entities:** 1 / 5000")
	assert.Contains(t, out, "## GC Pause Durations")
}
