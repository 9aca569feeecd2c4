package ecs

import (
	"context"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LoopState is the run state of a GameLoop.
type LoopState int

const (
	Stopped LoopState = iota
	Playing
	Paused
)

func (s LoopState) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	}
	return "LoopState(?)"
}

// LoopStats provides statistics about frame dispatch.
type LoopStats struct {
	FrameCount       uint64
	ParticipantCount int
	TotalExecutions  int64
	Participants     []ParticipantStats
}

// ParticipantStats provides timing for one participant, summed over all
// phases of a frame.
type ParticipantStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type participantStats struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
	current        time.Duration
}

// loopEntry is the loop's bookkeeping for one participant.
type loopEntry struct {
	p           FrameParticipant
	initialized bool
	stats       participantStats
}

func newLoopEntry(p FrameParticipant) *loopEntry {
	return &loopEntry{p: p, stats: participantStats{name: systemName(p), minDuration: time.Duration(1<<63 - 1)}}
}

// sameParticipant reports whether a and b are the same participant.
// Participants of a non-comparable type only match their own entry.
func sameParticipant(a, b FrameParticipant) bool {
	t := reflect.TypeOf(a)
	if t != reflect.TypeOf(b) || !t.Comparable() {
		return false
	}
	return a == b
}

func (s *participantStats) record() {
	d := s.current
	s.current = 0
	s.executionCount++
	s.lastDuration = d
	s.totalDuration += d
	if d < s.minDuration {
		s.minDuration = d
	}
	if d > s.maxDuration {
		s.maxDuration = d
	}
}

// GameLoop drives registered systems and participants through the frame
// phases. Systems run first in registration order, then participants in the
// order they were added. After every phase the world's Commands are flushed.
type GameLoop struct {
	world        *World
	participants []*loopEntry
	systems      map[System]*loopEntry

	pending []Event
	state   LoopState
	frame   uint64
	down    bool

	stopOnce sync.Once
	stop     chan struct{}
}

// NewGameLoop creates a loop over w in the Playing state.
func NewGameLoop(w *World) *GameLoop {
	return &GameLoop{
		world:   w,
		systems: make(map[System]*loopEntry),
		state:   Playing,
		stop:    make(chan struct{}),
	}
}

func (l *GameLoop) World() *World {
	return l.world
}

// AddParticipant appends p to the dispatch list. Adding the same pointer
// twice is a no-op. Values of a non-comparable type are always appended.
func (l *GameLoop) AddParticipant(p FrameParticipant) {
	if slices.ContainsFunc(l.participants, func(e *loopEntry) bool { return sameParticipant(e.p, p) }) {
		return
	}
	l.participants = append(l.participants, newLoopEntry(p))
}

// RemoveParticipant drops p, or forgets the loop state of p when it is a
// system. If p is added again it is initialized again.
func (l *GameLoop) RemoveParticipant(p FrameParticipant) {
	l.participants = slices.DeleteFunc(l.participants, func(e *loopEntry) bool { return sameParticipant(e.p, p) })
	if s, ok := p.(System); ok && reflect.TypeOf(s).Comparable() {
		delete(l.systems, s)
	}
}

// PushEvent queues ev for the OnEvent phase of the next frame.
func (l *GameLoop) PushEvent(ev Event) {
	l.pending = append(l.pending, ev)
}

func (l *GameLoop) State() LoopState {
	return l.state
}

// Pause keeps frames running but skips OnUpdate.
func (l *GameLoop) Pause() {
	if l.state == Playing {
		l.state = Paused
		l.world.log.Info("game loop paused")
	}
}

func (l *GameLoop) Resume() {
	if l.state == Paused {
		l.state = Playing
		l.world.log.Info("game loop resumed")
	}
}

// Stop ends Run after the current frame. Frames requested after Stop do nothing.
func (l *GameLoop) Stop() {
	l.state = Stopped
	l.stopOnce.Do(func() { close(l.stop) })
}

// FrameCount returns the number of frames run.
func (l *GameLoop) FrameCount() uint64 {
	return l.frame
}

func (l *GameLoop) dispatchList() []*loopEntry {
	systems := l.world.systems.Systems()
	list := make([]*loopEntry, 0, len(systems)+len(l.participants))
	for _, s := range systems {
		e, ok := l.systems[s]
		if !ok {
			e = newLoopEntry(s)
			l.systems[s] = e
		}
		list = append(list, e)
	}
	return append(list, l.participants...)
}

func (l *GameLoop) newFrame(phase Phase, dt float64, events []Event) *UpdateFrame {
	return &UpdateFrame{
		World:     l.world,
		Commands:  l.world.commands,
		DeltaTime: dt,
		Phase:     phase,
		Number:    l.frame,
		Events:    events,
	}
}

// Init runs OnInit on every participant that has not been initialized yet.
func (l *GameLoop) Init() {
	f := l.newFrame(PhaseInit, 0, nil)
	for _, e := range l.dispatchList() {
		l.ensureInit(e, f)
	}
	l.world.commands.Flush(l.world)
}

func (l *GameLoop) ensureInit(e *loopEntry, f *UpdateFrame) {
	if e.initialized {
		return
	}
	e.initialized = true
	l.world.log.WithField("participant", e.stats.name).Debug("initializing")
	e.p.OnInit(f)
}

// Frame runs one frame: OnPreEvent, OnEvent, OnUpdate, OnRender and
// OnPostRender on every participant, flushing commands after each phase.
// Participants that have not seen OnInit get it before their first phase.
func (l *GameLoop) Frame(dt float64) {
	if l.state == Stopped {
		return
	}

	events := l.pending
	l.pending = nil
	l.frame++

	for _, phase := range framePhases {
		if phase == PhaseUpdate && l.state == Paused {
			continue
		}
		l.runPhase(phase, dt, events)
	}

	for _, e := range l.dispatchList() {
		e.stats.record()
	}

	for _, ev := range events {
		if ev.Type == EventQuit {
			l.world.log.Info("quit event received")
			l.Stop()
			break
		}
	}
}

func (l *GameLoop) runPhase(phase Phase, dt float64, events []Event) {
	f := l.newFrame(phase, dt, events)
	for _, e := range l.dispatchList() {
		if !e.initialized {
			l.ensureInit(e, l.newFrame(PhaseInit, 0, nil))
		}
		start := time.Now()
		dispatch(e.p, phase, f)
		e.stats.current += time.Since(start)
	}
	l.world.commands.Flush(l.world)
}

// Run initializes the loop and runs frames at the given interval until ctx is
// cancelled or Stop is called, then shuts down.
func (l *GameLoop) Run(ctx context.Context, interval time.Duration) {
	l.Init()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer l.Shutdown()

	lastTime := time.Now()
	l.world.log.WithField("interval", interval).Info("game loop running")

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			l.Frame(dt)
		}
	}
}

// Shutdown notifies Shutdowner participants in reverse dispatch order and
// tears the world down. It runs once.
func (l *GameLoop) Shutdown() {
	if l.down {
		return
	}
	l.down = true
	l.state = Stopped

	list := l.dispatchList()
	for i := len(list) - 1; i >= 0; i-- {
		if s, ok := list[i].p.(Shutdowner); ok {
			s.OnShutdown(l.world)
		}
	}
	l.participants = nil
	l.world.Teardown()

	l.world.log.WithFields(logrus.Fields{
		"frames": l.frame,
	}).Info("game loop shut down")
}

// GetStats returns timing statistics in dispatch order.
func (l *GameLoop) GetStats() *LoopStats {
	list := l.dispatchList()
	stats := &LoopStats{
		FrameCount:       l.frame,
		ParticipantCount: len(list),
		Participants:     make([]ParticipantStats, 0, len(list)),
	}

	var totalExecs int64
	for _, e := range list {
		internal := &e.stats
		avgDuration := time.Duration(0)
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}

		stats.Participants = append(stats.Participants, ParticipantStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		})
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
