package systems

import (
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
)

// AudioPlayer is the backend that actually produces sound.
type AudioPlayer interface {
	Play(e ecs.Entity, src *components.AudioSource) error
	Stop(e ecs.Entity)
}

type nopPlayer struct{}

func (nopPlayer) Play(ecs.Entity, *components.AudioSource) error { return nil }
func (nopPlayer) Stop(ecs.Entity)                                {}

type audioRequest struct {
	e    ecs.Entity
	stop bool
}

// AudioSystem starts and stops AudioSource entities through an AudioPlayer.
// Sources with PlayOnStart begin when they are first tracked; others are
// driven by Play and Stop. Requests are applied during OnUpdate.
type AudioSystem struct {
	ecs.SystemBase
	Sources ecs.View[struct{ *components.AudioSource }] `ecs:"track"`

	Player AudioPlayer

	pending []audioRequest
}

func NewAudioSystem(player AudioPlayer) *AudioSystem {
	return &AudioSystem{Player: player}
}

func (s *AudioSystem) Name() string { return "AudioSystem" }

func (s *AudioSystem) player() AudioPlayer {
	if s.Player == nil {
		return nopPlayer{}
	}
	return s.Player
}

func (s *AudioSystem) EntityAdded(e ecs.Entity) {
	if v, ok := s.Sources.Get(e); ok && v.AudioSource.PlayOnStart {
		s.Play(e)
	}
}

func (s *AudioSystem) EntityRemoved(e ecs.Entity) {
	s.player().Stop(e)
}

// Play queues e to start playing on the next update.
func (s *AudioSystem) Play(e ecs.Entity) {
	s.pending = append(s.pending, audioRequest{e: e})
}

// Stop queues e to stop on the next update.
func (s *AudioSystem) Stop(e ecs.Entity) {
	s.pending = append(s.pending, audioRequest{e: e, stop: true})
}

func (s *AudioSystem) OnUpdate(f *ecs.UpdateFrame) {
	if len(s.pending) == 0 {
		return
	}
	requests := s.pending
	s.pending = nil

	p := s.player()
	for _, r := range requests {
		v, ok := s.Sources.Get(r.e)
		if !ok || !s.Entities().Has(r.e) {
			continue
		}
		src := v.AudioSource
		if r.stop {
			p.Stop(r.e)
			src.Playing = false
			continue
		}
		if err := p.Play(r.e, src); err != nil {
			f.World.Logger().WithError(err).WithField("path", src.Path).Warn("audio play failed")
			continue
		}
		src.Playing = true
	}
}

func (s *AudioSystem) OnShutdown(*ecs.World) {
	p := s.player()
	for _, e := range s.Entities().Slice() {
		p.Stop(e)
	}
}
