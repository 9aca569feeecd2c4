package systems

import (
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
)

// CameraView is the world singleton describing the active camera.
type CameraView struct {
	Entity   ecs.Entity
	Valid    bool
	Center   components.Vec2
	Zoom     float64
	Viewport components.Vec2
	Offset   components.Vec2
}

// WorldToScreen maps a world position into screen pixels.
func (v CameraView) WorldToScreen(p components.Vec2) components.Vec2 {
	if !v.Valid {
		return p
	}
	return p.Sub(v.Center).Scale(v.Zoom).Add(v.Viewport.Scale(0.5)).Add(v.Offset)
}

// ScreenToWorld is the inverse of WorldToScreen.
func (v CameraView) ScreenToWorld(p components.Vec2) components.Vec2 {
	if !v.Valid || v.Zoom == 0 {
		return p
	}
	return p.Sub(v.Offset).Sub(v.Viewport.Scale(0.5)).Scale(1 / v.Zoom).Add(v.Center)
}

// CameraSystem publishes the active camera as the CameraView singleton. The
// active camera with the lowest ID wins.
type CameraSystem struct {
	ecs.SystemBase
	Cameras ecs.View[struct {
		*components.Transform2D
		*components.Camera
	}] `ecs:"track"`
	View ecs.Singleton[CameraView]

	// DefaultViewport is used when a camera leaves ViewportSize empty.
	DefaultViewport components.Vec2
}

func (s *CameraSystem) Name() string { return "CameraSystem" }

func (s *CameraSystem) OnInit(f *ecs.UpdateFrame) {
	ecs.NewSingleton[CameraView](f.World)
	s.publish()
}

func (s *CameraSystem) OnUpdate(*ecs.UpdateFrame) {
	s.publish()
}

func (s *CameraSystem) publish() {
	out := s.View.Get()
	if out == nil {
		return
	}

	*out = CameraView{}
	bestID := 0
	for e, c := range s.Cameras.Iter(s.Entities().Slice()) {
		if !c.Camera.Active || (out.Valid && c.Camera.ID >= bestID) {
			continue
		}
		bestID = c.Camera.ID
		viewport := c.Camera.ViewportSize
		if viewport.IsZero() {
			viewport = s.DefaultViewport
		}
		zoom := c.Camera.Zoom
		if zoom <= 0 {
			zoom = 1
		}
		*out = CameraView{
			Entity:   e,
			Valid:    true,
			Center:   c.Transform2D.World(),
			Zoom:     zoom,
			Viewport: viewport,
			Offset:   c.Camera.ViewportPosition,
		}
	}
}
