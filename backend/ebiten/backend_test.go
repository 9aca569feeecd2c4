package ebiten

import (
	"testing"

	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
	"github.com/plus3/hotbean/ecs/systems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeyboard struct {
	down map[string]bool
	x, y float64
}

func (k *fakeKeyboard) Pressed(key string) bool { return k.down[key] }
func (k *fakeKeyboard) Cursor() (float64, float64) {
	return k.x, k.y
}

func TestInputSystem(t *testing.T) {
	w := ecs.NewWorld()
	loop := ecs.NewGameLoop(w)
	kb := &fakeKeyboard{down: map[string]bool{"Space": true}, x: 10, y: 20}
	loop.AddParticipant(&InputSystem{Keyboard: kb, Keys: DefaultKeys})

	loop.Frame(0)
	in := ecs.NewSingleton[systems.InputState](w).Get()
	require.NotNil(t, in)
	assert.True(t, in.Down("Space"))
	assert.True(t, in.JustPressed("Space"))
	assert.Equal(t, 10.0, in.MouseX)
	assert.Equal(t, 20.0, in.MouseY)

	loop.Frame(0)
	assert.True(t, in.Down("Space"))
	assert.False(t, in.JustPressed("Space"))

	kb.down["Space"] = false
	kb.down["A"] = true
	loop.Frame(0)
	assert.False(t, in.Down("Space"))
	assert.Equal(t, -1.0, in.Axis(systems.KeysLeft, systems.KeysRight))
}

func TestPlacement(t *testing.T) {
	screen := components.Vec2{X: 800, Y: 600}
	tr := components.NewTransform(10, 20)

	pos, zoom := placement(systems.CameraView{}, screen, drawable{Transform2D: &tr})
	assert.Equal(t, components.Vec2{X: 10, Y: 20}, pos)
	assert.Equal(t, 1.0, zoom)

	view := systems.CameraView{Valid: true, Center: components.Vec2{X: 10, Y: 20}, Zoom: 2, Viewport: screen}
	pos, zoom = placement(view, screen, drawable{Transform2D: &tr})
	assert.Equal(t, components.Vec2{X: 400, Y: 300}, pos)
	assert.Equal(t, 2.0, zoom)

	ui := &components.UIElement{Anchor: components.AnchorBottomRight, Visible: true}
	pos, zoom = placement(view, screen, drawable{Transform2D: &tr, UI: ui})
	assert.Equal(t, components.Vec2{X: 810, Y: 620}, pos)
	assert.Equal(t, 1.0, zoom)

	assert.Equal(t, components.Vec2{X: 400, Y: 300}, anchorPoint(components.AnchorCenter, screen))
	assert.Equal(t, components.Vec2{X: 800}, anchorPoint(components.AnchorTopRight, screen))
	assert.Equal(t, components.Vec2{}, anchorPoint(components.AnchorTopLeft, screen))
}

func TestDrawOrder(t *testing.T) {
	front := components.NewTransform(0, 0)
	front.Layer = 2
	back := components.NewTransform(0, 0)
	hud := components.NewTransform(0, 0)
	hud.Layer = -5

	items := []drawItem{
		{e: 3, d: drawable{Transform2D: &hud, UI: &components.UIElement{Visible: true}}},
		{e: 1, d: drawable{Transform2D: &front}},
		{e: 2, d: drawable{Transform2D: &back}},
		{e: 0, d: drawable{Transform2D: &back}},
	}
	sortDrawItems(items)

	var order []ecs.Entity
	for _, it := range items {
		order = append(order, it.e)
	}
	assert.Equal(t, []ecs.Entity{0, 2, 1, 3}, order)
}

func TestWorldScale(t *testing.T) {
	tr := components.Transform2D{}
	assert.Equal(t, components.Vec2{X: 1, Y: 1}, worldScale(&tr))

	tr.Scale = components.Vec2{X: 2, Y: 3}
	assert.Equal(t, components.Vec2{X: 2, Y: 3}, worldScale(&tr))

	tr.SetParent(1)
	tr.WorldScale = components.Vec2{X: 4, Y: 4}
	assert.Equal(t, components.Vec2{X: 4, Y: 4}, worldScale(&tr))
}
