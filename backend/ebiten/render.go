package ebiten

import (
	"cmp"
	"image/color"
	_ "image/png"
	"math"
	"path/filepath"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
	"github.com/plus3/hotbean/ecs/systems"
	"golang.org/x/image/font/basicfont"
)

type drawable struct {
	*components.Transform2D
	Shape   *components.Shape     `ecs:"optional"`
	Texture *components.Texture   `ecs:"optional"`
	Text    *components.Text      `ecs:"optional"`
	UI      *components.UIElement `ecs:"optional"`
}

type drawItem struct {
	e ecs.Entity
	d drawable
}

// RenderSystem draws shapes, textures and text onto Target during OnRender.
// World-space entities go through the active camera; UIElement entities are
// placed relative to their screen anchor.
type RenderSystem struct {
	ecs.SystemBase
	Drawables ecs.View[drawable] `ecs:"track"`
	Camera    ecs.Singleton[systems.CameraView]

	Target     *ebiten.Image
	Background color.Color
	AssetsDir  string

	face     text.Face
	textures map[string]*ebiten.Image
	items    []drawItem
}

func NewRenderSystem(assetsDir string) *RenderSystem {
	return &RenderSystem{
		AssetsDir:  assetsDir,
		Background: color.NRGBA{R: 0x20, G: 0x20, B: 0x28, A: 0xff},
	}
}

func (s *RenderSystem) Name() string { return "RenderSystem" }

func (s *RenderSystem) OnInit(*ecs.UpdateFrame) {
	s.face = text.NewGoXFace(basicfont.Face7x13)
	s.textures = make(map[string]*ebiten.Image)
}

func (s *RenderSystem) OnRender(f *ecs.UpdateFrame) {
	if s.Target == nil {
		return
	}
	s.Target.Fill(s.Background)

	view := systems.CameraView{}
	if v := s.Camera.Get(); v != nil {
		view = *v
	}
	bounds := s.Target.Bounds()
	screen := components.Vec2{X: float64(bounds.Dx()), Y: float64(bounds.Dy())}

	s.items = s.items[:0]
	for e, d := range s.Drawables.Iter(s.Entities().Slice()) {
		if d.Shape == nil && d.Texture == nil && d.Text == nil {
			continue
		}
		if d.UI != nil && !d.UI.Visible {
			continue
		}
		s.items = append(s.items, drawItem{e: e, d: d})
	}
	sortDrawItems(s.items)

	for _, it := range s.items {
		pos, zoom := placement(view, screen, it.d)
		switch {
		case it.d.Texture != nil:
			s.drawTexture(f, it.d, pos, zoom)
		case it.d.Shape != nil:
			drawShape(s.Target, it.d.Shape, it.d.Transform2D, pos, zoom)
		}
		if it.d.Text != nil {
			s.drawText(it.d.Text, pos, zoom)
		}
	}
}

// sortDrawItems orders by layer, world entities before UI, then entity id.
func sortDrawItems(items []drawItem) {
	slices.SortStableFunc(items, func(a, b drawItem) int {
		au, bu := a.d.UI != nil, b.d.UI != nil
		if au != bu {
			if au {
				return 1
			}
			return -1
		}
		if c := cmp.Compare(a.d.Transform2D.Layer, b.d.Transform2D.Layer); c != 0 {
			return c
		}
		return cmp.Compare(a.e, b.e)
	})
}

// placement returns the screen position and scale of d.
func placement(view systems.CameraView, screen components.Vec2, d drawable) (components.Vec2, float64) {
	p := d.Transform2D.World()
	if d.UI != nil {
		return anchorPoint(d.UI.Anchor, screen).Add(p), 1
	}
	if !view.Valid {
		return p, 1
	}
	return view.WorldToScreen(p), view.Zoom
}

func anchorPoint(a components.Anchor, screen components.Vec2) components.Vec2 {
	switch a {
	case components.AnchorTopRight:
		return components.Vec2{X: screen.X}
	case components.AnchorCenter:
		return screen.Scale(0.5)
	case components.AnchorBottomLeft:
		return components.Vec2{Y: screen.Y}
	case components.AnchorBottomRight:
		return screen
	}
	return components.Vec2{}
}

func worldScale(t *components.Transform2D) components.Vec2 {
	if t.HasParent && !t.WorldScale.IsZero() {
		return t.WorldScale
	}
	if t.Scale.IsZero() {
		return components.Vec2{X: 1, Y: 1}
	}
	return t.Scale
}

func drawShape(dst *ebiten.Image, sh *components.Shape, t *components.Transform2D, pos components.Vec2, zoom float64) {
	size := sh.Size.Mul(worldScale(t)).Scale(zoom)
	clr := sh.Color.RGBA()
	x, y := float32(pos.X), float32(pos.Y)
	w, h := float32(size.X), float32(size.Y)

	switch sh.Kind {
	case components.Circle:
		if sh.Filled {
			vector.DrawFilledCircle(dst, x, y, w/2, clr, true)
		} else {
			vector.StrokeCircle(dst, x, y, w/2, 1, clr, true)
		}
	default:
		if sh.Filled {
			vector.DrawFilledRect(dst, x-w/2, y-h/2, w, h, clr, false)
		} else {
			vector.StrokeRect(dst, x-w/2, y-h/2, w, h, 1, clr, false)
		}
	}
}

func (s *RenderSystem) texture(f *ecs.UpdateFrame, path string) *ebiten.Image {
	if img, ok := s.textures[path]; ok {
		return img
	}
	full := path
	if !filepath.IsAbs(full) && s.AssetsDir != "" {
		full = filepath.Join(s.AssetsDir, path)
	}
	img, _, err := ebitenutil.NewImageFromFile(full)
	if err != nil {
		f.World.Logger().WithError(err).WithField("path", full).Warn("texture load failed")
	}
	// Failed loads are cached as nil so the file is not retried every frame.
	s.textures[path] = img
	return img
}

func (s *RenderSystem) drawTexture(f *ecs.UpdateFrame, d drawable, pos components.Vec2, zoom float64) {
	img := s.texture(f, d.Texture.Path)
	if img == nil {
		return
	}
	b := img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	size := d.Texture.Size
	if size.IsZero() {
		size = components.Vec2{X: iw, Y: ih}
	}
	scale := size.Mul(worldScale(d.Transform2D)).Scale(zoom)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-iw/2, -ih/2)
	op.GeoM.Scale(scale.X/iw, scale.Y/ih)
	rot := d.Transform2D.Rotation
	if d.Transform2D.HasParent {
		rot = d.Transform2D.WorldRotation
	}
	op.GeoM.Rotate(rot * math.Pi / 180)
	op.GeoM.Translate(pos.X, pos.Y)
	op.ColorScale.ScaleWithColor(d.Texture.Tint.RGBA())
	s.Target.DrawImage(img, op)
}

func (s *RenderSystem) drawText(t *components.Text, pos components.Vec2, zoom float64) {
	size := t.Size
	if size <= 0 {
		size = 1
	}
	op := &text.DrawOptions{}
	op.GeoM.Scale(size*zoom, size*zoom)
	op.GeoM.Translate(pos.X, pos.Y)
	op.ColorScale.ScaleWithColor(t.Color.RGBA())
	text.Draw(s.Target, t.Value, s.face, op)
}

// OnShutdown releases cached textures.
func (s *RenderSystem) OnShutdown(*ecs.World) {
	for _, img := range s.textures {
		if img != nil {
			img.Deallocate()
		}
	}
	clear(s.textures)
}
