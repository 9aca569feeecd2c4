// Package components defines the engine's default component types.
//
// Every type is plain data with yaml tags so scenes can be stored by
// component name. Types implementing Defaulter get their defaults applied
// before YAML is decoded into them.
package components

import (
	"fmt"

	"github.com/plus3/hotbean/ecs"
	"gopkg.in/yaml.v3"
)

// Defaulter is implemented by components whose zero value is not a useful default.
type Defaulter interface {
	SetDefaults()
}

// Transform2D places an entity in the world. Position, Rotation and Scale
// are relative to Parent when HasParent is set. The World* fields are
// computed by the transform system.
type Transform2D struct {
	Position Vec2    `yaml:"position"`
	Rotation float64 `yaml:"rotation"` // degrees
	Scale    Vec2    `yaml:"scale"`
	Layer    int     `yaml:"layer"`

	Parent    ecs.Entity `yaml:"-"`
	HasParent bool       `yaml:"-"`

	WorldPosition Vec2    `yaml:"-"`
	WorldRotation float64 `yaml:"-"`
	WorldScale    Vec2    `yaml:"-"`
}

func (t *Transform2D) SetDefaults() {
	t.Scale = Vec2{1, 1}
}

// NewTransform returns a transform at (x, y) with unit scale.
func NewTransform(x, y float64) Transform2D {
	t := Transform2D{Position: Vec2{x, y}}
	t.SetDefaults()
	t.WorldPosition = t.Position
	t.WorldScale = t.Scale
	return t
}

// World returns the world-space position: WorldPosition for children,
// Position for roots.
func (t *Transform2D) World() Vec2 {
	if t.HasParent {
		return t.WorldPosition
	}
	return t.Position
}

// SetParent attaches t to parent.
func (t *Transform2D) SetParent(parent ecs.Entity) {
	t.Parent = parent
	t.HasParent = true
}

func (t *Transform2D) ClearParent() {
	t.Parent = 0
	t.HasParent = false
}

// BodyType selects how the physics system treats a rigid body.
type BodyType int

const (
	Dynamic BodyType = iota
	Kinematic
	Static
)

var bodyTypeNames = map[BodyType]string{Dynamic: "dynamic", Kinematic: "kinematic", Static: "static"}

func (b BodyType) String() string { return bodyTypeNames[b] }

func (b BodyType) MarshalYAML() (any, error) { return b.String(), nil }

func (b *BodyType) UnmarshalYAML(value *yaml.Node) error {
	for k, name := range bodyTypeNames {
		if name == value.Value {
			*b = k
			return nil
		}
	}
	return fmt.Errorf("unknown body type %q", value.Value)
}

// RigidBody holds the physical state integrated by the physics system.
type RigidBody struct {
	Type         BodyType `yaml:"type"`
	Mass         float64  `yaml:"mass"`
	Velocity     Vec2     `yaml:"velocity"`
	Acceleration Vec2     `yaml:"acceleration"`
	GravityScale float64  `yaml:"gravity_scale"`
	Grounded     bool     `yaml:"-"`
}

func (r *RigidBody) SetDefaults() {
	r.Mass = 1
	r.GravityScale = 1
}

// ColliderShape is the geometry of a Collider2D.
type ColliderShape int

const (
	Box ColliderShape = iota
	Circle
)

var shapeNames = map[ColliderShape]string{Box: "box", Circle: "circle"}

func (s ColliderShape) String() string { return shapeNames[s] }

func (s ColliderShape) MarshalYAML() (any, error) { return s.String(), nil }

func (s *ColliderShape) UnmarshalYAML(value *yaml.Node) error {
	for k, name := range shapeNames {
		if name == value.Value {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown shape %q", value.Value)
}

// Collider2D is an axis-aligned collision volume centred on the transform
// plus Offset. Circles use Size.X as the diameter.
type Collider2D struct {
	Shape     ColliderShape `yaml:"shape"`
	Size      Vec2          `yaml:"size"`
	Offset    Vec2          `yaml:"offset"`
	IsTrigger bool          `yaml:"is_trigger"`
}

// Texture draws an image file at the transform.
type Texture struct {
	Path string `yaml:"path"`
	Size Vec2   `yaml:"size"`
	Tint Color  `yaml:"tint"`
}

func (t *Texture) SetDefaults() {
	t.Tint = White
}

// Shape draws a primitive at the transform.
type Shape struct {
	Kind   ColliderShape `yaml:"kind"`
	Size   Vec2          `yaml:"size"`
	Filled bool          `yaml:"filled"`
	Color  Color         `yaml:"color"`
}

func (s *Shape) SetDefaults() {
	s.Color = White
}

// AudioSource plays a sound file. Playing is runtime state.
type AudioSource struct {
	Path        string  `yaml:"path"`
	Volume      float64 `yaml:"volume"`
	Loop        bool    `yaml:"loop"`
	PlayOnStart bool    `yaml:"play_on_start"`
	Playing     bool    `yaml:"-"`
}

func (a *AudioSource) SetDefaults() {
	a.Volume = 1
}

// Controller marks an entity as driven by player input.
type Controller struct {
	Controllable bool    `yaml:"controllable"`
	Speed        float64 `yaml:"speed"`
	JumpSpeed    float64 `yaml:"jump_speed"`
}

func (c *Controller) SetDefaults() {
	c.Controllable = true
	c.Speed = 200
}

// Text renders a string at the transform.
type Text struct {
	Value string  `yaml:"value"`
	Size  float64 `yaml:"size"`
	Color Color   `yaml:"color"`
}

func (t *Text) SetDefaults() {
	t.Size = 1
	t.Color = White
}

// Anchor pins a UI element to a screen corner or the centre.
type Anchor string

const (
	AnchorTopLeft     Anchor = "top_left"
	AnchorTopRight    Anchor = "top_right"
	AnchorCenter      Anchor = "center"
	AnchorBottomLeft  Anchor = "bottom_left"
	AnchorBottomRight Anchor = "bottom_right"
)

// UIElement positions an entity in screen space instead of world space.
type UIElement struct {
	Anchor  Anchor `yaml:"anchor"`
	Visible bool   `yaml:"visible"`
}

func (u *UIElement) SetDefaults() {
	u.Anchor = AnchorTopLeft
	u.Visible = true
}

// Tile is one cell of a tile map in grid coordinates.
type Tile struct {
	X     int  `yaml:"x"`
	Y     int  `yaml:"y"`
	ID    int  `yaml:"id"`
	Solid bool `yaml:"solid"`
}

// Camera defines a view onto the world.
type Camera struct {
	ID               int     `yaml:"id"`
	Active           bool    `yaml:"active"`
	Zoom             float64 `yaml:"zoom"`
	ViewportPosition Vec2    `yaml:"viewport_position"`
	ViewportSize     Vec2    `yaml:"viewport_size"`
}

func (c *Camera) SetDefaults() {
	c.Zoom = 1
}

// Name labels an entity for tools and scripts.
type Name struct {
	Value string `yaml:"value"`
}

// Script attaches a tengo script run by the script system every update.
type Script struct {
	Source string `yaml:"source"`
	Path   string `yaml:"path"`
}

// RegisterDefaults registers every default component type with w in a fixed
// order, so component ids are stable across runs.
func RegisterDefaults(w *ecs.World) error {
	register := []func(*ecs.World) (ecs.ComponentType, error){
		ecs.RegisterComponent[Transform2D],
		ecs.RegisterComponent[RigidBody],
		ecs.RegisterComponent[Collider2D],
		ecs.RegisterComponent[Texture],
		ecs.RegisterComponent[Shape],
		ecs.RegisterComponent[AudioSource],
		ecs.RegisterComponent[Controller],
		ecs.RegisterComponent[Text],
		ecs.RegisterComponent[UIElement],
		ecs.RegisterComponent[Tile],
		ecs.RegisterComponent[Camera],
		ecs.RegisterComponent[Name],
		ecs.RegisterComponent[Script],
	}
	for _, r := range register {
		if _, err := r(w); err != nil {
			return err
		}
	}
	return nil
}
