package components

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Mul(o Vec2) Vec2      { return Vec2{v.X * o.X, v.Y * o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) IsZero() bool         { return v.X == 0 && v.Y == 0 }

// Rotate rotates v by deg degrees counter-clockwise.
func (v Vec2) Rotate(deg float64) Vec2 {
	if deg == 0 {
		return v
	}
	s, c := math.Sincos(deg * math.Pi / 180)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Color is an 8-bit RGBA color. In YAML it is written as "#rrggbb" or
// "#rrggbbaa"; a mapping with r, g, b, a keys is also accepted.
type Color struct {
	R, G, B, A uint8
}

var White = Color{255, 255, 255, 255}

func (c Color) RGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Color) MarshalYAML() (any, error) {
	return c.Hex(), nil
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		var m struct {
			R, G, B uint8
			A       *uint8
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		*c = Color{R: m.R, G: m.G, B: m.B, A: 255}
		if m.A != nil {
			c.A = *m.A
		}
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string or mapping")
	}

	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	var err error
	if c.R, err = parse(0); err != nil {
		return err
	}
	if c.G, err = parse(2); err != nil {
		return err
	}
	if c.B, err = parse(4); err != nil {
		return err
	}
	c.A = 255
	if len(s) == 8 {
		if c.A, err = parse(6); err != nil {
			return err
		}
	}
	return nil
}
