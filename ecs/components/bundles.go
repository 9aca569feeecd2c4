package components

// Bundles group the components commonly spawned together. Pass the result to
// ecs.Spawn.

func PlayerBundle(x, y float64, texture string, size Vec2) []any {
	tex := Texture{Path: texture, Size: size}
	tex.SetDefaults()
	ctrl := Controller{}
	ctrl.SetDefaults()
	body := RigidBody{}
	body.SetDefaults()
	return []any{
		NewTransform(x, y),
		ctrl,
		tex,
		body,
		Collider2D{Shape: Box, Size: size},
	}
}

func CameraBundle(x, y float64, viewport Vec2) []any {
	return []any{
		NewTransform(x, y),
		Camera{Active: true, Zoom: 1, ViewportSize: viewport},
	}
}

func ShapeBundle(x, y float64, kind ColliderShape, size Vec2, c Color) []any {
	return []any{
		NewTransform(x, y),
		Shape{Kind: kind, Size: size, Filled: true, Color: c},
	}
}

func TextBundle(x, y float64, value string, anchor Anchor) []any {
	text := Text{Value: value}
	text.SetDefaults()
	return []any{
		NewTransform(x, y),
		text,
		UIElement{Anchor: anchor, Visible: true},
	}
}
