package systems

// InputState is the world singleton holding the current input snapshot. A
// backend fills it during OnPreEvent; systems only read it.
type InputState struct {
	down    map[string]bool
	pressed map[string]bool

	MouseX, MouseY float64
}

// SetKey records the state of key for the current frame.
func (in *InputState) SetKey(key string, down bool) {
	if in.down == nil {
		in.down = make(map[string]bool)
		in.pressed = make(map[string]bool)
	}
	if down && !in.down[key] {
		in.pressed[key] = true
	}
	in.down[key] = down
}

// BeginFrame clears the per-frame press edges.
func (in *InputState) BeginFrame() {
	clear(in.pressed)
}

func (in *InputState) Down(key string) bool {
	return in.down[key]
}

// JustPressed reports whether key went down this frame.
func (in *InputState) JustPressed(key string) bool {
	return in.pressed[key]
}

// AnyDown reports whether any of keys is held.
func (in *InputState) AnyDown(keys ...string) bool {
	for _, k := range keys {
		if in.down[k] {
			return true
		}
	}
	return false
}

// Axis returns -1, 0 or 1 from a pair of key groups.
func (in *InputState) Axis(negative, positive []string) float64 {
	v := 0.0
	if in.AnyDown(negative...) {
		v--
	}
	if in.AnyDown(positive...) {
		v++
	}
	return v
}
