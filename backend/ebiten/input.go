package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/systems"
)

// Keyboard samples device state by key name.
type Keyboard interface {
	Pressed(key string) bool
	Cursor() (x, y float64)
}

// DefaultKeys are the key names sampled into InputState.
var DefaultKeys = []string{
	"ArrowLeft", "ArrowRight", "ArrowUp", "ArrowDown",
	"A", "D", "W", "S", "Space", "Enter", "Escape", "Tab",
	"F1", "F2", "F3",
}

type ebitenKeyboard struct {
	keys map[string]ebiten.Key
}

func newEbitenKeyboard() *ebitenKeyboard {
	keys := make(map[string]ebiten.Key)
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		keys[k.String()] = k
	}
	return &ebitenKeyboard{keys: keys}
}

func (k *ebitenKeyboard) Pressed(name string) bool {
	key, ok := k.keys[name]
	return ok && ebiten.IsKeyPressed(key)
}

func (k *ebitenKeyboard) Cursor() (float64, float64) {
	x, y := ebiten.CursorPosition()
	return float64(x), float64(y)
}

// InputSystem copies the Keyboard state into the InputState singleton at the
// start of every frame.
type InputSystem struct {
	ecs.NopParticipant
	Keyboard Keyboard
	Keys     []string
}

func NewInputSystem() *InputSystem {
	return &InputSystem{Keyboard: newEbitenKeyboard(), Keys: DefaultKeys}
}

func (s *InputSystem) Name() string { return "InputSystem" }

func (s *InputSystem) OnInit(f *ecs.UpdateFrame) {
	ecs.NewSingleton[systems.InputState](f.World)
}

func (s *InputSystem) OnPreEvent(f *ecs.UpdateFrame) {
	in := ecs.NewSingleton[systems.InputState](f.World).Get()
	in.BeginFrame()
	for _, k := range s.Keys {
		in.SetKey(k, s.Keyboard.Pressed(k))
	}
	in.MouseX, in.MouseY = s.Keyboard.Cursor()
}

// pollEvents turns this tick's key and mouse edges into loop events.
func pollEvents(loop *ecs.GameLoop, keys []ebiten.Key) []ebiten.Key {
	keys = inpututil.AppendJustPressedKeys(keys[:0])
	for _, k := range keys {
		loop.PushEvent(ecs.Event{Type: ecs.EventKeyDown, Key: k.String()})
	}
	keys = inpututil.AppendJustReleasedKeys(keys[:0])
	for _, k := range keys {
		loop.PushEvent(ecs.Event{Type: ecs.EventKeyUp, Key: k.String()})
	}

	x, y := ebiten.CursorPosition()
	for _, b := range []ebiten.MouseButton{ebiten.MouseButtonLeft, ebiten.MouseButtonRight} {
		if inpututil.IsMouseButtonJustPressed(b) {
			loop.PushEvent(ecs.Event{Type: ecs.EventMouseDown, Key: mouseButtonName(b), X: float64(x), Y: float64(y)})
		}
		if inpututil.IsMouseButtonJustReleased(b) {
			loop.PushEvent(ecs.Event{Type: ecs.EventMouseUp, Key: mouseButtonName(b), X: float64(x), Y: float64(y)})
		}
	}
	return keys
}

func mouseButtonName(b ebiten.MouseButton) string {
	if b == ebiten.MouseButtonRight {
		return "MouseRight"
	}
	return "MouseLeft"
}
