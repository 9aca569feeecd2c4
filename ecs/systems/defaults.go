package systems

import (
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
)

// Defaults configures RegisterDefaults.
type Defaults struct {
	Gravity   components.Vec2
	TileSize  float64
	ScriptDir string
	Viewport  components.Vec2
	Audio     AudioPlayer
}

// RegisterDefaults registers every default system with w in update order:
// input-driven movement and scripts first, then physics and collision, then
// the transform hierarchy and camera that rendering reads.
func RegisterDefaults(w *ecs.World, d Defaults) error {
	tileSize := d.TileSize
	if tileSize <= 0 {
		tileSize = 32
	}
	all := []ecs.System{
		&PlayerControllerSystem{},
		&ScriptSystem{BaseDir: d.ScriptDir},
		NewPhysicsSystem(d.Gravity),
		&CollisionSystem{},
		NewTilemapSystem(tileSize),
		&TransformSystem{},
		&CameraSystem{DefaultViewport: d.Viewport},
		NewAudioSystem(d.Audio),
	}
	for _, s := range all {
		if _, err := ecs.RegisterSystem(w, s); err != nil {
			return err
		}
	}
	return nil
}
