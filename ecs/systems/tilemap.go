package systems

import (
	"math"

	"github.com/kamstrup/intmap"
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
)

// TilemapSystem indexes Tile entities by grid cell so lookups by position
// avoid scanning every tile.
type TilemapSystem struct {
	ecs.SystemBase
	Tiles ecs.View[struct{ *components.Tile }] `ecs:"track"`

	// TileSize is the edge length of a cell in world units.
	TileSize float64

	grid  *intmap.Map[uint64, ecs.Entity]
	cells *intmap.Map[ecs.Entity, uint64]
}

func NewTilemapSystem(tileSize float64) *TilemapSystem {
	return &TilemapSystem{TileSize: tileSize}
}

func (s *TilemapSystem) Name() string { return "TilemapSystem" }

func cellKey(x, y int) uint64 {
	return uint64(uint32(int32(x)))<<32 | uint64(uint32(int32(y)))
}

func (s *TilemapSystem) index() {
	if s.grid == nil {
		s.grid = intmap.New[uint64, ecs.Entity](256)
		s.cells = intmap.New[ecs.Entity, uint64](256)
	}
}

func (s *TilemapSystem) EntityAdded(e ecs.Entity) {
	s.index()
	v, ok := s.Tiles.Get(e)
	if !ok {
		return
	}
	s.place(e, v.Tile.X, v.Tile.Y)
}

func (s *TilemapSystem) EntityRemoved(e ecs.Entity) {
	s.index()
	key, ok := s.cells.Get(e)
	if !ok {
		return
	}
	s.cells.Del(e)
	if owner, ok := s.grid.Get(key); ok && owner == e {
		s.grid.Del(key)
	}
}

func (s *TilemapSystem) place(e ecs.Entity, x, y int) {
	if old, ok := s.cells.Get(e); ok {
		if owner, ok := s.grid.Get(old); ok && owner == e {
			s.grid.Del(old)
		}
	}
	key := cellKey(x, y)
	s.grid.Put(key, e)
	s.cells.Put(e, key)
}

// OnUpdate re-indexes tiles whose grid coordinates were edited in place.
func (s *TilemapSystem) OnUpdate(*ecs.UpdateFrame) {
	s.index()
	for e, v := range s.Tiles.Iter(s.Entities().Slice()) {
		key := cellKey(v.Tile.X, v.Tile.Y)
		if cur, ok := s.cells.Get(e); !ok || cur != key {
			s.place(e, v.Tile.X, v.Tile.Y)
		}
	}
}

// TileAt returns the tile entity occupying grid cell (gx, gy).
func (s *TilemapSystem) TileAt(gx, gy int) (ecs.Entity, bool) {
	if s.grid == nil {
		return 0, false
	}
	return s.grid.Get(cellKey(gx, gy))
}

// CellOf converts a world position into grid coordinates.
func (s *TilemapSystem) CellOf(x, y float64) (int, int) {
	size := s.TileSize
	if size <= 0 {
		size = 1
	}
	return int(math.Floor(x / size)), int(math.Floor(y / size))
}

// SolidAt reports whether the cell containing world position (x, y) holds a
// solid tile.
func (s *TilemapSystem) SolidAt(x, y float64) bool {
	e, ok := s.TileAt(s.CellOf(x, y))
	if !ok {
		return false
	}
	v, ok := s.Tiles.Get(e)
	return ok && v.Tile.Solid
}

// Len is the number of indexed cells.
func (s *TilemapSystem) Len() int {
	if s.grid == nil {
		return 0
	}
	return s.grid.Len()
}
