package ecs

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// Scene is a named participant that owns the entities it spawns. Unloading a
// scene destroys every entity it owns.
type Scene interface {
	FrameParticipant
	Identifiable
	// Setup registers the scene's systems and spawns its entities.
	Setup(w *World) error
	Owned() *EntitySet
}

// BaseScene is embedded by scenes. It supplies the name, no-op phase
// callbacks and entity ownership.
type BaseScene struct {
	NopParticipant
	name  string
	owned EntitySet
}

func NewBaseScene(name string) BaseScene {
	return BaseScene{name: name}
}

func (s *BaseScene) Name() string {
	return s.name
}

func (s *BaseScene) Owned() *EntitySet {
	return &s.owned
}

// Own marks e as belonging to the scene.
func (s *BaseScene) Own(e Entity) {
	s.owned.Add(e)
}

// Spawn creates a game object owned by the scene.
func (s *BaseScene) Spawn(w *World, components ...any) (GameObject, error) {
	obj, err := Spawn(w, components...)
	if err != nil {
		return obj, err
	}
	s.owned.Add(obj.Entity())
	return obj, nil
}

// SceneManager registers scenes and keeps exactly one of them loaded.
type SceneManager struct {
	world   *World
	loop    *GameLoop
	scenes  map[string]Scene
	order   []string
	current Scene
	// systems registered by the current scene's Setup
	systems []System
	log     *logrus.Entry
}

// NewSceneManager creates a manager that adds loaded scenes to loop.
func NewSceneManager(loop *GameLoop) *SceneManager {
	m := &SceneManager{
		world:  loop.world,
		loop:   loop,
		scenes: make(map[string]Scene),
		log:    loop.world.log.WithField("subsystem", "scenes"),
	}
	loop.world.OnDestroy(func(e Entity) {
		for _, s := range m.scenes {
			s.Owned().Remove(e)
		}
	})
	return m
}

func (m *SceneManager) Register(s Scene) error {
	if _, ok := m.scenes[s.Name()]; ok {
		return fmt.Errorf("%s: %w", s.Name(), ErrSceneExists)
	}
	m.scenes[s.Name()] = s
	m.order = append(m.order, s.Name())
	return nil
}

// Remove unregisters a scene, unloading it first if it is current.
func (m *SceneManager) Remove(name string) error {
	s, ok := m.scenes[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrSceneNotFound)
	}
	if m.current == s {
		m.Unload()
	}
	delete(m.scenes, name)
	m.order = slices.DeleteFunc(m.order, func(n string) bool { return n == name })
	return nil
}

// Load unloads the current scene, if any, then sets up the named scene and
// adds it to the game loop.
func (m *SceneManager) Load(name string) error {
	s, ok := m.scenes[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrSceneNotFound)
	}
	if m.current != nil {
		m.Unload()
	}

	before := m.world.systems.Systems()
	err := s.Setup(m.world)
	var added []System
	for _, sys := range m.world.systems.Systems() {
		if !slices.Contains(before, sys) {
			added = append(added, sys)
		}
	}

	m.current = s
	m.systems = added
	if err != nil {
		m.Unload()
		return fmt.Errorf("load scene %s: %w", name, err)
	}

	m.loop.AddParticipant(s)
	m.log.WithFields(logrus.Fields{
		"scene":    name,
		"entities": s.Owned().Len(),
		"systems":  len(added),
	}).Info("scene loaded")
	return nil
}

// Switch loads name unless it is already the current scene.
func (m *SceneManager) Switch(name string) error {
	if m.current != nil && m.current.Name() == name {
		return nil
	}
	return m.Load(name)
}

// Reload unloads and loads the current scene again.
func (m *SceneManager) Reload() error {
	if m.current == nil {
		return nil
	}
	return m.Load(m.current.Name())
}

// Unload destroys every entity owned by the current scene and unregisters the
// systems it set up.
func (m *SceneManager) Unload() {
	s := m.current
	if s == nil {
		return
	}
	m.loop.RemoveParticipant(s)

	owned := s.Owned().Snapshot()
	for _, e := range owned {
		if m.world.IsAlive(e) {
			_ = m.world.DestroyEntity(e)
		}
	}
	s.Owned().Clear()

	for i := len(m.systems) - 1; i >= 0; i-- {
		sys := m.systems[i]
		if err := m.world.systems.Unregister(sys); err != nil {
			m.log.WithError(err).Warn("unregister scene system")
		}
		m.loop.RemoveParticipant(sys)
	}
	m.systems = nil
	m.current = nil

	m.log.WithFields(logrus.Fields{
		"scene":    s.Name(),
		"entities": len(owned),
	}).Info("scene unloaded")
}

func (m *SceneManager) Current() Scene {
	return m.current
}

// Scenes returns registered scene names in registration order.
func (m *SceneManager) Scenes() []string {
	return slices.Clone(m.order)
}
