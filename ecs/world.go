package ecs

import (
	"errors"
	"io"
	"iter"
	"reflect"

	"github.com/sirupsen/logrus"
)

// World ties the entity, component and system managers together. All
// structural changes go through it so that signatures, component sets and
// system entity sets stay consistent.
type World struct {
	entities   *EntityManager
	components *ComponentManager
	systems    *SystemManager
	commands   *Commands
	singletons map[reflect.Type]any

	destroyHooks []func(Entity)

	log    *logrus.Entry
	strict bool
}

type worldOptions struct {
	maxEntities int
	logger      *logrus.Entry
	strict      bool
}

// Option configures a World.
type Option func(*worldOptions)

// WithMaxEntities sets the number of entities that may be alive at once.
func WithMaxEntities(n int) Option {
	return func(o *worldOptions) { o.maxEntities = n }
}

// WithLogger routes world diagnostics to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *worldOptions) { o.logger = l.WithField("component", "ecs") }
}

// WithStrict makes operations on invalid entities panic instead of returning
// ErrInvalidEntity.
func WithStrict(strict bool) Option {
	return func(o *worldOptions) { o.strict = strict }
}

// NewWorld creates an empty world.
func NewWorld(opts ...Option) *World {
	o := worldOptions{maxEntities: DefaultMaxEntities}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.logger = l.WithField("component", "ecs")
	}

	entities := NewEntityManager(o.maxEntities)
	return &World{
		entities:   entities,
		components: NewComponentManager(entities, o.logger),
		systems:    NewSystemManager(o.logger),
		commands:   newCommands(),
		singletons: make(map[reflect.Type]any),
		log:        o.logger,
		strict:     o.strict,
	}
}

func (w *World) Logger() *logrus.Entry {
	return w.log
}

// Commands returns the deferred command buffer flushed by the GameLoop after each phase.
func (w *World) Commands() *Commands {
	return w.commands
}

func (w *World) EntityManager() *EntityManager {
	return w.entities
}

func (w *World) ComponentManager() *ComponentManager {
	return w.components
}

func (w *World) SystemManager() *SystemManager {
	return w.systems
}

// invalid applies the invalid entity policy to err.
func (w *World) invalid(err error) error {
	if err == nil || !errors.Is(err, ErrInvalidEntity) {
		return err
	}
	if w.strict {
		panic(err)
	}
	w.log.WithError(err).Warn("invalid entity")
	return err
}

func (w *World) CreateEntity() (Entity, error) {
	e, err := w.entities.CreateEntity()
	if err != nil {
		return 0, err
	}
	w.log.WithField("entity", e).Trace("created entity")
	return e, nil
}

// DestroyEntity clears e's signature, drops its components and removes it
// from every system.
func (w *World) DestroyEntity(e Entity) error {
	if err := w.entities.DestroyEntity(e); err != nil {
		return w.invalid(err)
	}
	w.components.EntityDestroyed(e)
	w.systems.EntityDestroyed(e)
	for _, hook := range w.destroyHooks {
		hook(e)
	}
	w.log.WithField("entity", e).Trace("destroyed entity")
	return nil
}

// OnDestroy registers fn to run after an entity is destroyed.
func (w *World) OnDestroy(fn func(Entity)) {
	w.destroyHooks = append(w.destroyHooks, fn)
}

// DestroyAllEntities destroys every live entity.
func (w *World) DestroyAllEntities() {
	for _, e := range w.LivingEntities() {
		_ = w.DestroyEntity(e)
	}
}

func (w *World) IsAlive(e Entity) bool {
	return w.entities.IsAlive(e)
}

func (w *World) Signature(e Entity) (Signature, error) {
	sig, err := w.entities.Signature(e)
	return sig, w.invalid(err)
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return w.entities.LivingCount()
}

func (w *World) MaxEntities() int {
	return w.entities.MaxEntities()
}

// Entities iterates live entities in id order.
func (w *World) Entities() iter.Seq[Entity] {
	return w.entities.Living()
}

// LivingEntities returns a snapshot of the live entities.
func (w *World) LivingEntities() []Entity {
	out := make([]Entity, 0, w.entities.LivingCount())
	for e := range w.entities.Living() {
		out = append(out, e)
	}
	return out
}

func (w *World) signatureChanged(e Entity) {
	sig, _ := w.entities.Signature(e)
	w.systems.EntitySignatureChanged(e, sig)
}

// AddAny attaches v, a value or pointer of a registered component type, to e.
func (w *World) AddAny(e Entity, v any) error {
	if _, err := w.components.AddAny(e, v); err != nil {
		return w.invalid(err)
	}
	w.signatureChanged(e)
	return nil
}

// RemoveType removes e's component of the given Go type.
func (w *World) RemoveType(e Entity, typ reflect.Type) error {
	t, ok := w.components.TypeOf(typ)
	if !ok {
		return ComponentError{Entity: e, Component: typ.String(), Err: ErrComponentNotRegistered}
	}
	if err := w.components.Remove(e, t); err != nil {
		return w.invalid(err)
	}
	w.signatureChanged(e)
	return nil
}

// Components returns pointers to all components held by e.
func (w *World) Components(e Entity) []any {
	if !w.entities.IsAlive(e) {
		return nil
	}
	return w.components.Components(e)
}

// RegisterComponent assigns T a component type id. It is idempotent.
func RegisterComponent[T any](w *World) (ComponentType, error) {
	return RegisterComponentType[T](w.components)
}

// ComponentTypeOf returns the id of the registered component type T.
func ComponentTypeOf[T any](w *World) (ComponentType, error) {
	t, ok := ComponentTypeFor[T](w.components)
	if !ok {
		return 0, ComponentError{Component: componentName[T](), Err: ErrComponentNotRegistered}
	}
	return t, nil
}

// SignatureOf builds a signature from the given Go component types.
func (w *World) SignatureOf(types ...reflect.Type) (Signature, error) {
	var sig Signature
	for _, typ := range types {
		t, ok := w.components.TypeOf(typ)
		if !ok {
			return Signature{}, ComponentError{Component: typ.String(), Err: ErrComponentNotRegistered}
		}
		sig.Set(t)
	}
	return sig, nil
}

// AddComponent attaches v to e, registering T on first use, and notifies
// systems of the signature change. On error nothing changes.
func AddComponent[T any](w *World, e Entity, v T) error {
	if !w.entities.IsAlive(e) {
		return w.invalid(EntityError{Entity: e, Op: "add component"})
	}
	if _, err := RegisterComponentType[T](w.components); err != nil {
		return err
	}
	if _, err := AddComponentTo(w.components, e, v); err != nil {
		return w.invalid(err)
	}
	w.signatureChanged(e)
	return nil
}

// RemoveComponent detaches e's T component and notifies systems.
func RemoveComponent[T any](w *World, e Entity) error {
	t, err := ComponentTypeOf[T](w)
	if err != nil {
		return err
	}
	if err := w.components.Remove(e, t); err != nil {
		return w.invalid(err)
	}
	w.signatureChanged(e)
	return nil
}

// GetComponent returns a pointer to e's T component. The pointer is valid
// until the next structural change to T's set.
func GetComponent[T any](w *World, e Entity) (*T, error) {
	v, err := GetComponentFrom[T](w.components, e)
	return v, w.invalid(err)
}

// HasComponent reports whether e holds a T component.
func HasComponent[T any](w *World, e Entity) bool {
	t, ok := ComponentTypeFor[T](w.components)
	return ok && w.entities.IsAlive(e) && w.components.Has(e, t)
}

// Each iterates every (entity, *T) pair in T's dense order.
func Each[T any](w *World) iter.Seq2[Entity, *T] {
	set, _, err := SetFor[T](w.components)
	if err != nil {
		return func(func(Entity, *T) bool) {}
	}
	return set.All()
}

// Teardown releases systems, then component data, then entities.
func (w *World) Teardown() {
	systems := w.systems.Systems()
	for i := len(systems) - 1; i >= 0; i-- {
		_ = w.systems.Unregister(systems[i])
	}
	w.components.clear()
	for _, e := range w.LivingEntities() {
		_ = w.entities.DestroyEntity(e)
	}
	w.commands.reset()
	w.log.Debug("world torn down")
}
