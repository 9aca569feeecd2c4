package ecs

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/kamstrup/intmap"
	"github.com/sirupsen/logrus"
)

// System is a FrameParticipant that tracks the entities whose signature
// contains the system's signature. Embed SystemBase to get the entity set.
type System interface {
	FrameParticipant
	Entities() *EntitySet
}

// EntityObserver is implemented by systems that keep per-entity state.
// EntityAdded runs when an entity starts matching the system signature and
// EntityRemoved when it stops matching or is destroyed.
type EntityObserver interface {
	EntityAdded(e Entity)
	EntityRemoved(e Entity)
}

// SystemBase is embedded by systems. It provides no-op phase callbacks and
// the tracked entity set.
type SystemBase struct {
	NopParticipant
	entities EntitySet
}

func (b *SystemBase) Entities() *EntitySet {
	return &b.entities
}

// EntitySet is an insertion-ordered set of entities. Removal swaps the last
// element into the freed slot.
type EntitySet struct {
	dense []Entity
	index *intmap.Map[Entity, int]
}

func (s *EntitySet) Add(e Entity) bool {
	if s.index == nil {
		s.index = intmap.New[Entity, int](64)
	}
	if _, ok := s.index.Get(e); ok {
		return false
	}
	s.index.Put(e, len(s.dense))
	s.dense = append(s.dense, e)
	return true
}

func (s *EntitySet) Remove(e Entity) bool {
	if s.index == nil {
		return false
	}
	idx, ok := s.index.Get(e)
	if !ok {
		return false
	}
	last := len(s.dense) - 1
	moved := s.dense[last]
	s.dense[idx] = moved
	s.index.Put(moved, idx)
	s.dense = s.dense[:last]
	s.index.Del(e)
	return true
}

func (s *EntitySet) Has(e Entity) bool {
	if s.index == nil {
		return false
	}
	_, ok := s.index.Get(e)
	return ok
}

func (s *EntitySet) Len() int {
	return len(s.dense)
}

// Slice returns the tracked entities in set order. Callers must not modify it.
func (s *EntitySet) Slice() []Entity {
	return s.dense
}

// Snapshot returns a copy that is safe to hold across mutations.
func (s *EntitySet) Snapshot() []Entity {
	return slices.Clone(s.dense)
}

func (s *EntitySet) Clear() {
	s.dense = s.dense[:0]
	if s.index != nil {
		s.index.Clear()
	}
}

type systemEntry struct {
	system    System
	typ       reflect.Type
	name      string
	signature Signature
}

// SystemManager owns registered systems, their signatures and their entity sets.
type SystemManager struct {
	entries []*systemEntry
	byType  map[reflect.Type]*systemEntry
	log     *logrus.Entry
}

func NewSystemManager(log *logrus.Entry) *SystemManager {
	return &SystemManager{
		byType: make(map[reflect.Type]*systemEntry),
		log:    log,
	}
}

// Register adds s with an empty signature. Only one system per concrete type
// may be registered.
func (m *SystemManager) Register(s System) error {
	typ := reflect.TypeOf(s)
	if typ == nil || typ.Kind() != reflect.Ptr {
		return fmt.Errorf("%v: %w", typ, ErrSystemNotPointer)
	}
	if _, ok := m.byType[typ]; ok {
		return fmt.Errorf("%s: %w", systemName(s), ErrSystemExists)
	}
	entry := &systemEntry{system: s, typ: typ, name: systemName(s)}
	m.entries = append(m.entries, entry)
	m.byType[typ] = entry

	m.log.WithField("system", entry.name).Debug("registered system")
	return nil
}

// Unregister removes s. Its tracked entities are released without observer callbacks.
func (m *SystemManager) Unregister(s System) error {
	entry, ok := m.byType[reflect.TypeOf(s)]
	if !ok || entry.system != s {
		return fmt.Errorf("%s: %w", systemName(s), ErrSystemNotRegistered)
	}
	delete(m.byType, entry.typ)
	m.entries = slices.DeleteFunc(m.entries, func(e *systemEntry) bool { return e == entry })
	s.Entities().Clear()

	m.log.WithField("system", entry.name).Debug("unregistered system")
	return nil
}

// SetSignature replaces s's signature and re-evaluates every live entity.
func (m *SystemManager) SetSignature(s System, sig Signature, entities *EntityManager) error {
	entry, ok := m.byType[reflect.TypeOf(s)]
	if !ok || entry.system != s {
		return fmt.Errorf("%s: %w", systemName(s), ErrSystemNotRegistered)
	}
	entry.signature = sig
	for e := range entities.Living() {
		esig, _ := entities.Signature(e)
		m.evaluate(entry, e, esig)
	}
	return nil
}

// Signature returns the signature s was given.
func (m *SystemManager) Signature(s System) (Signature, error) {
	entry, ok := m.byType[reflect.TypeOf(s)]
	if !ok || entry.system != s {
		return Signature{}, fmt.Errorf("%s: %w", systemName(s), ErrSystemNotRegistered)
	}
	return entry.signature, nil
}

// EntitySignatureChanged updates every system's set for e's new signature.
func (m *SystemManager) EntitySignatureChanged(e Entity, sig Signature) {
	for _, entry := range m.entries {
		m.evaluate(entry, e, sig)
	}
}

func (m *SystemManager) evaluate(entry *systemEntry, e Entity, sig Signature) {
	set := entry.system.Entities()
	if !entry.signature.Empty() && sig.Contains(entry.signature) {
		if set.Add(e) {
			if o, ok := entry.system.(EntityObserver); ok {
				o.EntityAdded(e)
			}
		}
		return
	}
	if set.Remove(e) {
		if o, ok := entry.system.(EntityObserver); ok {
			o.EntityRemoved(e)
		}
	}
}

// EntityDestroyed removes e from every system's set.
func (m *SystemManager) EntityDestroyed(e Entity) {
	for _, entry := range m.entries {
		if entry.system.Entities().Remove(e) {
			if o, ok := entry.system.(EntityObserver); ok {
				o.EntityRemoved(e)
			}
		}
	}
}

// Systems returns the registered systems in registration order.
func (m *SystemManager) Systems() []System {
	out := make([]System, len(m.entries))
	for i, entry := range m.entries {
		out[i] = entry.system
	}
	return out
}

func (m *SystemManager) lookup(typ reflect.Type) (System, bool) {
	entry, ok := m.byType[typ]
	if !ok {
		return nil, false
	}
	return entry.system, true
}

func systemName(p any) string {
	if n, ok := p.(Identifiable); ok {
		return n.Name()
	}
	typ := reflect.TypeOf(p)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return typ.Name()
}

// UnregisterSystem removes s from w. Its tracked entities are released
// without EntityRemoved callbacks.
func (w *World) UnregisterSystem(s System) error {
	return w.systems.Unregister(s)
}

// SetSignatureFor replaces the signature of the registered system s and
// re-evaluates every live entity against it.
func (w *World) SetSignatureFor(s System, sig Signature) error {
	return w.systems.SetSignature(s, sig, w.entities)
}

// RegisterSystem registers s with w and initializes its View and Singleton
// fields. A View field tagged `ecs:"track"` supplies the system signature.
func RegisterSystem[S System](w *World, s S) (S, error) {
	if err := w.systems.Register(s); err != nil {
		return s, err
	}
	sig, tracked, err := w.initSystemFields(s)
	if err != nil {
		_ = w.systems.Unregister(s)
		return s, fmt.Errorf("register %s: %w", systemName(s), err)
	}
	if tracked {
		if err := w.systems.SetSignature(s, sig, w.entities); err != nil {
			return s, err
		}
	}
	return s, nil
}

// SetSystemSignature sets the signature of the registered system of type S.
func SetSystemSignature[S System](w *World, sig Signature) error {
	s, ok := GetSystem[S](w)
	if !ok {
		return fmt.Errorf("%s: %w", reflect.TypeFor[S](), ErrSystemNotRegistered)
	}
	return w.systems.SetSignature(s, sig, w.entities)
}

// GetSystem returns the registered system of type S.
func GetSystem[S System](w *World) (S, bool) {
	var zero S
	s, ok := w.systems.lookup(reflect.TypeFor[S]())
	if !ok {
		return zero, false
	}
	return s.(S), true
}

type viewInitializer interface {
	initView(w *World) error
	requiredSignature() Signature
}

type singletonInitializer interface {
	initSingleton(w *World)
}

func (w *World) initSystemFields(system System) (Signature, bool, error) {
	var sig Signature
	tracked := false

	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}
	if systemValue.Kind() != reflect.Struct {
		return sig, false, nil
	}

	systemType := systemValue.Type()
	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		typeName := field.Type().Name()
		switch {
		case strings.HasPrefix(typeName, "View["):
			v := field.Addr().Interface().(viewInitializer)
			if err := v.initView(w); err != nil {
				return sig, false, fmt.Errorf("field %s: %w", fieldType.Name, err)
			}
			if fieldType.Tag.Get("ecs") == "track" {
				sig = v.requiredSignature()
				tracked = true
			}
		case strings.HasPrefix(typeName, "Singleton["):
			field.Addr().Interface().(singletonInitializer).initSingleton(w)
		}
	}
	return sig, tracked, nil
}
