package ecs

import (
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"
)

// Named lets a component type choose the name it is registered and
// serialized under. Without it the Go type name is used.
type Named interface {
	ComponentName() string
}

// ComponentManager owns one SparseSet per registered component type and keeps
// entity signatures in sync with the sets.
type ComponentManager struct {
	entities *EntityManager
	sets     []componentSet
	names    []string
	byType   map[reflect.Type]ComponentType
	byName   map[string]ComponentType
	capacity int
	log      *logrus.Entry
}

// NewComponentManager creates a component manager whose sets hold up to
// entities.MaxEntities() values each.
func NewComponentManager(entities *EntityManager, log *logrus.Entry) *ComponentManager {
	return &ComponentManager{
		entities: entities,
		byType:   make(map[reflect.Type]ComponentType),
		byName:   make(map[string]ComponentType),
		capacity: entities.MaxEntities(),
		log:      log,
	}
}

// RegisterComponentType assigns T the next free type id. Registering the same
// type twice returns the existing id.
func RegisterComponentType[T any](cm *ComponentManager) (ComponentType, error) {
	typ := reflect.TypeFor[T]()
	if t, ok := cm.byType[typ]; ok {
		return t, nil
	}
	return cm.register(typ, componentName[T](), func(capacity int) componentSet {
		return NewSparseSet[T](capacity)
	})
}

func (cm *ComponentManager) register(typ reflect.Type, name string, newSet func(int) componentSet) (ComponentType, error) {
	if len(cm.sets) >= MaxComponents {
		return 0, fmt.Errorf("register component %s: %d types registered: %w", name, len(cm.sets), ErrCapacityExceeded)
	}
	if _, taken := cm.byName[name]; taken {
		return 0, fmt.Errorf("register component %s: name already used by another type", name)
	}

	t := ComponentType(len(cm.sets))
	cm.sets = append(cm.sets, newSet(cm.capacity))
	cm.names = append(cm.names, name)
	cm.byType[typ] = t
	cm.byName[name] = t

	cm.log.WithFields(logrus.Fields{
		"component": name,
		"type_id":   t,
	}).Debug("registered component")
	return t, nil
}

func componentName[T any]() string {
	var zero T
	if n, ok := any(zero).(Named); ok {
		if name := n.ComponentName(); name != "" {
			return name
		}
	}
	typ := reflect.TypeFor[T]()
	if typ.Name() != "" {
		return typ.Name()
	}
	return typ.String()
}

// ComponentTypeFor returns the id assigned to T.
func ComponentTypeFor[T any](cm *ComponentManager) (ComponentType, bool) {
	t, ok := cm.byType[reflect.TypeFor[T]()]
	return t, ok
}

// SetFor returns the typed SparseSet backing T.
func SetFor[T any](cm *ComponentManager) (*SparseSet[T], ComponentType, error) {
	t, ok := ComponentTypeFor[T](cm)
	if !ok {
		return nil, 0, fmt.Errorf("%s: %w", componentName[T](), ErrComponentNotRegistered)
	}
	return cm.sets[t].(*SparseSet[T]), t, nil
}

// AddComponentTo stores v for e and sets the T bit of e's signature.
func AddComponentTo[T any](cm *ComponentManager, e Entity, v T) (ComponentType, error) {
	set, t, err := SetFor[T](cm)
	if err != nil {
		return 0, err
	}
	return t, cm.insert(e, t, func() error { return set.Insert(e, v) })
}

// AddAny stores v (a T or *T of a registered type) for e.
func (cm *ComponentManager) AddAny(e Entity, v any) (ComponentType, error) {
	typ := reflect.TypeOf(v)
	if typ == nil {
		return 0, fmt.Errorf("add nil component: %w", ErrComponentNotRegistered)
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	t, ok := cm.byType[typ]
	if !ok {
		return 0, fmt.Errorf("%s: %w", typ, ErrComponentNotRegistered)
	}
	return t, cm.insert(e, t, func() error { return cm.sets[t].insertAny(e, v) })
}

func (cm *ComponentManager) insert(e Entity, t ComponentType, insert func() error) error {
	sig, err := cm.entities.Signature(e)
	if err != nil {
		return err
	}
	if err := insert(); err != nil {
		return ComponentError{Entity: e, Component: cm.names[t], Err: err}
	}
	sig.Set(t)
	return cm.entities.SetSignature(e, sig)
}

// Remove drops e's component of type t and clears the bit in e's signature.
func (cm *ComponentManager) Remove(e Entity, t ComponentType) error {
	if int(t) >= len(cm.sets) {
		return fmt.Errorf("component type %d: %w", t, ErrComponentNotRegistered)
	}
	sig, err := cm.entities.Signature(e)
	if err != nil {
		return err
	}
	if err := cm.sets[t].Remove(e); err != nil {
		return ComponentError{Entity: e, Component: cm.names[t], Err: err}
	}
	sig.Clear(t)
	return cm.entities.SetSignature(e, sig)
}

// GetComponentFrom returns a pointer to e's T value.
func GetComponentFrom[T any](cm *ComponentManager, e Entity) (*T, error) {
	set, t, err := SetFor[T](cm)
	if err != nil {
		return nil, err
	}
	if !cm.entities.IsAlive(e) {
		return nil, EntityError{Entity: e, Op: "get component"}
	}
	v, err := set.Get(e)
	if err != nil {
		return nil, ComponentError{Entity: e, Component: cm.names[t], Err: err}
	}
	return v, nil
}

// Get returns e's component of type t as a pointer wrapped in any.
func (cm *ComponentManager) Get(e Entity, t ComponentType) (any, error) {
	if int(t) >= len(cm.sets) {
		return nil, fmt.Errorf("component type %d: %w", t, ErrComponentNotRegistered)
	}
	v := cm.sets[t].getAny(e)
	if v == nil {
		return nil, ComponentError{Entity: e, Component: cm.names[t], Err: ErrMissingComponent}
	}
	return v, nil
}

// Has reports whether e holds a component of type t.
func (cm *ComponentManager) Has(e Entity, t ComponentType) bool {
	return int(t) < len(cm.sets) && cm.sets[t].Has(e)
}

// EntityDestroyed drops e's data from every registered set.
func (cm *ComponentManager) EntityDestroyed(e Entity) {
	for _, set := range cm.sets {
		set.EntityDestroyed(e)
	}
}

// Components returns pointers to every component e holds, in type id order.
func (cm *ComponentManager) Components(e Entity) []any {
	var out []any
	for _, set := range cm.sets {
		if v := set.getAny(e); v != nil {
			out = append(out, v)
		}
	}
	return out
}

func (cm *ComponentManager) TypeByName(name string) (ComponentType, bool) {
	t, ok := cm.byName[name]
	return t, ok
}

func (cm *ComponentManager) TypeOf(typ reflect.Type) (ComponentType, bool) {
	t, ok := cm.byType[typ]
	return t, ok
}

// NameOf returns the registered name of t, or "" when t is unknown.
func (cm *ComponentManager) NameOf(t ComponentType) string {
	if int(t) >= len(cm.names) {
		return ""
	}
	return cm.names[t]
}

// ElemType returns the Go type stored under t.
func (cm *ComponentManager) ElemType(t ComponentType) reflect.Type {
	if int(t) >= len(cm.sets) {
		return nil
	}
	return cm.sets[t].ElemType()
}

// Count returns the number of registered component types.
func (cm *ComponentManager) Count() int {
	return len(cm.sets)
}

// Size returns how many entities hold a component of type t.
func (cm *ComponentManager) Size(t ComponentType) int {
	if int(t) >= len(cm.sets) {
		return 0
	}
	return cm.sets[t].Size()
}

func (cm *ComponentManager) clear() {
	for _, set := range cm.sets {
		for _, e := range append([]Entity(nil), set.Entities()...) {
			_ = set.Remove(e)
		}
	}
}
