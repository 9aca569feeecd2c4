package ecs

import "reflect"

// Singleton provides access to a single value that is not associated with any
// entity. Use it for world-global state such as input, contacts or clocks.
// A Singleton field on a registered system is initialized automatically.
type Singleton[T any] struct {
	world *World
}

// NewSingleton returns an accessor for T, creating the value from initializer
// (or the zero value) when the world does not hold one yet.
func NewSingleton[T any](w *World, initializer ...T) *Singleton[T] {
	s := &Singleton[T]{world: w}
	if !s.Exists() {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		SetSingleton(w, value)
	}
	return s
}

// SetSingleton stores v as w's T value, replacing any existing value in place.
func SetSingleton[T any](w *World, v T) *T {
	typ := reflect.TypeFor[T]()
	if existing, ok := w.singletons[typ]; ok {
		p := existing.(*T)
		*p = v
		return p
	}
	p := new(T)
	*p = v
	w.singletons[typ] = p
	return p
}

// RemoveSingleton drops w's T value.
func RemoveSingleton[T any](w *World) {
	delete(w.singletons, reflect.TypeFor[T]())
}

func (s *Singleton[T]) initSingleton(w *World) {
	s.world = w
}

func (s *Singleton[T]) lookup() *T {
	if s.world == nil {
		return nil
	}
	v, ok := s.world.singletons[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return v.(*T)
}

// Get returns the singleton value, or nil if the world holds none.
func (s *Singleton[T]) Get() *T {
	return s.lookup()
}

// Exists reports whether the world holds a T value.
func (s *Singleton[T]) Exists() bool {
	return s.lookup() != nil
}
