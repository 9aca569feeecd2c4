package ecs

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is returned when the entity or component-type limit is reached.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrDuplicateComponent is returned when an entity already holds a component of the given type.
	ErrDuplicateComponent = errors.New("component already exists on entity")
	// ErrMissingComponent is returned when an entity does not hold a component of the given type.
	ErrMissingComponent = errors.New("component does not exist on entity")
	// ErrInvalidEntity is returned for operations on destroyed or never-created entities.
	ErrInvalidEntity = errors.New("invalid entity")

	ErrComponentNotRegistered = errors.New("component not registered")
	ErrSystemExists           = errors.New("system already registered")
	ErrSystemNotRegistered    = errors.New("system not registered")
	ErrSystemNotPointer       = errors.New("system must be a pointer")
	ErrSceneNotFound          = errors.New("scene not found")
	ErrSceneExists            = errors.New("scene already registered")
)

// ComponentError adds the entity and component name to a component operation failure.
type ComponentError struct {
	Entity    Entity
	Component string
	Err       error
}

func (e ComponentError) Error() string {
	return fmt.Sprintf("entity %d: %s: %v", e.Entity, e.Component, e.Err)
}

func (e ComponentError) Unwrap() error {
	return e.Err
}

// EntityError reports an operation on an entity id that is not live.
type EntityError struct {
	Entity Entity
	Op     string
}

func (e EntityError) Error() string {
	return fmt.Sprintf("%s: entity %d: %v", e.Op, e.Entity, ErrInvalidEntity)
}

func (e EntityError) Unwrap() error {
	return ErrInvalidEntity
}
