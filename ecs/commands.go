package ecs

import (
	"reflect"

	"github.com/sirupsen/logrus"
)

// Commands buffers structural changes requested while a phase is running.
// The GameLoop flushes the buffer after every phase so that systems never see
// their entity sets change mid-iteration.
type Commands struct {
	destroys []Entity
	adds     []addComponentCommand
	removes  []removeComponentCommand
	spawns   []spawnCommand
	defers   []func()
}

func newCommands() *Commands {
	return &Commands{}
}

type addComponentCommand struct {
	entity    Entity
	component any
}

type removeComponentCommand struct {
	entity   Entity
	compType reflect.Type
}

type spawnCommand struct {
	components []any
	then       func(GameObject)
}

// Destroy queues destruction of e.
func (c *Commands) Destroy(e Entity) {
	c.destroys = append(c.destroys, e)
}

// AddComponent queues attaching component to e.
func (c *Commands) AddComponent(e Entity, component any) {
	c.adds = append(c.adds, addComponentCommand{entity: e, component: component})
}

// RemoveComponent queues removal of e's component of type compType.
func (c *Commands) RemoveComponent(e Entity, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{entity: e, compType: compType})
}

// Remove queues removal of e's T component.
func Remove[T any](c *Commands, e Entity) {
	c.RemoveComponent(e, reflect.TypeFor[T]())
}

// Spawn queues creation of an entity with the given components. then, when
// non-nil, receives the spawned object.
func (c *Commands) Spawn(then func(GameObject), components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components, then: then})
}

// Defer queues fn to run after all structural commands.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Pending returns the number of queued commands.
func (c *Commands) Pending() int {
	return len(c.destroys) + len(c.adds) + len(c.removes) + len(c.spawns) + len(c.defers)
}

// Flush applies queued commands to w in the order destroys, removes, adds,
// spawns, defers and resets the buffer. Commands targeting an entity destroyed
// in the same flush are dropped. Failures are logged.
func (c *Commands) Flush(w *World) {
	if c.Pending() == 0 {
		return
	}

	// Commands queued while flushing land in a fresh buffer for the next flush.
	destroys, adds, removes, spawns, defers := c.destroys, c.adds, c.removes, c.spawns, c.defers
	c.reset()

	destroyed := make(map[Entity]bool, len(destroys))
	for _, e := range destroys {
		if destroyed[e] {
			continue
		}
		destroyed[e] = true
		if err := w.DestroyEntity(e); err != nil {
			w.log.WithError(err).Warn("deferred destroy failed")
		}
	}

	for _, cmd := range removes {
		if destroyed[cmd.entity] {
			continue
		}
		if err := w.RemoveType(cmd.entity, cmd.compType); err != nil {
			w.log.WithError(err).WithField("entity", cmd.entity).Warn("deferred remove failed")
		}
	}

	for _, cmd := range adds {
		if destroyed[cmd.entity] {
			continue
		}
		if err := w.AddAny(cmd.entity, cmd.component); err != nil {
			w.log.WithError(err).WithField("entity", cmd.entity).Warn("deferred add failed")
		}
	}

	for _, cmd := range spawns {
		obj, err := Spawn(w, cmd.components...)
		if err != nil {
			w.log.WithError(err).Warn("deferred spawn failed")
			continue
		}
		if cmd.then != nil {
			cmd.then(obj)
		}
	}

	for _, fn := range defers {
		fn()
	}

	w.log.WithFields(logrus.Fields{
		"destroys": len(destroys),
		"adds":     len(adds),
		"removes":  len(removes),
		"spawns":   len(spawns),
	}).Trace("flushed commands")
}

func (c *Commands) reset() {
	c.destroys = nil
	c.adds = nil
	c.removes = nil
	c.spawns = nil
	c.defers = nil
}
