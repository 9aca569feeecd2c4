// Package scene stores worlds as YAML documents keyed by component name and
// reloads them when the files change on disk.
package scene

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
	"gopkg.in/yaml.v3"
)

// ErrUnknownComponent is returned when a document names a component type the
// world has not registered.
var ErrUnknownComponent = errors.New("unknown component")

// Transient components exist only at runtime and are left out of snapshots.
// Entities holding nothing but transient components are skipped entirely.
type Transient interface {
	Transient() bool
}

func isTransient(c any) bool {
	t, ok := c.(Transient)
	return ok && t.Transient()
}

// Document is the on-disk form of a scene.
type Document struct {
	Name     string   `yaml:"name"`
	Entities []Entity `yaml:"entities"`
}

// Entity holds one entity's components by name and the entities parented to it.
type Entity struct {
	Components map[string]yaml.Node `yaml:"components"`
	Children   []Entity             `yaml:"children,omitempty"`
}

// Snapshot captures entities, or every live entity when none are given.
// Entities whose Transform2D parent is also captured are nested under it.
func Snapshot(w *ecs.World, name string, entities ...ecs.Entity) (*Document, error) {
	if len(entities) == 0 {
		entities = w.LivingEntities()
	}
	entities = slices.DeleteFunc(slices.Clone(entities), func(e ecs.Entity) bool {
		comps := w.Components(e)
		return len(comps) > 0 && !slices.ContainsFunc(comps, func(c any) bool { return !isTransient(c) })
	})
	included := make(map[ecs.Entity]bool, len(entities))
	for _, e := range entities {
		included[e] = true
	}

	children := make(map[ecs.Entity][]ecs.Entity)
	var roots []ecs.Entity
	for _, e := range entities {
		if t, err := ecs.GetComponent[components.Transform2D](w, e); err == nil &&
			t.HasParent && t.Parent != e && included[t.Parent] {
			children[t.Parent] = append(children[t.Parent], e)
			continue
		}
		roots = append(roots, e)
	}

	doc := &Document{Name: name}
	visited := make(map[ecs.Entity]bool, len(entities))
	var build func(e ecs.Entity) (Entity, error)
	build = func(e ecs.Entity) (Entity, error) {
		visited[e] = true
		out, err := encodeEntity(w, e)
		if err != nil {
			return out, err
		}
		for _, c := range children[e] {
			if visited[c] {
				continue
			}
			child, err := build(c)
			if err != nil {
				return out, err
			}
			out.Children = append(out.Children, child)
		}
		return out, nil
	}

	for _, e := range roots {
		ent, err := build(e)
		if err != nil {
			return nil, err
		}
		doc.Entities = append(doc.Entities, ent)
	}
	// Parent cycles have no root; store what is left flat.
	for _, e := range entities {
		if visited[e] {
			continue
		}
		ent, err := build(e)
		if err != nil {
			return nil, err
		}
		doc.Entities = append(doc.Entities, ent)
	}
	return doc, nil
}

func encodeEntity(w *ecs.World, e ecs.Entity) (Entity, error) {
	cm := w.ComponentManager()
	out := Entity{Components: make(map[string]yaml.Node)}
	for _, c := range w.Components(e) {
		if isTransient(c) {
			continue
		}
		t, ok := cm.TypeOf(reflect.TypeOf(c).Elem())
		if !ok {
			continue
		}
		name := cm.NameOf(t)
		var node yaml.Node
		if err := node.Encode(c); err != nil {
			return out, fmt.Errorf("encode entity %d %s: %w", e, name, err)
		}
		out.Components[name] = node
	}
	return out, nil
}

// Spawn creates the document's entities in w and returns them in document
// order, parents before children. On error every entity created so far is
// destroyed.
func (d *Document) Spawn(w *ecs.World) ([]ecs.Entity, error) {
	var created []ecs.Entity
	var spawn func(ent Entity, parent ecs.Entity, hasParent bool) error
	spawn = func(ent Entity, parent ecs.Entity, hasParent bool) error {
		e, err := w.CreateEntity()
		if err != nil {
			return err
		}
		created = append(created, e)
		if err := decodeEntity(w, e, ent); err != nil {
			return err
		}
		if hasParent {
			if err := attach(w, e, parent); err != nil {
				return err
			}
		}
		for _, c := range ent.Children {
			if err := spawn(c, e, true); err != nil {
				return err
			}
		}
		return nil
	}

	for _, ent := range d.Entities {
		if err := spawn(ent, 0, false); err != nil {
			for _, e := range created {
				_ = w.DestroyEntity(e)
			}
			return nil, fmt.Errorf("scene %s: %w", d.Name, err)
		}
	}
	return created, nil
}

func decodeEntity(w *ecs.World, e ecs.Entity, ent Entity) error {
	cm := w.ComponentManager()
	names := make([]string, 0, len(ent.Components))
	for name := range ent.Components {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		t, ok := cm.TypeByName(name)
		if !ok {
			return fmt.Errorf("%q: %w", name, ErrUnknownComponent)
		}
		ptr := reflect.New(cm.ElemType(t))
		if d, ok := ptr.Interface().(components.Defaulter); ok {
			d.SetDefaults()
		}
		node := ent.Components[name]
		if err := node.Decode(ptr.Interface()); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		if err := w.AddAny(e, ptr.Interface()); err != nil {
			return err
		}
	}
	return nil
}

func attach(w *ecs.World, child, parent ecs.Entity) error {
	t, err := ecs.GetComponent[components.Transform2D](w, child)
	if err != nil {
		if !errors.Is(err, ecs.ErrMissingComponent) {
			return err
		}
		if err := ecs.AddComponent(w, child, components.NewTransform(0, 0)); err != nil {
			return err
		}
		if t, err = ecs.GetComponent[components.Transform2D](w, child); err != nil {
			return err
		}
	}
	t.SetParent(parent)
	return nil
}

// Read parses a document without touching any world.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return &doc, nil
}

// Encode writes every live entity of w as a document called name.
func Encode(w *ecs.World, out io.Writer, name string) error {
	doc, err := Snapshot(w, name)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode scene %s: %w", name, err)
	}
	return enc.Close()
}

// Decode reads a document from r and spawns it into w.
func Decode(w *ecs.World, r io.Reader) ([]ecs.Entity, error) {
	doc, err := Read(r)
	if err != nil {
		return nil, err
	}
	return doc.Spawn(w)
}

// Save writes w to path, creating parent directories. The scene is named
// after the file.
func Save(w *ecs.World, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	if err := Encode(w, f, nameFromPath(path)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Load spawns the document at path into w.
func Load(w *ecs.World, path string) ([]ecs.Entity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	defer f.Close()

	entities, err := Decode(w, f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return entities, nil
}

func nameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
