package systems

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
	"github.com/sirupsen/logrus"
)

// DefaultScriptTimeout bounds a single script run.
const DefaultScriptTimeout = 50 * time.Millisecond

// scriptModules are the tengo stdlib modules scripts may import.
var scriptModules = []string{"math", "text", "fmt", "rand", "times", "enum"}

type scriptRuntime struct {
	source   string
	compiled *tengo.Compiled
	state    *tengo.Map
	failed   error
}

// ScriptSystem runs each entity's tengo script once per update. Scripts see
// the globals x, y, rotation, dt, entity and state (a map persisted across
// runs) and, when the entity has a RigidBody, vx and vy. Changes to x, y,
// rotation, vx and vy are written back.
type ScriptSystem struct {
	ecs.SystemBase
	Scripted ecs.View[struct {
		*components.Transform2D
		*components.Script
		Body *components.RigidBody `ecs:"optional"`
	}] `ecs:"track"`

	// BaseDir resolves relative Script.Path values.
	BaseDir string
	// Timeout aborts a run that takes longer. Zero means DefaultScriptTimeout.
	Timeout time.Duration

	runtimes map[ecs.Entity]*scriptRuntime
	files    map[string]scriptFile
}

type scriptFile struct {
	source string
	err    error
}

func (s *ScriptSystem) Name() string { return "ScriptSystem" }

func (s *ScriptSystem) EntityAdded(ecs.Entity) {}

// EntityRemoved drops the compiled script so a recycled id starts fresh.
func (s *ScriptSystem) EntityRemoved(e ecs.Entity) {
	delete(s.runtimes, e)
}

func (s *ScriptSystem) OnUpdate(f *ecs.UpdateFrame) {
	if s.runtimes == nil {
		s.runtimes = make(map[ecs.Entity]*scriptRuntime)
	}
	log := f.World.Logger()

	for e, v := range s.Scripted.Iter(s.Entities().Slice()) {
		src, err := s.sourceOf(v.Script)
		if err != nil {
			s.fail(log, e, err)
			continue
		}

		rt := s.runtimes[e]
		if rt == nil || rt.source != src {
			rt = compileScript(src)
			s.runtimes[e] = rt
			if rt.failed != nil {
				log.WithError(rt.failed).WithField("entity", e).Warn("script compile failed")
			}
		}
		if rt.failed != nil {
			continue
		}

		if err := rt.run(s.timeout(), e, f.DeltaTime, v.Transform2D, v.Body); err != nil {
			rt.failed = err
			log.WithError(err).WithField("entity", e).Warn("script failed, disabled")
		}
	}
}

func (s *ScriptSystem) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultScriptTimeout
}

func (s *ScriptSystem) fail(log *logrus.Entry, e ecs.Entity, err error) {
	if rt, ok := s.runtimes[e]; ok && rt.failed != nil {
		return
	}
	s.runtimes[e] = &scriptRuntime{failed: err}
	log.WithError(err).WithField("entity", e).Warn("script unavailable")
}

func (s *ScriptSystem) sourceOf(sc *components.Script) (string, error) {
	if sc.Source != "" {
		return sc.Source, nil
	}
	if sc.Path == "" {
		return "", fmt.Errorf("script has neither source nor path")
	}
	path := s.resolve(sc.Path)
	if f, ok := s.files[path]; ok {
		return f.source, f.err
	}
	var f scriptFile
	b, err := os.ReadFile(path)
	if err != nil {
		f.err = fmt.Errorf("read script: %w", err)
	} else {
		f.source = string(b)
	}
	if s.files == nil {
		s.files = make(map[string]scriptFile)
	}
	s.files[path] = f
	return f.source, f.err
}

func (s *ScriptSystem) resolve(path string) string {
	if !filepath.IsAbs(path) && s.BaseDir != "" {
		path = filepath.Join(s.BaseDir, path)
	}
	return filepath.Clean(path)
}

// Invalidate forgets the cached contents of the script file at path so it is
// read again on the next update. Entities whose script failed to load get
// another attempt.
func (s *ScriptSystem) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	for cached := range s.files {
		if c, err := filepath.Abs(cached); err == nil && c == abs {
			delete(s.files, cached)
		}
	}
	for e, rt := range s.runtimes {
		if rt.compiled == nil && rt.source == "" {
			delete(s.runtimes, e)
		}
	}
}

func compileScript(src string) *scriptRuntime {
	script := tengo.NewScript([]byte(src))
	for _, name := range []string{"x", "y", "rotation", "dt", "vx", "vy"} {
		_ = script.Add(name, 0.0)
	}
	_ = script.Add("entity", 0)
	_ = script.Add("state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(scriptModules...))

	compiled, err := script.Compile()
	if err != nil {
		return &scriptRuntime{source: src, failed: err}
	}
	return &scriptRuntime{
		source:   src,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
}

// run executes the script once. Runtime panics inside the VM and runs that
// exceed timeout come back as errors.
func (rt *scriptRuntime) run(timeout time.Duration, e ecs.Entity, dt float64, t *components.Transform2D, body *components.RigidBody) error {
	c := rt.compiled
	set := func(name string, v any) error {
		if err := c.Set(name, v); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
		return nil
	}

	vx, vy := 0.0, 0.0
	if body != nil {
		vx, vy = body.Velocity.X, body.Velocity.Y
	}
	for name, v := range map[string]any{
		"x": t.Position.X, "y": t.Position.Y, "rotation": t.Rotation,
		"dt": dt, "vx": vx, "vy": vy, "entity": int(e), "state": rt.state,
	} {
		if err := set(name, v); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := c.RunContext(ctx); err != nil {
		return err
	}

	t.Position.X = c.Get("x").Float()
	t.Position.Y = c.Get("y").Float()
	t.Rotation = c.Get("rotation").Float()
	if body != nil {
		body.Velocity.X = c.Get("vx").Float()
		body.Velocity.Y = c.Get("vy").Float()
	}
	return nil
}
