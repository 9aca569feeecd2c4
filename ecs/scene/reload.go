package scene

import (
	"os"
	"path/filepath"

	"github.com/plus3/hotbean/ecs"
)

// FileScene is a scene whose entities come from a YAML document. Setup
// functions run before the document is spawned and typically register the
// scene's systems.
type FileScene struct {
	ecs.BaseScene
	path  string
	setup []func(w *ecs.World) error
}

func NewFileScene(path string, setup ...func(w *ecs.World) error) *FileScene {
	return &FileScene{
		BaseScene: ecs.NewBaseScene(nameFromPath(path)),
		path:      path,
		setup:     setup,
	}
}

func (s *FileScene) Path() string {
	return s.path
}

func (s *FileScene) Setup(w *ecs.World) error {
	for _, fn := range s.setup {
		if err := fn(w); err != nil {
			return err
		}
	}
	entities, err := Load(w, s.path)
	if err != nil {
		return err
	}
	for _, e := range entities {
		s.Own(e)
	}
	return nil
}

// HotReloader drains a Watcher during OnPreEvent. A change to the current
// FileScene's document reloads the scene after the phase, unless the document
// no longer parses, in which case the running scene is kept. Changed scripts
// are passed to OnScript.
type HotReloader struct {
	ecs.NopParticipant
	scenes  *ecs.SceneManager
	watcher *Watcher

	OnScript func(path string)
}

func NewHotReloader(scenes *ecs.SceneManager, watcher *Watcher) *HotReloader {
	return &HotReloader{scenes: scenes, watcher: watcher}
}

func (r *HotReloader) Name() string { return "HotReloader" }

func (r *HotReloader) OnPreEvent(f *ecs.UpdateFrame) {
	log := f.World.Logger().WithField("subsystem", "hotreload")
	reload := false
	for {
		select {
		case path, ok := <-r.watcher.Events:
			if !ok {
				r.schedule(f, reload)
				return
			}
			switch {
			case IsScriptFile(path):
				log.WithField("path", path).Info("script changed")
				if r.OnScript != nil {
					r.OnScript(path)
				}
			case r.isCurrent(path):
				if err := parses(path); err != nil {
					log.WithError(err).WithField("path", path).Warn("scene changed but does not parse, keeping current")
					reload = false
					continue
				}
				log.WithField("path", path).Info("scene changed")
				reload = true
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				r.schedule(f, reload)
				return
			}
			log.WithError(err).Warn("watch error")
		default:
			r.schedule(f, reload)
			return
		}
	}
}

func (r *HotReloader) schedule(f *ecs.UpdateFrame, reload bool) {
	if !reload {
		return
	}
	log := f.World.Logger()
	f.Commands.Defer(func() {
		if err := r.scenes.Reload(); err != nil {
			log.WithError(err).Error("scene reload failed")
		}
	})
}

func (r *HotReloader) isCurrent(path string) bool {
	cur, ok := r.scenes.Current().(interface{ Path() string })
	if !ok {
		return false
	}
	return samePath(cur.Path(), path)
}

func parses(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = Read(f)
	return err
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}

// OnShutdown closes the watcher.
func (r *HotReloader) OnShutdown(*ecs.World) {
	_ = r.watcher.Close()
}
