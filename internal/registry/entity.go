package registry

import (
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"hotfolder/internal/config"
	"hotfolder/internal/filter"
	"hotfolder/internal/utils"
	"hotfolder/internal/watch"
)

// TriggerFunc is invoked once per ready file with the origin path, the watch
// folder's settings, and the owning task config, both read live at fire time.
// The registry runs it on its own goroutine per event.
type TriggerFunc func(origin string, s *config.Settings, owner *config.TaskConfig)

// Entity wraps one directory subscription with its settings and owning task.
// It is Inactive until Enable acquires a subscription and Inactive again
// after Dispose releases it; both transitions are idempotent.
type Entity struct {
	mu       sync.Mutex
	settings *config.Settings
	owner    *config.TaskConfig
	handle   watch.Handle
	trigger  TriggerFunc
}

func newEntity(s *config.Settings, owner *config.TaskConfig, trigger TriggerFunc) *Entity {
	return &Entity{settings: s, owner: owner, trigger: trigger}
}

// Enable acquires the OS subscription. Already-active entities are left
// alone. A failure (missing directory, bad pattern) leaves the entity
// Inactive and is the caller's to report; it never affects other entities.
func (e *Entity) Enable(sub watch.Subscriber) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handle != nil {
		return nil
	}

	f, err := filter.New(e.settings.Patterns)
	if err != nil {
		return errors.Wrapf(err, "bad patterns for %s", e.settings.Folder)
	}

	dir := utils.ExpandTilde(e.settings.Folder)
	handle, err := sub.Subscribe(dir, f, e.settings.IncludeSubdirs, e.onCreate)
	if err != nil {
		return errors.Wrapf(err, "could not watch %s", dir)
	}

	e.handle = handle
	log.Debugf("Watching %s (task %q)", dir, e.owner.Name)
	return nil
}

// Dispose releases the subscription. Safe to call repeatedly and safe while
// a pipeline run from an earlier event is still in flight; that run completes
// on its own.
func (e *Entity) Dispose() {
	e.mu.Lock()
	handle := e.handle
	e.handle = nil
	e.mu.Unlock()

	if handle == nil {
		return
	}
	if err := handle.Close(); err != nil {
		log.Warnf("Error closing watch on %s: %v", e.settings.Folder, err)
	}
	log.Debugf("Stopped watching %s", e.settings.Folder)
}

// Active reports whether the entity currently holds a subscription.
func (e *Entity) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handle != nil
}

// onCreate receives a settled file from the subscription. Events that race
// with Dispose are dropped; everything else fires the trigger on a fresh
// goroutine so delivery of later notifications is never blocked.
func (e *Entity) onCreate(path string) {
	e.mu.Lock()
	disposed := e.handle == nil
	e.mu.Unlock()

	if disposed {
		log.Debugf("Dropping event for disposed watch: %s", path)
		return
	}
	go e.trigger(path, e.settings, e.owner)
}
