// Package registry owns the runtime set of watch folders. It deduplicates
// registrations across the default and hotkey task configs, keeps each
// entity's active/inactive state in step with its owner's enabled flag, and
// releases OS subscriptions on every removal path.
package registry

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"hotfolder/internal/config"
	"hotfolder/internal/watch"
)

// Registry holds at most one Entity per settings identity across all task
// configs combined. Structural mutations (Add, Remove, UpdateState, Sync,
// Teardown) are serialized under one mutex; event delivery never takes it.
type Registry struct {
	mu         sync.Mutex
	cfg        *config.Config
	subscriber watch.Subscriber
	trigger    TriggerFunc

	order []*Entity
	byID  map[string]*Entity
}

// New creates a registry over cfg. Configuration is passed in explicitly and
// re-read on every Sync; there are no ambient config globals.
func New(cfg *config.Config, subscriber watch.Subscriber, trigger TriggerFunc) *Registry {
	return &Registry{
		cfg:        cfg,
		subscriber: subscriber,
		trigger:    trigger,
		byID:       make(map[string]*Entity),
	}
}

// Sync fully resynchronizes the registry from the configuration. Every
// registered entity is torn down first, since config objects may have been
// replaced wholesale since the last sync and stale entities must not linger.
// The registry is then rebuilt in deterministic order: the default task
// first, then hotkey tasks in list order, each task's watch folders in list
// order.
func (r *Registry) Sync() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.teardownLocked()
	for _, task := range r.cfg.Tasks() {
		for _, s := range task.WatchFolders {
			r.addLocked(s, task)
		}
	}
	log.Infof("Registry synced: %d watch folders", len(r.order))
}

// Add registers a watch folder under owner. It is idempotent by settings
// identity: if an entity already exists for s, this is a no-op even when
// owner differs; first registration wins. The same settings object cannot
// belong to two tasks simultaneously in correct usage, so a second Add under
// a different owner is silently ignored rather than reassigned (reassigning
// would orphan the settings from its original task's list).
//
// Side effect: if s is not yet in owner's watch-folder list it is appended,
// keeping persisted configuration and runtime registry consistent.
func (r *Registry) Add(s *config.Settings, owner *config.TaskConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addLocked(s, owner)
}

func (r *Registry) addLocked(s *config.Settings, owner *config.TaskConfig) {
	if _, ok := r.byID[s.ID]; ok {
		return
	}

	if !containsSettings(owner.WatchFolders, s.ID) {
		owner.WatchFolders = append(owner.WatchFolders, s)
	}

	e := newEntity(s, owner, r.trigger)
	r.order = append(r.order, e)
	r.byID[s.ID] = e

	if owner.Enabled {
		if err := e.Enable(r.subscriber); err != nil {
			log.Warnf("Could not enable watch folder %s: %v", s.Folder, err)
		}
	}
}

// Remove unregisters the entity for s, releasing its subscription and taking
// s out of its owner's watch-folder list. Unknown settings are a no-op, not
// an error: UI edits and registry state may legitimately race.
func (r *Registry) Remove(s *config.Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[s.ID]
	if !ok {
		return
	}

	e.Dispose()
	e.owner.WatchFolders = removeSettings(e.owner.WatchFolders, s.ID)
	delete(r.byID, s.ID)
	for i, other := range r.order {
		if other == e {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// UpdateState re-reads the owner's enabled flag for one entity and applies
// it: enabled enables, disabled disposes, both idempotent. Lets an external
// toggle resynchronize a single watch folder without a full Sync. Unknown
// settings are a no-op.
func (r *Registry) UpdateState(s *config.Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[s.ID]
	if !ok {
		return
	}

	if e.owner.Enabled {
		if err := e.Enable(r.subscriber); err != nil {
			log.Warnf("Could not enable watch folder %s: %v", s.Folder, err)
		}
	} else {
		e.Dispose()
	}
}

// Teardown disposes every registered entity. Tolerates an empty or
// already-torn-down registry.
func (r *Registry) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teardownLocked()
}

func (r *Registry) teardownLocked() {
	for _, e := range r.order {
		e.Dispose()
	}
	r.order = nil
	r.byID = make(map[string]*Entity)
}

// Len returns the number of registered watch folders.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Lookup returns the entity registered for s, or nil.
func (r *Registry) Lookup(s *config.Settings) *Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[s.ID]
}

func containsSettings(list []*config.Settings, id string) bool {
	for _, s := range list {
		if s.ID == id {
			return true
		}
	}
	return false
}

func removeSettings(list []*config.Settings, id string) []*config.Settings {
	for i, s := range list {
		if s.ID == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
