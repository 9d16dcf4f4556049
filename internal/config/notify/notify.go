// Package notify delivers configuration change events to subscribers.
//
// The configuration store publishes one event per key changed by a
// committed transaction and a single reload event when the backing file
// is re-read. Collaborators (the application reloader, caches, plugins)
// subscribe either to every change or to a single key.
package notify

import (
	"sync"
)

// ChangeType describes what happened to a key.
type ChangeType int

const (
	// ChangeSet indicates an override was written or updated.
	ChangeSet ChangeType = iota

	// ChangeDelete indicates an override was removed, so reads fall
	// back to the schema default.
	ChangeDelete

	// ChangeReload indicates the whole configuration was re-read from
	// disk. Key, Old and New are unset.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeDelete:
		return "delete"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change is one configuration change event.
type Change struct {
	// Key is the canonical configuration key. Empty for reloads.
	Key string

	// Type is the kind of change.
	Type ChangeType

	// Old is the previously effective typed value.
	Old any

	// New is the now effective typed value.
	New any
}

// Observer receives change events.
type Observer func(change Change)

// Subscription is an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes the subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.remove(s.id)
		s.notifier = nil
	}
}

type entry struct {
	key      string // empty means all keys
	observer Observer
}

// Notifier fans configuration changes out to observers. Delivery is
// synchronous in publish order; observers must not call back into the
// publishing store's mutating methods.
type Notifier struct {
	mu      sync.RWMutex
	entries map[uint64]entry
	nextID  uint64
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{entries: make(map[uint64]entry)}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.add("", observer)
}

// SubscribeKey registers an observer for changes to one key. The
// observer also receives reload events, since a reload may have changed
// any key.
func (n *Notifier) SubscribeKey(key string, observer Observer) *Subscription {
	return n.add(key, observer)
}

func (n *Notifier) add(key string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	id := n.nextID
	n.entries[id] = entry{key: key, observer: observer}
	return &Subscription{id: id, notifier: n}
}

func (n *Notifier) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.entries, id)
}

// Publish delivers a change to all matching observers.
func (n *Notifier) Publish(change Change) {
	n.mu.RLock()
	observers := make([]Observer, 0, len(n.entries))
	for _, e := range n.entries {
		if e.key == "" || e.key == change.Key || change.Type == ChangeReload {
			observers = append(observers, e.observer)
		}
	}
	n.mu.RUnlock()

	for _, observer := range observers {
		observer(change)
	}
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.entries)
}
