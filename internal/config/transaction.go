package config

import (
	"fmt"
)

// Transaction is a staging area for configuration changes bound to one
// store. Changes are staged with Set, SetFromString, Update and
// RevertToDefault and applied atomically by a single Commit call; a
// transaction that is dropped uncommitted has no effect on the store.
//
// A Transaction is not safe for concurrent use; open one per goroutine.
// At most one Commit ever succeeds per instance.
type Transaction struct {
	cfg       *Configuration
	staged    map[string]string // canonical key -> serialized value
	converted map[string]any    // canonical key -> typed value
	removed   map[string]bool   // canonical keys reverting to default
	committed bool
}

// Set stages a key to a new typed value. The key is validated against
// the schema registry immediately (ErrUnknownKey) and the value against
// the key's kind (ErrBadValue); the backing file is not touched. The
// value is normalized to the kind's canonical Go type, so an int64 for
// an integer key stages and compares like an int.
func (t *Transaction) Set(key string, value any) error {
	if t.committed {
		return ErrAlreadyCommitted
	}
	f, err := t.cfg.registry.Resolve(key)
	if err != nil {
		return err
	}
	raw, err := f.ToString(value)
	if err != nil {
		return err
	}
	value, err = f.FromString(raw)
	if err != nil {
		return err
	}
	delete(t.removed, f.Key)
	t.staged[f.Key] = raw
	t.converted[f.Key] = value
	return nil
}

// SetFromString coerces a raw string through the key's declared kind
// and stages the result. A malformed string surfaces the coercion error
// and stages nothing.
func (t *Transaction) SetFromString(key, raw string) error {
	if t.committed {
		return ErrAlreadyCommitted
	}
	f, err := t.cfg.registry.Resolve(key)
	if err != nil {
		return err
	}
	value, err := f.FromString(raw)
	if err != nil {
		return err
	}
	return t.Set(f.Key, value)
}

// Update stages multiple keys at once, equivalent to repeated Set
// calls. The first failing key stops staging and returns its error;
// keys staged before it remain staged.
func (t *Transaction) Update(values map[string]any) error {
	for key, value := range values {
		if err := t.Set(key, value); err != nil {
			return fmt.Errorf("update %s: %w", key, err)
		}
	}
	return nil
}

// RevertToDefault stages a key's override for removal, so reads after
// commit fall through to the schema default.
func (t *Transaction) RevertToDefault(key string) error {
	if t.committed {
		return ErrAlreadyCommitted
	}
	f, err := t.cfg.registry.Resolve(key)
	if err != nil {
		return err
	}
	delete(t.staged, f.Key)
	delete(t.converted, f.Key)
	t.removed[f.Key] = true
	return nil
}

// Get returns the pending staged value for a key if one exists in this
// transaction, otherwise the store's current committed value. The store
// itself is unaffected until Commit.
func (t *Transaction) Get(key string) (any, error) {
	f, err := t.cfg.registry.Resolve(key)
	if err != nil {
		return nil, err
	}
	if v, ok := t.converted[f.Key]; ok {
		return v, nil
	}
	if t.removed[f.Key] {
		return f.Default, nil
	}
	return t.cfg.Get(f.Key)
}

// Committed reports whether this transaction has committed.
func (t *Transaction) Committed() bool {
	return t.committed
}

// Commit applies all staged changes atomically: the complete new
// override set is written to the backing file in one pass and the
// store's in-memory state is updated to match. Staged values equal to
// their schema default are suppressed rather than persisted. A second
// Commit on the same transaction fails with ErrAlreadyCommitted and has
// no side effects; a failed write leaves the transaction open and the
// store untouched.
func (t *Transaction) Commit() error {
	if t.committed {
		return ErrAlreadyCommitted
	}
	if len(t.staged) == 0 && len(t.removed) == 0 {
		t.committed = true
		return nil
	}
	if err := t.cfg.apply(t.staged, t.converted, t.removed); err != nil {
		return err
	}
	t.committed = true
	return nil
}
