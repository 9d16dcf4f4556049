package config

import (
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rezine-project/rezine/internal/config/inifile"
	"github.com/rezine-project/rezine/internal/config/notify"
	"github.com/rezine-project/rezine/internal/config/schema"
)

// Configuration manages the typed configuration values of one Rezine
// instance, backed by an ini-style file. Reads merge persisted overrides
// with schema defaults; all mutation goes through transactions so a
// commit rewrites the file and the in-memory state together.
//
// A Configuration is safe for concurrent use. The backing file is
// treated as exclusively owned by this instance for the lifetime of the
// process; concurrent external editors are not detected beyond
// ChangedExternal.
type Configuration struct {
	filename string
	registry *schema.Registry
	logger   *slog.Logger
	notifier *notify.Notifier

	mu        sync.RWMutex
	values    map[string]string // raw overrides, canonical keys
	converted map[string]any    // coercion cache for values
	comments  map[string]string // comment blocks keyed per inifile
	exists    bool
	loadTime  time.Time
}

// Option configures a Configuration.
type Option func(*Configuration)

// WithLogger sets the logger used for skip-with-warning parse events
// and commit failures. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Configuration) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotifier sets the notifier that receives per-key change events on
// commit and reload events.
func WithNotifier(n *notify.Notifier) Option {
	return func(c *Configuration) {
		c.notifier = n
	}
}

// New creates a Configuration for the given backing file and schema
// registry, loading the file eagerly. A missing file is not an error;
// it means every key is at its default and the first commit creates it.
func New(filename string, registry *schema.Registry, opts ...Option) (*Configuration, error) {
	c := &Configuration{
		filename: filename,
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

// load reads and parses the backing file into fresh maps. Caller must
// not hold the lock (New) or must hold it exclusively (Reload).
func (c *Configuration) load() error {
	c.values = make(map[string]string)
	c.converted = make(map[string]any)
	c.comments = make(map[string]string)
	c.exists = false
	c.loadTime = time.Time{}

	data, err := os.ReadFile(c.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading configuration file %s: %w", c.filename, err)
	}

	doc := inifile.Parse(data, schema.DefaultSection)
	for _, skipped := range doc.Skipped {
		c.logger.Warn("skipping malformed configuration line",
			"file", c.filename, "line", skipped.Number, "text", skipped.Text)
	}
	c.values = doc.Values
	c.comments = doc.Comments
	c.exists = true
	if info, err := os.Stat(c.filename); err == nil {
		c.loadTime = info.ModTime()
	} else {
		c.loadTime = time.Now()
	}
	return nil
}

// Filename returns the backing file path.
func (c *Configuration) Filename() string {
	return c.filename
}

// Registry returns the schema registry this store reads through.
func (c *Configuration) Registry() *schema.Registry {
	return c.registry
}

// Exists reports whether the backing file existed at load time or has
// been created by a commit since.
func (c *Configuration) Exists() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.exists
}

// Get returns the effective typed value for a key: the persisted
// override if one exists, the schema default otherwise. Unknown keys
// fail with ErrUnknownKey. An override that no longer parses as the
// key's kind is logged and falls back to the default.
func (c *Configuration) Get(key string) (any, error) {
	f, err := c.registry.Resolve(key)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	if v, ok := c.converted[f.Key]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	raw, hasRaw := c.values[f.Key]
	c.mu.RUnlock()

	if !hasRaw {
		return f.Default, nil
	}

	v, cerr := f.FromString(raw)
	if cerr != nil {
		c.logger.Warn("malformed configuration value, using default",
			"key", f.Key, "error", cerr)
		v = f.Default
	}

	// Cache only if the raw value is still current.
	c.mu.Lock()
	if cur, ok := c.values[f.Key]; ok && cur == raw {
		c.converted[f.Key] = v
	}
	c.mu.Unlock()

	return v, nil
}

// Contains reports whether the key resolves in the schema registry,
// independent of whether an override exists.
func (c *Configuration) Contains(key string) bool {
	return c.registry.Has(key)
}

// HasOverride reports whether a persisted override exists for the key.
func (c *Configuration) HasOverride(key string) bool {
	f, err := c.registry.Resolve(key)
	if err != nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.values[f.Key]
	return ok
}

// GetString returns a string-typed value.
func (c *Configuration) GetString(key string) (string, error) {
	v, err := c.Get(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Key: key, Expected: "string", Actual: fmt.Sprintf("%T", v)}
	}
	return s, nil
}

// GetInt returns an integer-typed value.
func (c *Configuration) GetInt(key string) (int, error) {
	v, err := c.Get(key)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int)
	if !ok {
		return 0, &TypeError{Key: key, Expected: "integer", Actual: fmt.Sprintf("%T", v)}
	}
	return n, nil
}

// GetFloat returns a float-typed value.
func (c *Configuration) GetFloat(key string) (float64, error) {
	v, err := c.Get(key)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	}
	return 0, &TypeError{Key: key, Expected: "number", Actual: fmt.Sprintf("%T", v)}
}

// GetBool returns a boolean-typed value.
func (c *Configuration) GetBool(key string) (bool, error) {
	v, err := c.Get(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Key: key, Expected: "boolean", Actual: fmt.Sprintf("%T", v)}
	}
	return b, nil
}

// GetStringList returns a string-list-typed value.
func (c *Configuration) GetStringList(key string) ([]string, error) {
	v, err := c.Get(key)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]string)
	if !ok {
		return nil, &TypeError{Key: key, Expected: "string list", Actual: fmt.Sprintf("%T", v)}
	}
	return list, nil
}

// ChangeSingle creates and commits a transaction for a single
// key/value pair. The unknown-key check happens before any file
// mutation.
func (c *Configuration) ChangeSingle(key string, value any) error {
	t := c.Edit()
	if err := t.Set(key, value); err != nil {
		return err
	}
	return t.Commit()
}

// Edit returns a new open transaction bound to this store. Multiple
// transactions may be open at once; commits are serialized and the
// last committer wins per key.
func (c *Configuration) Edit() *Transaction {
	return &Transaction{
		cfg:       c,
		staged:    make(map[string]string),
		converted: make(map[string]any),
		removed:   make(map[string]bool),
	}
}

// Keys returns all known configuration keys sorted, regardless of
// whether an override exists.
func (c *Configuration) Keys() []string {
	return c.registry.Keys()
}

// Len returns the number of known configuration keys.
func (c *Configuration) Len() int {
	return c.registry.Len()
}

// All iterates over every known key with its currently effective value.
// The sequence is lazy and restartable; re-iterating reflects the
// current state rather than a frozen snapshot.
func (c *Configuration) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, key := range c.registry.Keys() {
			v, err := c.Get(key)
			if err != nil {
				continue
			}
			if !yield(key, v) {
				return
			}
		}
	}
}

// Export returns every known key with its effective value in serialized
// string form.
func (c *Configuration) Export() map[string]string {
	result := make(map[string]string, c.registry.Len())
	for _, key := range c.registry.Keys() {
		f, err := c.registry.Resolve(key)
		if err != nil {
			continue
		}
		v, err := c.Get(key)
		if err != nil {
			continue
		}
		raw, err := f.ToString(v)
		if err != nil {
			continue
		}
		result[key] = raw
	}
	return result
}

// Detail describes one key for the advanced configuration editor.
type Detail struct {
	// Name is the key without its section prefix.
	Name string
	// Field is the schema definition.
	Field *schema.Field
	// Value is the effective value in serialized form.
	Value string
	// UseDefault is true when no override is persisted.
	UseDefault bool
}

// SectionDetail groups details per section.
type SectionDetail struct {
	// Name is the section name.
	Name string
	// Items are the section's keys sorted by name.
	Items []Detail
}

// Details returns the per-section listing the admin configuration
// editor renders, default section first.
func (c *Configuration) Details() []SectionDetail {
	var result []SectionDetail
	for _, section := range c.registry.Sections() {
		sd := SectionDetail{Name: section}
		for _, f := range c.registry.Section(section) {
			c.mu.RLock()
			raw, hasRaw := c.values[f.Key]
			c.mu.RUnlock()

			d := Detail{Name: f.Name(), Field: f, UseDefault: !hasRaw}
			if hasRaw {
				d.Value = raw
			} else if s, err := f.ToString(f.Default); err == nil {
				d.Value = s
			}
			sd.Items = append(sd.Items, d)
		}
		result = append(result, sd)
	}
	return result
}

// Reload re-reads the backing file, replacing all in-memory state.
// The store never reloads on its own; this is the entry point for the
// file watcher or an explicit admin action. A missing file resets every
// key to its default.
func (c *Configuration) Reload() error {
	c.mu.Lock()
	err := c.load()
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if c.notifier != nil {
		c.notifier.Publish(notify.Change{Type: notify.ChangeReload})
	}
	return nil
}

// Touch updates the backing file's timestamps to trigger watchers.
func (c *Configuration) Touch() error {
	now := time.Now()
	return os.Chtimes(c.filename, now, now)
}

// ChangedExternal reports whether the backing file was modified on disk
// after it was last loaded or written by this store.
func (c *Configuration) ChangedExternal() bool {
	info, err := os.Stat(c.filename)
	if err != nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return info.ModTime().After(c.loadTime)
}

// effectiveLocked returns the effective typed value for a field. Caller
// must hold at least the read lock.
func (c *Configuration) effectiveLocked(f *schema.Field) any {
	if v, ok := c.converted[f.Key]; ok {
		return v
	}
	if raw, ok := c.values[f.Key]; ok {
		if v, err := f.FromString(raw); err == nil {
			return v
		}
	}
	return f.Default
}

// apply writes a transaction's staged changes: it computes the new
// override set with default-valued entries suppressed, rewrites the
// whole file through a temp-file-and-rename, and only then updates the
// in-memory maps. A write failure leaves both the file and memory in
// their pre-commit state.
func (c *Configuration) apply(staged map[string]string, converted map[string]any, removed map[string]bool) error {
	c.mu.Lock()

	newValues := make(map[string]string, len(c.values)+len(staged))
	for k, v := range c.values {
		newValues[k] = v
	}

	var changes []notify.Change
	for key, raw := range staged {
		f, err := c.registry.Resolve(key)
		if err != nil {
			continue
		}
		old := c.effectiveLocked(f)
		_, hadOverride := newValues[key]
		if f.Equal(converted[key], f.Default) {
			// Defaults are never persisted, even re-set explicitly.
			delete(newValues, key)
			if hadOverride {
				changes = append(changes, notify.Change{
					Key: key, Type: notify.ChangeDelete, Old: old, New: f.Default,
				})
			}
			continue
		}
		newValues[key] = raw
		changes = append(changes, notify.Change{
			Key: key, Type: notify.ChangeSet, Old: old, New: converted[key],
		})
	}
	for key := range removed {
		if _, ok := newValues[key]; !ok {
			continue
		}
		delete(newValues, key)
		if f, err := c.registry.Resolve(key); err == nil {
			changes = append(changes, notify.Change{
				Key: key, Type: notify.ChangeDelete, Old: c.effectiveLocked(f), New: f.Default,
			})
		}
	}

	data := inifile.Render(newValues, c.comments, schema.DefaultSection)
	if err := writeFileAtomic(c.filename, data); err != nil {
		c.mu.Unlock()
		c.logger.Error("could not write configuration", "file", c.filename, "error", err)
		return &TransactionError{Filename: c.filename, Err: err}
	}

	c.values = newValues
	for key, v := range converted {
		if _, ok := newValues[key]; ok {
			c.converted[key] = v
		} else {
			delete(c.converted, key)
		}
	}
	for key := range removed {
		delete(c.converted, key)
	}
	c.exists = true
	if info, err := os.Stat(c.filename); err == nil {
		c.loadTime = info.ModTime()
	} else {
		c.loadTime = time.Now()
	}
	c.mu.Unlock()

	if c.notifier != nil {
		for _, change := range changes {
			c.notifier.Publish(change)
		}
	}
	return nil
}

// writeFileAtomic writes data to a temporary file in the target's
// directory and renames it into place, so a crash or write error never
// leaves a half-written configuration behind.
func writeFileAtomic(filename string, data []byte) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, ".rezine-config-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, filename); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
