package schema

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultSection is the implicit section for bare keys.
const DefaultSection = "rezine"

// Canonical normalizes a key: the explicit default-section prefix
// collapses to the bare name, so "rezine/blog_title" and "blog_title"
// address the same field.
func Canonical(key string) string {
	return strings.TrimPrefix(key, DefaultSection+"/")
}

// Builder accumulates field definitions before the registry is sealed.
// The application adds the built-in set first, then plugin contributions;
// a duplicate key is a configuration error surfaced immediately.
type Builder struct {
	fields map[string]*Field
}

// NewBuilder creates an empty schema builder.
func NewBuilder() *Builder {
	return &Builder{fields: make(map[string]*Field)}
}

// Add registers a field definition. It returns ErrDuplicateKey if the
// key is already taken and a *ValueError if the default value does not
// match the declared kind.
func (b *Builder) Add(field Field) error {
	field.Key = Canonical(field.Key)
	if field.Key == "" {
		return fmt.Errorf("%w: empty key", ErrUnknownKey)
	}
	if _, exists := b.fields[field.Key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, field.Key)
	}
	if err := field.ValidateDefault(); err != nil {
		return fmt.Errorf("default for %s: %w", field.Key, err)
	}
	f := &field
	b.fields[field.Key] = f
	return nil
}

// MustAdd registers a field and panics on error. Used for the built-in
// set, where a failure is a programming error.
func (b *Builder) MustAdd(field Field) {
	if err := b.Add(field); err != nil {
		panic(err)
	}
}

// Build seals the builder into an immutable registry.
func (b *Builder) Build() *Registry {
	fields := make(map[string]*Field, len(b.fields))
	sections := make(map[string][]*Field)
	for key, f := range b.fields {
		fields[key] = f
		sections[f.Section()] = append(sections[f.Section()], f)
	}
	for _, list := range sections {
		sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	}
	return &Registry{fields: fields, sections: sections}
}

// Registry is the immutable mapping from configuration key to field
// definition. It is safe for concurrent use without locking because it
// is never mutated after Build.
type Registry struct {
	fields   map[string]*Field
	sections map[string][]*Field
}

// Resolve returns the field for the given key. It accepts namespaced
// keys ("section/name") and bare names; a bare name that exists under
// exactly one section resolves to it, while an ambiguous or unmatched
// name fails with ErrUnknownKey. An explicit section prefix pins the
// lookup to that section and never falls back to other sections.
func (r *Registry) Resolve(key string) (*Field, error) {
	canonical := Canonical(key)
	if f, ok := r.fields[canonical]; ok {
		return f, nil
	}
	if !strings.Contains(key, "/") {
		var found *Field
		suffix := "/" + key
		for k, f := range r.fields {
			if strings.HasSuffix(k, suffix) {
				if found != nil {
					return nil, fmt.Errorf("%w: %q matches multiple sections", ErrUnknownKey, key)
				}
				found = f
			}
		}
		if found != nil {
			return found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Has reports whether the key resolves to a registered field.
func (r *Registry) Has(key string) bool {
	_, err := r.Resolve(key)
	return err == nil
}

// Default returns the default value for a key, or an error if the key
// does not resolve.
func (r *Registry) Default(key string) (any, error) {
	f, err := r.Resolve(key)
	if err != nil {
		return nil, err
	}
	return f.Default, nil
}

// Keys returns all registered keys sorted lexicographically.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for key := range r.fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered fields.
func (r *Registry) Len() int {
	return len(r.fields)
}

// Section returns the fields of one section sorted by key.
func (r *Registry) Section(name string) []*Field {
	list := r.sections[name]
	result := make([]*Field, len(list))
	copy(result, list)
	return result
}

// Sections returns all section names sorted, with the default section
// first.
func (r *Registry) Sections() []string {
	names := make([]string, 0, len(r.sections))
	for name := range r.sections {
		if name != DefaultSection {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := r.sections[DefaultSection]; ok {
		names = append([]string{DefaultSection}, names...)
	}
	return names
}
