package plugin

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rezine-project/rezine/internal/config/schema"
)

// Manifest describes a plugin's metadata and configuration
// contributions, read from plugin.toml.
type Manifest struct {
	// Name is the unique plugin identifier, a lowercase identifier
	// also used as the section for bare config keys.
	Name string `toml:"name"`

	// Version is a dotted-numeric version.
	Version string `toml:"version"`

	// DisplayName is a human-readable name.
	DisplayName string `toml:"display_name"`

	// Description is a short description for the plugin listing.
	Description string `toml:"description"`

	// Author is the author name or organization.
	Author string `toml:"author"`

	// License is an SPDX license identifier.
	License string `toml:"license"`

	// Homepage is the plugin homepage URL.
	Homepage string `toml:"homepage"`

	// Setup optionally names a Lua script, relative to the plugin
	// directory, that registers further configuration variables.
	Setup string `toml:"setup"`

	// ConfigVars are statically declared configuration variables.
	ConfigVars []ConfigVar `toml:"config"`
}

// ConfigVar declares one configuration variable contributed by a
// plugin.
type ConfigVar struct {
	// Key is the variable name; bare names are namespaced under the
	// plugin name.
	Key string `toml:"key"`

	// Type is one of string, integer, float, boolean, string-list,
	// choice.
	Type string `toml:"type"`

	// Default is the default value; omitted means the kind's zero
	// value.
	Default any `toml:"default"`

	// Description is human-readable documentation.
	Description string `toml:"description"`

	// Choices lists allowed values for choice variables.
	Choices []string `toml:"choices"`
}

var (
	namePattern    = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	versionPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)
)

// Validate checks the manifest for structural errors.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return ErrMissingName
	}
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, m.Name)
	}
	if m.Version == "" {
		return ErrMissingVersion
	}
	if !versionPattern.MatchString(m.Version) {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, m.Version)
	}
	if m.Setup != "" && filepath.Ext(m.Setup) != ".lua" {
		return fmt.Errorf("%w: %q", ErrInvalidSetup, m.Setup)
	}
	for i := range m.ConfigVars {
		if _, err := m.ConfigVars[i].Field(m.Name); err != nil {
			return err
		}
	}
	return nil
}

// Field converts the declaration into a schema field, namespacing bare
// keys under the given plugin name.
func (v *ConfigVar) Field(pluginName string) (schema.Field, error) {
	kind, ok := kindFromName(v.Type)
	if !ok {
		return schema.Field{}, fmt.Errorf("%w: %q for %s", ErrInvalidConfigType, v.Type, v.Key)
	}

	key := v.Key
	if !strings.Contains(key, "/") {
		key = pluginName + "/" + key
	}

	def, err := normalizeDefault(kind, v.Default)
	if err != nil {
		return schema.Field{}, fmt.Errorf("config variable %s: %w", key, err)
	}

	return schema.Field{
		Key:         key,
		Kind:        kind,
		Default:     def,
		Description: v.Description,
		Choices:     v.Choices,
	}, nil
}

// kindFromName maps manifest type names to schema kinds.
func kindFromName(name string) (schema.Kind, bool) {
	switch name {
	case "string":
		return schema.KindString, true
	case "integer", "int":
		return schema.KindInt, true
	case "float", "number":
		return schema.KindFloat, true
	case "boolean", "bool":
		return schema.KindBool, true
	case "string-list", "list":
		return schema.KindStringList, true
	case "choice", "enum":
		return schema.KindChoice, true
	}
	return 0, false
}

// normalizeDefault converts a TOML-decoded default into the Go type the
// schema expects for the kind. A nil default becomes the kind's zero
// value.
func normalizeDefault(kind schema.Kind, raw any) (any, error) {
	switch kind {
	case schema.KindString, schema.KindChoice:
		if raw == nil {
			return "", nil
		}
		if s, ok := raw.(string); ok {
			return s, nil
		}

	case schema.KindInt:
		switch n := raw.(type) {
		case nil:
			return 0, nil
		case int64:
			return int(n), nil
		case int:
			return n, nil
		case float64:
			if n == float64(int(n)) {
				return int(n), nil
			}
		}

	case schema.KindFloat:
		switch x := raw.(type) {
		case nil:
			return 0.0, nil
		case float64:
			return x, nil
		case int64:
			return float64(x), nil
		case int:
			return float64(x), nil
		}

	case schema.KindBool:
		if raw == nil {
			return false, nil
		}
		if b, ok := raw.(bool); ok {
			return b, nil
		}

	case schema.KindStringList:
		switch list := raw.(type) {
		case nil:
			return []string{}, nil
		case []string:
			return list, nil
		case []any:
			items := make([]string, len(list))
			for i, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("default list element %d is %T, want string", i, item)
				}
				items[i] = s
			}
			return items, nil
		}
	}
	return nil, fmt.Errorf("default %v (%T) does not match type %s", raw, raw, kind)
}
