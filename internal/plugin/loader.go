package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/rezine-project/rezine/internal/config/schema"
)

// ManifestName is the manifest file every plugin directory carries.
const ManifestName = "plugin.toml"

// Plugin is a loaded extension.
type Plugin struct {
	Manifest

	// Dir is the plugin's directory.
	Dir string
}

// Load reads and validates the plugin at dir.
func Load(dir string) (*Plugin, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Join(dir, ManifestName), err)
	}

	p := &Plugin{Dir: dir}
	if err := toml.Unmarshal(data, &p.Manifest); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Join(dir, ManifestName), err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("plugin at %s: %w", dir, err)
	}
	return p, nil
}

// Discover loads every plugin found under the given search paths. A
// plugin is any direct subdirectory containing a plugin.toml. Missing
// search paths are skipped; two plugins sharing a name is an error.
// Results are sorted by name.
func Discover(searchPaths []string) ([]*Plugin, error) {
	seen := make(map[string]string) // name -> dir
	var plugins []*Plugin

	for _, searchPath := range searchPaths {
		entries, err := os.ReadDir(searchPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading plugin path %s: %w", searchPath, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(searchPath, entry.Name())
			if _, err := os.Stat(filepath.Join(dir, ManifestName)); err != nil {
				continue
			}
			p, err := Load(dir)
			if err != nil {
				return nil, err
			}
			if prev, ok := seen[p.Name]; ok {
				return nil, fmt.Errorf("%w: %s found in %s and %s", ErrDuplicatePlugin, p.Name, prev, dir)
			}
			seen[p.Name] = dir
			plugins = append(plugins, p)
		}
	}

	sort.Slice(plugins, func(i, j int) bool { return plugins[i].Name < plugins[j].Name })
	return plugins, nil
}

// Contribute adds every plugin's configuration variables to the schema
// builder: first the manifest declarations, then whatever the setup
// script registers. A key collision surfaces here, at startup.
func Contribute(b *schema.Builder, plugins []*Plugin) error {
	for _, p := range plugins {
		for i := range p.ConfigVars {
			field, err := p.ConfigVars[i].Field(p.Name)
			if err != nil {
				return err
			}
			if err := b.Add(field); err != nil {
				return fmt.Errorf("plugin %s: %w", p.Name, err)
			}
		}
		if p.Setup != "" {
			if err := p.runSetup(b); err != nil {
				return err
			}
		}
	}
	return nil
}
