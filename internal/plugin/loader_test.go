package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rezine-project/rezine/internal/config/schema"
)

func writePlugin(t *testing.T, root, name string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for file, content := range files {
		if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writePlugin(t, t.TempDir(), "akismet", map[string]string{
		ManifestName: "name = \"akismet\"\nversion = \"1.0\"\n",
	})

	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "akismet" || p.Dir != dir {
		t.Errorf("loaded %q from %q", p.Name, p.Dir)
	}
}

func TestLoad_InvalidManifest(t *testing.T) {
	dir := writePlugin(t, t.TempDir(), "bad", map[string]string{
		ManifestName: "name = \"Bad Name\"\nversion = \"1.0\"\n",
	})

	if _, err := Load(dir); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("Load = %v, want ErrInvalidName", err)
	}
}

func TestDiscover(t *testing.T) {
	path1 := t.TempDir()
	path2 := t.TempDir()
	writePlugin(t, path1, "sitemap", map[string]string{
		ManifestName: "name = \"sitemap\"\nversion = \"1.0\"\n",
	})
	writePlugin(t, path2, "akismet", map[string]string{
		ManifestName: "name = \"akismet\"\nversion = \"1.0\"\n",
	})
	// A directory without a manifest is not a plugin.
	if err := os.MkdirAll(filepath.Join(path1, "not_a_plugin"), 0o755); err != nil {
		t.Fatal(err)
	}

	plugins, err := Discover([]string{path1, path2, filepath.Join(path1, "missing")})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(plugins) != 2 {
		t.Fatalf("found %d plugins, want 2", len(plugins))
	}
	if plugins[0].Name != "akismet" || plugins[1].Name != "sitemap" {
		t.Errorf("plugins not sorted by name: %s, %s", plugins[0].Name, plugins[1].Name)
	}
}

func TestDiscover_DuplicateName(t *testing.T) {
	path1 := t.TempDir()
	path2 := t.TempDir()
	manifest := "name = \"akismet\"\nversion = \"1.0\"\n"
	writePlugin(t, path1, "akismet", map[string]string{ManifestName: manifest})
	writePlugin(t, path2, "akismet", map[string]string{ManifestName: manifest})

	if _, err := Discover([]string{path1, path2}); !errors.Is(err, ErrDuplicatePlugin) {
		t.Fatalf("Discover = %v, want ErrDuplicatePlugin", err)
	}
}

func TestContribute_ManifestVars(t *testing.T) {
	dir := writePlugin(t, t.TempDir(), "akismet", map[string]string{
		ManifestName: `name = "akismet"
version = "1.0"

[[config]]
key = "api_key"
type = "string"
default = ""
`,
	})

	p, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	b := schema.NewBuilder()
	if err := Contribute(b, []*Plugin{p}); err != nil {
		t.Fatalf("Contribute: %v", err)
	}
	r := b.Build()

	if !r.Has("akismet/api_key") {
		t.Error("manifest config var not registered")
	}
}

func TestContribute_LuaSetup(t *testing.T) {
	dir := writePlugin(t, t.TempDir(), "pygments", map[string]string{
		ManifestName: "name = \"pygments\"\nversion = \"1.0\"\nsetup = \"setup.lua\"\n",
		"setup.lua": `
rezine.add_config_var("style", {
  type = "choice",
  default = "default",
  choices = {"default", "borland", "tango"},
  description = "The pygments style for source highlighting.",
})
rezine.add_config_var("line_numbers", { type = "boolean", default = false })
rezine.add_config_var("tab_width", { type = "integer", default = 8 })
`,
	})

	p, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	b := schema.NewBuilder()
	if err := Contribute(b, []*Plugin{p}); err != nil {
		t.Fatalf("Contribute: %v", err)
	}
	r := b.Build()

	f, err := r.Resolve("pygments/style")
	if err != nil {
		t.Fatalf("Resolve(pygments/style): %v", err)
	}
	if f.Kind != schema.KindChoice || len(f.Choices) != 3 {
		t.Errorf("style field = kind %s choices %v", f.Kind, f.Choices)
	}
	if f.Default != "default" {
		t.Errorf("style default = %v", f.Default)
	}

	if d, _ := r.Default("pygments/tab_width"); d != 8 {
		t.Errorf("tab_width default = %v, want int 8", d)
	}
	if d, _ := r.Default("pygments/line_numbers"); d != false {
		t.Errorf("line_numbers default = %v", d)
	}
}

func TestContribute_LuaSetupError(t *testing.T) {
	dir := writePlugin(t, t.TempDir(), "broken", map[string]string{
		ManifestName: "name = \"broken\"\nversion = \"1.0\"\nsetup = \"setup.lua\"\n",
		"setup.lua":  `rezine.add_config_var("x", { type = "blob" })`,
	})

	p, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	b := schema.NewBuilder()
	err = Contribute(b, []*Plugin{p})
	var serr *SetupError
	if !errors.As(err, &serr) {
		t.Fatalf("Contribute = %v, want *SetupError", err)
	}
	if serr.Plugin != "broken" {
		t.Errorf("SetupError.Plugin = %q", serr.Plugin)
	}
}

func TestContribute_CollisionWithBuiltin(t *testing.T) {
	dir := writePlugin(t, t.TempDir(), "rogue", map[string]string{
		ManifestName: `name = "rogue"
version = "1.0"

[[config]]
key = "rezine/blog_title"
type = "string"
default = ""
`,
	})

	p, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	b := schema.Builtin()
	if err := Contribute(b, []*Plugin{p}); !errors.Is(err, schema.ErrDuplicateKey) {
		t.Fatalf("Contribute = %v, want ErrDuplicateKey", err)
	}
}

func TestContribute_SandboxBlocksOS(t *testing.T) {
	dir := writePlugin(t, t.TempDir(), "sneaky", map[string]string{
		ManifestName: "name = \"sneaky\"\nversion = \"1.0\"\nsetup = \"setup.lua\"\n",
		"setup.lua":  `os.remove("/tmp/x")`,
	})

	p, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	b := schema.NewBuilder()
	err = Contribute(b, []*Plugin{p})
	var serr *SetupError
	if !errors.As(err, &serr) {
		t.Fatalf("Contribute = %v, want *SetupError for a script touching os", err)
	}
}
