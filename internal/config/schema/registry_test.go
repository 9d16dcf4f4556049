package schema

import (
	"errors"
	"testing"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	b := NewBuilder()
	b.MustAdd(Field{Key: "blog_title", Kind: KindString, Default: "My Blog"})
	b.MustAdd(Field{Key: "posts_per_page", Kind: KindInt, Default: 10})
	b.MustAdd(Field{Key: "akismet/api_key", Kind: KindString, Default: ""})
	b.MustAdd(Field{Key: "akismet/timeout", Kind: KindInt, Default: 5})
	b.MustAdd(Field{Key: "sitemap/timeout", Kind: KindInt, Default: 5})
	return b.Build()
}

func TestRegistry_Resolve(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		key     string
		wantKey string
		wantErr bool
	}{
		{"blog_title", "blog_title", false},
		{"rezine/blog_title", "blog_title", false},
		{"akismet/api_key", "akismet/api_key", false},
		// Bare name unique under one section resolves.
		{"api_key", "akismet/api_key", false},
		// An explicit section prefix pins the lookup: the default
		// section has no api_key, so this must not borrow akismet's.
		{"rezine/api_key", "", true},
		{"sitemap/api_key", "", true},
		// Ambiguous bare name fails.
		{"timeout", "", true},
		{"no_such_key", "", true},
		{"rezine/no_such_key", "", true},
	}

	for _, tt := range tests {
		f, err := r.Resolve(tt.key)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Resolve(%q) = %q, want error", tt.key, f.Key)
			} else if !errors.Is(err, ErrUnknownKey) {
				t.Errorf("Resolve(%q) error %v does not match ErrUnknownKey", tt.key, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Resolve(%q) error: %v", tt.key, err)
			continue
		}
		if f.Key != tt.wantKey {
			t.Errorf("Resolve(%q) = %q, want %q", tt.key, f.Key, tt.wantKey)
		}
	}
}

func TestRegistry_Default(t *testing.T) {
	r := testRegistry(t)

	v, err := r.Default("posts_per_page")
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if v != 10 {
		t.Errorf("Default(posts_per_page) = %v, want 10", v)
	}

	if _, err := r.Default("no_such_key"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Default(no_such_key) error = %v, want ErrUnknownKey", err)
	}
}

func TestRegistry_Sections(t *testing.T) {
	r := testRegistry(t)

	sections := r.Sections()
	if len(sections) != 3 {
		t.Fatalf("Sections() = %v, want 3 sections", sections)
	}
	if sections[0] != DefaultSection {
		t.Errorf("Sections()[0] = %q, want %q first", sections[0], DefaultSection)
	}

	akismet := r.Section("akismet")
	if len(akismet) != 2 {
		t.Fatalf("Section(akismet) has %d fields, want 2", len(akismet))
	}
	if akismet[0].Key != "akismet/api_key" {
		t.Errorf("Section(akismet)[0] = %q, want sorted order", akismet[0].Key)
	}
}

func TestBuilder_DuplicateKey(t *testing.T) {
	b := NewBuilder()
	b.MustAdd(Field{Key: "blog_title", Kind: KindString, Default: ""})

	err := b.Add(Field{Key: "blog_title", Kind: KindString, Default: ""})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("Add duplicate = %v, want ErrDuplicateKey", err)
	}

	// The canonical form collides with the bare form too.
	err = b.Add(Field{Key: "rezine/blog_title", Kind: KindString, Default: ""})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("Add rezine/blog_title = %v, want ErrDuplicateKey", err)
	}
}

func TestBuilder_BadDefault(t *testing.T) {
	b := NewBuilder()
	err := b.Add(Field{Key: "posts_per_page", Kind: KindInt, Default: "ten"})
	if err == nil {
		t.Fatal("Add accepted a mistyped default")
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"rezine/blog_title", "blog_title"},
		{"blog_title", "blog_title"},
		{"akismet/api_key", "akismet/api_key"},
	}
	for _, tt := range tests {
		if got := Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuiltin(t *testing.T) {
	r := Builtin().Build()

	v, err := r.Default("blog_title")
	if err != nil {
		t.Fatalf("Default(blog_title): %v", err)
	}
	if v != "My Rezine Blog" {
		t.Errorf("Default(blog_title) = %q, want %q", v, "My Rezine Blog")
	}

	if !r.Has("rezine/blog_title") {
		t.Error("rezine/blog_title should resolve to the built-in key")
	}
	if r.Has("foobar") {
		t.Error("foobar should not resolve")
	}

	f, err := r.Resolve("language")
	if err != nil {
		t.Fatalf("Resolve(language): %v", err)
	}
	if f.Kind != KindChoice || len(f.Choices) == 0 {
		t.Errorf("language should be a choice field with a language catalog, got kind %s with %d choices", f.Kind, len(f.Choices))
	}

	if _, err := f.FromString("en"); err != nil {
		t.Errorf("language should accept en: %v", err)
	}
	if _, err := f.FromString("tlh"); err == nil {
		t.Error("language accepted an unsupported code")
	}
}

func TestBuiltin_TimezoneAcceptsAnyIANAZone(t *testing.T) {
	r := Builtin().Build()

	f, err := r.Resolve("timezone")
	if err != nil {
		t.Fatalf("Resolve(timezone): %v", err)
	}

	// Zones outside the curated dropdown list are still valid.
	for _, zone := range []string{"Asia/Kathmandu", "Atlantic/Faroe", "UTC"} {
		if _, err := f.FromString(zone); err != nil {
			t.Errorf("timezone rejected %q: %v", zone, err)
		}
		if _, err := f.ToString(zone); err != nil {
			t.Errorf("timezone could not serialize %q: %v", zone, err)
		}
	}

	if _, err := f.FromString("Mars/Olympus_Mons"); err == nil {
		t.Error("timezone accepted a nonexistent zone")
	}
	if len(f.Choices) == 0 {
		t.Error("timezone should keep the curated dropdown list")
	}
}
