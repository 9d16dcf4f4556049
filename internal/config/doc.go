// Package config implements the Rezine configuration store: a typed,
// schema-validated key-value store backed by an ini-style text file in
// the instance folder.
//
// # Architecture
//
//   - schema: immutable registry of known variables with kinds and
//     defaults, assembled at startup from the built-in set plus plugin
//     contributions
//   - inifile: the on-disk document format (parsing, rendering,
//     quoting, comment preservation)
//   - config (this package): the store and its transactions
//   - notify: change events published on commit and reload
//   - watcher: tells the store to reload when the file changes on disk
//
// # Basic Usage
//
// Build the schema, open the store and read through it:
//
//	reg := schema.Builtin().Build()
//	cfg, err := config.New(filepath.Join(instance, "rezine.ini"), reg)
//	if err != nil {
//	    return err
//	}
//
//	title, err := cfg.GetString("blog_title")
//
// Only values differing from their schema default are ever persisted;
// everything else reads through to the default.
//
// # Transactions
//
// All writes go through transactions. A single change:
//
//	err := cfg.ChangeSingle("pings_enabled", false)
//
// Several changes applied atomically:
//
//	t := cfg.Edit()
//	t.Set("blog_title", "Another Blog Title")
//	t.RevertToDefault("pings_enabled")
//	err := t.Commit()
//
// Commit rewrites the whole file through a temp-file-and-rename and
// then updates the in-memory state; a failed write changes nothing.
// Each transaction commits at most once.
package config
