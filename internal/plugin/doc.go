// Package plugin loads Rezine extensions and collects their
// configuration contributions.
//
// A plugin is a directory containing a plugin.toml manifest. The
// manifest declares metadata plus the configuration variables the
// plugin adds to the schema; a plugin that needs to compute variables
// (choice sets, defaults derived from the environment) can additionally
// name a Lua setup script that registers variables through the rezine
// module.
//
// Plugins are discovered from the instance's plugin search paths before
// the configuration store is constructed; every contributed variable
// lands in the schema builder, where a key collision with the built-in
// set or another plugin fails startup.
//
// A minimal manifest:
//
//	name = "akismet_spam_filter"
//	version = "1.0.0"
//	description = "Filters comment spam through Akismet."
//
//	[[config]]
//	key = "api_key"
//	type = "string"
//	default = ""
//	description = "Your Akismet API key."
//
// Bare keys are namespaced under the plugin name, so the variable above
// becomes "akismet_spam_filter/api_key".
package plugin
