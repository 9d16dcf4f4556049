package schema

import (
	"fmt"

	"github.com/rezine-project/rezine/internal/i18n"
)

// checkTimezone accepts every IANA zone, not just the curated list.
func checkTimezone(name string) error {
	if !i18n.ValidTimezone(name) {
		return fmt.Errorf("unknown timezone %q", name)
	}
	return nil
}

// Builtin returns a builder preloaded with the variables the Rezine core
// uses. Plugin contributions are added on top before Build.
func Builtin() *Builder {
	b := NewBuilder()

	// core system settings
	b.MustAdd(Field{
		Key: "database_uri", Kind: KindString, Default: "",
		Description: "The database URI. For more information about database settings consult the Rezine help.",
	})
	b.MustAdd(Field{
		Key: "force_https", Kind: KindBool, Default: false,
		Description: "If a request to an http URL comes in, Rezine will redirect to the same URL on https if this is safely possible. This requires a working SSL setup.",
	})
	b.MustAdd(Field{
		Key: "database_debug", Kind: KindBool, Default: false,
		Description: "If enabled, the database will collect all SQL statements and add them to the bottom of the page for easier debugging.",
	})
	b.MustAdd(Field{
		Key: "blog_title", Kind: KindString, Default: "My Rezine Blog",
	})
	b.MustAdd(Field{
		Key: "blog_tagline", Kind: KindString, Default: "just another Rezine blog",
	})
	b.MustAdd(Field{
		Key: "blog_url", Kind: KindString, Default: "",
		Description: "The base URL of the blog. This has to be set to a full canonical URL (including http or https). Remember to change this value if you move your blog to a new location.",
	})
	b.MustAdd(Field{
		Key: "blog_email", Kind: KindString, Default: "",
		Description: "The email address given here is used by the notification system to send emails from. Plugins that send mails use this address as the sender address.",
	})
	b.MustAdd(Field{
		Key: "timezone", Kind: KindChoice, Default: "UTC",
		// Any IANA zone is valid; the listed choices only feed the
		// admin editor's dropdown.
		Choices:     i18n.Timezones(),
		Check:       checkTimezone,
		Description: "The timezone of the blog. All times and dates in the user interface and on the website are shown in this timezone. It is safe to change the timezone after posts are created because the information in the database is stored as UTC.",
	})
	b.MustAdd(Field{
		Key: "primary_author", Kind: KindString, Default: "",
		Description: "If this blog is written primarily by one author, some themes can skip the author's name on posts unless written by a guest.",
	})
	b.MustAdd(Field{
		Key: "maintenance_mode", Kind: KindBool, Default: false,
		Description: "If set to true, the blog enables the maintenance mode.",
	})
	b.MustAdd(Field{
		Key: "session_cookie_name", Kind: KindString, Default: "rezine_session",
		Description: "If there are multiple Rezine installations on the same host, the cookie name should be set to something different for each blog.",
	})
	b.MustAdd(Field{
		Key: "theme", Kind: KindString, Default: "default",
	})
	b.MustAdd(Field{
		Key: "secret_key", Kind: KindString, Default: "",
		Description: "The secret key is used for various security related tasks in the system. For example, the cookie is signed with this value.",
	})
	b.MustAdd(Field{
		Key: "language", Kind: KindChoice, Default: "en",
		Choices: i18n.LanguageCodes(),
	})
	b.MustAdd(Field{
		Key: "iid", Kind: KindString, Default: "",
		Description: "The iid uniquely identifies the Rezine instance. Once set you should not modify it.",
	})

	// log and development settings
	b.MustAdd(Field{
		Key: "log_file", Kind: KindString, Default: "rezine.log",
	})
	b.MustAdd(Field{
		Key: "log_level", Kind: KindChoice, Default: "warning",
		Choices: []string{"debug", "info", "warning", "error", "critical"},
	})
	b.MustAdd(Field{
		Key: "log_email_only", Kind: KindBool, Default: false,
		Description: "During development activating this is helpful to log emails into a mail.log file in your instance folder instead of delivering them to your MTA.",
	})
	b.MustAdd(Field{
		Key: "passthrough_errors", Kind: KindBool, Default: false,
		Description: "If this is set to true, errors in Rezine are not caught so that debuggers can catch them instead. This is useful for plugin and core development.",
	})

	// url settings
	b.MustAdd(Field{Key: "blog_url_prefix", Kind: KindString, Default: ""})
	b.MustAdd(Field{Key: "account_url_prefix", Kind: KindString, Default: "/account"})
	b.MustAdd(Field{Key: "admin_url_prefix", Kind: KindString, Default: "/admin"})
	b.MustAdd(Field{Key: "category_url_prefix", Kind: KindString, Default: "/categories"})
	b.MustAdd(Field{Key: "tags_url_prefix", Kind: KindString, Default: "/tags"})
	b.MustAdd(Field{Key: "profiles_url_prefix", Kind: KindString, Default: "/authors"})
	b.MustAdd(Field{
		Key: "post_url_format", Kind: KindString, Default: "%year%/%month%/%day%/%slug%",
		Description: "Use %year%, %month%, %day%, %hour%, %minute% and %second%. Changes here will only affect new posts.",
	})
	b.MustAdd(Field{
		Key: "ascii_slugs", Kind: KindBool, Default: true,
		Description: "Automatically generated slugs are limited to ASCII.",
	})
	b.MustAdd(Field{
		Key: "fixed_url_date_digits", Kind: KindBool, Default: false,
		Description: "Dates are zero padded like 2009/04/22 instead of 2009/4/22.",
	})

	// cache settings
	b.MustAdd(Field{Key: "enable_eager_caching", Kind: KindBool, Default: false})
	b.MustAdd(Field{Key: "cache_timeout", Kind: KindInt, Default: 300})
	b.MustAdd(Field{
		Key: "cache_system", Kind: KindChoice, Default: "null",
		Choices: []string{"null", "simple", "memcached", "filesystem"},
	})
	b.MustAdd(Field{Key: "memcached_servers", Kind: KindStringList, Default: []string{}})
	b.MustAdd(Field{Key: "filesystem_cache_path", Kind: KindString, Default: "cache"})

	// markup parsers. The choice sets are open because parsers are
	// registered by plugins at runtime.
	b.MustAdd(Field{Key: "default_parser", Kind: KindChoice, Default: "zeml"})
	b.MustAdd(Field{Key: "comment_parser", Kind: KindChoice, Default: "text"})

	// comments and pingback
	b.MustAdd(Field{Key: "comments_enabled", Kind: KindBool, Default: true})
	b.MustAdd(Field{
		Key: "moderate_comments", Kind: KindInt, Default: 1,
		Description: "0 approves all comments automatically, 1 requires an administrator to approve every comment, 2 approves comments by known comment authors.",
	})
	b.MustAdd(Field{
		Key: "comments_open_for", Kind: KindInt, Default: 0,
		Description: "The number of days commenting is possible. If set to zero, comments will be open forever.",
	})
	b.MustAdd(Field{Key: "pings_enabled", Kind: KindBool, Default: true})
	b.MustAdd(Field{
		Key: "plaintext_parser_nolinks", Kind: KindBool, Default: false,
		Description: "If set to true, the plaintext parser will not create links automatically.",
	})

	// post view
	b.MustAdd(Field{
		Key: "posts_per_page", Kind: KindInt, Default: 10,
		Description: "The number of posts that are shown on a page. This value might not be honored by some themes and is probably only used for the index page.",
	})
	b.MustAdd(Field{Key: "use_flat_comments", Kind: KindBool, Default: false})
	b.MustAdd(Field{Key: "index_content_types", Kind: KindStringList, Default: []string{"entry"}})

	// pages
	b.MustAdd(Field{Key: "show_page_title", Kind: KindBool, Default: true})
	b.MustAdd(Field{Key: "show_page_children", Kind: KindBool, Default: true})

	// email settings
	b.MustAdd(Field{Key: "smtp_host", Kind: KindString, Default: "localhost"})
	b.MustAdd(Field{Key: "smtp_port", Kind: KindInt, Default: 25})
	b.MustAdd(Field{Key: "smtp_user", Kind: KindString, Default: ""})
	b.MustAdd(Field{Key: "smtp_password", Kind: KindString, Default: ""})
	b.MustAdd(Field{Key: "smtp_use_tls", Kind: KindBool, Default: false})

	// network settings
	b.MustAdd(Field{
		Key: "default_network_timeout", Kind: KindInt, Default: 5,
		Description: "This timeout is used by default for all network related operations.",
	})

	// plugin settings
	b.MustAdd(Field{Key: "plugin_guard", Kind: KindBool, Default: true})
	b.MustAdd(Field{Key: "plugins", Kind: KindStringList, Default: []string{}})
	b.MustAdd(Field{
		Key: "plugin_searchpath", Kind: KindStringList, Default: []string{},
		Description: "One or more comma separated paths that are searched for plugins. If a path is not absolute, it is considered relative to the instance folder.",
	})

	// admin settings
	b.MustAdd(Field{
		Key: "dashboard_reddit", Kind: KindBool, Default: true,
		Description: "Set this to true if you want to see the most recent entries on the Rezine reddit on your dashboard.",
	})

	return b
}
