// Package i18n provides the language and timezone catalogs consumed by
// the configuration schema and the admin interface.
package i18n

import (
	"sort"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is one selectable interface language.
type Language struct {
	// Code is the BCP 47 tag used as the stored configuration value.
	Code string
	// Name is the language's self name, for display.
	Name string
}

// supported lists the interface languages translation catalogs exist for.
var supported = []language.Tag{
	language.English,
	language.German,
	language.French,
	language.Spanish,
	language.Italian,
	language.Portuguese,
	language.Dutch,
	language.Polish,
	language.Russian,
	language.Japanese,
	language.Korean,
	language.SimplifiedChinese,
	language.TraditionalChinese,
}

// Languages returns the supported languages sorted by code.
func Languages() []Language {
	langs := make([]Language, 0, len(supported))
	for _, tag := range supported {
		langs = append(langs, Language{
			Code: tag.String(),
			Name: display.Self.Name(tag),
		})
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i].Code < langs[j].Code })
	return langs
}

// LanguageCodes returns the codes of all supported languages, sorted.
func LanguageCodes() []string {
	langs := Languages()
	codes := make([]string, len(langs))
	for i, l := range langs {
		codes[i] = l.Code
	}
	return codes
}

// HasLanguage reports whether a language code is supported.
func HasLanguage(code string) bool {
	for _, tag := range supported {
		if tag.String() == code {
			return true
		}
	}
	return false
}

// timezones is the set of zones offered in the configuration editor.
// Kept deliberately small; any IANA zone name validates through
// ValidTimezone even if it is not listed here.
var timezones = []string{
	"UTC",
	"Africa/Cairo",
	"Africa/Johannesburg",
	"Africa/Lagos",
	"America/Anchorage",
	"America/Argentina/Buenos_Aires",
	"America/Chicago",
	"America/Denver",
	"America/Halifax",
	"America/Los_Angeles",
	"America/Mexico_City",
	"America/New_York",
	"America/Sao_Paulo",
	"America/Toronto",
	"Asia/Dubai",
	"Asia/Hong_Kong",
	"Asia/Jakarta",
	"Asia/Jerusalem",
	"Asia/Kolkata",
	"Asia/Seoul",
	"Asia/Shanghai",
	"Asia/Singapore",
	"Asia/Tokyo",
	"Australia/Melbourne",
	"Australia/Perth",
	"Australia/Sydney",
	"Europe/Amsterdam",
	"Europe/Berlin",
	"Europe/Dublin",
	"Europe/Helsinki",
	"Europe/Lisbon",
	"Europe/London",
	"Europe/Madrid",
	"Europe/Moscow",
	"Europe/Paris",
	"Europe/Prague",
	"Europe/Rome",
	"Europe/Stockholm",
	"Europe/Vienna",
	"Europe/Warsaw",
	"Pacific/Auckland",
	"Pacific/Honolulu",
}

// Timezones returns the zone names offered for the timezone setting,
// sorted.
func Timezones() []string {
	result := make([]string, len(timezones))
	copy(result, timezones)
	sort.Strings(result)
	return result
}

// ValidTimezone reports whether name loads as an IANA timezone.
func ValidTimezone(name string) bool {
	if name == "" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}
