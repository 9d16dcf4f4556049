// Package inifile implements the on-disk document format of the Rezine
// configuration: a flat ini-style file with one override per line and
// sections grouping namespaced keys. Comment blocks are kept attached to
// the key or section heading that follows them so a rewrite preserves
// hand-written annotations.
package inifile

import (
	"bytes"
	"sort"
	"strings"
)

// EndComment is the pseudo key under which a trailing comment block at
// the end of the file is stored.
const EndComment = " end "

// SectionKey returns the comment-map key for a section heading.
func SectionKey(section string) string {
	return "[" + section + "]"
}

// SkippedLine records a line the parser could not interpret. Such lines
// are skipped, not fatal; the caller is expected to log them.
type SkippedLine struct {
	// Number is the 1-based line number.
	Number int
	// Text is the offending line.
	Text string
}

// Document is the parsed form of a configuration file.
type Document struct {
	// Values maps canonical keys (bare for the default section,
	// "section/name" otherwise) to their unquoted string values.
	Values map[string]string

	// Comments maps keys, section headings (via SectionKey) and
	// EndComment to the comment block preceding them.
	Comments map[string]string

	// Skipped lists lines that were neither comments, headings nor
	// key/value pairs.
	Skipped []SkippedLine
}

// Parse reads a configuration document. Lines starting with '#' or ';'
// and blank lines accumulate as the comment block of whatever follows.
// A non-comment line without '=' is recorded in Skipped and otherwise
// ignored.
func Parse(data []byte, defaultSection string) *Document {
	doc := &Document{
		Values:   make(map[string]string),
		Comments: make(map[string]string),
	}

	section := defaultSection
	var comment strings.Builder

	takeComment := func() string {
		block := comment.String()
		comment.Reset()
		if strings.TrimSpace(block) == "" {
			return ""
		}
		return block
	}

	for i, rawLine := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(rawLine)
		switch {
		case line == "" || line[0] == '#' || line[0] == ';':
			comment.WriteString(line)
			comment.WriteByte('\n')

		case line[0] == '[' && line[len(line)-1] == ']':
			section = strings.TrimSpace(line[1 : len(line)-1])
			if block := takeComment(); block != "" {
				doc.Comments[SectionKey(section)] = block
			}

		case strings.Contains(line, "="):
			name, value, _ := strings.Cut(line, "=")
			name = strings.TrimSpace(name)
			key := name
			if section != defaultSection {
				key = section + "/" + name
			}
			doc.Values[key] = UnquoteValue(strings.TrimSpace(value))
			if block := takeComment(); block != "" {
				doc.Comments[key] = block
			}

		default:
			doc.Skipped = append(doc.Skipped, SkippedLine{Number: i + 1, Text: line})
			comment.Reset()
		}
	}

	if block := takeComment(); block != "" {
		doc.Comments[EndComment] = block
	}

	return doc
}

// Render writes the document back out: the default section first, the
// remaining sections sorted, keys sorted within each section, preserved
// comment blocks in front of their headings and keys.
func Render(values map[string]string, comments map[string]string, defaultSection string) []byte {
	grouped := make(map[string][][2]string)
	for key, value := range values {
		section := defaultSection
		name := key
		if i := strings.IndexByte(key, '/'); i >= 0 {
			section, name = key[:i], key[i+1:]
		}
		grouped[section] = append(grouped[section], [2]string{name, value})
	}

	names := make([]string, 0, len(grouped))
	for section := range grouped {
		if section != defaultSection {
			names = append(names, section)
		}
	}
	sort.Strings(names)
	names = append([]string{defaultSection}, names...)

	var buf bytes.Buffer
	for idx, section := range names {
		items := grouped[section]
		sort.Slice(items, func(i, j int) bool { return items[i][0] < items[j][0] })

		if block, ok := comments[SectionKey(section)]; ok {
			buf.WriteString(block)
		} else if idx > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString("[" + section + "]\n")

		for _, item := range items {
			key := item[0]
			if section != defaultSection {
				key = section + "/" + item[0]
			}
			if block, ok := comments[key]; ok {
				buf.WriteString(block)
			}
			buf.WriteString(item[0] + " = " + QuoteValue(item[1]) + "\n")
		}
	}
	if block, ok := comments[EndComment]; ok {
		buf.WriteString(block)
	}

	return buf.Bytes()
}

// QuoteValue quotes a value for writing. Values that would survive the
// parser's whitespace trimming are written verbatim; anything with
// leading or trailing whitespace, surrounding quote characters or
// embedded newlines is escaped and wrapped in double quotes.
func QuoteValue(value string) string {
	if value == "" {
		return ""
	}
	if strings.TrimSpace(value) == value &&
		value[0] != '"' && value[0] != '\'' &&
		value[len(value)-1] != '"' && value[len(value)-1] != '\'' &&
		!strings.ContainsAny(value, "\n\r") {
		return value
	}
	escaped := strings.NewReplacer(
		`\`, `\\`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
		`"`, `\"`,
	).Replace(value)
	return `"` + escaped + `"`
}

// UnquoteValue is the inverse of QuoteValue.
func UnquoteValue(value string) string {
	if value == "" {
		return ""
	}
	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[0] == value[len(value)-1] {
		return unescape(value[1 : len(value)-1])
	}
	return value
}

// unescape resolves backslash escapes produced by QuoteValue.
func unescape(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			buf.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			buf.WriteByte('\n')
		case 'r':
			buf.WriteByte('\r')
		case 't':
			buf.WriteByte('\t')
		case '"':
			buf.WriteByte('"')
		case '\'':
			buf.WriteByte('\'')
		case '\\':
			buf.WriteByte('\\')
		default:
			buf.WriteByte('\\')
			buf.WriteByte(s[i])
		}
	}
	return buf.String()
}
