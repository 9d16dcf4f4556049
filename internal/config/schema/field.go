// Package schema provides the configuration schema registry for Rezine.
//
// The registry maintains definitions of all known configuration variables
// with their types, defaults and metadata. It is assembled once at startup
// from the built-in variable set plus any plugin contributions, and is
// immutable afterwards. Coercion between the on-disk string form and the
// typed in-memory form is driven by each field's kind.
package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the data type of a configuration field.
type Kind uint8

const (
	// KindString is a free-form string value.
	KindString Kind = iota
	// KindInt is an integer value.
	KindInt
	// KindFloat is a floating-point value.
	KindFloat
	// KindBool is a boolean value, serialized as True/False.
	KindBool
	// KindStringList is a comma-separated list of strings.
	KindStringList
	// KindChoice is a string restricted to a fixed set of values.
	// A choice field with an empty choice set accepts any string; such
	// fields (parser names, for example) are constrained by collaborators
	// that register the valid values at runtime.
	KindChoice
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindStringList:
		return "string-list"
	case KindChoice:
		return "choice"
	default:
		return "unknown"
	}
}

// Field defines a configuration variable with its metadata.
type Field struct {
	// Key is the fully-qualified name, either "section/name" or a bare
	// name living in the implicit "rezine" section.
	Key string

	// Kind is the field's data type.
	Kind Kind

	// Default is the typed default value, used whenever no override is
	// persisted. Its Go type must match the kind (string, int, float64,
	// bool or []string).
	Default any

	// Description is human-readable documentation.
	Description string

	// Choices lists the allowed values for choice fields. When Check is
	// set, Choices are suggestions for the admin editor only.
	Choices []string

	// Check optionally validates choice values instead of a Choices
	// membership test, for open sets like IANA timezones where listing
	// every valid value is impractical.
	Check func(value string) error
}

// Section returns the section the field belongs to.
func (f *Field) Section() string {
	if i := strings.IndexByte(f.Key, '/'); i >= 0 {
		return f.Key[:i]
	}
	return DefaultSection
}

// Name returns the field's name without its section prefix.
func (f *Field) Name() string {
	if i := strings.IndexByte(f.Key, '/'); i >= 0 {
		return f.Key[i+1:]
	}
	return f.Key
}

// FromString coerces a serialized string into the field's typed value.
// It returns a *ValueError if the string cannot be parsed as the
// declared kind.
func (f *Field) FromString(raw string) (any, error) {
	switch f.Kind {
	case KindString:
		return raw, nil

	case KindInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, f.valueError(raw, "not an integer")
		}
		return n, nil

	case KindFloat:
		x, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, f.valueError(raw, "not a number")
		}
		return x, nil

	case KindBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
		return nil, f.valueError(raw, "not a boolean")

	case KindStringList:
		return splitList(raw), nil

	case KindChoice:
		val := strings.TrimSpace(raw)
		if f.Check != nil {
			if err := f.Check(val); err != nil {
				return nil, f.valueError(raw, err.Error())
			}
		} else if len(f.Choices) > 0 && !containsString(f.Choices, val) {
			return nil, f.valueError(raw, fmt.Sprintf("must be one of %v", f.Choices))
		}
		return val, nil

	default:
		return nil, f.valueError(raw, "unknown field kind")
	}
}

// ToString formats a typed value into its serialized string form, the
// exact inverse of FromString. It returns a *ValueError if the value's
// type does not match the field's kind.
func (f *Field) ToString(value any) (string, error) {
	switch f.Kind {
	case KindString:
		s, ok := value.(string)
		if !ok {
			return "", f.typeError(value, "string")
		}
		return s, nil

	case KindInt:
		switch n := value.(type) {
		case int:
			return strconv.Itoa(n), nil
		case int64:
			return strconv.FormatInt(n, 10), nil
		}
		return "", f.typeError(value, "integer")

	case KindFloat:
		switch x := value.(type) {
		case float64:
			return strconv.FormatFloat(x, 'g', -1, 64), nil
		case int:
			return strconv.Itoa(x), nil
		}
		return "", f.typeError(value, "number")

	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return "", f.typeError(value, "boolean")
		}
		if b {
			return "True", nil
		}
		return "False", nil

	case KindStringList:
		items, ok := value.([]string)
		if !ok {
			return "", f.typeError(value, "string list")
		}
		return strings.Join(items, ", "), nil

	case KindChoice:
		s, ok := value.(string)
		if !ok {
			return "", f.typeError(value, "string")
		}
		if f.Check != nil {
			if err := f.Check(s); err != nil {
				return "", f.valueError(s, err.Error())
			}
		} else if len(f.Choices) > 0 && !containsString(f.Choices, s) {
			return "", f.valueError(s, fmt.Sprintf("must be one of %v", f.Choices))
		}
		return s, nil

	default:
		return "", f.valueError(fmt.Sprintf("%v", value), "unknown field kind")
	}
}

// ValidateDefault checks that the field's default value matches its kind.
// Called at registration time so a bad schema entry fails at startup
// rather than on first read.
func (f *Field) ValidateDefault() error {
	_, err := f.ToString(f.Default)
	return err
}

func (f *Field) valueError(raw, reason string) *ValueError {
	return &ValueError{Key: f.Key, Kind: f.Kind, Raw: raw, Reason: reason}
}

func (f *Field) typeError(value any, expected string) *ValueError {
	return &ValueError{
		Key:    f.Key,
		Kind:   f.Kind,
		Raw:    fmt.Sprintf("%v", value),
		Reason: fmt.Sprintf("expected %s, got %T", expected, value),
	}
}

// Equal reports whether two typed values of this field's kind are equal.
// Used by the store to suppress overrides that match the default.
func (f *Field) Equal(a, b any) bool {
	if f.Kind == KindStringList {
		as, aok := a.([]string)
		bs, bok := b.([]string)
		if !aok || !bok {
			return false
		}
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if as[i] != bs[i] {
				return false
			}
		}
		return true
	}
	return a == b
}

// splitList splits a comma-separated list, trimming whitespace and
// dropping empty items.
func splitList(raw string) []string {
	items := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
