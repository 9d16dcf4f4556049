//go:build property
// +build property

package schema

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestCoercionProperties checks the serialization invariants the store
// relies on when deciding whether an override matches its default.
func TestCoercionProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property: formatting a coerced value and coercing it again is stable.
	properties.Property("int coercion round trip", prop.ForAll(
		func(n int) bool {
			f := Field{Key: "n", Kind: KindInt}
			s, err := f.ToString(n)
			if err != nil {
				return false
			}
			back, err := f.FromString(s)
			if err != nil {
				return false
			}
			return back == n
		},
		gen.Int(),
	))

	properties.Property("bool coercion round trip", prop.ForAll(
		func(b bool) bool {
			f := Field{Key: "b", Kind: KindBool}
			s, err := f.ToString(b)
			if err != nil {
				return false
			}
			if s != "True" && s != "False" {
				return false
			}
			back, err := f.FromString(s)
			return err == nil && back == b
		},
		gen.Bool(),
	))

	properties.Property("float coercion round trip", prop.ForAll(
		func(x float64) bool {
			f := Field{Key: "x", Kind: KindFloat}
			s, err := f.ToString(x)
			if err != nil {
				return false
			}
			back, err := f.FromString(s)
			return err == nil && back == x
		},
		gen.Float64Range(-1e9, 1e9),
	))

	// Property: list items without separators or surrounding space
	// survive a join/split cycle unchanged.
	properties.Property("string list round trip", prop.ForAll(
		func(items []string) bool {
			f := Field{Key: "l", Kind: KindStringList}
			s, err := f.ToString(items)
			if err != nil {
				return false
			}
			back, err := f.FromString(s)
			if err != nil {
				return false
			}
			return f.Equal(items, back)
		},
		gen.SliceOf(gen.RegexMatch(`^[a-z][a-z0-9_]*$`)),
	))

	properties.TestingRun(t)
}
