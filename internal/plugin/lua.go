package plugin

import (
	"fmt"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"

	"github.com/rezine-project/rezine/internal/config/schema"
)

// runSetup executes the plugin's setup script. The script sees a
// restricted Lua state with a `rezine` table exposing
// add_config_var(key, spec), where spec is a table with type, default,
// description and choices entries.
func (p *Plugin) runSetup(b *schema.Builder) error {
	script := filepath.Join(p.Dir, p.Setup)

	L := lua.NewState()
	defer L.Close()
	restrict(L)

	var setupErr error
	rezine := L.NewTable()
	L.SetField(rezine, "add_config_var", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		spec := L.CheckTable(2)
		if err := p.addConfigVar(b, key, spec); err != nil {
			if setupErr == nil {
				setupErr = err
			}
			L.RaiseError("%s", err.Error())
		}
		return 0
	}))
	L.SetGlobal("rezine", rezine)

	if err := L.DoFile(script); err != nil {
		if setupErr != nil {
			err = setupErr
		}
		return &SetupError{Plugin: p.Name, Script: p.Setup, Err: err}
	}
	return nil
}

// restrict removes Lua facilities a setup script has no business
// using. Scripts declare configuration; they do not touch the host.
func restrict(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "os", "io"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// addConfigVar turns one add_config_var call into a schema field.
func (p *Plugin) addConfigVar(b *schema.Builder, key string, spec *lua.LTable) error {
	v := ConfigVar{
		Key:         key,
		Type:        stringField(spec, "type"),
		Description: stringField(spec, "description"),
	}
	if def := spec.RawGetString("default"); def != lua.LNil {
		v.Default = luaToGo(def)
	}
	if choices, ok := spec.RawGetString("choices").(*lua.LTable); ok {
		choices.ForEach(func(_, lv lua.LValue) {
			v.Choices = append(v.Choices, lv.String())
		})
	}

	field, err := v.Field(p.Name)
	if err != nil {
		return err
	}
	if err := b.Add(field); err != nil {
		return fmt.Errorf("plugin %s: %w", p.Name, err)
	}
	return nil
}

func stringField(t *lua.LTable, name string) string {
	if s, ok := t.RawGetString(name).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// luaToGo converts the Lua values a setup script can pass as defaults.
// Whole numbers come back as int, tables as string slices.
func luaToGo(lv lua.LValue) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		var items []string
		v.ForEach(func(_, item lua.LValue) {
			items = append(items, item.String())
		})
		return items
	default:
		return nil
	}
}
