// Package loader loads Lua game content — boards, units, armies — into
// Go structs at startup. The Lua VM is discarded after loading: zero Lua
// at runtime.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/tacticore/engine/state"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game   *lua.LTable
	boards []rawBoard
	units  []rawUnit
	armies []rawArmy
}

// Load reads all .lua files from dir, compiles them into content
// definitions, validates references, and returns the immutable Defs.
func Load(dir string) (*state.Defs, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		path := filepath.Join(dir, f)
		if err := L.DoFile(path); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling game content: %w", err)
	}

	if err := validate(defs); err != nil {
		return nil, err
	}

	return defs, nil
}

// sortedLuaFiles orders game.lua first, the rest alphabetical, so the
// match setup is defined before content that references it.
func sortedLuaFiles(files []string) []string {
	sort.Strings(files)
	out := make([]string, 0, len(files))
	for _, f := range files {
		if f == "game.lua" {
			out = append(out, f)
		}
	}
	for _, f := range files {
		if f != "game.lua" {
			out = append(out, f)
		}
	}
	return out
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}
