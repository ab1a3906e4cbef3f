package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerPatternHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", board = "...", armies = {...} }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.game = tbl
		return 0
	}))

	// Board "id" { ... } — curried: Board("id") returns a function that
	// takes a table.
	L.SetGlobal("Board", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.boards = append(coll.boards, rawBoard{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Unit "id" { ... } — curried.
	L.SetGlobal("Unit", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.units = append(coll.units, rawUnit{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Army "id" { ... } — curried.
	L.SetGlobal("Army", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.armies = append(coll.armies, rawArmy{id: id, table: tbl})
			return 0
		}))
		return 1
	}))
}

// registerPatternHelpers registers the movement-pattern constructors.
// Each takes an optional options table and returns a tagged table the
// compiler turns into a types.Pattern.
func registerPatternHelpers(L *lua.LState) {
	pattern := func(kind string, defaults map[string]lua.LValue) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			out := L.NewTable()
			out.RawSetString("__pattern", lua.LString(kind))
			for k, v := range defaults {
				out.RawSetString(k, v)
			}
			if opts, ok := L.Get(1).(*lua.LTable); ok {
				opts.ForEach(func(k, v lua.LValue) {
					if ks, ok := k.(lua.LString); ok {
						out.RawSetString(string(ks), v)
					}
				})
			}
			L.Push(out)
			return 1
		})
	}

	rayDefaults := map[string]lua.LValue{"distance": lua.LNumber(-1)}

	L.SetGlobal("Orthogonal", pattern("orthogonal", rayDefaults))
	L.SetGlobal("Diagonal", pattern("diagonal", rayDefaults))
	L.SetGlobal("Knight", pattern("knight", map[string]lua.LValue{"jump": lua.LTrue}))
	L.SetGlobal("Adjacent", pattern("adjacent", nil))
	L.SetGlobal("Forward", pattern("forward", map[string]lua.LValue{"distance": lua.LNumber(1)}))
	L.SetGlobal("DiagonalCapture", pattern("diagonal_capture", nil))
}
