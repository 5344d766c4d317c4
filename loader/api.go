package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerCheckHelpers(L)
}

// curried registers a global of the form Name "id" { ... }.
func curried(L *lua.LState, name string, sink *[]rawDef) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			*sink = append(*sink, rawDef{id: id, table: tbl})
			return 0
		}))
		return 1
	}))
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Module { id = "...", title = "...", ... }
	L.SetGlobal("Module", L.NewFunction(func(L *lua.LState) int {
		coll.module = L.CheckTable(1)
		return 0
	}))

	curried(L, "Location", &coll.locations)
	curried(L, "Object", &coll.objects)
	curried(L, "NPC", &coll.npcs)
	curried(L, "Word", &coll.words)
	curried(L, "Step", &coll.steps)
	curried(L, "Quest", &coll.quests)
	curried(L, "StatusCategory", &coll.categories)
}

// checkTable builds a {kind=..., ...} table for a CheckRule leaf.
func checkTable(L *lua.LState, kind string, fields map[string]string) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("kind", lua.LString(kind))
	for k, v := range fields {
		tbl.RawSetString(k, lua.LString(v))
	}
	return tbl
}

// registerCheckHelpers registers the CheckRule constructors. There is
// deliberately no Any/Not: conjunction is the only combinator.
func registerCheckHelpers(L *lua.LState) {
	// AtLocation("kitchen")
	L.SetGlobal("AtLocation", L.NewFunction(func(L *lua.LState) int {
		L.Push(checkTable(L, "at_location", map[string]string{"location": L.CheckString(1)}))
		return 1
	}))

	// PlayerHasTag("standing")
	L.SetGlobal("PlayerHasTag", L.NewFunction(func(L *lua.LState) int {
		L.Push(checkTable(L, "player_has_tag", map[string]string{"tag": L.CheckString(1)}))
		return 1
	}))

	// PlayerMissingTag("in_bed")
	L.SetGlobal("PlayerMissingTag", L.NewFunction(func(L *lua.LState) int {
		L.Push(checkTable(L, "player_missing_tag", map[string]string{"tag": L.CheckString(1)}))
		return 1
	}))

	// ObjectAt("milk", "inventory")
	L.SetGlobal("ObjectAt", L.NewFunction(func(L *lua.LState) int {
		L.Push(checkTable(L, "object_at", map[string]string{
			"object":   L.CheckString(1),
			"location": L.CheckString(2),
		}))
		return 1
	}))

	// ObjectHasTag("refrigerator", "open")
	L.SetGlobal("ObjectHasTag", L.NewFunction(func(L *lua.LState) int {
		L.Push(checkTable(L, "object_has_tag", map[string]string{
			"object": L.CheckString(1),
			"tag":    L.CheckString(2),
		}))
		return 1
	}))

	// ObjectMissingTag("alarm_clock", "ringing")
	L.SetGlobal("ObjectMissingTag", L.NewFunction(func(L *lua.LState) int {
		L.Push(checkTable(L, "object_missing_tag", map[string]string{
			"object": L.CheckString(1),
			"tag":    L.CheckString(2),
		}))
		return 1
	}))

	// QuestCompleted("make_breakfast")
	L.SetGlobal("QuestCompleted", L.NewFunction(func(L *lua.LState) int {
		L.Push(checkTable(L, "quest_completed", map[string]string{"quest": L.CheckString(1)}))
		return 1
	}))

	// All(check1, check2, ...)
	L.SetGlobal("All", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("kind", lua.LString("all"))
		subs := L.NewTable()
		for i := 1; i <= L.GetTop(); i++ {
			subs.Append(L.CheckTable(i))
		}
		tbl.RawSetString("all", subs)
		L.Push(tbl)
		return 1
	}))
}
