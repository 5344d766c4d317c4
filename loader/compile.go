package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/mitchellgordon95/live-language/types"
)

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// tableToStringMap converts a Lua table to a map[string]string.
func tableToStringMap(tbl *lua.LTable) map[string]string {
	if tbl == nil {
		return nil
	}
	m := map[string]string{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if vs, ok := v.(lua.LString); ok {
				m[string(ks)] = string(vs)
			}
		}
	})
	return m
}

// tableToStringSlice converts a Lua array table to a []string.
func tableToStringSlice(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compileName reads a bilingual name table {en=..., target=...}.
func compileName(tbl *lua.LTable, fallback string) types.Name {
	if tbl == nil {
		return types.Name{English: fallback, Target: fallback}
	}
	n := types.Name{
		English: getString(tbl, "en"),
		Target:  getString(tbl, "target"),
	}
	if n.English == "" {
		n.English = fallback
	}
	if n.Target == "" {
		n.Target = n.English
	}
	return n
}

// compileCheck converts a helper-built table into a CheckRule.
func compileCheck(tbl *lua.LTable) (types.CheckRule, error) {
	if tbl == nil {
		return types.CheckRule{}, fmt.Errorf("missing check")
	}
	kind := getString(tbl, "kind")
	rule := types.CheckRule{
		Kind:     types.CheckKind(kind),
		Location: getString(tbl, "location"),
		Tag:      getString(tbl, "tag"),
		ObjectID: getString(tbl, "object"),
		QuestID:  getString(tbl, "quest"),
	}
	if kind == "all" {
		subs := getTable(tbl, "all")
		if subs == nil {
			return rule, fmt.Errorf("all: missing sub-checks")
		}
		var compileErr error
		subs.ForEach(func(_, v lua.LValue) {
			sub, ok := v.(*lua.LTable)
			if !ok {
				compileErr = fmt.Errorf("all: sub-check is not a check table")
				return
			}
			compiled, err := compileCheck(sub)
			if err != nil {
				compileErr = err
				return
			}
			rule.All = append(rule.All, compiled)
		})
		if compileErr != nil {
			return rule, compileErr
		}
	}
	return rule, nil
}

// compile converts all collected Lua data into a ModuleDef.
func compile(coll *collector) (*types.ModuleDef, error) {
	if coll.module == nil {
		return nil, fmt.Errorf("no Module{} definition found")
	}

	defs := &types.ModuleDef{
		ID:        getString(coll.module, "id"),
		Title:     getString(coll.module, "title"),
		Author:    getString(coll.module, "author"),
		Version:   getString(coll.module, "version"),
		Language:  getString(coll.module, "language"),
		Intro:     getString(coll.module, "intro"),
		Start:     getString(coll.module, "start"),
		FirstStep: getString(coll.module, "first_step"),
		Locations: map[string]types.LocationDef{},
		NPCs:      map[string]types.NPCDef{},
		Words:     map[string]types.WordDef{},
		Steps:     map[string]types.TutorialStep{},
		Quests:    map[string]types.Quest{},
	}

	for _, raw := range coll.locations {
		defs.Locations[raw.id] = types.LocationDef{
			ID:          raw.id,
			Name:        compileName(getTable(raw.table, "name"), raw.id),
			Description: getString(raw.table, "description"),
			Exits:       tableToStringMap(getTable(raw.table, "exits")),
		}
	}

	for _, raw := range coll.objects {
		defs.Objects = append(defs.Objects, types.ObjectDef{
			ID:       raw.id,
			Name:     compileName(getTable(raw.table, "name"), raw.id),
			Location: getString(raw.table, "location"),
			Tags:     tableToStringSlice(getTable(raw.table, "tags")),
		})
	}

	for _, raw := range coll.npcs {
		defs.NPCs[raw.id] = types.NPCDef{
			ID:          raw.id,
			Name:        compileName(getTable(raw.table, "name"), raw.id),
			Description: getString(raw.table, "description"),
			Location:    getString(raw.table, "location"),
			Mood:        getString(raw.table, "mood"),
			WantsItem:   getString(raw.table, "wants"),
		}
	}

	for _, raw := range coll.words {
		forms := tableToStringSlice(getTable(raw.table, "forms"))
		if len(forms) == 0 {
			forms = []string{raw.id}
		}
		defs.Words[raw.id] = types.WordDef{
			ID:          raw.id,
			Forms:       forms,
			Translation: getString(raw.table, "translation"),
		}
	}

	for _, raw := range coll.steps {
		check, err := compileCheck(getTable(raw.table, "check"))
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", raw.id, err)
		}
		defs.Steps[raw.id] = types.TutorialStep{
			ID:     raw.id,
			Prompt: getString(raw.table, "prompt"),
			Check:  check,
			Next:   getString(raw.table, "next"),
		}
	}

	for _, raw := range coll.quests {
		trigger, err := compileCheck(getTable(raw.table, "trigger"))
		if err != nil {
			return nil, fmt.Errorf("quest %s: %w", raw.id, err)
		}
		defs.Quests[raw.id] = types.Quest{
			ID:      raw.id,
			Title:   getString(raw.table, "title"),
			Trigger: trigger,
			Reward:  getString(raw.table, "reward"),
			Prereqs: tableToStringSlice(getTable(raw.table, "prereqs")),
		}
	}

	for _, raw := range coll.categories {
		defs.Categories = append(defs.Categories, types.StatusCategory{
			ID:      raw.id,
			Cadence: getInt(raw.table, "cadence"),
			Ladder:  tableToStringSlice(getTable(raw.table, "ladder")),
		})
	}

	return defs, nil
}
