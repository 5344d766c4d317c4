package mutate

import (
	"reflect"
	"testing"
	"time"

	"github.com/mitchellgordon95/live-language/engine/state"
	"github.com/mitchellgordon95/live-language/types"
)

func testSetup() (*types.GameState, *types.ModuleDef) {
	defs := &types.ModuleDef{
		ID:    "test",
		Start: "bedroom",
		Locations: map[string]types.LocationDef{
			"bedroom": {ID: "bedroom", Exits: map[string]string{"out": "kitchen"}},
			"kitchen": {ID: "kitchen", Exits: map[string]string{"out": "bedroom"}},
		},
		Objects: []types.ObjectDef{
			{ID: "refrigerator", Location: "kitchen", Tags: []string{"closed"}},
			{ID: "milk", Location: "refrigerator"},
			{ID: "bowl", Location: "kitchen"},
		},
		NPCs: map[string]types.NPCDef{
			"lucia": {ID: "lucia", Location: "kitchen", Mood: "sleepy"},
		},
	}
	s := state.NewState(defs, "p1", time.Now())
	return s, defs
}

func TestApply_EmptyBatch(t *testing.T) {
	s, defs := testSetup()

	next, res := Apply(s, defs, nil)
	if len(res.Applied) != 0 || len(res.Skipped) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
	if !reflect.DeepEqual(next, s) {
		t.Error("empty batch should produce an equal state")
	}
	if next == s {
		t.Error("empty batch should still return a distinct snapshot")
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	s, defs := testSetup()

	_, _ = Apply(s, defs, []types.Mutation{
		{Kind: types.MutGo, Location: "kitchen"},
		{Kind: types.MutTag, ObjectID: "refrigerator", Add: []string{"open"}, Remove: []string{"closed"}},
		{Kind: types.MutMove, ObjectID: "milk", To: types.LocInventory},
	})

	if s.Location != "bedroom" {
		t.Errorf("input location changed to %q", s.Location)
	}
	fridge := state.FindObject(s, "refrigerator")
	if !fridge.Tags["closed"] || fridge.Tags["open"] {
		t.Errorf("input object tags changed: %v", fridge.Tags)
	}
	if state.FindObject(s, "milk").Location != "refrigerator" {
		t.Error("input object location changed")
	}
}

func TestApply_Go(t *testing.T) {
	s, defs := testSetup()

	next, res := Apply(s, defs, []types.Mutation{{Kind: types.MutGo, Location: "kitchen"}})
	if len(res.Applied) != 1 {
		t.Fatalf("expected 1 applied, got %+v", res)
	}
	if next.Location != "kitchen" {
		t.Errorf("location = %q, want kitchen", next.Location)
	}
	if !next.Visited["kitchen"] {
		t.Error("kitchen not marked visited")
	}
}

func TestApply_Go_UnknownLocation(t *testing.T) {
	s, defs := testSetup()

	next, res := Apply(s, defs, []types.Mutation{{Kind: types.MutGo, Location: "attic"}})
	if len(res.Skipped) != 1 {
		t.Fatalf("expected 1 skipped, got %+v", res)
	}
	if next.Location != "bedroom" {
		t.Errorf("location = %q, want bedroom", next.Location)
	}
}

func TestApply_OrderMatters(t *testing.T) {
	s, defs := testSetup()

	// Each mutation sees the effects of the previous one: the second tag
	// mutation removes what the first added.
	next, res := Apply(s, defs, []types.Mutation{
		{Kind: types.MutTag, ObjectID: "refrigerator", Add: []string{"open"}, Remove: []string{"closed"}},
		{Kind: types.MutTag, ObjectID: "refrigerator", Remove: []string{"open"}},
	})
	if len(res.Applied) != 2 {
		t.Fatalf("expected 2 applied, got %+v", res)
	}
	fridge := state.FindObject(next, "refrigerator")
	if fridge.Tags["open"] || fridge.Tags["closed"] {
		t.Errorf("tags = %v, want neither open nor closed", fridge.Tags)
	}
}

func TestApply_TagAddThenRemoveSameTag(t *testing.T) {
	s, defs := testSetup()

	// A tag in both add and remove ends up removed.
	next, _ := Apply(s, defs, []types.Mutation{
		{Kind: types.MutTag, ObjectID: "bowl", Add: []string{"dirty"}, Remove: []string{"dirty"}},
	})
	if state.FindObject(next, "bowl").Tags["dirty"] {
		t.Error("tag present after add+remove in one mutation")
	}
}

func TestApply_TagIdempotent(t *testing.T) {
	s, defs := testSetup()

	m := types.Mutation{Kind: types.MutTag, ObjectID: "bowl", Add: []string{"dirty"}}
	next, _ := Apply(s, defs, []types.Mutation{m, m})
	bowl := state.FindObject(next, "bowl")
	if !bowl.Tags["dirty"] {
		t.Error("tag missing after duplicate add")
	}
	if len(bowl.Tags) != 1 {
		t.Errorf("tags = %v, want exactly one", bowl.Tags)
	}
}

func TestApply_MoveToInventory(t *testing.T) {
	s, defs := testSetup()

	next, _ := Apply(s, defs, []types.Mutation{
		{Kind: types.MutMove, ObjectID: "milk", To: types.LocInventory},
	})
	inv := state.Inventory(next)
	if len(inv) != 1 || inv[0].ID != "milk" {
		t.Errorf("inventory = %v, want [milk]", inv)
	}
}

func TestApply_MoveSelfContainment(t *testing.T) {
	s, defs := testSetup()

	_, res := Apply(s, defs, []types.Mutation{
		{Kind: types.MutMove, ObjectID: "bowl", To: "bowl"},
	})
	if len(res.Skipped) != 1 {
		t.Errorf("expected self-containment skip, got %+v", res)
	}
}

func TestApply_MoveContainmentCycle(t *testing.T) {
	s, defs := testSetup()

	// milk is inside refrigerator; moving refrigerator into milk would
	// form a cycle.
	_, res := Apply(s, defs, []types.Mutation{
		{Kind: types.MutMove, ObjectID: "refrigerator", To: "milk"},
	})
	if len(res.Skipped) != 1 {
		t.Errorf("expected cycle skip, got %+v", res)
	}
}

func TestApply_MoveIntoRemovedObject(t *testing.T) {
	s, defs := testSetup()

	next, res := Apply(s, defs, []types.Mutation{
		{Kind: types.MutRemove, ObjectID: "bowl"},
		{Kind: types.MutMove, ObjectID: "milk", To: "bowl"},
	})
	if len(res.Applied) != 1 || len(res.Skipped) != 1 {
		t.Fatalf("expected 1 applied + 1 skipped, got %+v", res)
	}
	if state.FindObject(next, "milk").Location != "refrigerator" {
		t.Error("milk moved into a removed object")
	}
}

func TestApply_Create(t *testing.T) {
	s, defs := testSetup()

	next, res := Apply(s, defs, []types.Mutation{
		{Kind: types.MutCreate, Object: &types.WorldObject{
			ID:       "coffee",
			Location: "kitchen",
			Tags:     map[string]bool{"hot": true},
		}},
	})
	if len(res.Applied) != 1 {
		t.Fatalf("expected 1 applied, got %+v", res)
	}
	coffee := state.FindObject(next, "coffee")
	if coffee == nil || coffee.Location != "kitchen" || !coffee.Tags["hot"] {
		t.Errorf("created object = %+v", coffee)
	}
	if state.FindObject(s, "coffee") != nil {
		t.Error("create leaked into input state")
	}
}

func TestApply_CreateIDCollision(t *testing.T) {
	s, defs := testSetup()

	next, res := Apply(s, defs, []types.Mutation{
		{Kind: types.MutCreate, Object: &types.WorldObject{ID: "milk", Location: "kitchen"}},
	})
	if len(res.Skipped) != 1 {
		t.Fatalf("expected collision skip, got %+v", res)
	}
	if len(next.Objects) != len(s.Objects) {
		t.Error("duplicate object created")
	}
}

func TestApply_RemoveIsSoftDelete(t *testing.T) {
	s, defs := testSetup()

	next, _ := Apply(s, defs, []types.Mutation{
		{Kind: types.MutRemove, ObjectID: "milk"},
	})
	milk := state.FindObject(next, "milk")
	if milk == nil {
		t.Fatal("removed object record destroyed")
	}
	if milk.Location != types.LocRemoved {
		t.Errorf("location = %q, want %q", milk.Location, types.LocRemoved)
	}
	if len(state.ObjectsAt(next, "refrigerator")) != 0 {
		t.Error("removed object still listed at its old location")
	}
}

func TestApply_NPCMood(t *testing.T) {
	s, defs := testSetup()

	next, _ := Apply(s, defs, []types.Mutation{
		{Kind: types.MutNPCMood, NPCID: "lucia", Mood: "happy"},
	})
	if next.NPCs["lucia"].Mood != "happy" {
		t.Errorf("mood = %q, want happy", next.NPCs["lucia"].Mood)
	}
	if s.NPCs["lucia"].Mood != "sleepy" {
		t.Error("input NPC state changed")
	}
}

func TestApply_UnknownKindSkipped(t *testing.T) {
	s, defs := testSetup()

	next, res := Apply(s, defs, []types.Mutation{
		{Kind: "teleport", Location: "kitchen"},
		{Kind: types.MutGo, Location: "kitchen"},
	})
	if len(res.Skipped) != 1 || len(res.Applied) != 1 {
		t.Fatalf("expected 1 skipped + 1 applied, got %+v", res)
	}
	if next.Location != "kitchen" {
		t.Error("skip aborted the rest of the batch")
	}
}

func TestApply_PlayerTagAndStatus(t *testing.T) {
	s, defs := testSetup()

	next, _ := Apply(s, defs, []types.Mutation{
		{Kind: types.MutPlayerTag, Add: []string{"in_bed"}, Remove: []string{"standing"}},
		{Kind: types.MutStatus, Add: []string{"hungry"}},
	})
	if !next.PlayerTags["in_bed"] || next.PlayerTags["standing"] {
		t.Errorf("player tags = %v", next.PlayerTags)
	}
	if !next.ActiveEffects["hungry"] {
		t.Errorf("active effects = %v", next.ActiveEffects)
	}
}
