package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mitchellgordon95/live-language/collab"
	"github.com/mitchellgordon95/live-language/engine/state"
	"github.com/mitchellgordon95/live-language/types"
)

// fakeUnderstander returns a canned result (or error) per call.
type fakeUnderstander struct {
	result collab.UnderstandResult
	err    error
	snaps  []collab.Snapshot
}

func (f *fakeUnderstander) Understand(_ context.Context, _ string, snap collab.Snapshot) (collab.UnderstandResult, error) {
	f.snaps = append(f.snaps, snap)
	return f.result, f.err
}

type fakeNarrator struct {
	result collab.NarrationResult
	err    error
	snaps  []collab.Snapshot
}

func (f *fakeNarrator) Narrate(_ context.Context, _ string, _ []types.Mutation, snap collab.Snapshot) (collab.NarrationResult, error) {
	f.snaps = append(f.snaps, snap)
	return f.result, f.err
}

func testDefs() *types.ModuleDef {
	return &types.ModuleDef{
		ID:        "apartment",
		Start:     "kitchen",
		FirstStep: "open_refrigerator",
		Locations: map[string]types.LocationDef{
			"kitchen": {ID: "kitchen", Exits: map[string]string{"out": "bedroom"}},
			"bedroom": {ID: "bedroom"},
		},
		Objects: []types.ObjectDef{
			{ID: "refrigerator", Location: "kitchen", Tags: []string{"closed"}},
			{ID: "milk", Location: "refrigerator"},
		},
		Words: map[string]types.WordDef{
			"abrir": {ID: "abrir", Forms: []string{"abrir", "abro"}, Translation: "to open"},
			"leche": {ID: "leche", Forms: []string{"leche"}, Translation: "milk"},
		},
		Steps: map[string]types.TutorialStep{
			"open_refrigerator": {
				ID:    "open_refrigerator",
				Check: types.CheckRule{Kind: types.CheckObjectHasTag, ObjectID: "refrigerator", Tag: "open"},
			},
		},
		Quests: map[string]types.Quest{
			"breakfast": {
				ID:      "breakfast",
				Trigger: types.CheckRule{Kind: types.CheckObjectAt, ObjectID: "milk", Location: types.LocInventory},
				Reward:  "chef",
			},
		},
		Categories: []types.StatusCategory{
			{ID: "hunger", Cadence: 15, Ladder: []string{"hungry", "starving"}},
		},
	}
}

func testEngine(u *fakeUnderstander, n *fakeNarrator) (*Engine, *types.GameState) {
	defs := testDefs()
	eng := New(defs, u, n)
	eng.Now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	return eng, state.NewState(defs, "p1", eng.Now())
}

func TestProcessTurn_ValidTurn(t *testing.T) {
	u := &fakeUnderstander{result: collab.UnderstandResult{
		Understood: "open the refrigerator",
		Valid:      true,
		Mutations: []types.Mutation{
			{Kind: types.MutTag, ObjectID: "refrigerator", Add: []string{"open"}, Remove: []string{"closed"}},
		},
	}}
	n := &fakeNarrator{result: collab.NarrationResult{Message: "Abres el refrigerador."}}
	eng, s := testEngine(u, n)

	next, result, err := eng.ProcessTurn(context.Background(), s, "abro el refrigerador")
	if err != nil {
		t.Fatalf("ProcessTurn failed: %v", err)
	}
	if !result.Valid {
		t.Error("result not valid")
	}
	if next.Turn != 1 {
		t.Errorf("turn = %d, want 1", next.Turn)
	}
	fridge := state.FindObject(next, "refrigerator")
	if !fridge.Tags["open"] || fridge.Tags["closed"] {
		t.Errorf("tags = %v", fridge.Tags)
	}
	if !reflect.DeepEqual(result.StepsCompleted, []string{"open_refrigerator"}) {
		t.Errorf("steps completed = %v", result.StepsCompleted)
	}
	// Prior snapshot untouched.
	if s.Turn != 0 || state.FindObject(s, "refrigerator").Tags["open"] {
		t.Error("ProcessTurn mutated its input state")
	}
}

func TestProcessTurn_UnderstanderErrorAbortsAtomically(t *testing.T) {
	wantErr := errors.New("rate limited")
	u := &fakeUnderstander{err: wantErr}
	eng, s := testEngine(u, &fakeNarrator{})

	next, result, err := eng.ProcessTurn(context.Background(), s, "abro el refrigerador")
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if next != nil || result != nil {
		t.Error("aborted turn still produced a state or result")
	}
	if s.Turn != 0 {
		t.Error("aborted turn advanced the counter")
	}
}

func TestProcessTurn_NarratorErrorAbortsAtomically(t *testing.T) {
	u := &fakeUnderstander{result: collab.UnderstandResult{
		Valid: true,
		Mutations: []types.Mutation{
			{Kind: types.MutTag, ObjectID: "refrigerator", Add: []string{"open"}},
		},
	}}
	n := &fakeNarrator{err: errors.New("timeout")}
	eng, s := testEngine(u, n)

	next, _, err := eng.ProcessTurn(context.Background(), s, "abro el refrigerador")
	if err == nil {
		t.Fatal("expected error")
	}
	if next != nil {
		t.Error("aborted turn returned a state")
	}
	// The understander's mutations were applied to a throwaway clone only.
	if state.FindObject(s, "refrigerator").Tags["open"] || s.Turn != 0 {
		t.Error("aborted turn leaked state changes")
	}
}

func TestProcessTurn_InvalidTurnStillCounts(t *testing.T) {
	u := &fakeUnderstander{result: collab.UnderstandResult{
		Understood:    "eat the refrigerator",
		Valid:         false,
		InvalidReason: "You cannot eat the refrigerator.",
	}}
	eng, s := testEngine(u, &fakeNarrator{})

	// Build a streak first so we can watch it break.
	w := s.Vocabulary["leche"]
	w.ConsecutiveCorrect = 2
	s.Vocabulary["leche"] = w

	next, result, err := eng.ProcessTurn(context.Background(), s, "como la leche")
	if err != nil {
		t.Fatalf("ProcessTurn failed: %v", err)
	}
	if result.Valid {
		t.Error("result marked valid")
	}
	if result.Message != "You cannot eat the refrigerator." {
		t.Errorf("message = %q", result.Message)
	}
	if next.Turn != 1 {
		t.Errorf("turn = %d, invalid turns still advance the counter", next.Turn)
	}
	if len(result.Applied) != 0 {
		t.Errorf("applied = %v, want none", result.Applied)
	}
	if next.Vocabulary["leche"].ConsecutiveCorrect != 0 {
		t.Error("failed use did not break the streak")
	}
	if next.Vocabulary["leche"].CorrectUses != 0 {
		t.Error("failed use counted as correct")
	}
}

func TestProcessTurn_NarratorFollowUpMutations(t *testing.T) {
	u := &fakeUnderstander{result: collab.UnderstandResult{
		Valid: true,
		Mutations: []types.Mutation{
			{Kind: types.MutMove, ObjectID: "milk", To: types.LocInventory},
		},
	}}
	n := &fakeNarrator{result: collab.NarrationResult{
		Message:         "Tomas la leche y desayunas.",
		QuestsCompleted: []string{"breakfast"},
		Mutations: []types.Mutation{
			{Kind: types.MutStatus, Remove: []string{"hungry"}},
		},
	}}
	eng, s := testEngine(u, n)
	s.Turn = 20
	s.ActiveEffects["hungry"] = true
	s.Quests.Active["breakfast"] = true

	next, result, err := eng.ProcessTurn(context.Background(), s, "tomo la leche")
	if err != nil {
		t.Fatalf("ProcessTurn failed: %v", err)
	}

	if !reflect.DeepEqual(result.QuestsCompleted, []string{"breakfast"}) {
		t.Errorf("quests completed = %v", result.QuestsCompleted)
	}
	if !reflect.DeepEqual(result.BadgesEarned, []string{"chef"}) {
		t.Errorf("badges = %v", result.BadgesEarned)
	}

	// The status removal resets hunger's clock at the new turn, so no
	// effect is active even though 21 > cadence.
	if next.Turn != 21 {
		t.Errorf("turn = %d, want 21", next.Turn)
	}
	if len(next.ActiveEffects) != 0 {
		t.Errorf("effects = %v, want cleared", next.ActiveEffects)
	}
	if next.LastReset["hunger"] != 21 {
		t.Errorf("lastReset = %d, want 21", next.LastReset["hunger"])
	}
}

func TestProcessTurn_StatusEscalatesWithTurns(t *testing.T) {
	u := &fakeUnderstander{result: collab.UnderstandResult{Valid: true}}
	eng, s := testEngine(u, &fakeNarrator{})
	s.Turn = 14

	next, _, err := eng.ProcessTurn(context.Background(), s, "espero")
	if err != nil {
		t.Fatalf("ProcessTurn failed: %v", err)
	}
	if !next.ActiveEffects["hungry"] {
		t.Errorf("effects = %v, want hungry at turn 15", next.ActiveEffects)
	}
}

func TestProcessTurn_VocabAttribution(t *testing.T) {
	u := &fakeUnderstander{result: collab.UnderstandResult{Valid: true}}
	n := &fakeNarrator{result: collab.NarrationResult{Message: "Hay leche en el refrigerador."}}
	eng, s := testEngine(u, n)

	// "abro" appears in the input (correct use); "leche" only in the
	// narration (exposure).
	next, _, err := eng.ProcessTurn(context.Background(), s, "abro el refrigerador")
	if err != nil {
		t.Fatalf("ProcessTurn failed: %v", err)
	}
	if next.Vocabulary["abrir"].CorrectUses != 1 {
		t.Errorf("abrir uses = %d, want 1", next.Vocabulary["abrir"].CorrectUses)
	}
	if next.Vocabulary["abrir"].ContextExposures != 0 {
		t.Errorf("abrir exposures = %d, want 0", next.Vocabulary["abrir"].ContextExposures)
	}
	if next.Vocabulary["leche"].ContextExposures != 1 {
		t.Errorf("leche exposures = %d, want 1", next.Vocabulary["leche"].ContextExposures)
	}
	if next.Vocabulary["leche"].CorrectUses != 0 {
		t.Errorf("leche uses = %d, want 0", next.Vocabulary["leche"].CorrectUses)
	}
}

func TestProcessTurn_InputWordNotDoubleCounted(t *testing.T) {
	u := &fakeUnderstander{result: collab.UnderstandResult{Valid: true}}
	n := &fakeNarrator{result: collab.NarrationResult{Message: "Tomas la leche."}}
	eng, s := testEngine(u, n)

	// "leche" in both input and narration counts once, as a correct use.
	next, _, err := eng.ProcessTurn(context.Background(), s, "tomo la leche")
	if err != nil {
		t.Fatalf("ProcessTurn failed: %v", err)
	}
	w := next.Vocabulary["leche"]
	if w.CorrectUses != 1 || w.ContextExposures != 0 {
		t.Errorf("leche = uses %d exposures %d, want 1/0", w.CorrectUses, w.ContextExposures)
	}
}

func TestProcessTurn_SkippedMutationsTraced(t *testing.T) {
	u := &fakeUnderstander{result: collab.UnderstandResult{
		Valid: true,
		Mutations: []types.Mutation{
			{Kind: types.MutGo, Location: "attic"},
		},
	}}
	eng, s := testEngine(u, &fakeNarrator{})

	next, result, err := eng.ProcessTurn(context.Background(), s, "voy")
	if err != nil {
		t.Fatalf("ProcessTurn failed: %v", err)
	}
	if len(result.Trace) != 1 {
		t.Errorf("trace = %v, want one skip note", result.Trace)
	}
	if next.Location != "kitchen" {
		t.Errorf("location = %q, skip must not move the player", next.Location)
	}
}

func TestSnapshot_ReflectsState(t *testing.T) {
	u := &fakeUnderstander{result: collab.UnderstandResult{Valid: true}}
	eng, s := testEngine(u, &fakeNarrator{})
	state.FindObject(s, "milk").Location = types.LocInventory

	if _, _, err := eng.ProcessTurn(context.Background(), s, "miro"); err != nil {
		t.Fatalf("ProcessTurn failed: %v", err)
	}
	if len(u.snaps) != 1 {
		t.Fatalf("understander called %d times", len(u.snaps))
	}
	snap := u.snaps[0]
	if snap.Location != "kitchen" {
		t.Errorf("snapshot location = %q", snap.Location)
	}
	if len(snap.Inventory) != 1 || snap.Inventory[0].ID != "milk" {
		t.Errorf("snapshot inventory = %v", snap.Inventory)
	}
	if len(snap.Words) != 2 || snap.Words[0].ID != "abrir" {
		t.Errorf("snapshot words = %v, want sorted vocabulary", snap.Words)
	}
}
