package rules

import (
	"reflect"
	"testing"
	"time"

	"github.com/mitchellgordon95/live-language/engine/state"
	"github.com/mitchellgordon95/live-language/types"
)

func testSetup() (*types.GameState, *types.ModuleDef) {
	defs := &types.ModuleDef{
		ID:        "test",
		Start:     "bedroom",
		FirstStep: "turn_off_alarm",
		Locations: map[string]types.LocationDef{
			"bedroom": {ID: "bedroom"},
			"kitchen": {ID: "kitchen"},
		},
		Objects: []types.ObjectDef{
			{ID: "alarm_clock", Location: "bedroom", Tags: []string{"ringing"}},
			{ID: "milk", Location: "kitchen"},
		},
		Steps: map[string]types.TutorialStep{
			"turn_off_alarm": {
				ID:    "turn_off_alarm",
				Check: types.CheckRule{Kind: types.CheckObjectMissingTag, ObjectID: "alarm_clock", Tag: "ringing"},
				Next:  "go_to_kitchen",
			},
			"go_to_kitchen": {
				ID:    "go_to_kitchen",
				Check: types.CheckRule{Kind: types.CheckAtLocation, Location: "kitchen"},
				Next:  "take_milk",
			},
			"take_milk": {
				ID:    "take_milk",
				Check: types.CheckRule{Kind: types.CheckObjectAt, ObjectID: "milk", Location: types.LocInventory},
			},
		},
		Quests: map[string]types.Quest{
			"breakfast": {
				ID:      "breakfast",
				Trigger: types.CheckRule{Kind: types.CheckObjectAt, ObjectID: "milk", Location: types.LocInventory},
				Reward:  "chef",
			},
			"clean_up": {
				ID:      "clean_up",
				Trigger: types.CheckRule{Kind: types.CheckAtLocation, Location: "kitchen"},
				Prereqs: []string{"breakfast"},
			},
		},
	}
	s := state.NewState(defs, "p1", time.Now())
	return s, defs
}

func TestEvaluate(t *testing.T) {
	s, _ := testSetup()

	tests := []struct {
		name string
		rule types.CheckRule
		want bool
	}{
		{"at location true", types.CheckRule{Kind: types.CheckAtLocation, Location: "bedroom"}, true},
		{"at location false", types.CheckRule{Kind: types.CheckAtLocation, Location: "kitchen"}, false},
		{"player has tag", types.CheckRule{Kind: types.CheckPlayerHasTag, Tag: "standing"}, true},
		{"player missing tag", types.CheckRule{Kind: types.CheckPlayerMissingTag, Tag: "in_bed"}, true},
		{"object at", types.CheckRule{Kind: types.CheckObjectAt, ObjectID: "milk", Location: "kitchen"}, true},
		{"object has tag", types.CheckRule{Kind: types.CheckObjectHasTag, ObjectID: "alarm_clock", Tag: "ringing"}, true},
		{"object missing tag", types.CheckRule{Kind: types.CheckObjectMissingTag, ObjectID: "alarm_clock", Tag: "ringing"}, false},
		{"unknown object is false", types.CheckRule{Kind: types.CheckObjectHasTag, ObjectID: "ghost", Tag: "x"}, false},
		{"unknown object missing-tag is false", types.CheckRule{Kind: types.CheckObjectMissingTag, ObjectID: "ghost", Tag: "x"}, false},
		{"quest completed false", types.CheckRule{Kind: types.CheckQuestCompleted, QuestID: "breakfast"}, false},
		{"unknown kind is false", types.CheckRule{Kind: "any_of"}, false},
		{"empty all is true", types.CheckRule{Kind: types.CheckAll}, true},
		{"all conjunction", types.CheckRule{Kind: types.CheckAll, All: []types.CheckRule{
			{Kind: types.CheckAtLocation, Location: "bedroom"},
			{Kind: types.CheckPlayerHasTag, Tag: "standing"},
		}}, true},
		{"all short-circuits false", types.CheckRule{Kind: types.CheckAll, All: []types.CheckRule{
			{Kind: types.CheckAtLocation, Location: "kitchen"},
			{Kind: types.CheckPlayerHasTag, Tag: "standing"},
		}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.rule, s); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_RemovedObjectNeverAt(t *testing.T) {
	s, _ := testSetup()
	state.FindObject(s, "milk").Location = types.LocRemoved

	rule := types.CheckRule{Kind: types.CheckObjectAt, ObjectID: "milk", Location: types.LocRemoved}
	if Evaluate(rule, s) {
		t.Error("removed object must not satisfy object_at, even for the removed sentinel")
	}
}

func TestAdvanceTutorial_SingleStep(t *testing.T) {
	s, defs := testSetup()
	delete(state.FindObject(s, "alarm_clock").Tags, "ringing")

	completed := AdvanceTutorial(s, defs)
	if !reflect.DeepEqual(completed, []string{"turn_off_alarm"}) {
		t.Errorf("completed = %v, want [turn_off_alarm]", completed)
	}
	if s.Tutorial.Current != "go_to_kitchen" {
		t.Errorf("current = %q, want go_to_kitchen", s.Tutorial.Current)
	}
}

func TestAdvanceTutorial_ChainsThroughSatisfiedSteps(t *testing.T) {
	s, defs := testSetup()
	delete(state.FindObject(s, "alarm_clock").Tags, "ringing")
	s.Location = "kitchen"
	state.FindObject(s, "milk").Location = types.LocInventory

	completed := AdvanceTutorial(s, defs)
	want := []string{"turn_off_alarm", "go_to_kitchen", "take_milk"}
	if !reflect.DeepEqual(completed, want) {
		t.Errorf("completed = %v, want %v", completed, want)
	}
	if s.Tutorial.Current != "" {
		t.Errorf("current = %q, want empty after last step", s.Tutorial.Current)
	}
}

func TestAdvanceTutorial_StopsAtUnsatisfiedStep(t *testing.T) {
	s, defs := testSetup()

	completed := AdvanceTutorial(s, defs)
	if len(completed) != 0 {
		t.Errorf("completed = %v, want none", completed)
	}
	if s.Tutorial.Current != "turn_off_alarm" {
		t.Errorf("current = %q, want turn_off_alarm", s.Tutorial.Current)
	}
}

func TestAdvanceTutorial_StalePointer(t *testing.T) {
	s, defs := testSetup()
	s.Tutorial.Current = "no_such_step"

	completed := AdvanceTutorial(s, defs)
	if len(completed) != 0 {
		t.Errorf("completed = %v, want none", completed)
	}
	if s.Tutorial.Current != "" {
		t.Errorf("current = %q, want cleared", s.Tutorial.Current)
	}
}

func TestAdvanceTutorial_SkipsAlreadyCompleted(t *testing.T) {
	s, defs := testSetup()
	delete(state.FindObject(s, "alarm_clock").Tags, "ringing")
	s.Tutorial.Completed["turn_off_alarm"] = true

	completed := AdvanceTutorial(s, defs)
	if len(completed) != 0 {
		t.Errorf("completed = %v, want none (already done)", completed)
	}
	if s.Tutorial.Current != "go_to_kitchen" {
		t.Errorf("current = %q, want advanced past done step", s.Tutorial.Current)
	}
}

func TestSweepCompletedSteps_OutOfOrder(t *testing.T) {
	s, defs := testSetup()

	// The player went to the kitchen without ever touching the alarm. The
	// suggestion pointer is stuck but the later step still registers.
	s.Location = "kitchen"
	completed := SweepCompletedSteps(s, defs)
	if !reflect.DeepEqual(completed, []string{"go_to_kitchen"}) {
		t.Errorf("completed = %v, want [go_to_kitchen]", completed)
	}
	if s.Tutorial.Current != "turn_off_alarm" {
		t.Errorf("sweep moved the suggestion pointer to %q", s.Tutorial.Current)
	}
}

func TestActivateQuests_TriggerOnly(t *testing.T) {
	s, defs := testSetup()
	state.FindObject(s, "milk").Location = types.LocInventory

	started := ActivateQuests(s, defs)
	if !reflect.DeepEqual(started, []string{"breakfast"}) {
		t.Errorf("started = %v, want [breakfast]", started)
	}
	if !s.Quests.Active["breakfast"] {
		t.Error("breakfast not active")
	}
}

func TestActivateQuests_PrereqGatesAbsolutely(t *testing.T) {
	s, defs := testSetup()

	// clean_up's trigger is satisfied but its prereq is not.
	s.Location = "kitchen"
	started := ActivateQuests(s, defs)
	if len(started) != 0 {
		t.Errorf("started = %v, want none", started)
	}

	s.Quests.Completed["breakfast"] = true
	started = ActivateQuests(s, defs)
	if !reflect.DeepEqual(started, []string{"clean_up"}) {
		t.Errorf("started = %v, want [clean_up]", started)
	}
}

func TestActivateQuests_SkipsActiveAndCompleted(t *testing.T) {
	s, defs := testSetup()
	state.FindObject(s, "milk").Location = types.LocInventory

	s.Quests.Active["breakfast"] = true
	if started := ActivateQuests(s, defs); len(started) != 0 {
		t.Errorf("re-activated an active quest: %v", started)
	}

	delete(s.Quests.Active, "breakfast")
	s.Quests.Completed["breakfast"] = true
	if started := ActivateQuests(s, defs); len(started) != 0 {
		t.Errorf("re-activated a completed quest: %v", started)
	}
}

func TestCompleteQuests(t *testing.T) {
	s, defs := testSetup()
	s.Quests.Active["breakfast"] = true

	completed, badges := CompleteQuests(s, defs, []string{"breakfast"})
	if !reflect.DeepEqual(completed, []string{"breakfast"}) {
		t.Errorf("completed = %v", completed)
	}
	if !reflect.DeepEqual(badges, []string{"chef"}) {
		t.Errorf("badges = %v, want [chef]", badges)
	}
	if s.Quests.Active["breakfast"] || !s.Quests.Completed["breakfast"] {
		t.Errorf("quest sets wrong: active=%v completed=%v", s.Quests.Active, s.Quests.Completed)
	}
}

func TestCompleteQuests_IgnoresInactive(t *testing.T) {
	s, defs := testSetup()

	completed, badges := CompleteQuests(s, defs, []string{"breakfast", "no_such_quest"})
	if len(completed) != 0 || len(badges) != 0 {
		t.Errorf("completed inactive quest: %v %v", completed, badges)
	}
}
