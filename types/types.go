// Package types defines the shared data structures for the live-language
// engine. This package contains only type definitions — no logic, no methods.
package types

import "time"

// Location sentinels for WorldObject.Location.
const (
	// LocInventory marks an object as carried by the player.
	LocInventory = "inventory"
	// LocRemoved marks an object as soft-deleted. Removed objects keep
	// their record but are excluded from every location-scoped query and
	// are never valid as a location target.
	LocRemoved = "removed"
)

// Name is a bilingual display name.
type Name struct {
	English string `json:"en"`
	Target  string `json:"target"`
}

// WorldObject is one interactable object in the world. Location is a
// location id, LocInventory, another object's id (contained within), or
// LocRemoved.
type WorldObject struct {
	ID       string          `json:"id"`
	Name     Name            `json:"name"`
	Location string          `json:"location"`
	Tags     map[string]bool `json:"tags"`
}

// NPCState is the runtime state of one NPC. Exactly one entry exists per
// defined NPC per session.
type NPCState struct {
	Location  string `json:"location"`
	Mood      string `json:"mood"`
	WantsItem string `json:"wants_item,omitempty"`
}

// Stage is a vocabulary word's familiarity classification.
type Stage string

const (
	StageNew      Stage = "new"
	StageLearning Stage = "learning"
	StageKnown    Stage = "known"
)

// WordFamiliarity tracks how well the player has learned one vocabulary
// word, including its spaced-repetition schedule. A zero NextReview means
// the word has never been scheduled.
type WordFamiliarity struct {
	CorrectUses        int       `json:"correct_uses"`
	ContextExposures   int       `json:"context_exposures"`
	UsesSinceLearning  int       `json:"uses_since_learning"`
	ConsecutiveCorrect int       `json:"consecutive_correct"`
	LastUsed           time.Time `json:"last_used"`
	Stage              Stage     `json:"stage"`
	IntervalDays       int       `json:"interval_days"`
	Ease               float64   `json:"ease"`
	NextReview         time.Time `json:"next_review"`
	ReviewCount        int       `json:"review_count"`
}

// TutorialProgress tracks the suggested tutorial step and completed steps.
// Current is a UI suggestion, not a gate.
type TutorialProgress struct {
	Current   string          `json:"current"`
	Completed map[string]bool `json:"completed"`
}

// QuestProgress tracks quest lifecycle membership and earned badges.
type QuestProgress struct {
	Active    map[string]bool `json:"active"`
	Completed map[string]bool `json:"completed"`
	Badges    []string        `json:"badges"`
}

// SessionMeta identifies the session a state belongs to.
type SessionMeta struct {
	ProfileID string    `json:"profile_id"`
	ModuleID  string    `json:"module_id"`
	StartedAt time.Time `json:"started_at"`
}

// GameState is the aggregate session state. Every turn derives a new value
// from the previous one; a GameState is never mutated once handed out.
type GameState struct {
	Location      string                     `json:"location"`
	Visited       map[string]bool            `json:"visited"`
	PlayerTags    map[string]bool            `json:"player_tags"`
	Objects       []WorldObject              `json:"objects"`
	NPCs          map[string]NPCState        `json:"npcs"`
	Turn          int                        `json:"turn"`
	ActiveEffects map[string]bool            `json:"active_effects"`
	LastReset     map[string]int             `json:"last_reset"`
	Tutorial      TutorialProgress           `json:"tutorial"`
	Quests        QuestProgress              `json:"quests"`
	Vocabulary    map[string]WordFamiliarity `json:"vocabulary"`
	Session       SessionMeta                `json:"session"`
}

// MutationKind tags a Mutation variant.
type MutationKind string

const (
	MutGo        MutationKind = "go"
	MutMove      MutationKind = "move"
	MutTag       MutationKind = "tag"
	MutPlayerTag MutationKind = "playerTag"
	MutStatus    MutationKind = "status"
	MutCreate    MutationKind = "create"
	MutRemove    MutationKind = "remove"
	MutNPCMood   MutationKind = "npcMood"
)

// Mutation is a single atomic state-change instruction. Which fields are
// meaningful depends on Kind:
//
//	go        — Location
//	move      — ObjectID, To
//	tag       — ObjectID, Add, Remove
//	playerTag — Add, Remove
//	status    — Add, Remove
//	create    — Object
//	remove    — ObjectID
//	npcMood   — NPCID, Mood
type Mutation struct {
	Kind     MutationKind `json:"kind"`
	Location string       `json:"location,omitempty"`
	ObjectID string       `json:"object_id,omitempty"`
	To       string       `json:"to,omitempty"`
	Add      []string     `json:"add,omitempty"`
	Remove   []string     `json:"remove,omitempty"`
	Object   *WorldObject `json:"object,omitempty"`
	NPCID    string       `json:"npc_id,omitempty"`
	Mood     string       `json:"mood,omitempty"`
}

// CheckKind tags a CheckRule variant.
type CheckKind string

const (
	CheckAtLocation       CheckKind = "at_location"
	CheckPlayerHasTag     CheckKind = "player_has_tag"
	CheckPlayerMissingTag CheckKind = "player_missing_tag"
	CheckObjectAt         CheckKind = "object_at"
	CheckObjectHasTag     CheckKind = "object_has_tag"
	CheckObjectMissingTag CheckKind = "object_missing_tag"
	CheckQuestCompleted   CheckKind = "quest_completed"
	CheckAll              CheckKind = "all"
)

// CheckRule is a declarative boolean condition tree. The only combinator is
// conjunction (CheckAll); module authors who need disjunction duplicate the
// rule.
type CheckRule struct {
	Kind     CheckKind   `json:"kind"`
	Location string      `json:"location,omitempty"`
	Tag      string      `json:"tag,omitempty"`
	ObjectID string      `json:"object_id,omitempty"`
	QuestID  string      `json:"quest_id,omitempty"`
	All      []CheckRule `json:"all,omitempty"`
}

// LocationDef is a module-defined location.
type LocationDef struct {
	ID          string
	Name        Name
	Description string
	Exits       map[string]string // direction → location id
}

// ObjectDef is an object's initial placement and tags.
type ObjectDef struct {
	ID       string
	Name     Name
	Location string
	Tags     []string
}

// NPCDef is a module-defined non-player character.
type NPCDef struct {
	ID          string
	Name        Name
	Description string
	Location    string
	Mood        string
	WantsItem   string
}

// WordDef is one vocabulary entry: the id plus every surface form that
// counts as the word appearing in text.
type WordDef struct {
	ID          string
	Forms       []string
	Translation string
}

// TutorialStep is a non-blocking suggestion with a declarative completion
// rule. Next points at the suggested successor, purely for UI ordering.
type TutorialStep struct {
	ID     string
	Prompt string
	Check  CheckRule
	Next   string
}

// Quest has a declarative trigger and a reward. Completion is signaled by
// the narration collaborator, not by a rule. Prereq gating is absolute.
type Quest struct {
	ID      string
	Title   string
	Trigger CheckRule
	Reward  string
	Prereqs []string
}

// StatusCategory is one escalating need: every Cadence turns without a
// reset the active effect advances one rung up Ladder.
type StatusCategory struct {
	ID      string
	Cadence int
	Ladder  []string
}

// ModuleDef is an immutable module definition compiled by the loader. It is
// passed explicitly into every engine call; there is no process-wide
// registry.
type ModuleDef struct {
	ID         string
	Title      string
	Author     string
	Version    string
	Language   string // target language code, e.g. "es"
	Intro      string
	Start      string // starting location id
	FirstStep  string // first suggested tutorial step id
	Locations  map[string]LocationDef
	Objects    []ObjectDef
	NPCs       map[string]NPCDef
	Words      map[string]WordDef
	Steps      map[string]TutorialStep
	Quests     map[string]Quest
	Categories []StatusCategory
}
