// Package collab defines the contracts with the external
// language-understanding and narration collaborators, plus the Gemini
// implementation of both. The engine consumes these interfaces only; no
// network code lives in the engine packages.
package collab

import (
	"context"
	"fmt"

	"github.com/mitchellgordon95/live-language/types"
)

// Snapshot is the context handed to the understander with each utterance.
type Snapshot struct {
	Location   string             `json:"location"`
	Exits      map[string]string  `json:"exits"`
	Objects    []SnapshotObject   `json:"objects"`
	Inventory  []SnapshotObject   `json:"inventory"`
	PlayerTags []string           `json:"player_tags"`
	NPCs       []SnapshotNPC      `json:"npcs"`
	Words      []SnapshotWord     `json:"vocabulary"`
}

// SnapshotObject is one visible object with its tags.
type SnapshotObject struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// SnapshotNPC is one NPC visible to the player.
type SnapshotNPC struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mood string `json:"mood"`
}

// SnapshotWord is one vocabulary entry with the player's current stage.
type SnapshotWord struct {
	ID          string `json:"id"`
	Translation string `json:"translation"`
	Stage       string `json:"stage"`
}

// UnderstandResult is the understander's verdict on one utterance. The
// engine consumes Valid and Mutations; the rest passes through to the view.
type UnderstandResult struct {
	Understood      string
	GrammarFeedback string
	Valid           bool
	InvalidReason   string
	Mutations       []types.Mutation
	Rejected        []string // instructions dropped at the trust boundary
}

// NarrationResult is the narrator's account of an applied turn. Follow-up
// mutations run through the same applicator in the same turn.
type NarrationResult struct {
	Message         string
	StepsCompleted  []string
	QuestsStarted   []string
	QuestsCompleted []string
	NPCResponse     string
	Mutations       []types.Mutation
	Rejected        []string
}

// Understander turns a free-form utterance into declarative mutations.
type Understander interface {
	Understand(ctx context.Context, utterance string, snap Snapshot) (UnderstandResult, error)
}

// Narrator describes the outcome of applied mutations and signals
// narrative progress (notably quest completion).
type Narrator interface {
	Narrate(ctx context.Context, utterance string, applied []types.Mutation, snap Snapshot) (NarrationResult, error)
}

// CallError marks a collaborator failure. A turn that hits one aborts
// atomically and the caller may retry; it is distinct from a normal turn
// where the player's action was merely invalid.
type CallError struct {
	Collaborator string
	Err          error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s collaborator: %v", e.Collaborator, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }
