// Package engine provides the ProcessTurn orchestrator that wires together
// understanding, mutation application, rule evaluation, vocabulary tracking,
// and status escalation into a single turn.
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/mitchellgordon95/live-language/collab"
	"github.com/mitchellgordon95/live-language/engine/mutate"
	"github.com/mitchellgordon95/live-language/engine/rules"
	"github.com/mitchellgordon95/live-language/engine/state"
	"github.com/mitchellgordon95/live-language/engine/status"
	"github.com/mitchellgordon95/live-language/engine/vocab"
	"github.com/mitchellgordon95/live-language/types"
)

// Engine holds the module definition and collaborator handles. It carries
// no mutable session state: ProcessTurn is a function from (state, input)
// to a new state, so distinct sessions can share one Engine freely.
type Engine struct {
	Defs         *types.ModuleDef
	Understander collab.Understander
	Narrator     collab.Narrator
	Now          func() time.Time
}

// New creates an engine for one module definition.
func New(defs *types.ModuleDef, u collab.Understander, n collab.Narrator) *Engine {
	return &Engine{
		Defs:         defs,
		Understander: u,
		Narrator:     n,
		Now:          time.Now,
	}
}

// TurnResult is the outcome of one processed turn.
type TurnResult struct {
	Understood      string
	GrammarFeedback string
	Valid           bool
	InvalidReason   string
	Message         string
	NPCResponse     string
	StepsCompleted  []string
	QuestsStarted   []string
	QuestsCompleted []string
	BadgesEarned    []string
	Applied         []types.Mutation
	Trace           []string // skipped mutations and boundary rejections
}

// ProcessTurn runs one complete turn against s and returns the successor
// state. s is never modified: on any collaborator error the turn aborts
// atomically, no counters advance, and the caller keeps the prior snapshot.
func (e *Engine) ProcessTurn(ctx context.Context, s *types.GameState, input string) (*types.GameState, *TurnResult, error) {
	now := e.Now()

	und, err := e.Understander.Understand(ctx, input, e.snapshot(s))
	if err != nil {
		return nil, nil, err
	}

	result := &TurnResult{
		Understood:      und.Understood,
		GrammarFeedback: und.GrammarFeedback,
		Valid:           und.Valid,
		InvalidReason:   und.InvalidReason,
		Trace:           append([]string(nil), und.Rejected...),
	}

	// An invalid action is still a completed turn: the counter advances and
	// needs escalate, but no mutations apply and word streaks break.
	if !und.Valid {
		next := state.Clone(s)
		for _, id := range vocab.ExtractWords(input, e.Defs.Words) {
			vocab.RecordFailedUse(next, id, now)
		}
		next.Turn++
		status.Tick(next, e.Defs.Categories)
		result.Message = und.InvalidReason
		return next, result, nil
	}

	next, mres := mutate.Apply(s, e.Defs, und.Mutations)
	result.Trace = append(result.Trace, mres.Skipped...)

	nar, err := e.Narrator.Narrate(ctx, input, mres.Applied, e.snapshot(next))
	if err != nil {
		// Atomic turn: discard everything applied so far.
		return nil, nil, err
	}
	result.Message = nar.Message
	result.NPCResponse = nar.NPCResponse
	result.Trace = append(result.Trace, nar.Rejected...)

	next, mres2 := mutate.Apply(next, e.Defs, nar.Mutations)
	result.Trace = append(result.Trace, mres2.Skipped...)
	result.Applied = append(mres.Applied, mres2.Applied...)

	// Progress rules. Completion signals land before activation so a quest
	// gated on a just-completed prereq can open in the same turn.
	completed, badges := rules.CompleteQuests(next, e.Defs, nar.QuestsCompleted)
	result.QuestsCompleted = completed
	result.BadgesEarned = badges
	result.QuestsStarted = rules.ActivateQuests(next, e.Defs)
	result.StepsCompleted = append(
		rules.AdvanceTutorial(next, e.Defs),
		rules.SweepCompletedSteps(next, e.Defs)...)

	// Vocabulary: the player's own words are correct uses; words that only
	// appear in the narration are context exposures.
	used := map[string]bool{}
	for _, id := range vocab.ExtractWords(input, e.Defs.Words) {
		vocab.RecordCorrectUse(next, id, now)
		used[id] = true
	}
	for _, id := range vocab.ExtractWords(nar.Message+" "+nar.NPCResponse, e.Defs.Words) {
		if !used[id] {
			vocab.RecordExposure(next, id, now)
		}
	}

	next.Turn++

	// A status mutation that removed a ladder effect means the underlying
	// need was satisfied; reset that category's clock at the new turn.
	for _, m := range result.Applied {
		if m.Kind != types.MutStatus {
			continue
		}
		for _, id := range m.Remove {
			if cat, ok := status.CategoryOf(e.Defs.Categories, id); ok {
				status.Clear(next, cat)
			}
		}
	}

	status.Tick(next, e.Defs.Categories)

	return next, result, nil
}

// View projects the state for an external presentation layer.
func (e *Engine) View(s *types.GameState) state.View {
	return state.Project(s, e.Defs)
}

// DueWords lists the vocabulary due for review right now.
func (e *Engine) DueWords(s *types.GameState) []string {
	return vocab.DueWords(s, e.Now())
}

// ReviewWord applies an explicit review grade to a word on a new snapshot.
func (e *Engine) ReviewWord(s *types.GameState, wordID string, quality int) *types.GameState {
	next := state.Clone(s)
	vocab.Review(next, wordID, quality, e.Now())
	return next
}

// HintUsed records a hint on a word on a new snapshot. This is the one
// event that can regress a word's familiarity stage.
func (e *Engine) HintUsed(s *types.GameState, wordID string) *types.GameState {
	next := state.Clone(s)
	vocab.RecordHintUsed(next, wordID)
	return next
}

// snapshot builds the context payload the collaborators see.
func (e *Engine) snapshot(s *types.GameState) collab.Snapshot {
	v := state.Project(s, e.Defs)
	snap := collab.Snapshot{
		Location:   s.Location,
		Exits:      v.Exits,
		PlayerTags: v.PlayerTags,
	}
	for _, o := range v.Objects {
		snap.Objects = append(snap.Objects, collab.SnapshotObject{ID: o.ID, Name: o.Name.Target, Tags: o.Tags})
	}
	for _, o := range v.Inventory {
		snap.Inventory = append(snap.Inventory, collab.SnapshotObject{ID: o.ID, Name: o.Name.Target, Tags: o.Tags})
	}
	for _, n := range v.NPCs {
		snap.NPCs = append(snap.NPCs, collab.SnapshotNPC{ID: n.ID, Name: n.Name.Target, Mood: n.Mood})
	}
	wordIDs := make([]string, 0, len(e.Defs.Words))
	for id := range e.Defs.Words {
		wordIDs = append(wordIDs, id)
	}
	sort.Strings(wordIDs)
	for _, id := range wordIDs {
		snap.Words = append(snap.Words, collab.SnapshotWord{
			ID:          id,
			Translation: e.Defs.Words[id].Translation,
			Stage:       string(state.WordStage(s, id)),
		})
	}
	return snap
}
