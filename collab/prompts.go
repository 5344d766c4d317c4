package collab

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellgordon95/live-language/types"
)

const understandPreamble = `You are the command interpreter for a text-based
language-learning life simulation. The player types commands in their target
language. Given the player's utterance and a snapshot of the world, respond
with ONLY a JSON object:

{
  "understood": "<english gloss of what the player tried to do>",
  "grammar_feedback": "<one short tip, or empty string>",
  "valid": true|false,
  "invalid_reason": "<why, if valid is false>",
  "mutations": [ <state-change instructions, see below> ]
}

Each mutation is one of:
  {"kind":"go","location":"<location id>"}
  {"kind":"move","object_id":"<id>","to":"<location id|inventory|object id|removed>"}
  {"kind":"tag","object_id":"<id>","add":["..."],"remove":["..."]}
  {"kind":"playerTag","add":["..."],"remove":["..."]}
  {"kind":"status","add":["..."],"remove":["..."]}
  {"kind":"create","object":{"id":"...","name":{"en":"...","target":"..."},"location":"...","tags":["..."]}}
  {"kind":"remove","object_id":"<id>"}
  {"kind":"npcMood","npc_id":"<id>","mood":"<mood>"}

Only use ids present in the snapshot. "go" is only valid through a listed
exit. If the utterance is not a plausible action, set valid to false with an
empty mutations list and explain in invalid_reason.`

const narratePreamble = `You are the narrator for a text-based
language-learning life simulation. You receive the player's utterance, the
mutations just applied, and the resulting world snapshot. Respond with ONLY
a JSON object:

{
  "message": "<2-3 sentences narrating the outcome, in the target language with simple vocabulary>",
  "steps_completed": [],
  "quests_started": [],
  "quests_completed": ["<quest ids the player has now clearly fulfilled>"],
  "npc_response": "<what an NPC present says, or empty string>",
  "mutations": [ <follow-up state changes in the same format the interpreter uses> ]
}

Report a quest in quests_completed only when the story genuinely resolves
its objective. Follow-up mutations are for consequences of the action (an
alarm stops ringing when switched off, food eaten becomes removed), never
for new player actions.`

func buildUnderstandPrompt(utterance string, snap Snapshot) string {
	var b strings.Builder
	b.WriteString(understandPreamble)
	b.WriteString("\n\nWorld snapshot:\n")
	b.WriteString(marshalSnapshot(snap))
	fmt.Fprintf(&b, "\n\nPlayer utterance: %q\n", utterance)
	return b.String()
}

func buildNarratePrompt(utterance string, applied []types.Mutation, snap Snapshot) string {
	var b strings.Builder
	b.WriteString(narratePreamble)
	b.WriteString("\n\nWorld snapshot after the action:\n")
	b.WriteString(marshalSnapshot(snap))
	b.WriteString("\n\nApplied mutations:\n")
	if data, err := json.Marshal(applied); err == nil {
		b.Write(data)
	}
	fmt.Fprintf(&b, "\n\nPlayer utterance: %q\n", utterance)
	return b.String()
}

func marshalSnapshot(snap Snapshot) string {
	data, err := json.Marshal(snap)
	if err != nil {
		return "{}"
	}
	return string(data)
}
