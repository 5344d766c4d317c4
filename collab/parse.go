package collab

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellgordon95/live-language/types"
)

// rawInstruction is the duck-typed instruction shape the model emits. It is
// converted to a typed Mutation here, at the trust boundary; nothing
// unvalidated crosses into the engine.
type rawInstruction struct {
	Kind     string           `json:"kind"`
	Location string           `json:"location"`
	ObjectID string           `json:"object_id"`
	To       string           `json:"to"`
	Add      []string         `json:"add"`
	Remove   []string         `json:"remove"`
	Object   *rawObject       `json:"object"`
	NPCID    string           `json:"npc_id"`
	Mood     string           `json:"mood"`
}

type rawObject struct {
	ID       string     `json:"id"`
	Name     types.Name `json:"name"`
	Location string     `json:"location"`
	Tags     []string   `json:"tags"`
}

// DecodeMutations converts raw instructions into typed mutations. Unknown
// kinds and structurally incomplete instructions are dropped with a reason;
// a best-effort interpreter upstream must never be able to crash a turn.
func DecodeMutations(raws []rawInstruction) ([]types.Mutation, []string) {
	var muts []types.Mutation
	var rejected []string

	for i, r := range raws {
		m, err := decodeOne(r)
		if err != nil {
			rejected = append(rejected, fmt.Sprintf("instruction %d: %v", i, err))
			continue
		}
		muts = append(muts, m)
	}
	return muts, rejected
}

func decodeOne(r rawInstruction) (types.Mutation, error) {
	kind := types.MutationKind(strings.TrimSpace(r.Kind))
	m := types.Mutation{Kind: kind}

	switch kind {
	case types.MutGo:
		if r.Location == "" {
			return m, fmt.Errorf("go: missing location")
		}
		m.Location = r.Location

	case types.MutMove:
		if r.ObjectID == "" || r.To == "" {
			return m, fmt.Errorf("move: missing object_id or to")
		}
		m.ObjectID, m.To = r.ObjectID, r.To

	case types.MutTag:
		if r.ObjectID == "" {
			return m, fmt.Errorf("tag: missing object_id")
		}
		m.ObjectID, m.Add, m.Remove = r.ObjectID, r.Add, r.Remove

	case types.MutPlayerTag, types.MutStatus:
		if len(r.Add) == 0 && len(r.Remove) == 0 {
			return m, fmt.Errorf("%s: empty add and remove", kind)
		}
		m.Add, m.Remove = r.Add, r.Remove

	case types.MutCreate:
		if r.Object == nil || r.Object.ID == "" {
			return m, fmt.Errorf("create: missing object")
		}
		tags := map[string]bool{}
		for _, t := range r.Object.Tags {
			tags[t] = true
		}
		m.Object = &types.WorldObject{
			ID:       r.Object.ID,
			Name:     r.Object.Name,
			Location: r.Object.Location,
			Tags:     tags,
		}

	case types.MutRemove:
		if r.ObjectID == "" {
			return m, fmt.Errorf("remove: missing object_id")
		}
		m.ObjectID = r.ObjectID

	case types.MutNPCMood:
		if r.NPCID == "" {
			return m, fmt.Errorf("npcMood: missing npc_id")
		}
		m.NPCID, m.Mood = r.NPCID, r.Mood

	default:
		return m, fmt.Errorf("unknown kind %q", r.Kind)
	}

	return m, nil
}

// stripFences removes a markdown code fence the model sometimes wraps JSON
// in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// understandPayload is the raw JSON body expected from the understander.
type understandPayload struct {
	Understood      string           `json:"understood"`
	GrammarFeedback string           `json:"grammar_feedback"`
	Valid           bool             `json:"valid"`
	InvalidReason   string           `json:"invalid_reason"`
	Mutations       []rawInstruction `json:"mutations"`
}

// narratePayload is the raw JSON body expected from the narrator.
type narratePayload struct {
	Message         string           `json:"message"`
	StepsCompleted  []string         `json:"steps_completed"`
	QuestsStarted   []string         `json:"quests_started"`
	QuestsCompleted []string         `json:"quests_completed"`
	NPCResponse     string           `json:"npc_response"`
	Mutations       []rawInstruction `json:"mutations"`
}

func parseUnderstand(body string) (UnderstandResult, error) {
	var p understandPayload
	if err := json.Unmarshal([]byte(stripFences(body)), &p); err != nil {
		return UnderstandResult{}, fmt.Errorf("decoding understander response: %w", err)
	}
	muts, rejected := DecodeMutations(p.Mutations)
	return UnderstandResult{
		Understood:      p.Understood,
		GrammarFeedback: p.GrammarFeedback,
		Valid:           p.Valid,
		InvalidReason:   p.InvalidReason,
		Mutations:       muts,
		Rejected:        rejected,
	}, nil
}

func parseNarrate(body string) (NarrationResult, error) {
	var p narratePayload
	if err := json.Unmarshal([]byte(stripFences(body)), &p); err != nil {
		return NarrationResult{}, fmt.Errorf("decoding narrator response: %w", err)
	}
	muts, rejected := DecodeMutations(p.Mutations)
	return NarrationResult{
		Message:         p.Message,
		StepsCompleted:  p.StepsCompleted,
		QuestsStarted:   p.QuestsStarted,
		QuestsCompleted: p.QuestsCompleted,
		NPCResponse:     p.NPCResponse,
		Mutations:       muts,
		Rejected:        rejected,
	}, nil
}
