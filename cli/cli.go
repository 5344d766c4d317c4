// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the live-language engine.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellgordon95/live-language/collab"
	"github.com/mitchellgordon95/live-language/engine"
	"github.com/mitchellgordon95/live-language/engine/save"
	"github.com/mitchellgordon95/live-language/engine/vocab"
	"github.com/mitchellgordon95/live-language/store"
	"github.com/mitchellgordon95/live-language/types"
)

// CLI handles terminal interaction with the player. It owns the current
// snapshot: every successful turn swaps in the engine's new state.
type CLI struct {
	Engine    *engine.Engine
	Store     *store.Store
	State     *types.GameState
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given engine and starting state.
func New(eng *engine.Engine, st *store.Store, s *types.GameState) *CLI {
	return &CLI{
		Engine: eng,
		Store:  st,
		State:  s,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run starts the session loop: prompt → input → dispatch → output.
func (c *CLI) Run() {
	if c.Engine.Defs.Intro != "" {
		c.printLine(c.Engine.Defs.Intro)
		c.printLine("")
	}
	c.describeScene()

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.HandleMeta(input) {
				return // /quit
			}
			continue
		}

		c.runTurn(input)
	}
}

// runTurn processes one player utterance through the engine.
func (c *CLI) runTurn(input string) {
	next, result, err := c.Engine.ProcessTurn(context.Background(), c.State, input)
	if err != nil {
		var ce *collab.CallError
		if errors.As(err, &ce) {
			c.printSystem(fmt.Sprintf("The %s is not responding (%v). Nothing happened; try again.", ce.Collaborator, ce.Err))
		} else {
			c.printSystem(fmt.Sprintf("Turn failed: %v", err))
		}
		return
	}
	c.State = next
	c.printResult(result)
	if c.Trace {
		c.printTurnTrace(result)
	}
}

// HandleMeta dispatches a meta-command. Returns true if the session should
// end. Exported so the TUI shares one implementation.
func (c *CLI) HandleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Hasta luego.")
		return true

	case "/save":
		c.cmdSave()

	case "/load":
		c.cmdLoad()

	case "/look":
		c.describeScene()

	case "/words":
		c.cmdWords()

	case "/review":
		c.cmdReview(args)

	case "/hint":
		c.cmdHint(args)

	case "/quests":
		c.cmdQuests()

	case "/status":
		c.cmdStatus()

	case "/help":
		c.cmdHelp()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave() {
	data, err := save.Save(c.State, c.Engine.Defs)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := c.Store.Put(context.Background(), c.State.Session.ProfileID, c.State.Session.ModuleID, data); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Session saved for profile %s.", c.State.Session.ProfileID))
}

func (c *CLI) cmdLoad() {
	data, err := c.Store.Get(context.Background(), c.State.Session.ProfileID)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	s, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.State = s
	c.printSystem(fmt.Sprintf("Session loaded (turn %d).", s.Turn))
	c.describeScene()
}

func (c *CLI) cmdWords() {
	due := c.Engine.DueWords(c.State)
	newCount, learning, known := 0, 0, 0
	for _, w := range c.State.Vocabulary {
		switch w.Stage {
		case types.StageKnown:
			known++
		case types.StageLearning:
			learning++
		default:
			newCount++
		}
	}
	c.printSystem(fmt.Sprintf("Vocabulary: %d known, %d learning, %d new.", known, learning, newCount))
	if len(due) == 0 {
		c.printSystem("No words due for review.")
		return
	}
	c.printSystem(fmt.Sprintf("Due for review: %s", strings.Join(due, ", ")))
	c.printSystem("Grade one with /review <word> <1-4>.")
}

func (c *CLI) cmdReview(args []string) {
	if len(args) < 2 {
		c.printSystem("Usage: /review <word> <quality 1-4>")
		return
	}
	wordID := args[0]
	if _, ok := c.State.Vocabulary[wordID]; !ok {
		if suggestion, dist := vocab.Closest(wordID, c.Engine.Defs.Words); suggestion != "" && dist <= 2 {
			c.printSystem(fmt.Sprintf("Unknown word %q. Did you mean %q?", wordID, suggestion))
		} else {
			c.printSystem(fmt.Sprintf("Unknown word %q.", wordID))
		}
		return
	}
	quality, err := strconv.Atoi(args[1])
	if err != nil {
		c.printSystem("Quality must be a number: 1=again, 2=hard, 3=good, 4=easy.")
		return
	}
	c.State = c.Engine.ReviewWord(c.State, wordID, quality)
	w := c.State.Vocabulary[wordID]
	c.printSystem(fmt.Sprintf("%s: next review in %d day(s).", wordID, w.IntervalDays))
}

func (c *CLI) cmdHint(args []string) {
	if len(args) < 1 {
		c.printSystem("Usage: /hint <word>")
		return
	}
	wordID := args[0]
	wd, ok := c.Engine.Defs.Words[wordID]
	if !ok {
		if suggestion, dist := vocab.Closest(wordID, c.Engine.Defs.Words); suggestion != "" && dist <= 2 {
			wordID = suggestion
			wd = c.Engine.Defs.Words[wordID]
		} else {
			c.printSystem(fmt.Sprintf("Unknown word %q.", wordID))
			return
		}
	}
	c.State = c.Engine.HintUsed(c.State, wordID)
	c.printSystem(fmt.Sprintf("%s — %s", wordID, wd.Translation))
}

func (c *CLI) cmdQuests() {
	v := c.Engine.View(c.State)
	if len(v.ActiveQuests) == 0 && len(v.CompletedQuests) == 0 {
		c.printSystem("No quests yet.")
		return
	}
	for _, id := range v.ActiveQuests {
		c.printSystem(fmt.Sprintf("[active] %s", c.questTitle(id)))
	}
	for _, id := range v.CompletedQuests {
		c.printSystem(fmt.Sprintf("[done]   %s", c.questTitle(id)))
	}
	if len(v.Badges) > 0 {
		c.printSystem(fmt.Sprintf("Badges: %s", strings.Join(v.Badges, ", ")))
	}
}

func (c *CLI) questTitle(id string) string {
	if q, ok := c.Engine.Defs.Quests[id]; ok && q.Title != "" {
		return q.Title
	}
	return id
}

func (c *CLI) cmdStatus() {
	v := c.Engine.View(c.State)
	c.printSystem(fmt.Sprintf("Turn: %d", v.Turn))
	c.printSystem(fmt.Sprintf("Location: %s", v.Location))
	if len(v.ActiveEffects) > 0 {
		c.printSystem(fmt.Sprintf("Feeling: %s", strings.Join(v.ActiveEffects, ", ")))
	}
	if v.SuggestedStep != "" {
		if step, ok := c.Engine.Defs.Steps[v.SuggestedStep]; ok {
			c.printSystem(fmt.Sprintf("Try: %s", step.Prompt))
		}
	}
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save          — Save session for this profile",
		"  /load          — Load this profile's session",
		"  /look          — Describe where you are",
		"  /words         — Vocabulary progress and due reviews",
		"  /review w q    — Grade a review (1=again .. 4=easy)",
		"  /hint <word>   — Show a translation (affects familiarity)",
		"  /quests        — Quest log and badges",
		"  /status        — Turn, location, how you feel",
		"  /trace         — Toggle debug trace output",
		"  /quit          — Exit",
		"",
		"Everything else you type is sent to the world in your target",
		"language. Try describing what you want to do.",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

// describeScene prints the current location, visible objects, and NPCs.
func (c *CLI) describeScene() {
	v := c.Engine.View(c.State)
	if v.Description != "" {
		c.printLine(v.Description)
	} else {
		c.printLine(fmt.Sprintf("You are in %s.", v.LocationName.Target))
	}
	if len(v.Objects) > 0 {
		var names []string
		for _, o := range v.Objects {
			names = append(names, o.Name.Target)
		}
		c.printLine("You see: " + strings.Join(names, ", ") + ".")
	}
	for _, n := range v.NPCs {
		c.printLine(fmt.Sprintf("%s is here (%s).", n.Name.Target, n.Mood))
	}
	if len(v.Exits) > 0 {
		dirs := make([]string, 0, len(v.Exits))
		for dir := range v.Exits {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		c.printLine("Exits: " + strings.Join(dirs, ", ") + ".")
	}
}

func (c *CLI) printResult(result *engine.TurnResult) {
	if !result.Valid {
		if result.InvalidReason != "" {
			c.printLine(result.InvalidReason)
		} else {
			c.printLine("That doesn't seem possible.")
		}
		if result.GrammarFeedback != "" {
			c.printSystem(result.GrammarFeedback)
		}
		return
	}
	if result.Message != "" {
		c.printLine(result.Message)
	}
	if result.NPCResponse != "" {
		c.printLine(result.NPCResponse)
	}
	if result.GrammarFeedback != "" {
		c.printSystem(result.GrammarFeedback)
	}
	for _, id := range result.StepsCompleted {
		c.printSystem(fmt.Sprintf("Tutorial step complete: %s", id))
	}
	for _, id := range result.QuestsStarted {
		c.printSystem(fmt.Sprintf("Quest started: %s", c.questTitle(id)))
	}
	for _, id := range result.QuestsCompleted {
		c.printSystem(fmt.Sprintf("Quest complete: %s", c.questTitle(id)))
	}
	for _, b := range result.BadgesEarned {
		c.printSystem(fmt.Sprintf("Badge earned: %s", b))
	}
}

func (c *CLI) printTurnTrace(result *engine.TurnResult) {
	c.printSystem(fmt.Sprintf("[trace] Applied: %d", len(result.Applied)))
	for _, m := range result.Applied {
		c.printSystem(fmt.Sprintf("[trace]   %s", formatMutation(m)))
	}
	for _, note := range result.Trace {
		c.printSystem(fmt.Sprintf("[trace] skipped: %s", note))
	}
}

func formatMutation(m types.Mutation) string {
	switch m.Kind {
	case types.MutGo:
		return fmt.Sprintf("go %s", m.Location)
	case types.MutMove:
		return fmt.Sprintf("move %s -> %s", m.ObjectID, m.To)
	case types.MutTag:
		return fmt.Sprintf("tag %s +%v -%v", m.ObjectID, m.Add, m.Remove)
	case types.MutPlayerTag:
		return fmt.Sprintf("playerTag +%v -%v", m.Add, m.Remove)
	case types.MutStatus:
		return fmt.Sprintf("status +%v -%v", m.Add, m.Remove)
	case types.MutCreate:
		if m.Object != nil {
			return fmt.Sprintf("create %s at %s", m.Object.ID, m.Object.Location)
		}
		return "create <nil>"
	case types.MutRemove:
		return fmt.Sprintf("remove %s", m.ObjectID)
	case types.MutNPCMood:
		return fmt.Sprintf("npcMood %s = %s", m.NPCID, m.Mood)
	default:
		return string(m.Kind)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
