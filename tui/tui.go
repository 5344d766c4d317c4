// Package tui provides a Bubble Tea terminal UI for the live-language
// engine. Collaborator calls are slow remote operations, so turns run as
// async commands; the model stays responsive while a turn is in flight.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mitchellgordon95/live-language/cli"
	"github.com/mitchellgordon95/live-language/collab"
	"github.com/mitchellgordon95/live-language/engine"
	"github.com/mitchellgordon95/live-language/store"
	"github.com/mitchellgordon95/live-language/types"
)

// rawLine stores an unstyled output line with its classification, so we can
// re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the live-language TUI.
type Model struct {
	engine *engine.Engine
	store  *store.Store
	state  *types.GameState

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine

	width    int
	height   int
	ready    bool
	trace    bool
	waiting  bool // a turn is in flight; input is queued until it lands
	quitting bool
	lastCmd  string
}

// turnDoneMsg carries a finished turn into the Update loop.
type turnDoneMsg struct {
	input  string
	state  *types.GameState
	result *engine.TurnResult
	err    error
}

// sysOutputMsg carries meta-command output.
type sysOutputMsg struct {
	input string
	lines []string
}

// New creates a TUI model wired to the given engine and starting state.
func New(eng *engine.Engine, st *store.Store, s *types.GameState) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:  eng,
		store:   st,
		state:   s,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, st *store.Store, s *types.GameState) error {
	m := New(eng, st, s)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init produces the intro text and the opening scene.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		var lines []string
		defs := m.engine.Defs

		lines = append(lines, defs.Title+" v"+defs.Version+" by "+defs.Author)
		lines = append(lines, "")
		if defs.Intro != "" {
			lines = append(lines, defs.Intro)
			lines = append(lines, "")
		}
		lines = append(lines, m.sceneLines()...)

		return sysOutputMsg{lines: lines}
	}
}

// sceneLines describes the current location, objects, NPCs, and exits.
func (m Model) sceneLines() []string {
	v := m.engine.View(m.state)
	var lines []string
	if v.Description != "" {
		lines = append(lines, v.Description)
	}
	if len(v.Objects) > 0 {
		var names []string
		for _, o := range v.Objects {
			names = append(names, o.Name.Target)
		}
		lines = append(lines, "You see: "+strings.Join(names, ", ")+".")
	}
	for _, n := range v.NPCs {
		lines = append(lines, fmt.Sprintf("%s is here (%s).", n.Name.Target, n.Mood))
	}
	if len(v.Exits) > 0 {
		dirs := make([]string, 0, len(v.Exits))
		for dir := range v.Exits {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		lines = append(lines, "Exits: "+strings.Join(dirs, ", ")+".")
	}
	return lines
}

// Update handles messages (key presses, window resize, turn results).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case turnDoneMsg:
		m.waiting = false
		if msg.err != nil {
			m = m.appendOutput(sysOutputLines(msg))
			break
		}
		m.state = msg.state
		lines := resultLines(msg.result, m.engine)
		if m.trace {
			lines = append(lines, traceLines(msg.result)...)
		}
		m = m.appendOutput(outputBlock{lines: lines})

	case sysOutputMsg:
		m = m.appendOutput(outputBlock{input: msg.input, lines: msg.lines, isSystem: msg.input != ""})
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" || m.waiting {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// "again" / "g" repeats the last utterance.
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(outputBlock{input: input, lines: []string{"Nothing to repeat."}, isSystem: true})
			return m, nil
		}
		input = m.lastCmd
	} else if !strings.HasPrefix(input, "/") {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(outputBlock{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Game turn, async: the collaborator round-trip can take seconds.
	m = m.appendOutput(outputBlock{input: input})
	m.waiting = true
	eng, s := m.engine, m.state
	return m, func() tea.Msg {
		next, result, err := eng.ProcessTurn(context.Background(), s, input)
		return turnDoneMsg{input: input, state: next, result: result, err: err}
	}
}

// outputBlock is one turn's worth of lines to append.
type outputBlock struct {
	input    string
	lines    []string
	isSystem bool
}

func sysOutputLines(msg turnDoneMsg) outputBlock {
	var ce *collab.CallError
	if errors.As(msg.err, &ce) {
		return outputBlock{
			lines:    []string{fmt.Sprintf("The %s is not responding. Nothing happened; try again.", ce.Collaborator)},
			isSystem: true,
		}
	}
	return outputBlock{
		lines:    []string{fmt.Sprintf("Turn failed: %v", msg.err)},
		isSystem: true,
	}
}

// resultLines flattens a TurnResult into display lines.
func resultLines(r *engine.TurnResult, eng *engine.Engine) []string {
	var lines []string
	if !r.Valid {
		if r.InvalidReason != "" {
			lines = append(lines, r.InvalidReason)
		} else {
			lines = append(lines, "That doesn't seem possible.")
		}
	} else {
		if r.Message != "" {
			lines = append(lines, r.Message)
		}
		if r.NPCResponse != "" {
			lines = append(lines, r.NPCResponse)
		}
	}
	if r.GrammarFeedback != "" {
		lines = append(lines, "["+r.GrammarFeedback+"]")
	}
	for _, id := range r.StepsCompleted {
		lines = append(lines, "[Tutorial step complete: "+id+"]")
	}
	for _, id := range r.QuestsStarted {
		lines = append(lines, "[Quest started: "+questTitle(eng, id)+"]")
	}
	for _, id := range r.QuestsCompleted {
		lines = append(lines, "[Quest complete: "+questTitle(eng, id)+"]")
	}
	for _, b := range r.BadgesEarned {
		lines = append(lines, "[Badge earned: "+b+"]")
	}
	return lines
}

func traceLines(r *engine.TurnResult) []string {
	lines := []string{fmt.Sprintf("[trace] applied: %d", len(r.Applied))}
	for _, note := range r.Trace {
		lines = append(lines, "[trace] "+note)
	}
	return lines
}

func questTitle(eng *engine.Engine, id string) string {
	if q, ok := eng.Defs.Quests[id]; ok && q.Title != "" {
		return q.Title
	}
	return id
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(block outputBlock) Model {
	if block.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + block.input, isInput: true})
	}

	for _, line := range block.lines {
		rl := rawLine{text: line, isSystem: block.isSystem}
		if !block.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindYouSee:
		return styledYouSee(line)
	case kindExits:
		return styleExits.Render(line)
	case kindDialogue:
		return styleDialogue.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands by delegating to the plain CLI
// implementation, capturing its output. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	var buf strings.Builder
	c := cli.New(m.engine, m.store, m.state)
	c.Out = &buf
	c.Trace = m.trace

	quit := c.HandleMeta(input)
	m.state = c.State
	m.trace = c.Trace

	out := strings.TrimRight(buf.String(), "\n")
	if out == "" {
		return nil, quit
	}
	return strings.Split(out, "\n"), quit
}
