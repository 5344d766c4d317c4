package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mitchellgordon95/live-language/engine/state"
)

// renderStatusBar produces a full-width inverted status line showing the
// current location, how the player feels, vocabulary progress, and turn.
func (m Model) renderStatusBar() string {
	v := m.engine.View(m.state)

	locName := v.LocationName.Target
	if locName == "" {
		locName = v.Location
	}

	left := " " + locName
	if len(v.ActiveEffects) > 0 {
		left += " | " + strings.Join(v.ActiveEffects, ", ")
	}
	if m.waiting {
		left += " | ..."
	}

	_, learning, known := state.StageCounts(m.state)
	right := fmt.Sprintf("W:%d/%d | T:%d ", known, known+learning, v.Turn)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
