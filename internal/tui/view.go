package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nullkey/keyflow/internal/keycode"
)

// Styles, populated by applyTheme on NewModel / theme toggle.
var (
	titleStyle          lipgloss.Style
	borderStyle         lipgloss.Style
	labelStyle          lipgloss.Style
	macroStyle          lipgloss.Style
	layerStyle          lipgloss.Style
	quitStyle           lipgloss.Style
	idleBadge           lipgloss.Style
	heldBadge           lipgloss.Style
	waitingBadge        lipgloss.Style
	bodyStyle           lipgloss.Style
	debugTitleStyle     lipgloss.Style
	debugRuleStyle      lipgloss.Style
	debugHeaderStyle    lipgloss.Style
	debugTimeStyle      lipgloss.Style
	debugCategoryStyle  lipgloss.Style
	debugMsgStyle       lipgloss.Style
	debugSepStyle       lipgloss.Style
)

// panelWidth is the total outer width of the main panel.
// borderStyle has: border (1+1) = 2, padding (2+2) = 4, total chrome = 6.
// Width() in lipgloss sets width including padding but excluding border.
// So we pass panelWidth - 2 (border) to Width(), and the actual text area
// is panelWidth - 6 (border + padding).
const panelWidth = 80
const panelWidthForStyle = panelWidth - 2 // passed to borderStyle.Width()
const panelContentWidth = panelWidth - 6  // actual usable text area

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	titleText := "  KEYFLOW  "
	barTotal := panelContentWidth - len(titleText)
	barLeft := barTotal / 2
	barRight := barTotal - barLeft
	title := strings.Repeat("▓", barLeft) + titleText + strings.Repeat("▓", barRight)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Layer:   "))
	b.WriteString(layerStyle.Render(fmt.Sprintf("%d", m.currentLayer)))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Held:    "))
	b.WriteString(m.renderHeld())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Status:  "))
	b.WriteString(m.renderStatusBadges())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Queued macros: "))
	b.WriteString(macroStyle.Render(fmt.Sprintf("%d", m.queuedMacros)))
	b.WriteString("\n\n")

	if m.HotkeyName != "" {
		b.WriteString(quitStyle.Render(fmt.Sprintf("Device: %s", m.HotkeyName)))
		b.WriteString("\n")
	}
	b.WriteString(quitStyle.Render("Press t to cycle theme, q to quit"))

	if m.DebugMode || len(m.DebugEntries) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.renderDebugPanel())
	}

	return borderStyle.Width(panelWidthForStyle).Render(b.String())
}

func (m Model) renderHeld() string {
	if len(m.keycodes) == 0 {
		return idleBadge.Render("● none")
	}
	names := make([]string, 0, len(m.keycodes))
	for _, c := range m.keycodes {
		names = append(names, keycodeName(c))
	}
	return heldBadge.Render("● " + strings.Join(names, " + "))
}

func (m Model) renderStatusBadges() string {
	var parts []string
	if m.waitingHoldTap {
		parts = append(parts, waitingBadge.Render("hold-tap pending"))
	}
	if m.oneShotActive {
		parts = append(parts, waitingBadge.Render("one-shot latched"))
	}
	if m.tapDancePending {
		parts = append(parts, waitingBadge.Render("tap-dance pending"))
	}
	if len(parts) == 0 {
		return idleBadge.Render("● idle")
	}
	return strings.Join(parts, "  ")
}

// keycodeName renders a keycode for display. The engine has no name
// table of its own (it only deals in numeric codes); this mapping exists
// purely for the dashboard, so it only needs to cover keys actually
// likely to show up while demoing a layout.
func keycodeName(c keycode.Code) string {
	switch {
	case c == keycode.LCtrl || c == keycode.RCtrl:
		return "Ctrl"
	case c == keycode.LShift || c == keycode.RShift:
		return "Shift"
	case c == keycode.LAlt || c == keycode.RAlt:
		return "Alt"
	case c == keycode.LGui || c == keycode.RGui:
		return "Gui"
	case c.IsConsumer():
		return fmt.Sprintf("Consumer(%#02x)", byte(c))
	}
	if b, ok := keycode.ToASCII(c, false); ok {
		return strings.ToUpper(string(b))
	}
	return fmt.Sprintf("0x%02X", byte(c))
}

const debugPanelMaxLines = 5

// Debug table column widths. Row content must fit within panelContentWidth.
const (
	colTimeWidth     = 15
	colCategoryWidth = 10
	colSepWidth      = 3 // " │ "
	colMsgWidth      = panelContentWidth - colTimeWidth - colCategoryWidth - colSepWidth*2
)

func (m Model) renderDebugPanel() string {
	sep := debugSepStyle.Render(" │ ")
	rule := debugRuleStyle.Render(strings.Repeat("─", panelContentWidth))

	var db strings.Builder

	db.WriteString(debugTitleStyle.Render("Debug"))
	db.WriteString("\n")
	db.WriteString(rule)
	db.WriteString("\n")

	db.WriteString(
		debugHeaderStyle.Width(colTimeWidth).Render("TIME") +
			sep +
			debugHeaderStyle.Width(colCategoryWidth).Render("TYPE") +
			sep +
			debugHeaderStyle.Width(colMsgWidth).Render("MESSAGE"))
	db.WriteString("\n")
	db.WriteString(rule)

	entries := m.DebugEntries
	if len(entries) > debugPanelMaxLines {
		entries = entries[len(entries)-debugPanelMaxLines:]
	}
	for _, entry := range entries {
		timeStr := entry.Time
		if len(timeStr) > colTimeWidth {
			timeStr = timeStr[:colTimeWidth]
		}

		cat := entry.Category
		if len(cat) > colCategoryWidth {
			cat = cat[:colCategoryWidth]
		}

		msg := entry.Message
		if len(msg) > colMsgWidth {
			msg = msg[:colMsgWidth-3] + "..."
		}

		db.WriteString("\n")
		db.WriteString(
			debugTimeStyle.Width(colTimeWidth).Render(timeStr) +
				sep +
				debugCategoryStyle.Width(colCategoryWidth).Render(cat) +
				sep +
				debugMsgStyle.Width(colMsgWidth).Render(msg))
	}

	return db.String()
}
