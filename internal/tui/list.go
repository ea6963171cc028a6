package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/chatstat/internal/search"
)

// linesPerItem is the number of terminal lines each result occupies.
const linesPerItem = 2

// renderList renders the left panel: search results list with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No results")
	}

	var lines []string
	for i := m.listOffset; i < len(m.results); i++ {
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatResultLine(m.results[i], width, i == m.cursor)...)
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// formatResultLine formats a single result as two lines:
//
//	line 1: [>] date  chat  sender
//	line 2:    snippet (dimmed)
func formatResultLine(r search.Result, width int, selected bool) []string {
	// "2020-01-02T08:00" -> "20-01-02"
	date := r.Ts
	if len(date) >= 10 {
		date = date[2:10]
	}

	chat := strings.ReplaceAll(r.ChatName, "\n", " ")
	if chat == "" {
		chat = r.ChatKey
	}
	sender := r.Sender
	room := max(width-2-len(date)-2, 0)
	if runewidth.StringWidth(chat)+1+runewidth.StringWidth(sender) > room {
		chatMax := max(room*2/3, 0)
		chat = runewidth.Truncate(chat, chatMax, "…")
		sender = runewidth.Truncate(sender, max(room-runewidth.StringWidth(chat)-1, 0), "…")
	}

	line1 := date + " " + styleChatName.Render(chat) + " " + styleSender.Render(sender)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + styleListNormal.Render(line1)
	}

	snippet := strings.NewReplacer("\n", " ", "\t", " ", ">>>", "", "<<<", "").Replace(r.Snippet)
	snippetMax := max(width-4, 0)
	if runewidth.StringWidth(snippet) > snippetMax {
		snippet = runewidth.Truncate(snippet, snippetMax, "")
	}
	line2 := "    " + styleSnippet.Render(snippet)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := max(listHeight/linesPerItem, 1)
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
