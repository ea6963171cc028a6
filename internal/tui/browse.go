package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/chatstat/internal/render"
	"github.com/Zuo-Peng/chatstat/internal/stats"
)

type copyResultMsg struct {
	title string
	err   error
}

// browser shows a list of computed reports next to the selected one.
type browser struct {
	title    string
	reports  []*stats.Report
	texts    []string
	cursor   int
	offset   int
	preview  viewport.Model
	status   string
	width    int
	height   int
	ready    bool
	quitting bool
	copy     func(string) error
}

func newBrowser(title string, reports []*stats.Report, top int) browser {
	texts := make([]string, len(reports))
	for i, r := range reports {
		texts[i] = render.RenderReport(r, render.ReportOptions{Top: top})
	}
	b := browser{
		title:   title,
		reports: reports,
		texts:   texts,
		preview: viewport.New(0, 0),
		copy:    clipboard.WriteAll,
	}
	b.showCurrent()
	return b
}

// RunReports opens the report browser. Reports are computed up front, so
// the browser never touches the parsed messages.
func RunReports(title string, reports []*stats.Report, top int) error {
	p := tea.NewProgram(newBrowser(title, reports, top), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (b browser) Init() tea.Cmd { return nil }

func (b *browser) showCurrent() {
	if len(b.texts) == 0 {
		b.preview.SetContent("No reports")
		return
	}
	b.preview.SetContent(b.texts[b.cursor])
	b.preview.GotoTop()
}

func (b *browser) move(to int) {
	if len(b.reports) == 0 {
		return
	}
	to = min(max(to, 0), len(b.reports)-1)
	if to == b.cursor {
		return
	}
	b.cursor = to
	h := b.panelHeight()
	if b.cursor < b.offset {
		b.offset = b.cursor
	}
	if b.cursor >= b.offset+h {
		b.offset = b.cursor - h + 1
	}
	b.status = ""
	b.showCurrent()
}

func (b browser) copyCurrent() tea.Cmd {
	if len(b.reports) == 0 {
		return nil
	}
	text, title, copyFn := b.texts[b.cursor], b.reports[b.cursor].Title, b.copy
	return func() tea.Msg {
		return copyResultMsg{title: title, err: copyFn(text)}
	}
}

func (b browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.ready = true
		b.preview = newViewport(b.previewWidth(), b.panelHeight())
		b.showCurrent()
		return b, nil

	case copyResultMsg:
		if msg.err != nil {
			b.status = "Copy failed: " + msg.err.Error()
		} else {
			b.status = "Copied " + msg.title
		}
		return b, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit), msg.String() == "q":
			b.quitting = true
			return b, tea.Quit
		case key.Matches(msg, keys.Enter):
			return b, b.copyCurrent()
		case key.Matches(msg, keys.Up):
			b.move(b.cursor - 1)
		case key.Matches(msg, keys.Down):
			b.move(b.cursor + 1)
		case key.Matches(msg, keys.Top):
			b.move(0)
		case key.Matches(msg, keys.Bottom):
			b.move(len(b.reports) - 1)
		case key.Matches(msg, keys.PreviewUp):
			b.preview.LineUp(b.panelHeight() / 2)
		case key.Matches(msg, keys.PreviewDn):
			b.preview.LineDown(b.panelHeight() / 2)
		case key.Matches(msg, keys.PageUp):
			b.preview.LineUp(b.panelHeight())
		case key.Matches(msg, keys.PageDown):
			b.preview.LineDown(b.panelHeight())
		}
		return b, nil
	}
	return b, nil
}

func (b browser) View() string {
	if b.quitting || !b.ready {
		return ""
	}
	listW := b.listWidth()
	panelH := b.panelHeight()

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(b.renderTitles(listW, panelH))

	b.preview.Width = b.previewWidth()
	b.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(b.previewWidth()).
		Height(panelH).
		Render(b.preview.View())

	header := styleTitle.Render(b.title)
	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)
	return lipgloss.JoinVertical(lipgloss.Left, header, panels, b.statusBar())
}

func (b browser) renderTitles(width, height int) string {
	var lines []string
	for i := b.offset; i < len(b.reports) && len(lines) < height; i++ {
		title := runewidth.Truncate(b.reports[i].Title, max(width-2, 0), "…")
		if i == b.cursor {
			lines = append(lines, styleListSelected.Render("> "+title))
		} else {
			lines = append(lines, "  "+styleListNormal.Render(title))
		}
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (b browser) statusBar() string {
	parts := []string{
		fmt.Sprintf("%d reports", len(b.reports)),
		"up/dn select",
		"C-u/C-d scroll",
		"Enter copy",
		"Esc quit",
	}
	if b.status != "" {
		parts = append([]string{b.status}, parts...)
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func (b browser) listWidth() int {
	if b.width <= 0 {
		return 30
	}
	return max(b.width*30/100-4, 20)
}

func (b browser) previewWidth() int {
	if b.width <= 0 {
		return 70
	}
	return max(b.width*70/100-4, 20)
}

func (b browser) panelHeight() int {
	if b.height <= 0 {
		return 20
	}
	// header (1) + status bar (1) + borders (4)
	return max(b.height-6, 5)
}
