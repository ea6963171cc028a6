package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/chatstat/internal/index"
	"github.com/Zuo-Peng/chatstat/internal/render"
	"github.com/Zuo-Peng/chatstat/internal/search"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	chatKey string
	msgID   int
	content string
	hitLine int
	err     error
}

// loadPreviewCmd renders the conversation around a result off the UI loop.
func loadPreviewCmd(db *index.DB, r search.Result, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine, err := render.RenderConversation(db, r.ChatKey, render.Options{
			HitMsgID: r.MsgID,
			Context:  50,
			Width:    width,
			Query:    query,
		})
		return previewRenderedMsg{
			chatKey: r.ChatKey,
			msgID:   r.MsgID,
			content: content,
			hitLine: hitLine,
			err:     err,
		}
	}
}

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
