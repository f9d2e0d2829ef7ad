package session

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nextunitech/madhav/cli/chat/styles"
	"github.com/nextunitech/madhav/conversation"
)

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(m.renderTitle())
	b.WriteString("\n")

	body := styles.ViewportStyle.Render(m.viewport.View())
	if m.sidebarVisible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(m.viewport.Height), body)
	}
	b.WriteString(body)
	b.WriteString("\n")

	if m.loading {
		b.WriteString(fmt.Sprintf("%s Loading conversations...\n", m.spinner.View()))
	} else {
		if m.engine.Composing() {
			b.WriteString(fmt.Sprintf("%s Thinking...\n", m.spinner.View()))
		}
		b.WriteString(styles.TextAreaStyle.Render(m.textarea.View()))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return m.alert.Render(b.String())
}

func (m *Model) renderTitle() string {
	activeTitle := "-"
	saved := ""
	if active, ok := m.selection.Active(); ok {
		activeTitle = active.Title
		if activeTitle == "" {
			activeTitle = active.ID
		}
		if !conversation.IsDurable(active.ID) {
			saved = " (unsaved)"
		}
	}

	title := fmt.Sprintf(" 🤖 Madhav.AI │ 💬 %s%s │ %d conversations ",
		activeTitle, saved, m.store.Len())

	return styles.TitleStyle.Width(m.width).Render(title)
}

func (m *Model) sidebarVisible() bool {
	return m.width >= styles.SidebarMinTerminalWidth && m.store.Len() > 0
}

func (m *Model) renderSidebar(height int) string {
	var b strings.Builder
	b.WriteString(styles.DimTextStyle.Bold(true).Render("Conversations"))
	b.WriteString("\n\n")

	current := m.selection.Current()
	for _, c := range m.store.Conversations() {
		title := c.Title
		if title == "" {
			title = c.ID
		}
		label := styles.Truncate(title, styles.SidebarWidth-4)

		style := styles.SidebarItemStyle
		switch {
		case c.ID == current:
			style = styles.SidebarSelectedStyle
		case !conversation.IsDurable(c.ID):
			style = styles.SidebarUnsavedStyle
		}
		if !conversation.IsDurable(c.ID) {
			label += " •"
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("Alt+[/] switch · Ctrl+N new\nCtrl+X delete"))

	return styles.SidebarStyle.Height(height).Render(b.String())
}

func (m *Model) renderMessages() string {
	messages := m.activeMessages()
	m.messageViewportOffsets = m.messageViewportOffsets[:0]

	if len(messages) == 0 {
		return styles.DimTextStyle.Render("No messages yet. Say hello!")
	}

	var b strings.Builder
	line := 0
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
			line += 2
		}
		m.messageViewportOffsets = append(m.messageViewportOffsets, line)

		var block string
		switch msg.Sender {
		case conversation.SenderUser:
			block = styles.UserMessageStyle.Render(msg.Text)
		default:
			content := msg.Text
			if m.opts.RenderMarkdown {
				content = m.renderer.ToMarkdown(msg.ID, msg.Text)
			}
			block = styles.AIMessageStyle.Render(content)
		}
		if i == m.navigationMessageIndex {
			block = styles.MessageSelectedStyle.Render("▶") + "\n" + block
		}
		b.WriteString(block)
		line += lipgloss.Height(block)
	}

	if m.engine.Composing() {
		b.WriteString("\n\n")
		b.WriteString(styles.SpinnerStyle.Render("▋"))
	}

	return b.String()
}
