package session

import (
	"fmt"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"
	"golang.design/x/clipboard"

	"github.com/nextunitech/madhav/cli/chat/types"
)

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Always update the alert model with every message
	outAlert, alertCmd := m.alert.Update(msg)
	m.alert = outAlert.(bubbleup.AlertModel)
	if alertCmd != nil {
		cmds = append(cmds, alertCmd)
	}

	// Log for non-tick messages only
	defer func() {
		switch msg.(type) {
		case spinner.TickMsg, cursor.BlinkMsg, tea.MouseMsg:
		// Skip logging for spinner ticks
		default:
			log.Info("update completed", "msg_type", fmt.Sprintf("%T", msg), "active", m.selection.Current())
		}
	}()

	switch msg := msg.(type) {
	case tea.FocusMsg:
		m.windowFocused = true
		m.textarea.Focus()
		cmds = append(cmds, textarea.Blink)
		return m, tea.Batch(cmds...)

	case tea.BlurMsg:
		m.windowFocused = false
		m.textarea.Blur()
		return m, nil

	case types.SessionCheckedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.quitting = true
			return m, tea.Quit
		}
		if !msg.Authenticated {
			m.authFailed = true
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.fetchHistory()

	case types.HistoryLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			// Start with a fresh conversation so the session stays usable.
			m.engine.LoadHistory(nil)
			m.recalculateLayout()
			cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.ErrorKey, "Could not load history: "+msg.Err.Error()))
			return m, tea.Batch(cmds...)
		}
		m.engine.LoadHistory(msg.Conversations)
		m.recalculateLayout()
		m.viewport.GotoBottom()
		return m, tea.Batch(cmds...)

	case types.SendCompletedMsg:
		wasAtBottom := m.viewport.AtBottom()
		if err := m.engine.ResolveSend(msg.Op); err != nil {
			cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.ErrorKey, err.Error()))
		}
		m.recalculateLayout()
		if wasAtBottom {
			m.viewport.GotoBottom()
		}
		return m, tea.Batch(cmds...)

	case types.DeleteCompletedMsg:
		if err := m.engine.ResolveDelete(msg.Op); err != nil {
			cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.ErrorKey, err.Error()))
			return m, tea.Batch(cmds...)
		}
		m.navigationMessageIndex = -1
		m.recalculateLayout()
		m.viewport.GotoBottom()
		cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.InfoKey, "Conversation deleted"))
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		// Handle navigation commands.
		if msg.String() == "alt+{" {
			messages := m.activeMessages()
			if m.navigationMessageIndex == -1 {
				m.navigationMessageIndex = len(messages)
			}
			if m.navigationMessageIndex > 0 {
				m.navigationMessageIndex-- // Go up one message.
				m.viewport.SetContent(m.renderMessages())
				m.scrollToNavigatedMessage()
			}
			return m, nil
		}
		if msg.String() == "alt+}" {
			if m.navigationMessageIndex != -1 {
				m.navigationMessageIndex++ // Go to next message.
				if m.navigationMessageIndex == len(m.activeMessages()) {
					m.navigationMessageIndex = -1
					m.viewport.GotoBottom()
				}
				m.viewport.SetContent(m.renderMessages())
				if m.navigationMessageIndex != -1 {
					m.scrollToNavigatedMessage()
				}
			}
			return m, nil
		}

		// Copy navigated message content to clipboard
		if msg.String() == "alt+w" && m.navigationMessageIndex != -1 {
			messages := m.activeMessages()
			if m.navigationMessageIndex < len(messages) {
				clipboard.Write(clipboard.FmtText, []byte(messages[m.navigationMessageIndex].Text))
				cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.InfoKey, "Copied to clipboard!"))
			}
			return m, tea.Batch(cmds...)
		}

		// Conversation switching.
		if msg.String() == "alt+[" {
			m.cycleConversation(-1)
			return m, nil
		}
		if msg.String() == "alt+]" {
			m.cycleConversation(1)
			return m, nil
		}

		if msg.Alt {
			switch msg.String() {
			case "alt+p":
				if entry, ok := m.history.Previous(m.textarea.Value()); ok {
					m.textarea.SetValue(entry)
					m.historyNavigating = true
					m.adjustTextareaHeight()
					return m, nil
				}
			case "alt+n":
				if entry, ok := m.history.Next(); ok {
					m.textarea.SetValue(entry)
					m.historyNavigating = true
					m.adjustTextareaHeight()
					return m, nil
				}
			}
		}

		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyCtrlJ:
			if !m.loading {
				return m, m.sendMessage()
			}

		case tea.KeyCtrlN:
			if !m.loading {
				m.engine.StartConversation()
				m.navigationMessageIndex = -1
				m.recalculateLayout()
				m.viewport.GotoBottom()
				return m, nil
			}

		case tea.KeyCtrlX:
			if !m.loading {
				return m, m.deleteConversation()
			}

		case tea.KeyEnter:
			if m.historyNavigating {
				m.history.Reset()
				m.historyNavigating = false
			}
		}

		if m.historyNavigating {
			switch msg.Type {
			case tea.KeyRunes, tea.KeyBackspace, tea.KeyDelete:
				m.history.Reset()
				m.historyNavigating = false
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalculateLayout()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.adjustTextareaHeight()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "k", "g", "G", "u", "d", "b", "ctrl+u", "ctrl+d", "f", " ":
			// Don't pass vim navigation keys to viewport while typing
		default:
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	default:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// cycleConversation moves the selection through the store in display order,
// wrapping around at both ends.
func (m *Model) cycleConversation(delta int) {
	conversations := m.store.Conversations()
	if len(conversations) < 2 {
		return
	}
	index := 0
	for i, c := range conversations {
		if c.ID == m.selection.Current() {
			index = i
			break
		}
	}
	index = (index + delta + len(conversations)) % len(conversations)
	m.selection.Select(conversations[index].ID)
	m.navigationMessageIndex = -1
	m.recalculateLayout()
	m.viewport.GotoBottom()
}

func (m *Model) filter(model tea.Model, msg tea.Msg) tea.Msg {
	return msg
}

// Filter returns the filter function for the tea.Program.
func (m *Model) Filter() func(tea.Model, tea.Msg) tea.Msg {
	return m.filter
}
