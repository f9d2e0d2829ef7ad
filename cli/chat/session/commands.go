package session

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"

	"github.com/nextunitech/madhav/cli/chat/types"
	"github.com/nextunitech/madhav/conversation"
)

// checkSession validates the persisted session cookie against the backend.
func (m *Model) checkSession() tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		authenticated, err := client.CheckSession(ctx)
		return types.SessionCheckedMsg{Authenticated: authenticated, Err: err}
	}
}

// fetchHistory loads the user's conversations.
func (m *Model) fetchHistory() tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		conversations, err := client.FetchHistory(ctx)
		return types.HistoryLoadedMsg{Conversations: conversations, Err: err}
	}
}

// sendMessage begins the optimistic send cycle for the textarea's content.
// The user message appears immediately; the round trip runs off-loop and
// completes with a SendCompletedMsg resolved back on the event loop.
func (m *Model) sendMessage() tea.Cmd {
	userInput := strings.TrimSpace(m.textarea.Value())
	if userInput == "" {
		return nil
	}

	op, err := m.engine.BeginSend(userInput)
	if err != nil {
		return m.alert.NewAlertCmd(bubbleup.ErrorKey, err.Error())
	}

	m.history.Add(userInput)
	m.historyNavigating = false
	m.textarea.Reset()

	m.recalculateLayout()
	m.viewport.GotoBottom()

	engine := m.engine
	ctx := m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		engine.DispatchSend(ctx, op)
		return types.SendCompletedMsg{Op: op}
	})
}

// deleteConversation begins the commit-on-confirm delete cycle for the
// active conversation. Nothing is removed locally until the backend
// acknowledges. An empty unsaved conversation has no backend record to
// delete; it is discarded client-side instead.
func (m *Model) deleteConversation() tea.Cmd {
	if active, ok := m.selection.Active(); ok &&
		!conversation.IsDurable(active.ID) && len(active.Messages) == 0 && m.store.Len() > 1 {
		if err := m.engine.DiscardActive(); err == nil {
			m.navigationMessageIndex = -1
			m.recalculateLayout()
			m.viewport.GotoBottom()
			return m.alert.NewAlertCmd(bubbleup.InfoKey, "Discarded unsaved chat")
		}
	}

	op, err := m.engine.BeginDelete()
	if err != nil {
		return m.alert.NewAlertCmd(bubbleup.WarnKey, err.Error())
	}

	engine := m.engine
	ctx := m.ctx
	return func() tea.Msg {
		engine.DispatchDelete(ctx, op)
		return types.DeleteCompletedMsg{Op: op}
	}
}
