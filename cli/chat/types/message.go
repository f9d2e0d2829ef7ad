package types

import (
	"github.com/nextunitech/madhav/conversation"
)

// SessionCheckedMsg reports whether the persisted session is still valid.
type SessionCheckedMsg struct {
	Authenticated bool
	Err           error
}

// HistoryLoadedMsg carries the backend's conversation history.
type HistoryLoadedMsg struct {
	Conversations []*conversation.Conversation
	Err           error
}

// SendCompletedMsg is sent when a send round trip finishes. The operation
// carries the reply or the failure; resolution happens on the UI loop.
type SendCompletedMsg struct {
	Op *conversation.SendOperation
}

// DeleteCompletedMsg is sent when a delete round trip finishes.
type DeleteCompletedMsg struct {
	Op *conversation.DeleteOperation
}
