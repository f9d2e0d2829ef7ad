package conversation

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Sender identifies the author of a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "ai"
)

// Message is a single chat message. Message identifiers are minted locally,
// ordered by creation, and used only as render keys; they are never sent to
// the backend.
type Message struct {
	ID        string
	Sender    Sender
	Text      string
	Timestamp time.Time
}

// Conversation owns an ordered, append-only sequence of messages. Its
// identifier is provisional until the backend acknowledges the conversation,
// at which point the identifier is upgraded in place.
type Conversation struct {
	ID       string
	Title    string
	Messages []*Message
}

// New instantiates a conversation with a provisional identifier and no
// messages.
func New(title string) *Conversation {
	return &Conversation{
		ID:    MintProvisionalID(),
		Title: title,
	}
}

var messageSequence atomic.Int64

func nextMessageID() string {
	return fmt.Sprintf("msg-%d-%d", time.Now().UnixMicro(), messageSequence.Add(1))
}

// NewUserMessage stamps a user message with its creation time.
func NewUserMessage(text string) *Message {
	return &Message{
		ID:        nextMessageID(),
		Sender:    SenderUser,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage stamps an assistant message with its arrival time.
func NewAssistantMessage(text string) *Message {
	return &Message{
		ID:        nextMessageID(),
		Sender:    SenderAssistant,
		Text:      text,
		Timestamp: time.Now(),
	}
}
