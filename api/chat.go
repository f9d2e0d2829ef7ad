package api

import (
	"context"
	"net/http"
	"time"

	"github.com/nextunitech/madhav/conversation"
)

// replyFallback stands in for an empty assistant reply so the transcript
// never renders a blank bubble.
const replyFallback = "..."

type sendRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type sendData struct {
	Reply          string `json:"reply"`
	ConversationID string `json:"conversation_id"`
}

type wireMessage struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type wireConversation struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Messages []wireMessage `json:"messages"`
}

type historyData struct {
	Conversations []wireConversation `json:"conversations"`
}

// SendMessage posts a chat message. An empty conversationID asks the
// backend to open a new conversation; the minted identifier comes back on
// the reply.
func (c *Client) SendMessage(ctx context.Context, text, conversationID string) (conversation.SendReply, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/chat/send", sendRequest{
		Message:        text,
		ConversationID: conversationID,
	})
	if err != nil {
		return conversation.SendReply{}, err
	}

	var data sendData
	if err := decodeData(env, &data); err != nil {
		return conversation.SendReply{}, err
	}
	reply := conversation.SendReply{Text: data.Reply}
	if reply.Text == "" {
		reply.Text = replyFallback
	}
	if conversationID == "" {
		reply.ConversationID = data.ConversationID
	}
	return reply, nil
}

// FetchHistory retrieves the caller's conversations, most recent first.
func (c *Client) FetchHistory(ctx context.Context) ([]*conversation.Conversation, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/chat/history", nil)
	if err != nil {
		return nil, err
	}

	var data historyData
	if err := decodeData(env, &data); err != nil {
		return nil, err
	}

	out := make([]*conversation.Conversation, 0, len(data.Conversations))
	for _, wc := range data.Conversations {
		out = append(out, fromWire(wc))
	}
	return out, nil
}

// DeleteConversation removes a conversation server-side.
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/chat/"+conversationID, nil)
	return err
}

// fromWire converts a backend conversation. Message identifiers are minted
// locally; the backend does not track per-message identifiers.
func fromWire(wc wireConversation) *conversation.Conversation {
	conv := &conversation.Conversation{
		ID:    wc.ID,
		Title: wc.Title,
	}
	for _, wm := range wc.Messages {
		var msg *conversation.Message
		if wm.Sender == string(conversation.SenderUser) {
			msg = conversation.NewUserMessage(wm.Text)
		} else {
			msg = conversation.NewAssistantMessage(wm.Text)
		}
		if !wm.Timestamp.IsZero() {
			msg.Timestamp = wm.Timestamp
		}
		conv.Messages = append(conv.Messages, msg)
	}
	return conv
}
