package api

import (
	"context"
	"net/http"
	"time"
)

// Contact message statuses as the backend stores them.
const (
	MessageStatusUnread  = "unread"
	MessageStatusRead    = "read"
	MessageStatusReplied = "replied"
)

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type createMessageRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type messagesData struct {
	Messages []ContactMessage `json:"messages"`
}

type messageData struct {
	Message ContactMessage `json:"message"`
}

// Messages lists contact messages, newest first. Requires an admin session.
func (c *Client) Messages(ctx context.Context) ([]ContactMessage, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/messages", nil)
	if err != nil {
		return nil, err
	}
	var data messagesData
	if err := decodeData(env, &data); err != nil {
		return nil, err
	}
	return data.Messages, nil
}

// CreateMessage submits a contact message. No session required.
func (c *Client) CreateMessage(ctx context.Context, name, email, subject, body string) (ContactMessage, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/messages", createMessageRequest{
		Name:    name,
		Email:   email,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		return ContactMessage{}, err
	}
	var data messageData
	if err := decodeData(env, &data); err != nil {
		return ContactMessage{}, err
	}
	return data.Message, nil
}

// UpdateMessageStatus marks a contact message read or replied. Requires an
// admin session.
func (c *Client) UpdateMessageStatus(ctx context.Context, id, status string) (ContactMessage, error) {
	env, err := c.do(ctx, http.MethodPatch, "/api/messages/"+id, updateStatusRequest{Status: status})
	if err != nil {
		return ContactMessage{}, err
	}
	var data messageData
	if err := decodeData(env, &data); err != nil {
		return ContactMessage{}, err
	}
	return data.Message, nil
}
