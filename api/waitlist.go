package api

import (
	"context"
	"net/http"
)

type waitlistRequest struct {
	Email string `json:"email"`
}

// JoinWaitlist registers an email on the product waitlist.
func (c *Client) JoinWaitlist(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/waitlist", waitlistRequest{Email: email})
	return err
}
