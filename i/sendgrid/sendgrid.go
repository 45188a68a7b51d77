// Package sendgrid sends single transactional emails through the SendGrid v3 API.
package sendgrid

import (
	"context"
	"fmt"

	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is one outgoing email.
type Message struct {
	To       string
	From     string
	FromName string
	ReplyTo  string
	Subject  string
	Text     string
	HTML     string
}

// APIError is returned when SendGrid answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sendgrid: status %d: %.200s", e.StatusCode, e.Body)
}

type Client struct {
	key  string
	host string
}

// New returns a client for apiKey. An empty host uses the public API.
func New(apiKey, host string) *Client {
	return &Client{key: apiKey, host: host}
}

// Send makes exactly one mail-send call.
func (c *Client) Send(ctx context.Context, m Message) error {
	email := mail.NewSingleEmail(
		mail.NewEmail(m.FromName, m.From),
		m.Subject,
		mail.NewEmail("", m.To),
		m.Text,
		m.HTML,
	)
	if m.ReplyTo != "" {
		email.SetReplyTo(mail.NewEmail("", m.ReplyTo))
	}

	// sg.Client keeps the request body on itself, so one per call
	var client *sg.Client
	if c.host == "" {
		client = sg.NewSendClient(c.key)
	} else {
		request := sg.GetRequest(c.key, "/v3/mail/send", c.host)
		request.Method = "POST"
		client = &sg.Client{Request: request}
	}

	resp, err := client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return nil
}
