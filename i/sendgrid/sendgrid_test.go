package sendgrid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type address struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sentMail struct {
	From             address `json:"from"`
	ReplyTo          address `json:"reply_to"`
	Subject          string  `json:"subject"`
	Personalizations []struct {
		To []address `json:"to"`
	} `json:"personalizations"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func TestSend(t *testing.T) {
	var got sentMail
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New("SG.test-key", srv.URL)
	err := c.Send(context.Background(), Message{
		To:       "owner@example.com",
		From:     "owner@example.com",
		FromName: "Portfolio",
		ReplyTo:  "visitor@example.org",
		Subject:  "Portfolio Contact: hello",
		Text:     "plain body",
		HTML:     "<p>html body</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if auth != "Bearer SG.test-key" {
		t.Errorf("Authorization = %q", auth)
	}
	if path != "/v3/mail/send" {
		t.Errorf("path = %q", path)
	}
	if got.From.Email != "owner@example.com" || got.From.Name != "Portfolio" {
		t.Errorf("from = %+v", got.From)
	}
	if got.ReplyTo.Email != "visitor@example.org" {
		t.Errorf("reply_to = %+v", got.ReplyTo)
	}
	if got.Subject != "Portfolio Contact: hello" {
		t.Errorf("subject = %q", got.Subject)
	}
	if len(got.Personalizations) != 1 || len(got.Personalizations[0].To) != 1 ||
		got.Personalizations[0].To[0].Email != "owner@example.com" {
		t.Errorf("personalizations = %+v", got.Personalizations)
	}
	if len(got.Content) != 2 {
		t.Fatalf("content parts = %d, want 2", len(got.Content))
	}
	if got.Content[0].Type != "text/plain" || got.Content[0].Value != "plain body" {
		t.Errorf("content[0] = %+v", got.Content[0])
	}
	if got.Content[1].Type != "text/html" || got.Content[1].Value != "<p>html body</p>" {
		t.Errorf("content[1] = %+v", got.Content[1])
	}
}

func TestSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errors":[{"message":"The from address does not match a verified Sender Identity"}]}`))
	}))
	defer srv.Close()

	err := New("SG.bad", srv.URL).Send(context.Background(), Message{
		To: "owner@example.com", From: "owner@example.com", Subject: "s", Text: "t", HTML: "h",
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Error(), "Sender Identity") {
		t.Errorf("error text = %q", apiErr.Error())
	}
}

func TestSendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New("SG.key", url).Send(context.Background(), Message{
		To: "owner@example.com", From: "owner@example.com", Subject: "s", Text: "t",
	})
	if err == nil {
		t.Fatal("expected transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure reported as APIError: %v", err)
	}
}
