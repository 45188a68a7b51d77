package system

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Uraesh/Mon-portfolio/config"
	"github.com/Uraesh/Mon-portfolio/i/sendgrid"
)

// Messages shown to visitors.
const (
	MsgBadRequest     = "Requête invalide."
	MsgForbidden      = "Session expirée, veuillez recharger la page."
	MsgFieldsRequired = "Tous les champs sont requis."
	MsgInvalidEmail   = "Adresse email invalide."
	MsgPending        = "Message reçu ! (Configuration email en attente)"
	MsgSent           = "Message envoyé avec succès ! Merci de m'avoir contacté."
	MsgSendFailed     = "Erreur lors de l'envoi du message. Veuillez réessayer."
)

// Sender dispatches one email. *sendgrid.Client implements it.
type Sender interface {
	Send(ctx context.Context, m sendgrid.Message) error
}

// Submission is one contact form post. Every field is untrusted.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Trim returns s with surrounding whitespace removed from every field.
func (s Submission) Trim() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Subject: strings.TrimSpace(s.Subject),
		Message: strings.TrimSpace(s.Message),
	}
}

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks presence first, then the email shape.
func (s Submission) Validate() error {
	if s.Name == "" || s.Email == "" || s.Subject == "" || s.Message == "" {
		return ErrMissingFields
	}
	if !emailShape.MatchString(s.Email) {
		return ErrInvalidEmail
	}
	return nil
}

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

var (
	ErrMissingFields = &ValidationError{"all fields required"}
	ErrInvalidEmail  = &ValidationError{"invalid email"}
)

// DispatchError is a failed provider send. It is logged, never shown.
type DispatchError struct {
	Ref string
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s: %v", e.Ref, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Result is what the visitor gets back.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func success(msg string) Result {
	return Result{Success: true, Message: msg, Status: http.StatusOK}
}

func failure(status int, msg string) Result {
	return Result{Success: false, Message: msg, Status: status}
}

// Contact turns submissions into emails to the site owner.
type Contact struct {
	conf   config.ContactConfig
	sender Sender
	log    zerolog.Logger
}

func NewContact(conf config.ContactConfig, sender Sender, logger zerolog.Logger) *Contact {
	return &Contact{conf: conf, sender: sender, log: logger}
}

// Configured reports whether submissions are emailed or only logged.
func (c *Contact) Configured() bool {
	return c.sender != nil
}

// Compose builds the outgoing email for a validated submission.
func (c *Contact) Compose(sub Submission) sendgrid.Message {
	body := Render(sub, c.conf.Signature)
	return sendgrid.Message{
		To:       c.conf.To,
		From:     c.conf.From,
		FromName: c.conf.FromName,
		ReplyTo:  sub.Email,
		Subject:  c.conf.SubjectPrefix + sub.Subject,
		Text:     body.Text,
		HTML:     body.HTML,
	}
}

// Handle validates sub and, when a sender is configured, makes exactly one
// send attempt.
func (c *Contact) Handle(ctx context.Context, sub Submission) Result {
	sub = sub.Trim()
	if err := sub.Validate(); err != nil {
		if err == ErrInvalidEmail {
			return failure(http.StatusBadRequest, MsgInvalidEmail)
		}
		return failure(http.StatusBadRequest, MsgFieldsRequired)
	}

	ref := uuid.NewString()
	if c.sender == nil {
		c.log.Info().
			Str("ref", ref).
			Str("name", sub.Name).
			Str("email", sub.Email).
			Str("subject", sub.Subject).
			Str("body", sub.Message).
			Msg("contact message received, email delivery not configured")
		return success(MsgPending)
	}

	if err := c.sender.Send(ctx, c.Compose(sub)); err != nil {
		err = &DispatchError{Ref: ref, Err: err}
		c.log.Error().Err(err).Str("ref", ref).Str("email", sub.Email).Msg("error sending contact email")
		return failure(http.StatusInternalServerError, MsgSendFailed)
	}
	c.log.Info().Str("ref", ref).Str("email", sub.Email).Msg("contact email sent")
	return success(MsgSent)
}
