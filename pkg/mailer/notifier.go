package mailer

import (
	"context"
	"errors"
)

var ErrNoRecipient = errors.New("message has no recipient")

type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"content"`
}

type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Notifier delivers a message. A returned error means the delivery attempt
// failed; it says nothing about whether an earlier attempt succeeded.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}
