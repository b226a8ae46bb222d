package service

import "context"

// Attachment is a file carried by an outgoing email.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is an outgoing email. HTML and Attachments are optional.
type Message struct {
	To          []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Mailer delivers email. Callers treat delivery as best effort.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}
