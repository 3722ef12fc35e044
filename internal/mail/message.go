// Package mail reads recent inbox text and sends alert messages, either
// through the Gmail API or through a local spool directory.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"time"
)

// Message is an outgoing plain-text message.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Source returns the plain-text bodies of the most recent inbox messages.
type Source interface {
	RecentBodies(ctx context.Context, max int) ([]string, error)
}

// Sender delivers a composed message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// RFC822 renders msg as a minimal RFC 5322 message with a UTF-8 text body.
func (m Message) RFC822(from string, date time.Time) []byte {
	var b bytes.Buffer
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", date.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return b.Bytes()
}
