package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	gmailUser  = "me"
	inboxLabel = "INBOX"
)

// Gmail reads the inbox and sends alerts through the Gmail API.
type Gmail struct {
	svc  *gmail.Service
	from string
}

// NewGmail builds a client. Callers pass option.WithHTTPClient with an
// authorized OAuth client (see NewGmailFromFiles) or test options.
func NewGmail(ctx context.Context, from string, opts ...option.ClientOption) (*Gmail, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail: create gmail service: %w", err)
	}
	return &Gmail{svc: svc, from: from}, nil
}

// RecentBodies lists the newest max INBOX messages and returns the text of
// each. Any API failure is returned; the caller decides whether that ends
// the session.
func (g *Gmail) RecentBodies(ctx context.Context, max int) ([]string, error) {
	call := g.svc.Users.Messages.List(gmailUser).LabelIds(inboxLabel).Context(ctx)
	if max > 0 {
		call = call.MaxResults(int64(max))
	}
	list, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("mail: list inbox: %w", err)
	}

	bodies := make([]string, 0, len(list.Messages))
	for _, m := range list.Messages {
		full, err := g.svc.Users.Messages.Get(gmailUser, m.Id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("mail: get message %s: %w", m.Id, err)
		}
		bodies = append(bodies, PartText(full.Payload))
	}
	return bodies, nil
}

// Send submits msg as a raw RFC 5322 message.
func (g *Gmail) Send(ctx context.Context, msg Message) error {
	raw := base64.URLEncoding.EncodeToString(msg.RFC822(g.from, time.Now()))
	if _, err := g.svc.Users.Messages.Send(gmailUser, &gmail.Message{Raw: raw}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

// PartText concatenates the decoded body data of p and all nested parts,
// depth-first. Undecodable data is skipped.
func PartText(p *gmail.MessagePart) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	if p.Body != nil && p.Body.Data != "" {
		if data, ok := decodeBase64URL(p.Body.Data); ok {
			b.Write(data)
		}
	}
	for _, part := range p.Parts {
		b.WriteString(PartText(part))
	}
	return b.String()
}

func decodeBase64URL(s string) ([]byte, bool) {
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return data, true
	}
	if data, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return data, true
	}
	return nil, false
}
