package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
)

// maxPartDepth bounds multipart nesting.
const maxPartDepth = 8

// Email holds extracted fields from a raw email.
type Email struct {
	From    string
	Subject string
	Body    string
}

// ParseEmail extracts sender, subject, and all text/* content from a raw
// RFC 5322 message. Multipart bodies are walked depth-first and their text
// parts concatenated; non-text parts are ignored.
func ParseEmail(raw []byte) (*Email, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse email: %w", err)
	}

	from := msg.Header.Get("From")
	if addr, err := mail.ParseAddress(from); err == nil {
		from = addr.Address
	}

	body, err := extractPart(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body, 0)
	if err != nil {
		return nil, err
	}

	subject := msg.Header.Get("Subject")
	if dec, err := new(mime.WordDecoder).DecodeHeader(subject); err == nil {
		subject = dec
	}

	return &Email{
		From:    from,
		Subject: subject,
		Body:    strings.TrimSpace(body),
	}, nil
}

func extractPart(contentType, encoding string, r io.Reader, depth int) (string, error) {
	if depth > maxPartDepth {
		return "", fmt.Errorf("multipart nesting deeper than %d", maxPartDepth)
	}

	mediaType := "text/plain"
	var params map[string]string
	if contentType != "" {
		mt, p, err := mime.ParseMediaType(contentType)
		if err == nil {
			mediaType, params = mt, p
		}
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return "", fmt.Errorf("multipart message without boundary")
		}
		var b strings.Builder
		mr := multipart.NewReader(r, boundary)
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", fmt.Errorf("read multipart: %w", err)
			}
			text, err := extractPart(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part, depth+1)
			if err != nil {
				return "", err
			}
			b.WriteString(text)
		}
		return b.String(), nil
	}

	if !strings.HasPrefix(mediaType, "text/") {
		return "", nil
	}

	data, err := io.ReadAll(decodeTransfer(encoding, r))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, newlineStripper{r})
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// newlineStripper drops CR and LF so base64 bodies wrapped at 76 columns
// decode cleanly.
type newlineStripper struct{ r io.Reader }

func (n newlineStripper) Read(p []byte) (int, error) {
	for {
		c, err := n.r.Read(p)
		j := 0
		for _, b := range p[:c] {
			if b != '\r' && b != '\n' {
				p[j] = b
				j++
			}
		}
		if j > 0 || err != nil {
			return j, err
		}
	}
}
