// Package alert composes escalation notifications and delivers them to the
// admin mailbox and any configured webhooks.
package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/trustwatch/internal/mail"
)

// Class is the severity of a notification.
type Class string

const (
	ClassInfo    Class = "info"
	ClassWarning Class = "warning"
	ClassBlock   Class = "block"
)

// Notification is one alert about one employee.
type Notification struct {
	Timestamp   time.Time `json:"timestamp"`
	SessionID   string    `json:"session_id,omitempty"`
	Employee    string    `json:"employee"`
	TrustScore  int       `json:"trust_score"`
	Class       Class     `json:"class"`
	Reasons     []string  `json:"reasons"`
	UnusualTime bool      `json:"unusual_time"`
	Warnings    int       `json:"warnings"`
}

// Subject returns the mail subject line for n.
func (n Notification) Subject() string {
	switch n.Class {
	case ClassWarning:
		return "Warning: " + n.Employee
	case ClassBlock:
		return "Block Alert: " + n.Employee
	default:
		return "Info: " + n.Employee
	}
}

// Body returns the human-readable mail body for n.
func (n Notification) Body() string {
	var b strings.Builder
	switch n.Class {
	case ClassWarning:
		fmt.Fprintf(&b, "Employee %s triggered a WARNING (1st violation).\n", n.Employee)
	case ClassBlock:
		fmt.Fprintf(&b, "Employee %s is BLOCKED after repeated violations (2nd violation).\n", n.Employee)
	default:
		fmt.Fprintf(&b, "Employee %s activity notice.\n", n.Employee)
	}
	fmt.Fprintf(&b, "Trust score: %d\n", n.TrustScore)
	fmt.Fprintf(&b, "Total warnings so far: %d\n", n.Warnings)
	if len(n.Reasons) > 0 {
		fmt.Fprintf(&b, "Suspicious activity detected: %s\n", strings.Join(n.Reasons, ", "))
	}
	if n.UnusualTime {
		b.WriteString("Employee activity detected outside office hours.\n")
	}
	b.WriteString("\nPlease review their webcam behavior, file access, and email activity.")
	return b.String()
}

// Compose builds the admin mail for n.
func Compose(n Notification, to string) mail.Message {
	return mail.Message{To: to, Subject: n.Subject(), Body: n.Body()}
}
