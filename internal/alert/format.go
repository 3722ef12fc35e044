package alert

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, n Notification) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(n)
	default:
		return formatGeneric(n)
	}
}

func formatGeneric(n Notification) ([]byte, error) {
	return json.Marshal(n)
}

func formatSlack(n Notification) ([]byte, error) {
	reasons := "none"
	if len(n.Reasons) > 0 {
		reasons = strings.Join(n.Reasons, ", ")
	}

	fields := []any{
		map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Employee:* %s", n.Employee)},
		map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Trust score:* %d", n.TrustScore)},
		map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Warnings:* %d", n.Warnings)},
		map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Reasons:* %s", reasons)},
	}
	if n.UnusualTime {
		fields = append(fields, map[string]any{"type": "mrkdwn", "text": "*Outside office hours*"})
	}

	payload := map[string]any{
		"text": n.Subject(),
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("trustwatch: %s", n.Subject()),
				},
			},
			map[string]any{
				"type":   "section",
				"fields": fields,
			},
		},
	}
	return json.Marshal(payload)
}
