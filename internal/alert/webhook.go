package alert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const requestTimeout = 5 * time.Second

var httpClient = &http.Client{Timeout: requestTimeout}

// PostWebhook posts n to a webhook endpoint once. Non-2xx responses are
// errors; there is no retry.
func PostWebhook(ctx context.Context, client *http.Client, cfg WebhookConfig, n Notification) error {
	body, err := FormatPayload(cfg.Format, n)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook rejected: HTTP %d", resp.StatusCode)
	}
	return nil
}

func wantsClass(classes []string, c Class) bool {
	if len(classes) == 0 {
		return true
	}
	for _, k := range classes {
		if Class(k) == c {
			return true
		}
	}
	return false
}
