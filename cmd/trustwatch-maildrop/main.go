// trustwatch-maildrop reads an email from stdin and drops it into the
// trustwatch spool inbox, where a monitor using the spool mail backend
// scans it. Designed to be called by Postfix or sendmail as a pipe transport.
//
// Usage in /etc/aliases:
//
//	alice-watch: |/usr/local/bin/trustwatch-maildrop
//
// Environment variables:
//
//	TRUSTWATCH_SPOOL_INBOX  inbox directory (default: mail.spool.inbox from config)
//	TRUSTWATCH_CONFIG       config file (default: ~/.trustwatch/config.yaml)
//
// Every message is accepted regardless of sender: the monitor has to see
// mail an attacker sends, not just mail from known correspondents.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/trustwatch/internal/config"
	"github.com/ppiankov/trustwatch/internal/mail"
)

func main() {
	inbox, err := inboxDir()
	if err != nil {
		fail(err)
	}

	raw, err := io.ReadAll(io.LimitReader(os.Stdin, mail.MaxDeliverySize+1))
	if err != nil {
		fail(fmt.Errorf("read stdin: %w", err))
	}
	if len(raw) == 0 {
		fail(fmt.Errorf("empty input"))
	}

	if _, err := mail.NewSpool(inbox, "", "").Deliver(raw); err != nil {
		fail(err)
	}
}

func inboxDir() (string, error) {
	if v := os.Getenv("TRUSTWATCH_SPOOL_INBOX"); v != "" {
		return v, nil
	}
	cfg, err := config.Load(os.Getenv("TRUSTWATCH_CONFIG"))
	if err != nil {
		return "", err
	}
	return cfg.Mail.Spool.Inbox, nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "trustwatch-maildrop: %v\n", err)
	os.Exit(1)
}
