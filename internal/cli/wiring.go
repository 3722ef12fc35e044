package cli

import (
	"context"
	"fmt"

	"github.com/ppiankov/trustwatch/internal/config"
	"github.com/ppiankov/trustwatch/internal/mail"
	"github.com/ppiankov/trustwatch/internal/warnings"
)

// mailbox is both halves of a mail backend.
type mailbox interface {
	mail.Source
	mail.Sender
}

func openMailbox(ctx context.Context, cfg *config.Config) (mailbox, error) {
	switch cfg.Mail.Backend {
	case config.MailSpool:
		return mail.NewSpool(cfg.Mail.Spool.Inbox, cfg.Mail.Spool.Outbox, cfg.Mail.From), nil
	case config.MailGmail:
		g, err := mail.NewGmailFromFiles(ctx, cfg.Mail.CredentialsFile, cfg.Mail.TokenFile, cfg.Mail.From)
		if err != nil {
			return nil, fmt.Errorf("gmail: %w (run `trustwatch mail auth` first)", err)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.Mail.Backend)
	}
}

func openWarnings(cfg *config.Config) (warnings.Store, error) {
	store, err := warnings.Open(cfg.Warnings.Backend, cfg.Warnings.Path)
	if err != nil {
		return nil, fmt.Errorf("open warning store: %w", err)
	}
	return store, nil
}
