package alert

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/ppiankov/trustwatch/internal/mail"
)

// Sink names reported to the failure hook.
const (
	SinkMail    = "mail"
	SinkWebhook = "webhook"
)

// Options configures a Dispatcher.
type Options struct {
	Recipient string
	Sender    mail.Sender // nil disables mail delivery
	Webhooks  []WebhookConfig
	Breaker   BreakerConfig
	Client    *http.Client
	Logger    logrus.FieldLogger
	OnFailure func(sink string)
}

// Dispatcher delivers a notification to the admin mailbox and to every
// webhook whose class filter matches. Each sink is tried once.
type Dispatcher struct {
	to        string
	sender    mail.Sender
	breaker   *gobreaker.CircuitBreaker
	webhooks  []WebhookConfig
	client    *http.Client
	log       logrus.FieldLogger
	onFailure func(sink string)
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		to:        opts.Recipient,
		sender:    opts.Sender,
		webhooks:  opts.Webhooks,
		client:    opts.Client,
		log:       opts.Logger,
		onFailure: opts.OnFailure,
	}
	if d.client == nil {
		d.client = httpClient
	}
	if d.log == nil {
		d.log = logrus.StandardLogger()
	}

	bc := opts.Breaker
	if bc.MaxFailures == 0 {
		bc = DefaultBreaker()
	}
	d.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "alert-mail",
		MaxRequests: 1,
		Timeout:     bc.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			d.log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("mail breaker state changed")
		},
	})
	return d
}

// Notify delivers n synchronously. Delivery failures are logged and
// counted; they never reach the caller.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) {
	entry := d.log.WithFields(logrus.Fields{
		"employee": n.Employee,
		"class":    string(n.Class),
		"trust":    n.TrustScore,
	})

	if d.sender != nil && d.to != "" {
		msg := Compose(n, d.to)
		_, err := d.breaker.Execute(func() (interface{}, error) {
			return nil, d.sender.Send(ctx, msg)
		})
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			entry.WithError(err).Warn("mail alert skipped, sink unavailable")
			d.failed(SinkMail)
		case err != nil:
			entry.WithError(err).Error("mail alert failed")
			d.failed(SinkMail)
		default:
			entry.Info("mail alert sent")
		}
	}

	for _, cfg := range d.webhooks {
		if !wantsClass(cfg.Classes, n.Class) {
			continue
		}
		if err := PostWebhook(ctx, d.client, cfg, n); err != nil {
			entry.WithError(err).WithField("url", cfg.URL).Error("webhook alert failed")
			d.failed(SinkWebhook)
		}
	}
}

// MailState reports the mail breaker state.
func (d *Dispatcher) MailState() string {
	return d.breaker.State().String()
}

func (d *Dispatcher) failed(sink string) {
	if d.onFailure != nil {
		d.onFailure(sink)
	}
}
