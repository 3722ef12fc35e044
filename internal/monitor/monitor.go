// Package monitor runs the polling loop that ties signal collection,
// scoring, sensitive-file detection, escalation, auditing and alerting
// together for one employee.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/trustwatch/internal/alert"
	"github.com/ppiankov/trustwatch/internal/audit"
	"github.com/ppiankov/trustwatch/internal/collector"
	"github.com/ppiankov/trustwatch/internal/detector"
	"github.com/ppiankov/trustwatch/internal/escalation"
	"github.com/ppiankov/trustwatch/internal/mail"
	"github.com/ppiankov/trustwatch/internal/metrics"
	"github.com/ppiankov/trustwatch/internal/scoring"
)

// ErrCollectorUnavailable is wrapped by Run when a signal source fails.
// The failing cycle does not escalate.
var ErrCollectorUnavailable = errors.New("monitor: collector unavailable")

// Outcome is why a session ended.
type Outcome int

const (
	OutcomeStopped Outcome = iota // context cancelled or collector failure
	OutcomeBlocked                // employee reached BLOCKED
)

func (o Outcome) String() string {
	if o == OutcomeBlocked {
		return "blocked"
	}
	return "stopped"
}

// Config is fixed for the life of a session.
type Config struct {
	Employee            string
	SensitiveFiles      []string
	PollInterval        time.Duration
	MaxMessages         int
	FileAccessImmediate bool
	Scorer              *scoring.Scorer
}

// Collectors are the signal sources polled each cycle.
type Collectors struct {
	Presence collector.PresenceProbe
	Mail     mail.Source
	Files    collector.FileProbe
	Identity collector.IdentityProbe
	Clock    collector.Clock
}

// Notifier delivers alerts. Delivery failures are the notifier's concern.
type Notifier interface {
	Notify(ctx context.Context, n alert.Notification)
}

// Recorder appends one audit row per cycle.
type Recorder interface {
	Record(audit.Entry) error
}

// Deps are the session's sinks and stores.
type Deps struct {
	Store    escalation.Store
	Audit    Recorder
	Notifier Notifier
	Metrics  *metrics.Metrics // optional
	Logger   logrus.FieldLogger
}

// Session monitors one employee. Run it from a single goroutine; only
// SetScorer may be called concurrently.
type Session struct {
	id       string
	cfg      Config
	col      Collectors
	deps     Deps
	scorer   atomic.Pointer[scoring.Scorer]
	detector *detector.Detector
	machine  *escalation.Machine
	log      logrus.FieldLogger
	cycles   int
}

// New seeds the sensitive-file baseline and loads the employee's
// escalation state.
func New(cfg Config, col Collectors, deps Deps) (*Session, error) {
	if cfg.Employee == "" {
		return nil, fmt.Errorf("monitor: employee is required")
	}
	if cfg.Scorer == nil {
		return nil, fmt.Errorf("monitor: scorer is required")
	}
	if col.Presence == nil || col.Mail == nil || col.Identity == nil {
		return nil, fmt.Errorf("monitor: presence, mail and identity collectors are required")
	}
	if deps.Store == nil || deps.Audit == nil || deps.Notifier == nil {
		return nil, fmt.Errorf("monitor: store, audit and notifier are required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if col.Files == nil {
		col.Files = collector.OSFileProbe{}
	}
	if col.Clock == nil {
		col.Clock = collector.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}

	id := uuid.NewString()
	log := deps.Logger.WithFields(logrus.Fields{
		"session":  id,
		"employee": cfg.Employee,
	})

	s := &Session{
		id:       id,
		cfg:      cfg,
		col:      col,
		deps:     deps,
		detector: detector.New(col.Files, cfg.SensitiveFiles),
		machine:  escalation.NewMachine(cfg.Employee, deps.Store, log),
		log:      log,
	}
	s.scorer.Store(cfg.Scorer)

	if s.machine.State() == escalation.Blocked {
		log.Warn("employee is already blocked; further triggers end the session without alerting")
	}
	return s, nil
}

// ID returns the session id carried in every log line.
func (s *Session) ID() string { return s.id }

// State returns the current escalation state.
func (s *Session) State() escalation.State { return s.machine.State() }

// Scorer returns the scorer used by the next cycle.
func (s *Session) Scorer() *scoring.Scorer { return s.scorer.Load() }

// SetScorer swaps the scoring policy. The next cycle uses it.
func (s *Session) SetScorer(sc *scoring.Scorer) {
	if sc != nil {
		s.scorer.Store(sc)
	}
}

// Run polls until ctx is cancelled, the employee is blocked, or a
// collector fails. The first cycle runs immediately.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.log.WithFields(logrus.Fields{
		"interval": s.cfg.PollInterval.String(),
		"state":    s.machine.State().String(),
		"files":    len(s.detector.Paths()),
	}).Info("monitoring started")

	for {
		if ctx.Err() != nil {
			return OutcomeStopped, nil
		}
		out, err := s.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return OutcomeStopped, nil
			}
			return OutcomeStopped, err
		}
		if out == OutcomeBlocked {
			return out, nil
		}

		select {
		case <-ctx.Done():
			return OutcomeStopped, nil
		case <-ticker.C:
		}
	}
}

// RunOnce executes a single cycle.
func (s *Session) RunOnce(ctx context.Context) (Outcome, error) {
	terminate, err := s.cycle(ctx)
	if err != nil {
		return OutcomeStopped, err
	}
	if terminate {
		return OutcomeBlocked, nil
	}
	return OutcomeStopped, nil
}

func (s *Session) cycle(ctx context.Context) (bool, error) {
	s.cycles++
	log := s.log.WithField("cycle", s.cycles)

	faces, err := s.col.Presence.FaceCount(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: presence: %v", ErrCollectorUnavailable, err)
	}
	bodies, err := s.col.Mail.RecentBodies(ctx, s.cfg.MaxMessages)
	if err != nil {
		return false, fmt.Errorf("%w: mail: %v", ErrCollectorUnavailable, err)
	}
	actual, err := s.col.Identity.CurrentUser()
	if err != nil {
		return false, fmt.Errorf("%w: identity: %v", ErrCollectorUnavailable, err)
	}
	now := s.col.Clock.Now()

	scorer := s.scorer.Load()
	res := scorer.Evaluate(scoring.Signals{
		Faces:    faces,
		Bodies:   bodies,
		Now:      now,
		Expected: s.cfg.Employee,
		Actual:   actual,
	})

	for _, ev := range s.detector.Poll() {
		tag := scoring.FileAccessTag(ev.Name)
		res.Reasons.Add(tag)
		if s.deps.Metrics != nil {
			s.deps.Metrics.FileAccess.Inc()
		}
		log.WithFields(logrus.Fields{
			"path":        ev.Path,
			"accessed_at": ev.AccessedAt.Format(time.RFC3339),
		}).Warn("sensitive file accessed")

		// The access alone triggers this cycle, so the alert reports the
		// count the machine is about to reach. Blocked employees get none.
		if state := s.machine.State(); s.cfg.FileAccessImmediate && state < escalation.Blocked {
			s.deps.Notifier.Notify(ctx, alert.Notification{
				Timestamp:   now,
				SessionID:   s.id,
				Employee:    s.cfg.Employee,
				TrustScore:  res.Trust,
				Class:       alert.ClassWarning,
				Reasons:     []string{tag},
				UnusualTime: res.OffHours,
				Warnings:    int(state) + 1,
			})
		}
	}

	tr, err := s.machine.Evaluate(scorer.Triggered(res))
	if err != nil {
		log.WithError(err).Error("warning record not persisted")
	}

	if err := s.deps.Audit.Record(audit.Entry{
		Timestamp: now,
		Employee:  s.cfg.Employee,
		Behavior:  res.Behavior,
		Email:     res.Email,
		Trust:     res.Trust,
		Reasons:   res.Reasons.Tags(),
	}); err != nil {
		log.WithError(err).Error("audit write failed")
	}

	if class, ok := alertClass(tr.Action); ok {
		s.deps.Notifier.Notify(ctx, alert.Notification{
			Timestamp:   now,
			SessionID:   s.id,
			Employee:    s.cfg.Employee,
			TrustScore:  res.Trust,
			Class:       class,
			Reasons:     res.Reasons.Without(scoring.TagUnusualTime),
			UnusualTime: res.OffHours,
			Warnings:    tr.Warnings,
		})
		if s.deps.Metrics != nil {
			s.deps.Metrics.Escalations.WithLabelValues(string(class)).Inc()
		}
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.Cycles.Inc()
		s.deps.Metrics.TrustScore.Set(float64(res.Trust))
	}

	entry := log.WithFields(logrus.Fields{
		"trust":    res.Trust,
		"behavior": res.Behavior,
		"email":    res.Email,
		"state":    tr.To.String(),
		"reasons":  res.Reasons.String(),
	})
	switch {
	case tr.Terminate && tr.Changed():
		entry.Warn("employee blocked")
	case tr.Terminate:
		entry.Warn("trigger while already blocked")
	case tr.Changed():
		entry.Warn("employee warned")
	default:
		entry.Info("cycle")
	}

	return tr.Terminate, nil
}

func alertClass(a escalation.Action) (alert.Class, bool) {
	switch a {
	case escalation.ActionWarn:
		return alert.ClassWarning, true
	case escalation.ActionBlock:
		return alert.ClassBlock, true
	default:
		return "", false
	}
}
