package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/trustwatch/internal/alert"
	"github.com/ppiankov/trustwatch/internal/audit"
	"github.com/ppiankov/trustwatch/internal/collector"
	"github.com/ppiankov/trustwatch/internal/metrics"
	"github.com/ppiankov/trustwatch/internal/monitor"
	"github.com/ppiankov/trustwatch/internal/systemd"
)

var (
	monitorEmployee    string
	monitorInterval    time.Duration
	monitorMetricsAddr string
	monitorOnce        bool
)

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().StringVar(&monitorEmployee, "employee", "", "Employee to monitor (default: config, then current OS user)")
	monitorCmd.Flags().DurationVar(&monitorInterval, "poll-interval", 0, "Override poll interval")
	monitorCmd.Flags().StringVar(&monitorMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	monitorCmd.Flags().BoolVar(&monitorOnce, "once", false, "Run a single cycle and exit")
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run a monitoring session for one employee",
	Long: "Polls presence, inbox, identity and sensitive files every poll interval,\n" +
		"records each cycle in the audit log, and escalates on triggers.\n" +
		"The session ends on SIGINT/SIGTERM, when the employee is blocked, or when a collector fails.",
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if monitorEmployee != "" {
		cfg.Employee = monitorEmployee
	}
	if monitorInterval > 0 {
		cfg.PollInterval = monitorInterval
	}
	if monitorMetricsAddr != "" {
		cfg.MetricsAddr = monitorMetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Presence.Command == "" {
		return fmt.Errorf("presence.command is not configured")
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	if msg := systemd.CheckUnitFile(systemd.UnitPath(), systemd.HashPath()); msg != "" {
		log.Warn(msg)
	}

	identity := collector.OSIdentity{}
	if cfg.Employee == "" {
		cfg.Employee, err = identity.CurrentUser()
		if err != nil {
			return fmt.Errorf("resolve employee: %w", err)
		}
	}

	scorer, err := cfg.Scorer()
	if err != nil {
		return err
	}

	store, err := openWarnings(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	auditLog, err := audit.Open(cfg.AuditLog)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer auditLog.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nStopping monitoring session...")
			cancel()
		case <-ctx.Done():
		}
	}()

	box, err := openMailbox(ctx, cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	if cfg.AdminEmail == "" {
		log.Warn("admin_email is not set; alerts go to webhooks only")
	}
	dispatcher := alert.NewDispatcher(alert.Options{
		Recipient: cfg.AdminEmail,
		Sender:    box,
		Webhooks:  cfg.Alerts.Webhooks,
		Breaker:   cfg.Alerts.Breaker,
		Logger:    log,
		OnFailure: func(sink string) { m.AlertFailures.WithLabelValues(sink).Inc() },
	})

	session, err := monitor.New(monitor.Config{
		Employee:            cfg.Employee,
		SensitiveFiles:      cfg.SensitiveFiles,
		PollInterval:        cfg.PollInterval,
		MaxMessages:         cfg.MaxMessages,
		FileAccessImmediate: cfg.Alerts.FileAccessImmediate,
		Scorer:              scorer,
	}, monitor.Collectors{
		Presence: collector.NewCommandPresence(cfg.Presence.Command),
		Mail:     box,
		Files:    collector.OSFileProbe{},
		Identity: identity,
		Clock:    collector.SystemClock{},
	}, monitor.Deps{
		Store:    store,
		Audit:    auditLog,
		Notifier: dispatcher,
		Metrics:  m,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "trustwatch monitoring %s (session %s, state %s)\n", cfg.Employee, session.ID(), session.State())

	if monitorOnce {
		outcome, err := session.RunOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "cycle complete: state %s, outcome %s\n", session.State(), outcome)
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	var outcome monitor.Outcome
	g.Go(func() error {
		defer stop()
		var err error
		outcome, err = session.Run(runCtx)
		return err
	})

	path := resolvedConfigPath()
	if _, err := os.Stat(path); err == nil {
		reloader, err := monitor.NewReloader(path, session, log)
		if err != nil {
			log.WithError(err).Warn("config hot reload disabled")
		} else {
			g.Go(func() error { return reloader.Run(runCtx) })
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("config hot reload disabled")
	}

	if cfg.MetricsAddr != "" {
		log.WithField("addr", cfg.MetricsAddr).Info("serving metrics")
		g.Go(func() error { return m.Serve(runCtx, cfg.MetricsAddr) })
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("session %s: %w", session.ID(), err)
	}

	if outcome == monitor.OutcomeBlocked {
		fmt.Fprintf(out, "%s is BLOCKED; session ended\n", cfg.Employee)
		return nil
	}
	fmt.Fprintf(out, "session ended: state %s\n", session.State())
	return nil
}
