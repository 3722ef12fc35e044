package monitor

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/trustwatch/internal/config"
	"github.com/ppiankov/trustwatch/internal/scoring"
)

const reloadDebounce = 500 * time.Millisecond

// ScorerSetter receives a rebuilt scorer after each config change.
type ScorerSetter interface {
	SetScorer(*scoring.Scorer)
}

// Reloader watches the config file and swaps in a new scorer when the
// keywords, office hours or threshold change. Other settings need a restart.
type Reloader struct {
	watcher *fsnotify.Watcher
	path    string
	target  ScorerSetter
	log     logrus.FieldLogger

	mu   sync.Mutex
	hash string
}

// NewReloader watches path's directory so editors that replace the file
// on save are still seen.
func NewReloader(path string, target ScorerSetter, log logrus.FieldLogger) (*Reloader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("monitor: reload: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("monitor: reload: create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("monitor: reload: watch %s: %w", filepath.Dir(abs), err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := &Reloader{watcher: watcher, path: abs, target: target, log: log.WithField("config", abs)}
	if _, hash, err := config.LoadWithHash(abs); err == nil {
		r.hash = hash
	}
	return r, nil
}

// Run handles file events until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, func() {
					if _, err := r.Reload(); err != nil {
						r.log.WithError(err).Error("config reload failed, keeping previous policy")
					}
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.WithError(err).Warn("config watcher error")
		}
	}
}

// Reload re-reads the config and swaps the scorer if the file changed.
// It reports whether a new scorer was installed.
func (r *Reloader) Reload() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, hash, err := config.LoadWithHash(r.path)
	if err != nil {
		return false, err
	}
	if hash == r.hash {
		return false, nil
	}
	sc, err := cfg.Scorer()
	if err != nil {
		return false, err
	}
	r.target.SetScorer(sc)
	r.hash = hash

	p := sc.Policy()
	r.log.WithFields(logrus.Fields{
		"hash":         hash,
		"keywords":     len(p.Keywords),
		"office_hours": p.OfficeHours.String(),
		"threshold":    p.Threshold,
	}).Info("policy reloaded")
	return true, nil
}
