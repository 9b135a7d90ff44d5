/*
reloader.go - Periodic reload of the rules file

PURPOSE:
  Watches RULES_FILE and swaps the handler's rules when the file changes,
  so a new finance law can be rolled out without a restart.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Compares the file's modification time and size with the last load
  - A file that fails to parse or validate is logged once and skipped.
    The previous rules stay active
  - PUT /api/rules wins until the file changes again

USAGE:
  reloader := NewRulesReloader(handler, "/etc/payroll/rules.yaml", time.Minute)
  reloader.Start()
  // ... later
  reloader.Stop()

SEE ALSO:
  - handlers.go: SetRules, PutRules
  - factory/rules.go: LoadFile
*/
package api

import (
	"os"
	"sync"
	"time"
)

// RulesReloader re-reads a rules file on a ticker.
type RulesReloader struct {
	Handler       *Handler
	Path          string
	CheckInterval time.Duration

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	modTime time.Time
	size    int64
}

// NewRulesReloader creates a reloader. A zero interval or empty path
// makes Start a no-op.
func NewRulesReloader(h *Handler, path string, interval time.Duration) *RulesReloader {
	return &RulesReloader{
		Handler:       h,
		Path:          path,
		CheckInterval: interval,
	}
}

// Start records the current file state and begins checking.
func (rr *RulesReloader) Start() {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if rr.Path == "" || rr.CheckInterval <= 0 {
		rr.Handler.Logger.Debug("rules reloader disabled")
		return
	}
	if rr.ticker != nil {
		return
	}
	if info, err := os.Stat(rr.Path); err == nil {
		rr.modTime, rr.size = info.ModTime(), info.Size()
	}

	rr.stop = make(chan struct{})
	rr.ticker = time.NewTicker(rr.CheckInterval)
	rr.wg.Add(1)
	go rr.run()

	rr.Handler.Logger.Info("rules reloader started", "path", rr.Path, "interval", rr.CheckInterval)
}

// Stop stops the reloader and waits for an in-progress check.
func (rr *RulesReloader) Stop() {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if rr.ticker != nil {
		rr.ticker.Stop()
		close(rr.stop)
		rr.wg.Wait()
		rr.ticker = nil
		rr.Handler.Logger.Info("rules reloader stopped")
	}
}

func (rr *RulesReloader) run() {
	defer rr.wg.Done()

	for {
		select {
		case <-rr.ticker.C:
			rr.Check()
		case <-rr.stop:
			return
		}
	}
}

// Check reloads the file if it changed since the last check. A rejected
// version is reported once, not on every tick. It reports whether new
// rules were installed.
func (rr *RulesReloader) Check() bool {
	logger := rr.Handler.Logger

	info, err := os.Stat(rr.Path)
	if err != nil {
		logger.Warn("rules file unavailable", "path", rr.Path, "error", err)
		return false
	}
	if info.ModTime().Equal(rr.modTime) && info.Size() == rr.size {
		return false
	}
	rr.modTime, rr.size = info.ModTime(), info.Size()

	rules, err := rr.Handler.Rules.LoadFile(rr.Path)
	if err != nil {
		logger.Error("rules file rejected, keeping current rules", "path", rr.Path, "error", err)
		return false
	}
	if err := rr.Handler.SetRules(rules); err != nil {
		logger.Error("rules file rejected, keeping current rules", "path", rr.Path, "error", err)
		return false
	}
	logger.Info("rules reloaded", "path", rr.Path)
	return true
}
