package ui

import (
	"errors"
	"strings"
	"sync"

	"skycryptplus/internal/host"
	"skycryptplus/internal/logging"
)

var errNoPage = errors.New("no page loaded")

// TerminalWindow is the host.Window the terminal shell drives. It tracks the
// page that would be shown and logs scripts instead of running them.
type TerminalWindow struct {
	mu      sync.Mutex
	url     string
	reloads int
	scripts []string
	log     logging.Logger
}

var _ host.Window = (*TerminalWindow)(nil)

// NewTerminalWindow creates a window showing url. A nil logger discards.
func NewTerminalWindow(url string, log logging.Logger) *TerminalWindow {
	if log == nil {
		log = logging.Discard()
	}
	return &TerminalWindow{url: url, log: log}
}

// Load navigates to url.
func (w *TerminalWindow) Load(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("empty url")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.url = url
	w.reloads = 0
	w.log.Infof("Loading %s", url)
	return nil
}

// Reload reloads the current page.
func (w *TerminalWindow) Reload() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.url == "" {
		return errNoPage
	}
	w.reloads++
	return nil
}

// EvaluateScript records script as run in the current page.
func (w *TerminalWindow) EvaluateScript(script string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.url == "" {
		return errNoPage
	}
	w.scripts = append(w.scripts, script)
	logging.Debugf("Evaluated script on %s:\n%s", w.url, script)
	return nil
}

// URL returns the page being shown.
func (w *TerminalWindow) URL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.url
}

// Reloads returns how often the current page was reloaded.
func (w *TerminalWindow) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Scripts returns the scripts evaluated so far.
func (w *TerminalWindow) Scripts() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.scripts...)
}
