package theme

import (
	"sync"

	"skycryptplus/internal/prefs"
)

var globalManager = newManager()

type manager struct {
	mu           sync.RWMutex
	names        []string
	themes       map[string]Theme
	currentName  string
	currentTheme Theme
}

// newManager registers the site themes in the order the host presents them.
func newManager() *manager {
	m := &manager{themes: make(map[string]Theme)}
	for _, opt := range prefs.Themes {
		if p, ok := sitePalettes[opt.File]; ok {
			m.register(opt.File, p)
		}
	}
	if t, ok := m.themes[prefs.DefaultTheme]; ok {
		m.currentName = prefs.DefaultTheme
		m.currentTheme = t
	}
	return m
}

func (m *manager) register(name string, t Theme) {
	if _, exists := m.themes[name]; !exists {
		m.names = append(m.names, name)
	}
	m.themes[name] = t
	if m.currentTheme == nil {
		m.currentName = name
		m.currentTheme = t
	}
}

// SetTheme switches to a registered theme by its site theme file name.
// Returns true if the theme was found and set.
func SetTheme(name string) bool {
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	if t, ok := globalManager.themes[name]; ok {
		globalManager.currentName = name
		globalManager.currentTheme = t
		return true
	}
	return false
}

// Current returns the active theme.
func Current() Theme {
	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()
	return globalManager.currentTheme
}

// CurrentName returns the site theme file of the active theme.
func CurrentName() string {
	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()
	return globalManager.currentName
}

// Available returns the registered theme names in presentation order.
func Available() []string {
	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()
	return append([]string(nil), globalManager.names...)
}
