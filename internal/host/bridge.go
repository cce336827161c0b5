package host

import (
	"encoding/json"
	"fmt"

	"skycryptplus/internal/logging"
	"skycryptplus/internal/prefs"
)

// Profile is a saved profile as the page sees it.
type Profile struct {
	PlayerName  string `json:"playerName"`
	ProfileName string `json:"profileName"`
	DisplayName string `json:"displayName"`
}

// ProfileList is the answer to the page's saved-profiles query.
type ProfileList struct {
	CurrentPlayer  string    `json:"currentPlayer"`
	CurrentProfile string    `json:"currentProfile"`
	Profiles       []Profile `json:"profiles"`
}

// Bridge implements the callables the page invokes.
type Bridge struct {
	store   *prefs.Store
	window  Window
	siteURL string
	log     logging.Logger
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithSiteURL overrides the stats site root used when switching profiles.
func WithSiteURL(base string) BridgeOption {
	return func(b *Bridge) {
		b.siteURL = base
	}
}

// WithBridgeLogger overrides the logger.
func WithBridgeLogger(l logging.Logger) BridgeOption {
	return func(b *Bridge) {
		b.log = l
	}
}

// NewBridge creates a bridge persisting through store. window may be nil when
// no page is shown yet; profile switches then only persist.
func NewBridge(store *prefs.Store, window Window, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		store:   store,
		window:  window,
		siteURL: DefaultSiteURL,
		log:     logging.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SiteURL returns the stats site root.
func (b *Bridge) SiteURL() string { return b.siteURL }

// CurrentURL returns the stats page of the stored player/profile, or the
// site root when nothing is stored.
func (b *Bridge) CurrentURL() string {
	doc, ok := b.store.Load()
	if !ok {
		return b.siteURL
	}
	return ProfileURL(b.siteURL, doc.PlayerName, doc.DefaultProfile)
}

// PersistTheme stores the selected site theme.
func (b *Bridge) PersistTheme(id string) bool {
	if err := b.store.SetTheme(id); err != nil {
		return false
	}
	b.log.Infof("Theme saved: %s", id)
	return true
}

// PersistAutoRefresh stores the interval, given as "off" or a minute count.
func (b *Bridge) PersistAutoRefresh(value string) bool {
	interval, err := prefs.ParseRefreshInterval(value)
	if err != nil {
		b.log.Errorf("Error saving auto refresh interval: %v", err)
		return false
	}
	if err := b.store.SetAutoRefresh(interval); err != nil {
		return false
	}
	b.log.Infof("Auto refresh interval saved: %s", interval)
	return true
}

// AutoRefresh returns the stored interval as "off" or a minute count.
func (b *Bridge) AutoRefresh() string {
	doc, ok := b.store.Load()
	if !ok {
		return prefs.RefreshOff.String()
	}
	return doc.AutoRefresh.String()
}

// SavedProfiles returns the saved profiles and the active pair. Profiles is
// never nil so the page always receives an array.
func (b *Bridge) SavedProfiles() ProfileList {
	list := ProfileList{Profiles: []Profile{}}
	doc, ok := b.store.Load()
	if !ok {
		b.log.Errorf("Config not found when getting saved profiles")
		return list
	}
	list.CurrentPlayer = doc.PlayerName
	list.CurrentProfile = doc.DefaultProfile
	for _, p := range doc.Profiles() {
		list.Profiles = append(list.Profiles, Profile{
			PlayerName:  p.PlayerName,
			ProfileName: p.ProfileName,
			DisplayName: p.Label(),
		})
	}
	return list
}

// AddSavedProfile saves a player/profile pair. It returns false when the
// pair is already saved or cannot be stored.
func (b *Bridge) AddSavedProfile(player, profile, display string) bool {
	added, err := b.store.AddSavedProfile(player, profile, display)
	if err != nil {
		return false
	}
	if added {
		b.log.Infof("Added saved profile: %s/%s", player, profile)
	}
	return added
}

// RemoveSavedProfile drops a saved pair. The last saved profile is kept.
func (b *Bridge) RemoveSavedProfile(player, profile string) bool {
	removed, err := b.store.RemoveSavedProfile(player, profile)
	if err != nil {
		return false
	}
	b.log.Infof("Removed saved profile: %s/%s", player, profile)
	return removed
}

// SwitchProfile makes a saved pair active and shows its stats page.
func (b *Bridge) SwitchProfile(player, profile string) bool {
	ok, err := b.store.SwitchProfile(player, profile)
	if err != nil || !ok {
		return false
	}
	b.log.Infof("Switched to profile: %s/%s", player, profile)
	if b.window != nil {
		if err := b.window.Load(ProfileURL(b.siteURL, player, profile)); err != nil {
			b.log.Warnf("Error loading stats page for %s/%s: %v", player, profile, err)
		}
	}
	return true
}

// ResetConfig deletes the stored preferences so the next start runs setup.
func (b *Bridge) ResetConfig() bool {
	removed, err := b.store.Reset()
	if err != nil {
		return false
	}
	return removed
}

// Invoke dispatches a call from the page by name, with JSON arguments, the
// way a webview binding delivers them. Names follow the page's API:
// saveTheme, saveAutoRefresh, getAutoRefresh, getSavedProfiles,
// addSavedProfile, removeSavedProfile, switchProfile and resetConfig.
func (b *Bridge) Invoke(name string, args []json.RawMessage) (any, error) {
	strs, err := stringArgs(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	arg := func(i int) string {
		if i < len(strs) {
			return strs[i]
		}
		return ""
	}
	need := func(n int) error {
		if len(strs) < n {
			return fmt.Errorf("%s: expected %d arguments, got %d", name, n, len(strs))
		}
		return nil
	}

	switch name {
	case "saveTheme":
		if err := need(1); err != nil {
			return nil, err
		}
		return b.PersistTheme(arg(0)), nil
	case "saveAutoRefresh":
		if err := need(1); err != nil {
			return nil, err
		}
		return b.PersistAutoRefresh(arg(0)), nil
	case "getAutoRefresh":
		return b.AutoRefresh(), nil
	case "getSavedProfiles":
		return b.SavedProfiles(), nil
	case "addSavedProfile":
		if err := need(2); err != nil {
			return nil, err
		}
		return b.AddSavedProfile(arg(0), arg(1), arg(2)), nil
	case "removeSavedProfile":
		if err := need(2); err != nil {
			return nil, err
		}
		return b.RemoveSavedProfile(arg(0), arg(1)), nil
	case "switchProfile":
		if err := need(2); err != nil {
			return nil, err
		}
		return b.SwitchProfile(arg(0), arg(1)), nil
	case "resetConfig":
		return b.ResetConfig(), nil
	default:
		return nil, fmt.Errorf("unknown callable %q", name)
	}
}

// stringArgs decodes each argument as a string; null reads as "". Numbers
// are kept in their JSON form since the page passes intervals both ways.
func stringArgs(args []json.RawMessage) ([]string, error) {
	out := make([]string, 0, len(args))
	for i, raw := range args {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out = append(out, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			out = append(out, n.String())
			continue
		}
		return nil, fmt.Errorf("argument %d is not a string: %s", i, raw)
	}
	return out, nil
}
