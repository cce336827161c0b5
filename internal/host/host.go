// Package host is the boundary between the preference store and update
// checker on one side and the window that shows the stats site on the other.
//
// A host window only needs to load a URL, reload it and evaluate a script.
// Everything the in-page controls call back into (persisting the theme, the
// auto-refresh interval, saved profiles, resetting) goes through Bridge, whose
// methods never fail outward: they log and return false.
package host

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"skycryptplus/internal/update"
)

const (
	// DefaultSiteURL is the stats site root.
	DefaultSiteURL = "https://sky.shiiyu.moe"
	// UpdateEvent is the DOM event dispatched when an update is available.
	UpdateEvent = "skycryptPlusUpdateAvailable"
)

// ScriptEvaluator runs a script inside the displayed page.
type ScriptEvaluator interface {
	EvaluateScript(script string) error
}

// Window is the host window showing the stats site.
type Window interface {
	ScriptEvaluator
	Load(url string) error
	Reload() error
}

// ProfileURL returns the stats page for player/profile under base, e.g.
// https://sky.shiiyu.moe/stats/Alice/Main. An empty base selects DefaultSiteURL.
func ProfileURL(base, player, profile string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultSiteURL
	}
	return base + "/stats/" + url.PathEscape(player) + "/" + url.PathEscape(profile)
}

// UpdatePayload is the object exposed to the page as window.updateInfo.
type UpdatePayload struct {
	CurrentVersion string `json:"currentVersion"`
	LatestVersion  string `json:"latestVersion"`
	ReleaseURL     string `json:"releaseUrl"`
}

// NewUpdatePayload converts a check result for the page.
func NewUpdatePayload(info *update.UpdateInfo) UpdatePayload {
	return UpdatePayload{
		CurrentVersion: info.CurrentVersion.Bare(),
		LatestVersion:  info.LatestVersion.Bare(),
		ReleaseURL:     info.ReleaseURL,
	}
}

const updateScriptTemplate = `(function () {
    window.updateInfo = %s;
    document.dispatchEvent(new CustomEvent(%s, { detail: window.updateInfo }));
})();`

// UpdateScript builds the script that publishes info to the page and
// dispatches UpdateEvent. Values are JSON encoded, so quotes or markup in a
// release URL cannot break out of the literal.
func UpdateScript(info *update.UpdateInfo) (string, error) {
	if info == nil {
		return "", fmt.Errorf("no update info")
	}
	payload, err := json.Marshal(NewUpdatePayload(info))
	if err != nil {
		return "", fmt.Errorf("encode update info: %w", err)
	}
	event, err := json.Marshal(UpdateEvent)
	if err != nil {
		return "", fmt.Errorf("encode event name: %w", err)
	}
	return fmt.Sprintf(updateScriptTemplate, payload, event), nil
}

// NotifyUpdate tells the page about an available update. It does nothing for
// a nil result or one without an update.
func NotifyUpdate(ev ScriptEvaluator, info *update.UpdateInfo) error {
	if ev == nil || info == nil || !info.UpdateAvailable {
		return nil
	}
	script, err := UpdateScript(info)
	if err != nil {
		return err
	}
	if err := ev.EvaluateScript(script); err != nil {
		return fmt.Errorf("evaluate update script: %w", err)
	}
	return nil
}
