package prefs

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// JSON member names of the preference document.
const (
	keySchemaVersion  = "schema_version"
	keyCreatedAt      = "created_at"
	keyPlayerName     = "player_name"
	keyDefaultProfile = "default_profile"
	keySelectedTheme  = "selected_theme"
	keyAutoRefresh    = "auto_refresh_interval_minutes"
	keySavedProfiles  = "saved_profiles"
)

// canonicalOrder is the member order used when the document is written.
var canonicalOrder = []string{
	keySchemaVersion,
	keyCreatedAt,
	keyPlayerName,
	keyDefaultProfile,
	keySelectedTheme,
	keyAutoRefresh,
	keySavedProfiles,
}

// fieldAliases maps every accepted member name to its canonical name.
// Earlier releases wrote "version" and camelCase names.
var fieldAliases = map[string]string{
	keySchemaVersion:      keySchemaVersion,
	"version":             keySchemaVersion,
	keyCreatedAt:          keyCreatedAt,
	"createdAt":           keyCreatedAt,
	keyPlayerName:         keyPlayerName,
	"playerName":          keyPlayerName,
	keyDefaultProfile:     keyDefaultProfile,
	"defaultProfile":      keyDefaultProfile,
	keySelectedTheme:      keySelectedTheme,
	"selectedTheme":       keySelectedTheme,
	keyAutoRefresh:        keyAutoRefresh,
	"autoRefreshInterval": keyAutoRefresh,
	keySavedProfiles:      keySavedProfiles,
	"savedProfiles":       keySavedProfiles,
}

// Document is the persisted record of the tracked player and display preferences.
type Document struct {
	SchemaVersion  string          `json:"schema_version"`
	CreatedAt      Timestamp       `json:"created_at" validate:"-"`
	PlayerName     string          `json:"player_name" validate:"required,max=64"`
	DefaultProfile string          `json:"default_profile" validate:"required,max=64"`
	SelectedTheme  string          `json:"selected_theme" validate:"theme"`
	AutoRefresh    RefreshInterval `json:"auto_refresh_interval_minutes" validate:"min=0,max=60"`
	SavedProfiles  []SavedProfile  `json:"saved_profiles,omitempty" validate:"dive"`

	// extra holds members written by other versions so they survive a rewrite.
	extra rawObject
}

// SavedProfile is a player/profile pair the user can switch between.
type SavedProfile struct {
	PlayerName  string `json:"player_name" validate:"required,max=64"`
	ProfileName string `json:"profile_name" validate:"required,max=64"`
	DisplayName string `json:"display_name,omitempty"`
}

// Label returns the display name, falling back to "<player> - <profile>".
func (p SavedProfile) Label() string {
	if strings.TrimSpace(p.DisplayName) != "" {
		return p.DisplayName
	}
	return p.PlayerName + " - " + p.ProfileName
}

// Matches reports whether p is the given player/profile pair.
func (p SavedProfile) Matches(player, profile string) bool {
	return p.PlayerName == player && p.ProfileName == profile
}

// NewDocument returns a configured document with defaults for everything else.
func NewDocument(player, profile string) *Document {
	d := &Document{
		PlayerName:     strings.TrimSpace(player),
		DefaultProfile: strings.TrimSpace(profile),
		SelectedTheme:  DefaultTheme,
		AutoRefresh:    RefreshOff,
	}
	return d
}

// Configured reports whether both the player and profile are set.
func (d *Document) Configured() bool {
	return d != nil && d.PlayerName != "" && d.DefaultProfile != ""
}

// Empty reports the first-run state: neither player nor profile is set.
func (d *Document) Empty() bool {
	return d == nil || (d.PlayerName == "" && d.DefaultProfile == "")
}

// Profiles returns the saved profiles, seeded with the current player and
// profile when the document predates the list.
func (d *Document) Profiles() []SavedProfile {
	if len(d.SavedProfiles) > 0 {
		out := make([]SavedProfile, len(d.SavedProfiles))
		copy(out, d.SavedProfiles)
		return out
	}
	if !d.Configured() {
		return nil
	}
	return []SavedProfile{{
		PlayerName:  d.PlayerName,
		ProfileName: d.DefaultProfile,
		DisplayName: d.PlayerName + " - " + d.DefaultProfile,
	}}
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	if d.SavedProfiles != nil {
		c.SavedProfiles = make([]SavedProfile, len(d.SavedProfiles))
		copy(c.SavedProfiles, d.SavedProfiles)
	}
	c.extra = rawObject{}
	for _, k := range d.extra.keys {
		c.extra.set(k, d.extra.values[k])
	}
	return &c
}

// dropIncompleteProfiles removes saved profiles without a player or profile
// name and reports how many were removed.
func (d *Document) dropIncompleteProfiles() int {
	if len(d.SavedProfiles) == 0 {
		return 0
	}
	kept := d.SavedProfiles[:0]
	for _, p := range d.SavedProfiles {
		p.PlayerName = strings.TrimSpace(p.PlayerName)
		p.ProfileName = strings.TrimSpace(p.ProfileName)
		if p.PlayerName == "" || p.ProfileName == "" {
			continue
		}
		kept = append(kept, p)
	}
	dropped := len(d.SavedProfiles) - len(kept)
	d.SavedProfiles = kept
	return dropped
}

// normalize fills defaults for members that older files leave out.
func (d *Document) normalize() {
	d.PlayerName = strings.TrimSpace(d.PlayerName)
	d.DefaultProfile = strings.TrimSpace(d.DefaultProfile)
	if !IsTheme(d.SelectedTheme) {
		d.SelectedTheme = DefaultTheme
	}
	if d.AutoRefresh < 0 || d.AutoRefresh > MaxRefreshMinutes {
		d.AutoRefresh = RefreshOff
	}
}

// MarshalJSON writes canonical members first, then any unknown members in
// the order they were read.
func (d Document) MarshalJSON() ([]byte, error) {
	var obj rawObject
	set := func(key string, v any) error {
		if err := obj.setValue(key, v); err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		return nil
	}
	for _, key := range canonicalOrder {
		var err error
		switch key {
		case keySchemaVersion:
			err = set(key, d.SchemaVersion)
		case keyCreatedAt:
			err = set(key, d.CreatedAt)
		case keyPlayerName:
			err = set(key, d.PlayerName)
		case keyDefaultProfile:
			err = set(key, d.DefaultProfile)
		case keySelectedTheme:
			err = set(key, d.SelectedTheme)
		case keyAutoRefresh:
			err = set(key, d.AutoRefresh)
		case keySavedProfiles:
			if len(d.SavedProfiles) > 0 {
				err = set(key, d.SavedProfiles)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	for _, key := range d.extra.keys {
		obj.set(key, d.extra.values[key])
	}
	return json.Marshal(obj)
}

// UnmarshalJSON accepts both the current member names and the names used by
// earlier releases. When both spellings are present the current one wins.
func (d *Document) UnmarshalJSON(data []byte) error {
	var obj rawObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	var doc Document
	for _, key := range obj.keys {
		raw := obj.values[key]
		canonical, known := fieldAliases[key]
		if !known {
			doc.extra.set(key, raw)
			continue
		}
		if key != canonical && obj.has(canonical) {
			continue
		}
		if err := doc.decodeMember(canonical, raw); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
	}
	*d = doc
	return nil
}

func (d *Document) decodeMember(key string, raw json.RawMessage) error {
	if string(raw) == "null" {
		return nil
	}
	switch key {
	case keySchemaVersion:
		return json.Unmarshal(raw, &d.SchemaVersion)
	case keyCreatedAt:
		return json.Unmarshal(raw, &d.CreatedAt)
	case keyPlayerName:
		return json.Unmarshal(raw, &d.PlayerName)
	case keyDefaultProfile:
		return json.Unmarshal(raw, &d.DefaultProfile)
	case keySelectedTheme:
		return json.Unmarshal(raw, &d.SelectedTheme)
	case keyAutoRefresh:
		return json.Unmarshal(raw, &d.AutoRefresh)
	case keySavedProfiles:
		return json.Unmarshal(raw, &d.SavedProfiles)
	}
	return nil
}

// UnmarshalJSON accepts the camelCase names written by earlier releases.
func (p *SavedProfile) UnmarshalJSON(data []byte) error {
	var obj rawObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	pick := func(dst *string, names ...string) error {
		for _, name := range names {
			if raw, ok := obj.get(name); ok && string(raw) != "null" {
				return json.Unmarshal(raw, dst)
			}
		}
		return nil
	}
	var out SavedProfile
	if err := pick(&out.PlayerName, "player_name", "playerName"); err != nil {
		return err
	}
	if err := pick(&out.ProfileName, "profile_name", "profileName"); err != nil {
		return err
	}
	if err := pick(&out.DisplayName, "display_name", "displayName"); err != nil {
		return err
	}
	*p = out
	return nil
}

// Timestamp is the creation time of the document. Files written by older
// releases used other layouts; text that matches none of them is kept as-is
// so a rewrite never loses it.
type Timestamp struct {
	time.Time
	raw string
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// IsZero reports whether neither a parsed time nor raw text is present.
func (t Timestamp) IsZero() bool {
	return t.Time.IsZero() && t.raw == ""
}

// String returns the stored text form.
func (t Timestamp) String() string {
	if t.raw != "" {
		return t.raw
	}
	if t.Time.IsZero() {
		return ""
	}
	return t.Time.Format(time.RFC3339Nano)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.raw != "" {
		return json.Marshal(t.raw)
	}
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Timestamp{Time: parsed, raw: s}
			return nil
		}
	}
	*t = Timestamp{raw: s}
	return nil
}

// RefreshInterval is the auto-refresh period in whole minutes. The zero value
// means auto-refresh is off, which is written as the string "off".
type RefreshInterval int

const (
	// RefreshOff disables auto-refresh.
	RefreshOff RefreshInterval = 0
	// MaxRefreshMinutes is the largest accepted interval.
	MaxRefreshMinutes RefreshInterval = 60

	refreshOffText = "off"
)

// RefreshPresets are the intervals the host offers, in display order.
var RefreshPresets = []RefreshInterval{RefreshOff, 1, 2, 3, 4, 5}

// ParseRefreshInterval parses "off" or a whole number of minutes.
func ParseRefreshInterval(s string) (RefreshInterval, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == refreshOffText || s == "0" {
		return RefreshOff, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return RefreshOff, fmt.Errorf("invalid auto refresh interval %q", s)
	}
	if n < 0 || RefreshInterval(n) > MaxRefreshMinutes {
		return RefreshOff, fmt.Errorf("auto refresh interval %d out of range 0-%d", n, MaxRefreshMinutes)
	}
	return RefreshInterval(n), nil
}

// Off reports whether auto-refresh is disabled.
func (r RefreshInterval) Off() bool {
	return r <= 0
}

// Duration returns the interval as a time.Duration (zero when off).
func (r RefreshInterval) Duration() time.Duration {
	if r.Off() {
		return 0
	}
	return time.Duration(r) * time.Minute
}

// String returns "off" or the minute count, matching the values the
// in-page script stores.
func (r RefreshInterval) String() string {
	if r.Off() {
		return refreshOffText
	}
	return strconv.Itoa(int(r))
}

// Label is the human-facing form, e.g. "3 minutes".
func (r RefreshInterval) Label() string {
	switch {
	case r.Off():
		return "Off"
	case r == 1:
		return "1 minute"
	default:
		return fmt.Sprintf("%d minutes", int(r))
	}
}

// Next returns the preset after r, wrapping to off.
func (r RefreshInterval) Next() RefreshInterval {
	for i, p := range RefreshPresets {
		if p == r {
			return RefreshPresets[(i+1)%len(RefreshPresets)]
		}
	}
	return RefreshOff
}

func (r RefreshInterval) MarshalJSON() ([]byte, error) {
	if r.Off() {
		return json.Marshal(refreshOffText)
	}
	return json.Marshal(int(r))
}

// UnmarshalJSON accepts "off", a number, or a numeric string. Anything else
// reads as off so one bad member never makes the whole file unreadable.
func (r *RefreshInterval) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if v, err := strconv.Atoi(n.String()); err == nil {
			*r = clampRefresh(v)
			return nil
		}
		*r = RefreshOff
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := ParseRefreshInterval(s)
		if perr != nil {
			*r = RefreshOff
			return nil
		}
		*r = parsed
		return nil
	}
	*r = RefreshOff
	return nil
}

func clampRefresh(v int) RefreshInterval {
	if v <= 0 || RefreshInterval(v) > MaxRefreshMinutes {
		return RefreshOff
	}
	return RefreshInterval(v)
}
