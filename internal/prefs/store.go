// Package prefs persists the SkyCrypt+ preference document: the tracked
// player and profile, the site theme, the auto-refresh interval and the
// saved profiles list.
//
// The document lives at <user-config-dir>/SkyCrypt+/config.json and is owned
// by this process alone. Every operation recovers from its own failures:
// problems are logged, reads degrade to "no document", and writes report an
// error value so the caller can decide whether to continue.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "skycryptplus/internal/errors"
	"skycryptplus/internal/logging"
)

const (
	// AppDirName is the per-user directory holding the document.
	AppDirName = "SkyCrypt+"
	// FileName is the document's file name.
	FileName = "config.json"
)

// Store reads and writes the preference document.
type Store struct {
	dir        string
	legacyDirs []string
	appVersion string
	now        func() time.Time
	log        logging.Logger
	validator  *documentValidator
}

// Option configures a Store.
type Option func(*Store)

// WithDir overrides the directory holding config.json.
func WithDir(dir string) Option {
	return func(s *Store) {
		s.dir = dir
	}
}

// WithLegacyDirs overrides the directories searched by ImportLegacy.
func WithLegacyDirs(dirs ...string) Option {
	return func(s *Store) {
		s.legacyDirs = append([]string{}, dirs...)
	}
}

// WithAppVersion sets the version stamped into schema_version on save.
func WithAppVersion(version string) Option {
	return func(s *Store) {
		s.appVersion = version
	}
}

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger overrides the logger. The package-level log is used by default.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// NewStore creates a store for the platform default location unless WithDir
// is given. If the user config dir cannot be determined the home directory,
// then the working directory, is used instead.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:       time.Now,
		log:       logging.Default(),
		validator: newDocumentValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if strings.TrimSpace(s.dir) == "" {
		dir, err := DefaultDir()
		if err != nil {
			s.log.Warnf("Falling back for config location: %v", err)
			dir = fallbackDir()
		}
		s.dir = dir
	}
	if s.legacyDirs == nil {
		s.legacyDirs = LegacyDirs()
	}
	return s
}

// DefaultDir returns <user-config-dir>/SkyCrypt+.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine user config dir: %w", err)
	}
	return filepath.Join(base, AppDirName), nil
}

func fallbackDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return AppDirName
	}
	return filepath.Join(home, ".skycryptplus")
}

// Dir returns the directory holding the document.
func (s *Store) Dir() string { return s.dir }

// Path returns the full path of the document.
func (s *Store) Path() string { return filepath.Join(s.dir, FileName) }

// AppVersion returns the version stamped on save.
func (s *Store) AppVersion() string { return s.appVersion }

// Load returns the stored document. It returns false when there is no
// usable document: the file is missing, is not valid JSON, or holds a
// document with only one of player/profile set. Only the last two are logged
// as errors.
func (s *Store) Load() (*Document, bool) {
	doc, err := s.read()
	if err != nil {
		if !apperrors.IsCode(err, apperrors.CodeNotFound) {
			s.log.Errorf("Error reading config file: %v", err)
		}
		return nil, false
	}
	return doc, true
}

// read is Load with the failure reason kept.
func (s *Store) read() (*Document, error) {
	//nolint:gosec // G304: Path is the fixed per-user config location
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.New(apperrors.CodeNotFound, "no config file", err)
	}
	if err != nil {
		return nil, apperrors.New(apperrors.CodeConfigurationError, "read "+s.Path(), err)
	}
	return s.decode(data)
}

// decode parses a stored document. Only the both-or-neither rule on
// player/profile is enforced here; the length and theme checks apply to
// what is saved, not to what an earlier build wrote.
func (s *Store) decode(data []byte) (*Document, error) {
	doc, err := s.parse(data)
	if err != nil {
		return nil, err
	}
	if doc.Empty() {
		return nil, apperrors.New(apperrors.CodeNotFound, "config has no player or profile", nil)
	}
	if !doc.Configured() {
		return nil, apperrors.Validation("invalid document: player_name and default_profile must both be set",
			map[string]string{keyPlayerName: "must be set together with default_profile"})
	}
	return doc, nil
}

// parse unmarshals and normalizes data without checking the player/profile
// pair. Saved profiles missing a player or profile name are dropped.
func (s *Store) parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.New(apperrors.CodeSerializationFailed, "parse "+s.Path(), err)
	}
	doc.normalize()
	if dropped := doc.dropIncompleteProfiles(); dropped > 0 {
		s.log.Warnf("Ignoring %d saved profile(s) without a player or profile name", dropped)
	}
	return &doc, nil
}

// Draft returns whatever the file holds, including a document with only one
// of player/profile set, so the setup form can start from it. It returns nil
// when the file is missing or is not valid JSON.
func (s *Store) Draft() *Document {
	//nolint:gosec // G304: Path is the fixed per-user config location
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return nil
	}
	doc, err := s.parse(data)
	if err != nil {
		return nil
	}
	return doc
}

// storedCreatedAt returns the created_at member of the file on disk,
// whatever state the rest of the document is in.
func (s *Store) storedCreatedAt() (Timestamp, bool) {
	//nolint:gosec // G304: Path is the fixed per-user config location
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return Timestamp{}, false
	}
	var obj rawObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return Timestamp{}, false
	}
	raw, ok := obj.get(keyCreatedAt)
	if !ok {
		raw, ok = obj.get("createdAt")
	}
	if !ok {
		return Timestamp{}, false
	}
	var ts Timestamp
	if err := json.Unmarshal(raw, &ts); err != nil || ts.IsZero() {
		return Timestamp{}, false
	}
	return ts, true
}

// Save writes doc as the full contents of the file. It stamps
// schema_version with the app version and keeps the created_at already on
// disk, even over one doc carries; doc is updated in place. The data
// goes to a temp file in the same directory which is then renamed over the
// old file, so a failed write never leaves a truncated document behind.
func (s *Store) Save(doc *Document) error {
	if err := s.save(doc); err != nil {
		s.log.Errorf("Error saving config file: %v", err)
		return err
	}
	s.log.Infof("Configuration saved for %s with profile %s, theme %s, and auto refresh %s",
		doc.PlayerName, doc.DefaultProfile, doc.SelectedTheme, doc.AutoRefresh)
	return nil
}

func (s *Store) save(doc *Document) error {
	if doc == nil {
		return apperrors.Validation("document is missing", nil)
	}
	doc.normalize()
	if err := s.validator.validate(doc); err != nil {
		return err
	}

	if s.appVersion != "" {
		doc.SchemaVersion = s.appVersion
	}
	if stored, ok := s.storedCreatedAt(); ok {
		doc.CreatedAt = stored
	} else if doc.CreatedAt.IsZero() {
		doc.CreatedAt = NewTimestamp(s.now())
	}

	data, err := encodeIndented(doc)
	if err != nil {
		return apperrors.New(apperrors.CodeSerializationFailed, "encode config", err)
	}
	return s.writeFile(data)
}

// writeFile replaces config.json atomically.
func (s *Store) writeFile(data []byte) error {
	//nolint:gosec // G301: User config directory needs standard permissions
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return apperrors.New(apperrors.CodeConfigurationError, "create config directory", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".config-*.json.tmp")
	if err != nil {
		return apperrors.New(apperrors.CodeConfigurationError, "create temp file", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return apperrors.New(apperrors.CodeConfigurationError, "write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return apperrors.New(apperrors.CodeConfigurationError, "sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return apperrors.New(apperrors.CodeConfigurationError, "close temp file", err)
	}
	//nolint:gosec // G302: Config file is user-readable like the rest of the directory
	if err := os.Chmod(tmpPath, 0644); err != nil {
		cleanup()
		return apperrors.New(apperrors.CodeConfigurationError, "set config permissions", err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		cleanup()
		return apperrors.New(apperrors.CodeConfigurationError, "replace config file", err)
	}
	return nil
}

// MigrateResult reports what MigrateVersion did.
type MigrateResult int

const (
	// MigrateNothing means there was no document to migrate.
	MigrateNothing MigrateResult = iota
	// MigrateUpToDate means the document already carried the current version.
	MigrateUpToDate
	// MigrateUpdated means schema_version was rewritten.
	MigrateUpdated
)

// String returns a short label for logs.
func (r MigrateResult) String() string {
	switch r {
	case MigrateUpToDate:
		return "up-to-date"
	case MigrateUpdated:
		return "updated"
	default:
		return "nothing"
	}
}

// MigrateVersion rewrites schema_version to current when it differs. Only
// that member changes: the rewrite edits the stored JSON object directly, so
// every other member keeps its value and position, including members this
// version does not know about. A missing or unusable document reports
// MigrateNothing.
func (s *Store) MigrateVersion(current string) (MigrateResult, error) {
	result, err := s.migrateVersion(current)
	if err != nil {
		s.log.Errorf("Error updating config version: %v", err)
		return MigrateNothing, err
	}
	switch result {
	case MigrateNothing:
		s.log.Infof("No existing config found to update version")
	case MigrateUpdated:
		s.log.Infof("Updated config to version %s", current)
	}
	return result, nil
}

func (s *Store) migrateVersion(current string) (MigrateResult, error) {
	current = strings.TrimSpace(current)
	if current == "" {
		return MigrateNothing, apperrors.New(apperrors.CodeInvalidVersion, "empty app version", nil)
	}

	//nolint:gosec // G304: Path is the fixed per-user config location
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return MigrateNothing, nil
	}
	if err != nil {
		return MigrateNothing, apperrors.New(apperrors.CodeConfigurationError, "read "+s.Path(), err)
	}

	doc, err := s.decode(data)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return MigrateNothing, nil
		}
		return MigrateNothing, err
	}
	if doc.SchemaVersion == current {
		return MigrateUpToDate, nil
	}

	var obj rawObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return MigrateNothing, apperrors.New(apperrors.CodeSerializationFailed, "parse "+s.Path(), err)
	}
	if err := obj.setValue(keySchemaVersion, current); err != nil {
		return MigrateNothing, apperrors.New(apperrors.CodeSerializationFailed, "encode version", err)
	}
	out, err := encodeIndented(obj)
	if err != nil {
		return MigrateNothing, apperrors.New(apperrors.CodeSerializationFailed, "encode config", err)
	}
	if err := s.writeFile(out); err != nil {
		return MigrateNothing, err
	}
	return MigrateUpdated, nil
}

// Field names a single member UpdateField can change.
type Field string

const (
	FieldTheme       Field = keySelectedTheme
	FieldAutoRefresh Field = keyAutoRefresh
	FieldPlayer      Field = keyPlayerName
	FieldProfile     Field = keyDefaultProfile
)

// UpdateField re-reads the document, changes one member and saves it.
// Reading first means edits made to the file since startup are kept.
func (s *Store) UpdateField(field Field, value any) error {
	err := s.update(func(doc *Document) error {
		return applyField(doc, field, value)
	})
	if err != nil {
		s.log.Errorf("Error updating %s: %v", field, err)
	}
	return err
}

// update is the read-modify-write cycle shared by the mutating operations.
func (s *Store) update(mutate func(doc *Document) error) error {
	doc, err := s.read()
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "no configuration to update", nil)
		}
		return err
	}
	if err := mutate(doc); err != nil {
		return err
	}
	return s.save(doc)
}

func applyField(doc *Document, field Field, value any) error {
	switch field {
	case FieldTheme:
		id, ok := value.(string)
		if !ok {
			return fieldTypeError(field, value)
		}
		if !IsTheme(id) {
			return apperrors.Validation("unknown theme "+id, map[string]string{string(field): "is not a known theme"})
		}
		doc.SelectedTheme = id
	case FieldAutoRefresh:
		interval, err := toRefreshInterval(value)
		if err != nil {
			return apperrors.Validation(err.Error(), map[string]string{string(field): err.Error()})
		}
		doc.AutoRefresh = interval
	case FieldPlayer:
		name, ok := value.(string)
		if !ok {
			return fieldTypeError(field, value)
		}
		doc.PlayerName = strings.TrimSpace(name)
	case FieldProfile:
		name, ok := value.(string)
		if !ok {
			return fieldTypeError(field, value)
		}
		doc.DefaultProfile = strings.TrimSpace(name)
	default:
		return apperrors.Validation("unknown field "+string(field), map[string]string{string(field): "is not updatable"})
	}
	return nil
}

func toRefreshInterval(value any) (RefreshInterval, error) {
	switch v := value.(type) {
	case RefreshInterval:
		if v < 0 || v > MaxRefreshMinutes {
			return RefreshOff, fmt.Errorf("auto refresh interval %d out of range 0-%d", int(v), MaxRefreshMinutes)
		}
		return v, nil
	case int:
		return toRefreshInterval(RefreshInterval(v))
	case string:
		return ParseRefreshInterval(v)
	default:
		return RefreshOff, fmt.Errorf("unsupported auto refresh value %T", value)
	}
}

func fieldTypeError(field Field, value any) error {
	return apperrors.Validation(fmt.Sprintf("%s expects a string, got %T", field, value),
		map[string]string{string(field): "must be a string"})
}

// SetTheme persists the selected theme.
func (s *Store) SetTheme(id string) error {
	return s.UpdateField(FieldTheme, id)
}

// SetAutoRefresh persists the auto-refresh interval.
func (s *Store) SetAutoRefresh(interval RefreshInterval) error {
	return s.UpdateField(FieldAutoRefresh, interval)
}

// Reset deletes the document so the next start runs first-time setup.
// It reports false when there was nothing to delete.
func (s *Store) Reset() (bool, error) {
	err := os.Remove(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		wrapped := apperrors.New(apperrors.CodeConfigurationError, "remove config", err)
		s.log.Errorf("Error resetting configuration: %v", wrapped)
		return false, wrapped
	}
	s.log.Infof("Configuration reset successful")
	return true, nil
}
