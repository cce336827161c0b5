// Package config layers SkyCrypt+ runtime settings with viper.
//
// These are settings about how the shell runs (logging, the update check,
// the stats site). The user's player/profile/theme preferences live in the
// JSON document managed by package prefs, not here.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const (
	KeyDebug           = "debug"
	KeySkipUpdateCheck = "skip-update-check"

	KeyUpdateOwner   = "update.owner"
	KeyUpdateRepo    = "update.repo"
	KeyUpdateTimeout = "update.timeout"
	KeyUpdateDelay   = "update.delay"

	KeySiteURL      = "site.url"
	KeyPrefsDir     = "prefs.dir"
	KeyLogPath      = "log.path"
	KeyLogMaxSizeMB = "log.max-size-mb"
)

const (
	// DefaultSiteURL is the stats site the shell displays.
	DefaultSiteURL = "https://sky.shiiyu.moe"
	// DefaultLogMaxSizeMB is the log size that triggers rotation at startup.
	DefaultLogMaxSizeMB = 10
	// LocalConfigName is the optional settings file read from the working
	// directory, for portable installs.
	LocalConfigName = "skycryptplus.yaml"

	appDirName = "SkyCrypt+"
	envPrefix  = "SKYCRYPT"
)

type initSettings struct {
	workingDir      string
	localConfigPath string
	userConfigPath  string
}

// Option configures Initialize behaviour. Useful for tests to override paths.
type Option func(*initSettings)

// WithWorkingDir overrides the directory searched for LocalConfigName.
func WithWorkingDir(dir string) Option {
	return func(cfg *initSettings) {
		cfg.workingDir = dir
	}
}

// WithLocalConfig explicitly sets the local settings path instead of discovery.
func WithLocalConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.localConfigPath = path
	}
}

// WithUserConfig overrides the default user settings path.
func WithUserConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.userConfigPath = path
	}
}

var (
	configOnce sync.Once
	configMu   sync.RWMutex
	configInst *viper.Viper
	initErr    error
)

// Initialize loads configuration using the precedence:
// defaults < user settings < local settings < environment variables < overrides.
func Initialize(opts ...Option) error {
	configOnce.Do(func() {
		settings := initSettings{}
		for _, opt := range opts {
			opt(&settings)
		}
		initErr = configure(&settings)
	})
	return initErr
}

// ApplyOverrides injects values typically coming from CLI flags.
func ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	if err := Initialize(); err != nil {
		return err
	}
	configMu.Lock()
	defer configMu.Unlock()
	if configInst == nil {
		return fmt.Errorf("configuration not initialized")
	}
	for k, v := range overrides {
		configInst.Set(k, v)
	}
	return nil
}

// GetString fetches a string configuration value, initializing on demand.
func GetString(key string) string {
	v, err := getViper()
	if err != nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool fetches a bool configuration value, initializing on demand.
func GetBool(key string) bool {
	v, err := getViper()
	if err != nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt fetches an integer configuration value, initializing on demand.
func GetInt(key string) int {
	v, err := getViper()
	if err != nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration fetches a duration configuration value, initializing on demand.
func GetDuration(key string) time.Duration {
	v, err := getViper()
	if err != nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set updates a configuration key at runtime, initializing on demand.
func Set(key string, value any) error {
	if err := Initialize(); err != nil {
		return err
	}
	configMu.Lock()
	defer configMu.Unlock()
	if configInst == nil {
		return fmt.Errorf("configuration not initialized")
	}
	configInst.Set(key, value)
	return nil
}

func configure(settings *initSettings) error {
	userConfigPath := strings.TrimSpace(settings.userConfigPath)
	if userConfigPath == "" {
		path, err := DefaultUserConfigPath()
		if err != nil {
			return err
		}
		userConfigPath = path
	}

	localConfigPath := strings.TrimSpace(settings.localConfigPath)
	if localConfigPath == "" {
		workingDir := strings.TrimSpace(settings.workingDir)
		if workingDir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("determine working directory: %w", err)
			}
			workingDir = wd
		}
		localConfigPath = filepath.Join(workingDir, LocalConfigName)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := mergeConfigFile(v, userConfigPath); err != nil {
		return fmt.Errorf("load user settings: %w", err)
	}
	if err := mergeConfigFile(v, localConfigPath); err != nil {
		return fmt.Errorf("load local settings: %w", err)
	}

	configMu.Lock()
	defer configMu.Unlock()
	configInst = v
	return nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	//nolint:gosec // G304: Config loader intentionally reads user and local settings files
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// DefaultUserConfigPath returns <user-config-dir>/SkyCrypt+/settings.yaml.
func DefaultUserConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return "", fmt.Errorf("determine user config dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDirName, "settings.yaml"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeySkipUpdateCheck, false)
	v.SetDefault(KeyUpdateOwner, "Balionelis")
	v.SetDefault(KeyUpdateRepo, "SkyCryptPlus")
	v.SetDefault(KeyUpdateTimeout, 5*time.Second)
	v.SetDefault(KeyUpdateDelay, 5*time.Second)
	v.SetDefault(KeySiteURL, DefaultSiteURL)
	v.SetDefault(KeyPrefsDir, "")
	v.SetDefault(KeyLogPath, "")
	v.SetDefault(KeyLogMaxSizeMB, DefaultLogMaxSizeMB)
}

func getViper() (*viper.Viper, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	configMu.RLock()
	defer configMu.RUnlock()
	if configInst == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return configInst, nil
}

// reset clears package state for tests.
func reset() {
	configMu.Lock()
	defer configMu.Unlock()
	configInst = nil
	initErr = nil
	configOnce = sync.Once{}
}

// ResetForTesting clears package state for tests in other packages.
// Returns a cleanup function that should be deferred.
func ResetForTesting(t interface{ TempDir() string }) func() {
	reset()
	tmp := t.TempDir()
	_ = Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "settings.yaml")))
	return reset
}
